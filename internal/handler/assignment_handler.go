package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/middleware"
	"github.com/rizalarfiyan/siakad-backend/internal/reconcile"
	"github.com/rizalarfiyan/siakad-backend/internal/service"
	"github.com/rizalarfiyan/siakad-backend/pkg/apperror"
	"github.com/rizalarfiyan/siakad-backend/pkg/response"
	"github.com/rizalarfiyan/siakad-backend/pkg/validator"
)

type AssignmentHandler struct {
	assignmentService service.AssignmentService
}

func NewAssignmentHandler(assignmentService service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var input dto.CreateAssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, assignment, "assignment created")
}

func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	var filter dto.AssignmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	assignments, err := h.assignmentService.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, assignments, "assignments fetched")
}

func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, nil, "assignment deleted")
}

func (h *AssignmentHandler) AddQuestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input dto.CreateQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	question, err := h.assignmentService.AddQuestion(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, question, "question added")
}

func (h *AssignmentHandler) ListQuestions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	questions, err := h.assignmentService.Questions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, questions, "questions fetched")
}

func (h *AssignmentHandler) ListSubmissions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rows, err := h.assignmentService.Submissions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, rows, "submissions fetched")
}

func (h *AssignmentHandler) SaveSubmissions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input dto.SaveSubmissionsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	saved, err := h.assignmentService.SaveSubmissions(c.Request.Context(), id, input)
	if err != nil {
		if errors.Is(err, reconcile.ErrNoChanges) {
			response.OK(c, http.StatusOK, gin.H{"saved": 0}, "no changes to save")
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"saved": saved}, "submissions saved")
}

// UploadSubmission accepts a multipart file from the authenticated student
// and stores it against the assignment.
func (h *AssignmentHandler) UploadSubmission(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader == nil {
		response.BadRequest(c, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "failed to read file")
		return
	}
	defer file.Close()

	submission, err := h.assignmentService.UploadSubmission(c.Request.Context(), id, userID, service.SubmissionFile{
		Reader:   file,
		FileName: fileHeader.Filename,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, submission, "submission uploaded")
}
