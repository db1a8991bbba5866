package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/service"
	"github.com/rizalarfiyan/siakad-backend/pkg/apperror"
	"github.com/rizalarfiyan/siakad-backend/pkg/response"
	"github.com/rizalarfiyan/siakad-backend/pkg/validator"
)

type CourseHandler struct {
	courseService  service.CourseService
	subjectService service.SubjectService
}

func NewCourseHandler(courseService service.CourseService, subjectService service.SubjectService) *CourseHandler {
	return &CourseHandler{
		courseService:  courseService,
		subjectService: subjectService,
	}
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var input dto.CreateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, course, "course created")
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, courses, "courses fetched")
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	course, err := h.courseService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, course, "course fetched")
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input dto.UpdateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, course, "course updated")
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, nil, "course deleted")
}

func (h *CourseHandler) CreateSubject(c *gin.Context) {
	var input dto.CreateSubjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	subject, err := h.subjectService.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, subject, "subject created")
}

func (h *CourseHandler) ListSubjects(c *gin.Context) {
	var filter dto.SubjectFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	subjects, err := h.subjectService.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, subjects, "subjects fetched")
}

func (h *CourseHandler) UpdateSubject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input dto.UpdateSubjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	subject, err := h.subjectService.Update(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, subject, "subject updated")
}

func (h *CourseHandler) DeleteSubject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.subjectService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, nil, "subject deleted")
}

// parseIDParam parses a uuid path parameter, writing a 400 envelope when it
// is malformed.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperror.ErrBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
