package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/service"
	"github.com/rizalarfiyan/siakad-backend/pkg/response"
	"github.com/rizalarfiyan/siakad-backend/pkg/validator"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) CreateStudent(c *gin.Context) {
	var input dto.CreateStudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	student, err := h.userService.CreateStudent(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, student, "student created")
}

func (h *UserHandler) UpdateStudent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input dto.UpdateStudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	student, err := h.userService.UpdateStudent(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, student, "student updated")
}

func (h *UserHandler) CreateTeacher(c *gin.Context) {
	var input dto.CreateTeacherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	teacher, err := h.userService.CreateTeacher(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, teacher, "teacher created")
}

func (h *UserHandler) UpdateTeacher(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input dto.UpdateTeacherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	teacher, err := h.userService.UpdateTeacher(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, teacher, "teacher updated")
}

func (h *UserHandler) CreateAdmin(c *gin.Context) {
	var input dto.CreateAdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	admin, err := h.userService.CreateAdmin(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, admin, "admin created")
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, nil, "user deleted")
}

func (h *UserHandler) ListStudents(c *gin.Context) {
	var filter dto.StudentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	students, err := h.userService.ListStudents(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, students, "students fetched")
}
