package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/reconcile"
	"github.com/rizalarfiyan/siakad-backend/internal/service"
	"github.com/rizalarfiyan/siakad-backend/pkg/response"
	"github.com/rizalarfiyan/siakad-backend/pkg/validator"
)

type TestHandler struct {
	testService service.TestService
}

func NewTestHandler(testService service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

func (h *TestHandler) CreateTest(c *gin.Context) {
	var input dto.CreateTestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	test, err := h.testService.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, test, "test created")
}

func (h *TestHandler) ListTests(c *gin.Context) {
	var filter dto.TestFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	tests, err := h.testService.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, tests, "tests fetched")
}

func (h *TestHandler) DeleteTest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.testService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, nil, "test deleted")
}

func (h *TestHandler) MarksSheet(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rows, err := h.testService.MarksSheet(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, rows, "marks fetched")
}

func (h *TestHandler) SaveMarks(c *gin.Context) {
	var input dto.SaveMarksInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	saved, err := h.testService.SaveMarks(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, reconcile.ErrNoChanges) {
			response.OK(c, http.StatusOK, gin.H{"saved": 0}, "no changes to save")
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"saved": saved}, "marks saved")
}
