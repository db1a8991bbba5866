package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/middleware"
	"github.com/rizalarfiyan/siakad-backend/internal/service"
	"github.com/rizalarfiyan/siakad-backend/pkg/apperror"
	"github.com/rizalarfiyan/siakad-backend/pkg/response"
	"github.com/rizalarfiyan/siakad-backend/pkg/validator"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, res, "login successful")
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	res, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, res, "profile fetched")
}
