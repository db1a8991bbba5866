package dto

import "github.com/rizalarfiyan/siakad-backend/internal/model"

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=STUDENT TEACHER ADMIN SUPER_ADMIN"`
}

type LoginResponse struct {
	Token    string     `json:"token"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

// MeResponse carries the authenticated user plus the role-specific profile.
// For students the course and current-semester subjects are included.
type MeResponse struct {
	User     *model.User     `json:"user"`
	Student  *model.Student  `json:"student,omitempty"`
	Teacher  *model.Teacher  `json:"teacher,omitempty"`
	Subjects []model.Subject `json:"subjects,omitempty"`
}
