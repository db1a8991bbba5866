package dto

import "github.com/google/uuid"

type CreateStudentInput struct {
	Name     string    `json:"name" binding:"required"`
	Username string    `json:"username" binding:"required,min=3,max=50"`
	Password string    `json:"password" binding:"required,min=8"`
	RollNo   string    `json:"rollNo" binding:"required"`
	CourseID uuid.UUID `json:"courseId" binding:"required"`
	Semester int       `json:"semester" binding:"required,min=1"`
	Phone    string    `json:"phone"`
	Address  string    `json:"address"`
}

type UpdateStudentInput struct {
	Name     *string    `json:"name"`
	Password *string    `json:"password" binding:"omitempty,min=8"`
	RollNo   *string    `json:"rollNo"`
	CourseID *uuid.UUID `json:"courseId"`
	Semester *int       `json:"semester" binding:"omitempty,min=1"`
	Phone    *string    `json:"phone"`
	Address  *string    `json:"address"`
}

type CreateTeacherInput struct {
	Name     string    `json:"name" binding:"required"`
	Username string    `json:"username" binding:"required,min=3,max=50"`
	Password string    `json:"password" binding:"required,min=8"`
	CourseID uuid.UUID `json:"courseId" binding:"required"`
	Phone    string    `json:"phone"`
}

type UpdateTeacherInput struct {
	Name     *string    `json:"name"`
	Password *string    `json:"password" binding:"omitempty,min=8"`
	CourseID *uuid.UUID `json:"courseId"`
	Phone    *string    `json:"phone"`
}

type CreateAdminInput struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=ADMIN SUPER_ADMIN"`
}

type StudentFilter struct {
	CourseID string `form:"courseId"`
	Semester int    `form:"semester"`
	Search   string `form:"search"`
}
