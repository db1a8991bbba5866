package dto

import "github.com/google/uuid"

type CreateCourseInput struct {
	Name     string `json:"name" binding:"required"`
	Duration int    `json:"duration" binding:"required,min=1,max=12"`
}

type UpdateCourseInput struct {
	Name     *string `json:"name"`
	Duration *int    `json:"duration" binding:"omitempty,min=1,max=12"`
}

type CreateSubjectInput struct {
	CourseID uuid.UUID `json:"courseId" binding:"required"`
	Name     string    `json:"name" binding:"required"`
	Code     string    `json:"code" binding:"required"`
	Semester int       `json:"semester" binding:"required,min=1"`
}

type UpdateSubjectInput struct {
	Name     *string `json:"name"`
	Code     *string `json:"code"`
	Semester *int    `json:"semester" binding:"omitempty,min=1"`
}

type SubjectFilter struct {
	CourseID string `form:"courseId"`
	Semester int    `form:"semester"`
}
