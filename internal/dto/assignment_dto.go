package dto

import (
	"github.com/google/uuid"

	"github.com/rizalarfiyan/siakad-backend/internal/model"
)

type CreateAssignmentInput struct {
	SubjectID   uuid.UUID `json:"subjectId" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate" binding:"required,datetime=2006-01-02"`
}

type AssignmentFilter struct {
	CourseID  string `form:"courseId"`
	Semester  int    `form:"semester"`
	SubjectID string `form:"subjectId"`
}

type CreateQuestionInput struct {
	Text  string `json:"text" binding:"required"`
	Marks int    `json:"marks" binding:"min=0"`
}

type SubmissionChange struct {
	StudentID uuid.UUID `json:"studentId" binding:"required"`
	Status    string    `json:"status" binding:"required,oneof=SUBMITTED LATE PENDING"`
}

// SaveSubmissionsInput is the diff batch for one assignment.
type SaveSubmissionsInput struct {
	Submissions []SubmissionChange `json:"submissions" binding:"required,dive"`
}

// SubmissionRow is one merged working row: a roster student with the recorded
// submission status, PENDING when nothing is recorded.
type SubmissionRow struct {
	StudentID   uuid.UUID              `json:"studentId"`
	RollNo      string                 `json:"rollNo"`
	Name        string                 `json:"name"`
	Status      model.SubmissionStatus `json:"status"`
	FileURL     *string                `json:"fileUrl,omitempty"`
	SubmittedAt *string                `json:"submittedAt,omitempty"`
}
