package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Assignment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectID   uuid.UUID `gorm:"type:uuid;not null" json:"subjectId"`
	Subject     *Subject  `gorm:"constraint:OnDelete:CASCADE" json:"subject,omitempty"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	DueDate     time.Time `gorm:"not null" json:"dueDate"`

	Questions   []Question   `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	Submissions []Submission `gorm:"constraint:OnDelete:CASCADE" json:"submissions,omitempty"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Question struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID   `gorm:"type:uuid;not null" json:"assignmentId"`
	Assignment   *Assignment `gorm:"constraint:OnDelete:CASCADE" json:"assignment,omitempty"`
	Text         string      `gorm:"type:text;not null" json:"text"`
	Marks        int         `json:"marks"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionLate      SubmissionStatus = "LATE"
	SubmissionPending   SubmissionStatus = "PENDING"
)

// Valid returns true when the status is a supported value.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionSubmitted, SubmissionLate, SubmissionPending:
		return true
	default:
		return false
	}
}

type Submission struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_assignment_student" json:"assignmentId"`
	Assignment   *Assignment      `gorm:"constraint:OnDelete:CASCADE" json:"assignment,omitempty"`
	StudentID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_assignment_student" json:"studentId"`
	Student      *Student         `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	SubmittedAt  *time.Time       `json:"submittedAt,omitempty"`
	FileURL      *string          `gorm:"type:text" json:"fileUrl,omitempty"`
	Status       SubmissionStatus `gorm:"size:20;not null;default:PENDING" json:"status"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
