package dto

import (
	"github.com/google/uuid"

	"github.com/rizalarfiyan/siakad-backend/internal/model"
)

type AttendanceFilter struct {
	CourseID string `form:"courseId" binding:"required"`
	Semester int    `form:"semester" binding:"required,min=1"`
	Date     string `form:"date" binding:"required,datetime=2006-01-02"`
}

type AttendanceChange struct {
	StudentID uuid.UUID `json:"studentId" binding:"required"`
	Status    string    `json:"status" binding:"required,oneof=PRESENT ABSENT LATE"`
}

// SaveAttendanceInput is the diff batch for one course/semester/date scope.
type SaveAttendanceInput struct {
	CourseID uuid.UUID          `json:"courseId" binding:"required"`
	Semester int                `json:"semester" binding:"required,min=1"`
	Date     string             `json:"date" binding:"required,datetime=2006-01-02"`
	Records  []AttendanceChange `json:"records" binding:"required,dive"`
}

// AttendanceRow is one merged working row: a roster student with the day's
// recorded status, or PENDING when nothing is recorded yet.
type AttendanceRow struct {
	StudentID uuid.UUID              `json:"studentId"`
	RollNo    string                 `json:"rollNo"`
	Name      string                 `json:"name"`
	Status    model.AttendanceStatus `json:"status"`
}

// MonthlySummary aggregates one month of a student's attendance.
type MonthlySummary struct {
	Month   string  `json:"month"` // YYYY-MM
	Present int     `json:"present"`
	Absent  int     `json:"absent"`
	Late    int     `json:"late"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// LiveEvent is published on the attendance feed after every successful save.
type LiveEvent struct {
	CourseID uuid.UUID `json:"courseId"`
	Semester int       `json:"semester"`
	Date     string    `json:"date"`
	Saved    int       `json:"saved"`
	SavedBy  string    `json:"savedBy"`
}
