package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"

	// AttendancePending is never persisted; it is the display default for
	// roster entries that have no record yet.
	AttendancePending AttendanceStatus = "PENDING"
)

// Valid returns true when the status can be persisted.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	default:
		return false
	}
}

// Attendance holds one row per (student, date). The composite unique index is
// the conflict target for batch upserts, so replaying a save is idempotent.
type Attendance struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_student_date" json:"studentId"`
	Student   *Student         `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Date      time.Time        `gorm:"type:date;not null;uniqueIndex:idx_attendance_student_date" json:"date"`
	Status    AttendanceStatus `gorm:"size:20;not null" json:"status"`
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
