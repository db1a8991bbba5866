package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Test struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null" json:"subjectId"`
	Subject   *Subject  `gorm:"constraint:OnDelete:CASCADE" json:"subject,omitempty"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	MaxMarks  int       `gorm:"not null" json:"maxMarks"`
	Date      time.Time `gorm:"type:date;not null" json:"date"`

	Marks []Mark `gorm:"constraint:OnDelete:CASCADE" json:"marks,omitempty"`
}

func (t *Test) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Mark keeps one score per (test, student); the unique pair is the upsert
// conflict target. MarksObtained is expected to stay within the test's
// MaxMarks but that is not enforced here.
type Mark struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TestID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_marks_test_student" json:"testId"`
	Test          *Test     `gorm:"constraint:OnDelete:CASCADE" json:"test,omitempty"`
	StudentID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_marks_test_student" json:"studentId"`
	Student       *Student  `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	MarksObtained int       `gorm:"not null" json:"marksObtained"`
}

func (m *Mark) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
