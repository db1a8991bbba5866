package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"size:100;not null" json:"name"`
	Duration int       `gorm:"not null" json:"duration"` // number of semesters

	Subjects []Subject `gorm:"constraint:OnDelete:CASCADE" json:"subjects,omitempty"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Subject struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null" json:"courseId"`
	Course   *Course   `gorm:"constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Name     string    `gorm:"size:100;not null" json:"name"`
	Code     string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Semester int       `gorm:"not null" json:"semester"`
}

func (s *Subject) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
