package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleTeacher    Role = "TEACHER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid returns true when the role is a supported value.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the role carries admin privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Username  string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      Role      `gorm:"size:20;not null" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Student *Student `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Teacher *Teacher `gorm:"constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Student struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	User     *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	RollNo   string    `gorm:"size:50;uniqueIndex;not null" json:"rollNo"`
	CourseID uuid.UUID `gorm:"type:uuid;not null" json:"courseId"`
	Course   *Course   `gorm:"constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Semester int       `gorm:"not null" json:"semester"`
	Phone    string    `gorm:"size:20" json:"phone"`
	Address  string    `gorm:"type:text" json:"address"`
}

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Teacher struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	User     *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CourseID uuid.UUID `gorm:"type:uuid;not null" json:"courseId"`
	Course   *Course   `gorm:"constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Phone    string    `gorm:"size:20" json:"phone"`
}

func (t *Teacher) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
