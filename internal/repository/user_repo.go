package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	CreateStudent(ctx context.Context, user *model.User, student *model.Student) error
	CreateTeacher(ctx context.Context, user *model.User, teacher *model.Teacher) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateStudent(ctx context.Context, user *model.User, student *model.Student) error
	UpdateTeacher(ctx context.Context, user *model.User, teacher *model.Teacher) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindStudents(ctx context.Context, filter dto.StudentFilter) ([]*model.Student, error)
	FindStudentByID(ctx context.Context, id uuid.UUID) (*model.Student, error)
	FindStudentByUserID(ctx context.Context, userID uuid.UUID) (*model.Student, error)
	FindTeacherByUserID(ctx context.Context, userID uuid.UUID) (*model.Teacher, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// CreateStudent writes the user and its student row in one transaction so a
// failed student insert never leaves an orphaned user behind.
func (r *userRepository) CreateStudent(ctx context.Context, user *model.User, student *model.Student) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		student.UserID = user.ID
		if err := tx.Create(student).Error; err != nil {
			return err
		}

		return nil
	})
}

func (r *userRepository) CreateTeacher(ctx context.Context, user *model.User, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		teacher.UserID = user.ID
		if err := tx.Create(teacher).Error; err != nil {
			return err
		}

		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Student.Course").
		Preload("Teacher").
		Preload("Teacher.Course").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Teacher").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) UpdateStudent(ctx context.Context, user *model.User, student *model.Student) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		return tx.Save(student).Error
	})
}

func (r *userRepository) UpdateTeacher(ctx context.Context, user *model.User, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		return tx.Save(teacher).Error
	})
}

// Delete removes the user; student/teacher and their dependent rows go with it
// through the cascade constraints.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id).Error
}

func (r *userRepository) FindStudents(ctx context.Context, filter dto.StudentFilter) ([]*model.Student, error) {
	var students []*model.Student
	query := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course")

	if filter.CourseID != "" {
		query = query.Where("course_id = ?", filter.CourseID)
	}
	if filter.Semester > 0 {
		query = query.Where("semester = ?", filter.Semester)
	}

	if err := query.Order("roll_no").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *userRepository) FindStudentByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	var student model.Student
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		First(&student, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *userRepository) FindStudentByUserID(ctx context.Context, userID uuid.UUID) (*model.Student, error) {
	var student model.Student
	if err := r.db.WithContext(ctx).
		Preload("Course").
		First(&student, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *userRepository) FindTeacherByUserID(ctx context.Context, userID uuid.UUID) (*model.Teacher, error) {
	var teacher model.Teacher
	if err := r.db.WithContext(ctx).
		Preload("Course").
		First(&teacher, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &teacher, nil
}
