package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
)

type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	FindAll(ctx context.Context) ([]*model.Course, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) FindAll(ctx context.Context) ([]*model.Course, error) {
	var courses []*model.Course
	if err := r.db.WithContext(ctx).Order("name").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var course model.Course
	if err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Course{}, "id = ?", id).Error
}

type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	FindAll(ctx context.Context, filter dto.SubjectFilter) ([]*model.Subject, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Subject, error)
	FindByCourseSemester(ctx context.Context, courseID uuid.UUID, semester int) ([]model.Subject, error)
	Update(ctx context.Context, subject *model.Subject) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type subjectRepository struct {
	db *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepository) FindAll(ctx context.Context, filter dto.SubjectFilter) ([]*model.Subject, error) {
	var subjects []*model.Subject
	query := r.db.WithContext(ctx).Preload("Course")

	if filter.CourseID != "" {
		query = query.Where("course_id = ?", filter.CourseID)
	}
	if filter.Semester > 0 {
		query = query.Where("semester = ?", filter.Semester)
	}

	if err := query.Order("semester, name").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *subjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Subject, error) {
	var subject model.Subject
	if err := r.db.WithContext(ctx).Preload("Course").First(&subject, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepository) FindByCourseSemester(ctx context.Context, courseID uuid.UUID, semester int) ([]model.Subject, error) {
	var subjects []model.Subject
	if err := r.db.WithContext(ctx).
		Where("course_id = ? AND semester = ?", courseID, semester).
		Order("name").
		Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *subjectRepository) Update(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Save(subject).Error
}

func (r *subjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Subject{}, "id = ?", id).Error
}
