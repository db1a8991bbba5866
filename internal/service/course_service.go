package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
	"github.com/rizalarfiyan/siakad-backend/internal/repository"
	"github.com/rizalarfiyan/siakad-backend/pkg/apperror"
)

type CourseService interface {
	Create(ctx context.Context, input dto.CreateCourseInput) (*model.Course, error)
	List(ctx context.Context) ([]*model.Course, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Course, error)
	Update(ctx context.Context, id uuid.UUID, input dto.UpdateCourseInput) (*model.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type courseService struct {
	courses repository.CourseRepository
}

func NewCourseService(courses repository.CourseRepository) CourseService {
	return &courseService{courses: courses}
}

func (s *courseService) Create(ctx context.Context, input dto.CreateCourseInput) (*model.Course, error) {
	course := &model.Course{
		Name:     input.Name,
		Duration: input.Duration,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) List(ctx context.Context) ([]*model.Course, error) {
	return s.courses.FindAll(ctx)
}

func (s *courseService) Get(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *courseService) Update(ctx context.Context, id uuid.UUID, input dto.UpdateCourseInput) (*model.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		course.Name = *input.Name
	}
	if input.Duration != nil {
		course.Duration = *input.Duration
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.courses.Delete(ctx, id)
}

type SubjectService interface {
	Create(ctx context.Context, input dto.CreateSubjectInput) (*model.Subject, error)
	List(ctx context.Context, filter dto.SubjectFilter) ([]*model.Subject, error)
	Update(ctx context.Context, id uuid.UUID, input dto.UpdateSubjectInput) (*model.Subject, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type subjectService struct {
	subjects repository.SubjectRepository
	courses  repository.CourseRepository
}

func NewSubjectService(subjects repository.SubjectRepository, courses repository.CourseRepository) SubjectService {
	return &subjectService{
		subjects: subjects,
		courses:  courses,
	}
}

func (s *subjectService) Create(ctx context.Context, input dto.CreateSubjectInput) (*model.Subject, error) {
	course, err := s.courses.FindByID(ctx, input.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if input.Semester > course.Duration {
		return nil, apperror.New(0, "semester exceeds course duration", apperror.ErrBadRequest)
	}

	subject := &model.Subject{
		CourseID: input.CourseID,
		Name:     input.Name,
		Code:     input.Code,
		Semester: input.Semester,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *subjectService) List(ctx context.Context, filter dto.SubjectFilter) ([]*model.Subject, error) {
	return s.subjects.FindAll(ctx, filter)
}

func (s *subjectService) Update(ctx context.Context, id uuid.UUID, input dto.UpdateSubjectInput) (*model.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		subject.Name = *input.Name
	}
	if input.Code != nil {
		subject.Code = *input.Code
	}
	if input.Semester != nil {
		subject.Semester = *input.Semester
	}

	subject.Course = nil
	if err := s.subjects.Update(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *subjectService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.subjects.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	return s.subjects.Delete(ctx, id)
}
