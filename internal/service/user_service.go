package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
	"github.com/rizalarfiyan/siakad-backend/internal/repository"
	"github.com/rizalarfiyan/siakad-backend/pkg/apperror"
)

type UserService interface {
	CreateStudent(ctx context.Context, input dto.CreateStudentInput) (*model.Student, error)
	UpdateStudent(ctx context.Context, id uuid.UUID, input dto.UpdateStudentInput) (*model.Student, error)
	CreateTeacher(ctx context.Context, input dto.CreateTeacherInput) (*model.Teacher, error)
	UpdateTeacher(ctx context.Context, id uuid.UUID, input dto.UpdateTeacherInput) (*model.Teacher, error)
	CreateAdmin(ctx context.Context, input dto.CreateAdminInput) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListStudents(ctx context.Context, filter dto.StudentFilter) ([]*model.Student, error)
}

type userService struct {
	users   repository.UserRepository
	courses repository.CourseRepository
	search  SearchService
}

func NewUserService(users repository.UserRepository, courses repository.CourseRepository, search SearchService) UserService {
	return &userService{
		users:   users,
		courses: courses,
		search:  search,
	}
}

func (s *userService) CreateStudent(ctx context.Context, input dto.CreateStudentInput) (*model.Student, error) {
	if err := s.ensureUsernameFree(ctx, input.Username); err != nil {
		return nil, err
	}

	if _, err := s.courses.FindByID(ctx, input.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: course", apperror.ErrNotFound)
		}
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:     input.Name,
		Username: input.Username,
		Password: string(hashed),
		Role:     model.RoleStudent,
	}
	student := &model.Student{
		RollNo:   input.RollNo,
		CourseID: input.CourseID,
		Semester: input.Semester,
		Phone:    input.Phone,
		Address:  input.Address,
	}

	if err := s.users.CreateStudent(ctx, user, student); err != nil {
		return nil, err
	}

	student.User = user
	s.indexStudent(student)

	return student, nil
}

// UpdateStudent keys on the user id, matching the delete route.
func (s *userService) UpdateStudent(ctx context.Context, id uuid.UUID, input dto.UpdateStudentInput) (*model.Student, error) {
	student, err := s.users.FindStudentByUserID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	user, err := s.users.FindByID(ctx, student.UserID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashed)
	}
	if input.RollNo != nil {
		student.RollNo = *input.RollNo
	}
	if input.CourseID != nil {
		student.CourseID = *input.CourseID
	}
	if input.Semester != nil {
		student.Semester = *input.Semester
	}
	if input.Phone != nil {
		student.Phone = *input.Phone
	}
	if input.Address != nil {
		student.Address = *input.Address
	}

	// Avoid re-saving preloaded associations.
	user.Student = nil
	student.User = nil
	student.Course = nil

	if err := s.users.UpdateStudent(ctx, user, student); err != nil {
		return nil, err
	}

	student.User = user
	s.indexStudent(student)

	return student, nil
}

func (s *userService) CreateTeacher(ctx context.Context, input dto.CreateTeacherInput) (*model.Teacher, error) {
	if err := s.ensureUsernameFree(ctx, input.Username); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:     input.Name,
		Username: input.Username,
		Password: string(hashed),
		Role:     model.RoleTeacher,
	}
	teacher := &model.Teacher{
		CourseID: input.CourseID,
		Phone:    input.Phone,
	}

	if err := s.users.CreateTeacher(ctx, user, teacher); err != nil {
		return nil, err
	}

	teacher.User = user
	return teacher, nil
}

func (s *userService) UpdateTeacher(ctx context.Context, id uuid.UUID, input dto.UpdateTeacherInput) (*model.Teacher, error) {
	teacher, err := s.users.FindTeacherByUserID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	user, err := s.users.FindByID(ctx, teacher.UserID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashed)
	}
	if input.CourseID != nil {
		teacher.CourseID = *input.CourseID
	}
	if input.Phone != nil {
		teacher.Phone = *input.Phone
	}

	// Avoid re-saving preloaded associations.
	user.Teacher = nil
	teacher.User = nil
	teacher.Course = nil

	if err := s.users.UpdateTeacher(ctx, user, teacher); err != nil {
		return nil, err
	}

	teacher.User = user
	return teacher, nil
}

func (s *userService) CreateAdmin(ctx context.Context, input dto.CreateAdminInput) (*model.User, error) {
	if err := s.ensureUsernameFree(ctx, input.Username); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := model.RoleAdmin
	if input.Role != "" {
		role = model.Role(input.Role)
	}

	user := &model.User{
		Name:     input.Name,
		Username: input.Username,
		Password: string(hashed),
		Role:     role,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	if user.Student != nil {
		if err := s.search.RemoveStudent(user.Student.ID); err != nil {
			log.Printf("Failed to remove student from search index: %v", err)
		}
	}

	return nil
}

func (s *userService) ListStudents(ctx context.Context, filter dto.StudentFilter) ([]*model.Student, error) {
	students, err := s.users.FindStudents(ctx, filter)
	if err != nil {
		return nil, err
	}

	if filter.Search == "" || !s.search.Enabled() {
		return students, nil
	}

	matched, err := s.search.SearchStudents(filter.Search)
	if err != nil {
		// Search backend being down shouldn't break the listing.
		log.Printf("Student search failed, returning unfiltered list: %v", err)
		return students, nil
	}

	keep := make(map[uuid.UUID]bool, len(matched))
	for _, id := range matched {
		keep[id] = true
	}

	filtered := make([]*model.Student, 0, len(students))
	for _, student := range students {
		if keep[student.ID] {
			filtered = append(filtered, student)
		}
	}
	return filtered, nil
}

func (s *userService) ensureUsernameFree(ctx context.Context, username string) error {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return fmt.Errorf("%w: username already taken", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *userService) indexStudent(student *model.Student) {
	if err := s.search.IndexStudent(student); err != nil {
		log.Printf("Failed to index student %s: %v", student.ID, err)
	}
}
