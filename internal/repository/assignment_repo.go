package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	FindAll(ctx context.Context, filter dto.AssignmentFilter) ([]*model.Assignment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	CreateQuestion(ctx context.Context, question *model.Question) error
	FindQuestions(ctx context.Context, assignmentID uuid.UUID) ([]model.Question, error)

	FindSubmissions(ctx context.Context, assignmentID uuid.UUID) ([]model.Submission, error)
	FindSubmission(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error)
	UpsertSubmissions(ctx context.Context, submissions []model.Submission) error
	UpsertSubmissionFile(ctx context.Context, submission *model.Submission) error
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) FindAll(ctx context.Context, filter dto.AssignmentFilter) ([]*model.Assignment, error) {
	var assignments []*model.Assignment
	query := r.db.WithContext(ctx).Preload("Subject")

	if filter.SubjectID != "" {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.CourseID != "" || filter.Semester > 0 {
		query = query.Joins("JOIN subjects ON subjects.id = assignments.subject_id")
		if filter.CourseID != "" {
			query = query.Where("subjects.course_id = ?", filter.CourseID)
		}
		if filter.Semester > 0 {
			query = query.Where("subjects.semester = ?", filter.Semester)
		}
	}

	if err := query.Order("assignments.due_date").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	if err := r.db.WithContext(ctx).
		Preload("Subject").
		First(&assignment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Assignment{}, "id = ?", id).Error
}

func (r *assignmentRepository) CreateQuestion(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *assignmentRepository) FindQuestions(ctx context.Context, assignmentID uuid.UUID) ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *assignmentRepository) FindSubmissions(ctx context.Context, assignmentID uuid.UUID) ([]model.Submission, error) {
	var submissions []model.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *assignmentRepository) FindSubmission(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// UpsertSubmissions overwrites status on the (assignment_id, student_id)
// unique pair.
func (r *assignmentRepository) UpsertSubmissions(ctx context.Context, submissions []model.Submission) error {
	if len(submissions) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status"}),
		}).
		Create(&submissions).Error
}

// UpsertSubmissionFile records a student's uploaded file, overwriting any
// previous upload for the same assignment.
func (r *assignmentRepository) UpsertSubmissionFile(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "file_url", "submitted_at"}),
		}).
		Create(submission).Error
}
