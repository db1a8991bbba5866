package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
)

type TestRepository interface {
	Create(ctx context.Context, test *model.Test) error
	FindAll(ctx context.Context, filter dto.TestFilter) ([]*model.Test, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Test, error)
	Delete(ctx context.Context, id uuid.UUID) error

	FindMarks(ctx context.Context, testID uuid.UUID) ([]model.Mark, error)
	UpsertMarks(ctx context.Context, marks []model.Mark) error
}

type testRepository struct {
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) Create(ctx context.Context, test *model.Test) error {
	return r.db.WithContext(ctx).Create(test).Error
}

func (r *testRepository) FindAll(ctx context.Context, filter dto.TestFilter) ([]*model.Test, error) {
	var tests []*model.Test
	query := r.db.WithContext(ctx).Preload("Subject")

	if filter.SubjectID != "" {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.CourseID != "" || filter.Semester > 0 {
		query = query.Joins("JOIN subjects ON subjects.id = tests.subject_id")
		if filter.CourseID != "" {
			query = query.Where("subjects.course_id = ?", filter.CourseID)
		}
		if filter.Semester > 0 {
			query = query.Where("subjects.semester = ?", filter.Semester)
		}
	}

	if err := query.Order("tests.date desc").Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

func (r *testRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	var test model.Test
	if err := r.db.WithContext(ctx).
		Preload("Subject").
		First(&test, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Test{}, "id = ?", id).Error
}

func (r *testRepository) FindMarks(ctx context.Context, testID uuid.UUID) ([]model.Mark, error) {
	var marks []model.Mark
	if err := r.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Find(&marks).Error; err != nil {
		return nil, err
	}
	return marks, nil
}

// UpsertMarks overwrites marks_obtained on the (test_id, student_id) unique
// pair so a re-saved sheet never duplicates rows.
func (r *testRepository) UpsertMarks(ctx context.Context, marks []model.Mark) error {
	if len(marks) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "test_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"marks_obtained"}),
		}).
		Create(&marks).Error
}
