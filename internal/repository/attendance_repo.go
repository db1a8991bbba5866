package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rizalarfiyan/siakad-backend/internal/model"
)

type AttendanceRepository interface {
	FindByDate(ctx context.Context, studentIDs []uuid.UUID, date time.Time) ([]model.Attendance, error)
	UpsertBatch(ctx context.Context, records []model.Attendance) error
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Attendance, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) FindByDate(ctx context.Context, studentIDs []uuid.UUID, date time.Time) ([]model.Attendance, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}

	var records []model.Attendance
	if err := r.db.WithContext(ctx).
		Where("student_id IN ? AND date = ?", studentIDs, date).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// UpsertBatch inserts the rows and overwrites status on the (student_id, date)
// unique pair, so replaying the same batch is idempotent and concurrent saves
// for one date serialize to a single row per student.
func (r *attendanceRepository) UpsertBatch(ctx context.Context, records []model.Attendance) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"status"}),
		}).
		Create(&records).Error
}

func (r *attendanceRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Attendance, error) {
	var records []model.Attendance
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date desc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
