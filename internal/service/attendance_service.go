package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
	"github.com/rizalarfiyan/siakad-backend/internal/reconcile"
	"github.com/rizalarfiyan/siakad-backend/internal/repository"
	"github.com/rizalarfiyan/siakad-backend/pkg/apperror"
)

// LiveChannel is the redis pub/sub channel carrying attendance save events.
const LiveChannel = "attendance_live"

const dateLayout = "2006-01-02"

type AttendanceService interface {
	Sheet(ctx context.Context, filter dto.AttendanceFilter) ([]dto.AttendanceRow, error)
	Save(ctx context.Context, input dto.SaveAttendanceInput, savedBy string) (int, error)
	Monthly(ctx context.Context, studentID uuid.UUID, requester Requester) ([]dto.MonthlySummary, error)
	History(ctx context.Context, studentID uuid.UUID, requester Requester) ([]model.Attendance, error)
}

// Requester identifies who is making a read so per-student endpoints can
// restrict students to their own records.
type Requester struct {
	UserID uuid.UUID
	Role   model.Role
}

type attendanceService struct {
	attendance repository.AttendanceRepository
	users      repository.UserRepository
	rdb        *redis.Client
}

func NewAttendanceService(attendance repository.AttendanceRepository, users repository.UserRepository, rdb *redis.Client) AttendanceService {
	return &attendanceService{
		attendance: attendance,
		users:      users,
		rdb:        rdb,
	}
}

// Sheet merges the course/semester roster with the day's records into one row
// per student, defaulting unrecorded students to PENDING. The row count always
// equals the roster size.
func (s *attendanceService) Sheet(ctx context.Context, filter dto.AttendanceFilter) ([]dto.AttendanceRow, error) {
	date, err := time.Parse(dateLayout, filter.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date", apperror.ErrBadRequest)
	}

	students, err := s.users.FindStudents(ctx, dto.StudentFilter{
		CourseID: filter.CourseID,
		Semester: filter.Semester,
	})
	if err != nil {
		return nil, err
	}

	roster := make([]uuid.UUID, len(students))
	byID := make(map[uuid.UUID]*model.Student, len(students))
	for i, student := range students {
		roster[i] = student.ID
		byID[student.ID] = student
	}

	records, err := s.attendance.FindByDate(ctx, roster, date)
	if err != nil {
		return nil, err
	}

	recorded := make(map[uuid.UUID]model.AttendanceStatus, len(records))
	for _, record := range records {
		recorded[record.StudentID] = record.Status
	}

	merged := reconcile.Merge(roster, recorded, model.AttendancePending)

	rows := make([]dto.AttendanceRow, len(merged))
	for i, row := range merged {
		student := byID[row.EntityID]
		rows[i] = dto.AttendanceRow{
			StudentID: row.EntityID,
			RollNo:    student.RollNo,
			Status:    row.Status,
		}
		if student.User != nil {
			rows[i].Name = student.User.Name
		}
	}
	return rows, nil
}

// Save diffs the incoming batch against the authoritative records and upserts
// only the rows that actually change. A batch that changes nothing performs
// zero writes and reports ErrNoChanges. Returns the number of rows written.
func (s *attendanceService) Save(ctx context.Context, input dto.SaveAttendanceInput, savedBy string) (int, error) {
	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid date", apperror.ErrBadRequest)
	}

	students, err := s.users.FindStudents(ctx, dto.StudentFilter{
		CourseID: input.CourseID.String(),
		Semester: input.Semester,
	})
	if err != nil {
		return 0, err
	}
	if len(students) == 0 {
		return 0, fmt.Errorf("%w: no students in scope", apperror.ErrNotFound)
	}

	roster := make([]uuid.UUID, len(students))
	for i, student := range students {
		roster[i] = student.ID
	}

	records, err := s.attendance.FindByDate(ctx, roster, date)
	if err != nil {
		return 0, err
	}
	recorded := make(map[uuid.UUID]model.AttendanceStatus, len(records))
	for _, record := range records {
		recorded[record.StudentID] = record.Status
	}

	// PENDING means "no row yet"; marking a student PENDING again is a no-op,
	// any real status on an unrecorded student is a change.
	tracker := reconcile.NewTracker(roster, recorded, model.AttendancePending)
	for _, change := range input.Records {
		tracker.SetStatus(change.StudentID, model.AttendanceStatus(change.Status))
	}

	saved := 0
	err = reconcile.Submit(ctx, tracker, func(ctx context.Context, changes []reconcile.Change[model.AttendanceStatus]) error {
		batch := make([]model.Attendance, len(changes))
		for i, change := range changes {
			batch[i] = model.Attendance{
				StudentID: change.EntityID,
				Date:      date,
				Status:    change.Status,
			}
		}
		if err := s.attendance.UpsertBatch(ctx, batch); err != nil {
			return err
		}
		saved = len(batch)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.publish(ctx, dto.LiveEvent{
		CourseID: input.CourseID,
		Semester: input.Semester,
		Date:     input.Date,
		Saved:    saved,
		SavedBy:  savedBy,
	})

	return saved, nil
}

func (s *attendanceService) publish(ctx context.Context, event dto.LiveEvent) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, LiveChannel, payload).Err(); err != nil {
		log.Printf("Failed to publish attendance event: %v", err)
	}
}

// Monthly groups the student's full history into per-month counts. The
// grouping happens here rather than in SQL; history sizes are small.
func (s *attendanceService) Monthly(ctx context.Context, studentID uuid.UUID, requester Requester) ([]dto.MonthlySummary, error) {
	records, err := s.History(ctx, studentID, requester)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]*dto.MonthlySummary)
	for _, record := range records {
		month := record.Date.Format("2006-01")
		summary, ok := byMonth[month]
		if !ok {
			summary = &dto.MonthlySummary{Month: month}
			byMonth[month] = summary
		}

		switch record.Status {
		case model.AttendancePresent:
			summary.Present++
		case model.AttendanceAbsent:
			summary.Absent++
		case model.AttendanceLate:
			summary.Late++
		}
		summary.Total++
	}

	summaries := make([]dto.MonthlySummary, 0, len(byMonth))
	for _, summary := range byMonth {
		if summary.Total > 0 {
			attended := summary.Present + summary.Late
			summary.Percent = float64(attended) / float64(summary.Total) * 100
		}
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Month < summaries[j].Month
	})
	return summaries, nil
}

// History returns the student's records newest first. Students may only read
// their own history; staff roles may read any student's.
func (s *attendanceService) History(ctx context.Context, studentID uuid.UUID, requester Requester) ([]model.Attendance, error) {
	if _, err := s.users.FindStudentByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if requester.Role == model.RoleStudent {
		own, err := s.users.FindStudentByUserID(ctx, requester.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.ErrForbidden
			}
			return nil, err
		}
		if own.ID != studentID {
			return nil, apperror.ErrForbidden
		}
	}

	return s.attendance.FindByStudent(ctx, studentID)
}
