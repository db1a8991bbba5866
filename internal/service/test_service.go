package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
	"github.com/rizalarfiyan/siakad-backend/internal/reconcile"
	"github.com/rizalarfiyan/siakad-backend/internal/repository"
	"github.com/rizalarfiyan/siakad-backend/pkg/apperror"
)

// noMark is the merge sentinel for students without a recorded mark.
const noMark = -1

type TestService interface {
	Create(ctx context.Context, input dto.CreateTestInput) (*model.Test, error)
	List(ctx context.Context, filter dto.TestFilter) ([]*model.Test, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarksSheet(ctx context.Context, testID uuid.UUID) ([]dto.MarkRow, error)
	SaveMarks(ctx context.Context, input dto.SaveMarksInput) (int, error)
}

type testService struct {
	tests    repository.TestRepository
	subjects repository.SubjectRepository
	users    repository.UserRepository
}

func NewTestService(tests repository.TestRepository, subjects repository.SubjectRepository, users repository.UserRepository) TestService {
	return &testService{
		tests:    tests,
		subjects: subjects,
		users:    users,
	}
}

func (s *testService) Create(ctx context.Context, input dto.CreateTestInput) (*model.Test, error) {
	if _, err := s.subjects.FindByID(ctx, input.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: subject", apperror.ErrNotFound)
		}
		return nil, err
	}

	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date", apperror.ErrBadRequest)
	}

	test := &model.Test{
		SubjectID: input.SubjectID,
		Title:     input.Title,
		MaxMarks:  input.MaxMarks,
		Date:      date,
	}
	if err := s.tests.Create(ctx, test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *testService) List(ctx context.Context, filter dto.TestFilter) ([]*model.Test, error) {
	return s.tests.FindAll(ctx, filter)
}

func (s *testService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.tests.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	return s.tests.Delete(ctx, id)
}

// MarksSheet merges the test's course/semester roster with its recorded marks;
// every student appears once, unrecorded ones with Recorded=false.
func (s *testService) MarksSheet(ctx context.Context, testID uuid.UUID) ([]dto.MarkRow, error) {
	roster, byID, err := s.rosterForTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	marks, err := s.tests.FindMarks(ctx, testID)
	if err != nil {
		return nil, err
	}
	recorded := make(map[uuid.UUID]int, len(marks))
	for _, mark := range marks {
		recorded[mark.StudentID] = mark.MarksObtained
	}

	merged := reconcile.Merge(roster, recorded, noMark)

	rows := make([]dto.MarkRow, len(merged))
	for i, row := range merged {
		student := byID[row.EntityID]
		rows[i] = dto.MarkRow{
			StudentID: row.EntityID,
			RollNo:    student.RollNo,
			Recorded:  row.Status != noMark,
		}
		if row.Status != noMark {
			rows[i].MarksObtained = row.Status
		}
		if student.User != nil {
			rows[i].Name = student.User.Name
		}
	}
	return rows, nil
}

// SaveMarks upserts only the marks that differ from what is stored. Scores
// above the test's max are accepted as-is; the client warns, the server does
// not reject.
func (s *testService) SaveMarks(ctx context.Context, input dto.SaveMarksInput) (int, error) {
	roster, _, err := s.rosterForTest(ctx, input.TestID)
	if err != nil {
		return 0, err
	}

	marks, err := s.tests.FindMarks(ctx, input.TestID)
	if err != nil {
		return 0, err
	}
	recorded := make(map[uuid.UUID]int, len(marks))
	for _, mark := range marks {
		recorded[mark.StudentID] = mark.MarksObtained
	}

	tracker := reconcile.NewTracker(roster, recorded, noMark)
	for _, change := range input.Marks {
		tracker.SetStatus(change.StudentID, change.MarksObtained)
	}

	saved := 0
	err = reconcile.Submit(ctx, tracker, func(ctx context.Context, changes []reconcile.Change[int]) error {
		batch := make([]model.Mark, len(changes))
		for i, change := range changes {
			batch[i] = model.Mark{
				TestID:        input.TestID,
				StudentID:     change.EntityID,
				MarksObtained: change.Status,
			}
		}
		if err := s.tests.UpsertMarks(ctx, batch); err != nil {
			return err
		}
		saved = len(batch)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saved, nil
}

func (s *testService) rosterForTest(ctx context.Context, testID uuid.UUID) ([]uuid.UUID, map[uuid.UUID]*model.Student, error) {
	test, err := s.tests.FindByID(ctx, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: test", apperror.ErrNotFound)
		}
		return nil, nil, err
	}

	subject := test.Subject
	if subject == nil {
		return nil, nil, apperror.ErrInternal
	}

	students, err := s.users.FindStudents(ctx, dto.StudentFilter{
		CourseID: subject.CourseID.String(),
		Semester: subject.Semester,
	})
	if err != nil {
		return nil, nil, err
	}

	roster := make([]uuid.UUID, len(students))
	byID := make(map[uuid.UUID]*model.Student, len(students))
	for i, student := range students {
		roster[i] = student.ID
		byID[student.ID] = student
	}
	return roster, byID, nil
}
