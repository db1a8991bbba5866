package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
	"github.com/rizalarfiyan/siakad-backend/internal/reconcile"
	"github.com/rizalarfiyan/siakad-backend/internal/repository"
	"github.com/rizalarfiyan/siakad-backend/pkg/apperror"
	"github.com/rizalarfiyan/siakad-backend/pkg/storage"
)

// SubmissionFile is an uploaded submission document.
type SubmissionFile struct {
	Reader   io.Reader
	FileName string
}

type AssignmentService interface {
	Create(ctx context.Context, input dto.CreateAssignmentInput) (*model.Assignment, error)
	List(ctx context.Context, filter dto.AssignmentFilter) ([]*model.Assignment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddQuestion(ctx context.Context, assignmentID uuid.UUID, input dto.CreateQuestionInput) (*model.Question, error)
	Questions(ctx context.Context, assignmentID uuid.UUID) ([]model.Question, error)

	Submissions(ctx context.Context, assignmentID uuid.UUID) ([]dto.SubmissionRow, error)
	SaveSubmissions(ctx context.Context, assignmentID uuid.UUID, input dto.SaveSubmissionsInput) (int, error)
	UploadSubmission(ctx context.Context, assignmentID, userID uuid.UUID, file SubmissionFile) (*model.Submission, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	subjects    repository.SubjectRepository
	users       repository.UserRepository
	files       storage.FileStorage
	folder      string
	sanitizer   *bluemonday.Policy
}

func NewAssignmentService(
	assignments repository.AssignmentRepository,
	subjects repository.SubjectRepository,
	users repository.UserRepository,
	files storage.FileStorage,
	folder string,
) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		subjects:    subjects,
		users:       users,
		files:       files,
		folder:      folder,
		// Descriptions come from the dashboard's rich-text editor.
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func (s *assignmentService) Create(ctx context.Context, input dto.CreateAssignmentInput) (*model.Assignment, error) {
	if _, err := s.subjects.FindByID(ctx, input.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: subject", apperror.ErrNotFound)
		}
		return nil, err
	}

	dueDate, err := time.Parse(dateLayout, input.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid due date", apperror.ErrBadRequest)
	}

	assignment := &model.Assignment{
		SubjectID:   input.SubjectID,
		Title:       input.Title,
		Description: s.sanitizer.Sanitize(input.Description),
		DueDate:     dueDate,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) List(ctx context.Context, filter dto.AssignmentFilter) ([]*model.Assignment, error) {
	return s.assignments.FindAll(ctx, filter)
}

func (s *assignmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.assignments.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	return s.assignments.Delete(ctx, id)
}

func (s *assignmentService) AddQuestion(ctx context.Context, assignmentID uuid.UUID, input dto.CreateQuestionInput) (*model.Question, error) {
	if _, err := s.get(ctx, assignmentID); err != nil {
		return nil, err
	}

	question := &model.Question{
		AssignmentID: assignmentID,
		Text:         s.sanitizer.Sanitize(input.Text),
		Marks:        input.Marks,
	}
	if err := s.assignments.CreateQuestion(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *assignmentService) Questions(ctx context.Context, assignmentID uuid.UUID) ([]model.Question, error) {
	if _, err := s.get(ctx, assignmentID); err != nil {
		return nil, err
	}
	return s.assignments.FindQuestions(ctx, assignmentID)
}

// Submissions merges the assignment's course/semester roster with the
// recorded submissions; students without one show as PENDING.
func (s *assignmentService) Submissions(ctx context.Context, assignmentID uuid.UUID) ([]dto.SubmissionRow, error) {
	roster, byID, err := s.rosterForAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	submissions, err := s.assignments.FindSubmissions(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	recorded := make(map[uuid.UUID]model.SubmissionStatus, len(submissions))
	details := make(map[uuid.UUID]model.Submission, len(submissions))
	for _, submission := range submissions {
		recorded[submission.StudentID] = submission.Status
		details[submission.StudentID] = submission
	}

	merged := reconcile.Merge(roster, recorded, model.SubmissionPending)

	rows := make([]dto.SubmissionRow, len(merged))
	for i, row := range merged {
		student := byID[row.EntityID]
		rows[i] = dto.SubmissionRow{
			StudentID: row.EntityID,
			RollNo:    student.RollNo,
			Status:    row.Status,
		}
		if student.User != nil {
			rows[i].Name = student.User.Name
		}
		if detail, ok := details[row.EntityID]; ok {
			rows[i].FileURL = detail.FileURL
			if detail.SubmittedAt != nil {
				submittedAt := detail.SubmittedAt.Format(time.RFC3339)
				rows[i].SubmittedAt = &submittedAt
			}
		}
	}
	return rows, nil
}

// SaveSubmissions upserts only the status changes relative to stored rows.
func (s *assignmentService) SaveSubmissions(ctx context.Context, assignmentID uuid.UUID, input dto.SaveSubmissionsInput) (int, error) {
	roster, _, err := s.rosterForAssignment(ctx, assignmentID)
	if err != nil {
		return 0, err
	}

	submissions, err := s.assignments.FindSubmissions(ctx, assignmentID)
	if err != nil {
		return 0, err
	}
	recorded := make(map[uuid.UUID]model.SubmissionStatus, len(submissions))
	for _, submission := range submissions {
		recorded[submission.StudentID] = submission.Status
	}

	tracker := reconcile.NewTracker(roster, recorded, model.SubmissionPending)
	for _, change := range input.Submissions {
		tracker.SetStatus(change.StudentID, model.SubmissionStatus(change.Status))
	}

	saved := 0
	err = reconcile.Submit(ctx, tracker, func(ctx context.Context, changes []reconcile.Change[model.SubmissionStatus]) error {
		batch := make([]model.Submission, len(changes))
		for i, change := range changes {
			batch[i] = model.Submission{
				AssignmentID: assignmentID,
				StudentID:    change.EntityID,
				Status:       change.Status,
			}
		}
		if err := s.assignments.UpsertSubmissions(ctx, batch); err != nil {
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

// UploadSubmission stores the authenticated student's file and records the
// submission, marking it LATE when the due date has passed.
func (s *assignmentService) UploadSubmission(ctx context.Context, assignmentID, userID uuid.UUID, file SubmissionFile) (*model.Submission, error) {
	assignment, err := s.get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	student, err := s.users.FindStudentByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: student", apperror.ErrNotFound)
		}
		return nil, err
	}

	if s.files == nil {
		return nil, apperror.New(0, "file storage is not configured", apperror.ErrInternal)
	}

	var previousURL string
	if previous, err := s.assignments.FindSubmission(ctx, assignmentID, student.ID); err == nil && previous.FileURL != nil {
		previousURL = *previous.FileURL
	}

	fileURL, err := s.files.UploadFile(ctx, file.Reader, s.folder, file.FileName)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	status := model.SubmissionSubmitted
	if now.After(assignment.DueDate.Add(24 * time.Hour)) {
		status = model.SubmissionLate
	}

	submission := &model.Submission{
		AssignmentID: assignmentID,
		StudentID:    student.ID,
		SubmittedAt:  &now,
		FileURL:      &fileURL,
		Status:       status,
	}
	if err := s.assignments.UpsertSubmissionFile(ctx, submission); err != nil {
		return nil, err
	}

	// The upsert replaced the stored URL; the superseded upload is unreachable
	// now, so a failed delete only leaves an orphan behind.
	if previousURL != "" && previousURL != fileURL {
		_ = s.files.DeleteFile(ctx, previousURL)
	}

	return submission, nil
}

func (s *assignmentService) get(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) rosterForAssignment(ctx context.Context, assignmentID uuid.UUID) ([]uuid.UUID, map[uuid.UUID]*model.Student, error) {
	assignment, err := s.get(ctx, assignmentID)
	if err != nil {
		return nil, nil, err
	}

	subject := assignment.Subject
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
