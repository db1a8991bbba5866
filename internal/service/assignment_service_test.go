package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rizalarfiyan/siakad-backend/internal/model"
	"github.com/rizalarfiyan/siakad-backend/internal/repository"
)

// fakeFileStorage records uploads and deletes so the replace flow can be
// asserted without a storage backend.
type fakeFileStorage struct {
	nextURL string
	uploads int
	deleted []string
}

func (f *fakeFileStorage) UploadFile(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	f.uploads++
	return f.nextURL, nil
}

func (f *fakeFileStorage) DeleteFile(ctx context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func TestUploadSubmissionDeletesReplacedFile(t *testing.T) {
	db := newTestDB(t)
	student := seedStudentWithHistory(t, db)

	subject := &model.Subject{CourseID: student.CourseID, Name: "Maths", Code: "MTH101", Semester: 1}
	require.NoError(t, db.Create(subject).Error)
	assignment := &model.Assignment{
		SubjectID: subject.ID,
		Title:     "Essay",
		DueDate:   time.Now().Add(48 * time.Hour),
	}
	require.NoError(t, db.Create(assignment).Error)

	files := &fakeFileStorage{nextURL: "https://cdn.example.com/one.pdf"}
	svc := NewAssignmentService(
		repository.NewAssignmentRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewUserRepository(db),
		files,
		"submissions",
	)
	ctx := context.Background()
	file := SubmissionFile{Reader: strings.NewReader("essay"), FileName: "essay.pdf"}

	first, err := svc.UploadSubmission(ctx, assignment.ID, student.UserID, file)
	require.NoError(t, err)
	require.Equal(t, model.SubmissionSubmitted, first.Status)
	require.Empty(t, files.deleted)

	// A second upload replaces the stored URL and removes the old object.
	files.nextURL = "https://cdn.example.com/two.pdf"
	second, err := svc.UploadSubmission(ctx, assignment.ID, student.UserID, file)
	require.NoError(t, err)
	require.Equal(t, 2, files.uploads)
	require.Equal(t, []string{"https://cdn.example.com/one.pdf"}, files.deleted)
	require.Equal(t, "https://cdn.example.com/two.pdf", *second.FileURL)

	var count int64
	require.NoError(t, db.Model(&model.Submission{}).
		Where("assignment_id = ?", assignment.ID).
		Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUploadSubmissionMarksLateAfterGraceWindow(t *testing.T) {
	db := newTestDB(t)
	student := seedStudentWithHistory(t, db)

	subject := &model.Subject{CourseID: student.CourseID, Name: "Maths", Code: "MTH101", Semester: 1}
	require.NoError(t, db.Create(subject).Error)
	assignment := &model.Assignment{
		SubjectID: subject.ID,
		Title:     "Essay",
		DueDate:   time.Now().Add(-72 * time.Hour),
	}
	require.NoError(t, db.Create(assignment).Error)

	svc := NewAssignmentService(
		repository.NewAssignmentRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewUserRepository(db),
		&fakeFileStorage{nextURL: "https://cdn.example.com/late.pdf"},
		"submissions",
	)

	submission, err := svc.UploadSubmission(context.Background(), assignment.ID, student.UserID,
		SubmissionFile{Reader: strings.NewReader("essay"), FileName: "essay.pdf"})
	require.NoError(t, err)
	require.Equal(t, model.SubmissionLate, submission.Status)
}
