package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
	"github.com/rizalarfiyan/siakad-backend/internal/repository"
	"github.com/rizalarfiyan/siakad-backend/pkg/apperror"
)

func TestUpdateStudentKeysOnUserID(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(
		repository.NewUserRepository(db),
		repository.NewCourseRepository(db),
		NewSearchService(nil),
	)
	student := seedStudentWithHistory(t, db)
	ctx := context.Background()

	name := "Renamed Student"
	phone := "0712345678"
	updated, err := svc.UpdateStudent(ctx, student.UserID, dto.UpdateStudentInput{
		Name:  &name,
		Phone: &phone,
	})
	require.NoError(t, err)
	require.Equal(t, "0712345678", updated.Phone)
	require.NotNil(t, updated.User)
	require.Equal(t, "Renamed Student", updated.User.Name)

	var persisted model.User
	require.NoError(t, db.First(&persisted, "id = ?", student.UserID).Error)
	require.Equal(t, "Renamed Student", persisted.Name)

	// The student row id is not a valid key for this route.
	_, err = svc.UpdateStudent(ctx, student.ID, dto.UpdateStudentInput{Name: &name})
	require.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUpdateStudentDoesNotClobberUnrelatedFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(
		repository.NewUserRepository(db),
		repository.NewCourseRepository(db),
		NewSearchService(nil),
	)
	student := seedStudentWithHistory(t, db)

	phone := "0700000000"
	_, err := svc.UpdateStudent(context.Background(), student.UserID, dto.UpdateStudentInput{Phone: &phone})
	require.NoError(t, err)

	var persisted model.Student
	require.NoError(t, db.First(&persisted, "id = ?", student.ID).Error)
	require.Equal(t, student.RollNo, persisted.RollNo)
	require.Equal(t, student.CourseID, persisted.CourseID)
	require.Equal(t, "0700000000", persisted.Phone)
}
