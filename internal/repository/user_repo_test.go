package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
)

func TestCreateStudentIsTransactional(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	course := &model.Course{Name: "BSc CS", Duration: 6}
	require.NoError(t, db.Create(course).Error)

	existing := seedStudent(t, db, "r-taken")

	user := &model.User{
		Name:     "New Student",
		Username: "newstudent",
		Password: "x",
		Role:     model.RoleStudent,
	}
	student := &model.Student{
		RollNo:   existing.RollNo, // violates the unique roll_no index
		CourseID: course.ID,
		Semester: 1,
	}

	err := repo.CreateStudent(ctx, user, student)
	require.Error(t, err)

	// The user insert must have been rolled back with the student's.
	var count int64
	require.NoError(t, db.Model(&model.User{}).Where("username = ?", "newstudent").Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestFindStudentsFiltersByCourseAndSemester(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	s1 := seedStudent(t, db, "a1")
	seedStudent(t, db, "a2") // different course (seedStudent creates one per call)

	students, err := repo.FindStudents(ctx, dto.StudentFilter{
		CourseID: s1.CourseID.String(),
		Semester: 1,
	})
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, s1.ID, students[0].ID)
	require.NotNil(t, students[0].User)
	require.Equal(t, s1.User.Name, students[0].User.Name)
}

func TestDeleteUserCascadesToStudent(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	student := seedStudent(t, db, "c1")

	require.NoError(t, repo.Delete(ctx, student.UserID))

	var count int64
	require.NoError(t, db.Model(&model.Student{}).Where("id = ?", student.ID).Count(&count).Error)
	require.Equal(t, int64(0), count)
}
