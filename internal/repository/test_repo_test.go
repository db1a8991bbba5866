package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
)

func TestUpsertMarksOverwritesOnConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewTestRepository(db)
	ctx := context.Background()

	student := seedStudent(t, db, "m1")

	subject := &model.Subject{
		CourseID: student.CourseID,
		Name:     "Mathematics",
		Code:     "MTH-101",
		Semester: 1,
	}
	require.NoError(t, db.Create(subject).Error)

	date, _ := time.Parse("2006-01-02", "2024-03-01")
	test := &model.Test{
		SubjectID: subject.ID,
		Title:     "Unit Test 1",
		MaxMarks:  50,
		Date:      date,
	}
	require.NoError(t, repo.Create(ctx, test))

	require.NoError(t, repo.UpsertMarks(ctx, []model.Mark{
		{TestID: test.ID, StudentID: student.ID, MarksObtained: 30},
	}))
	require.NoError(t, repo.UpsertMarks(ctx, []model.Mark{
		{TestID: test.ID, StudentID: student.ID, MarksObtained: 42},
	}))

	marks, err := repo.FindMarks(ctx, test.ID)
	require.NoError(t, err)
	require.Len(t, marks, 1)
	require.Equal(t, 42, marks[0].MarksObtained)
}

func TestFindAllFiltersByCourseAndSemester(t *testing.T) {
	db := newTestDB(t)
	repo := NewTestRepository(db)
	ctx := context.Background()

	student := seedStudent(t, db, "m1")

	sem1 := &model.Subject{CourseID: student.CourseID, Name: "Mathematics", Code: "MTH-101", Semester: 1}
	sem2 := &model.Subject{CourseID: student.CourseID, Name: "Physics", Code: "PHY-201", Semester: 2}
	require.NoError(t, db.Create(sem1).Error)
	require.NoError(t, db.Create(sem2).Error)

	date, _ := time.Parse("2006-01-02", "2024-03-01")
	require.NoError(t, repo.Create(ctx, &model.Test{SubjectID: sem1.ID, Title: "T1", MaxMarks: 50, Date: date}))
	require.NoError(t, repo.Create(ctx, &model.Test{SubjectID: sem2.ID, Title: "T2", MaxMarks: 50, Date: date}))

	tests, err := repo.FindAll(ctx, dto.TestFilter{CourseID: student.CourseID.String(), Semester: 1})
	require.NoError(t, err)
	require.Len(t, tests, 1)
	require.Equal(t, "T1", tests[0].Title)
}
