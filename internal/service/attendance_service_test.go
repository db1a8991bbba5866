package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rizalarfiyan/siakad-backend/internal/dto"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
	"github.com/rizalarfiyan/siakad-backend/internal/repository"
	"github.com/rizalarfiyan/siakad-backend/pkg/apperror"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Student{},
		&model.Teacher{},
		&model.Subject{},
		&model.Attendance{},
		&model.Assignment{},
		&model.Submission{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func seedStudentWithHistory(t *testing.T, db *gorm.DB) *model.Student {
	t.Helper()

	course := &model.Course{Name: "BCA", Duration: 6}
	require.NoError(t, db.Create(course).Error)

	user := &model.User{Name: "Student", Username: "student", Password: "x", Role: model.RoleStudent}
	require.NoError(t, db.Create(user).Error)

	student := &model.Student{UserID: user.ID, RollNo: "r1", CourseID: course.ID, Semester: 1}
	require.NoError(t, db.Create(student).Error)

	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	records := []model.Attendance{
		{StudentID: student.ID, Date: day(2024, 1, 8), Status: model.AttendancePresent},
		{StudentID: student.ID, Date: day(2024, 1, 9), Status: model.AttendancePresent},
		{StudentID: student.ID, Date: day(2024, 1, 10), Status: model.AttendanceLate},
		{StudentID: student.ID, Date: day(2024, 1, 11), Status: model.AttendanceAbsent},
		{StudentID: student.ID, Date: day(2024, 2, 5), Status: model.AttendanceAbsent},
		{StudentID: student.ID, Date: day(2024, 2, 6), Status: model.AttendanceAbsent},
	}
	for i := range records {
		require.NoError(t, db.Create(&records[i]).Error)
	}

	return student
}

func newAttendanceService(db *gorm.DB) AttendanceService {
	return NewAttendanceService(
		repository.NewAttendanceRepository(db),
		repository.NewUserRepository(db),
		nil,
	)
}

func requesterFor(userID uuid.UUID, role model.Role) Requester {
	return Requester{UserID: userID, Role: role}
}

func staffRequester() Requester {
	return Requester{UserID: uuid.New(), Role: model.RoleAdmin}
}

func TestMonthlyGroupsAndComputesPercent(t *testing.T) {
	db := newTestDB(t)
	svc := newAttendanceService(db)
	student := seedStudentWithHistory(t, db)

	summaries, err := svc.Monthly(context.Background(), student.ID, staffRequester())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	jan := summaries[0]
	require.Equal(t, "2024-01", jan.Month)
	require.Equal(t, 2, jan.Present)
	require.Equal(t, 1, jan.Late)
	require.Equal(t, 1, jan.Absent)
	require.Equal(t, 4, jan.Total)
	require.InDelta(t, 75.0, jan.Percent, 0.001) // present and late both count as attended

	feb := summaries[1]
	require.Equal(t, "2024-02", feb.Month)
	require.Equal(t, 2, feb.Absent)
	require.Equal(t, 2, feb.Total)
	require.InDelta(t, 0.0, feb.Percent, 0.001)
}

func TestMonthlyUnknownStudentReturnsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newAttendanceService(db)

	_, err := svc.Monthly(context.Background(), uuid.New(), staffRequester())
	require.Error(t, err)
}

func TestHistoryRestrictsStudentsToOwnRecords(t *testing.T) {
	db := newTestDB(t)
	svc := newAttendanceService(db)
	student := seedStudentWithHistory(t, db)

	otherUser := &model.User{Name: "Other", Username: "other", Password: "x", Role: model.RoleStudent}
	require.NoError(t, db.Create(otherUser).Error)
	other := &model.Student{UserID: otherUser.ID, RollNo: "r2", CourseID: student.CourseID, Semester: 1}
	require.NoError(t, db.Create(other).Error)

	ctx := context.Background()

	// A student reads their own history.
	records, err := svc.History(ctx, student.ID, requesterFor(student.UserID, model.RoleStudent))
	require.NoError(t, err)
	require.NotEmpty(t, records)

	// Another student's records are off limits.
	_, err = svc.History(ctx, student.ID, requesterFor(otherUser.ID, model.RoleStudent))
	require.True(t, errors.Is(err, apperror.ErrForbidden))

	// Staff can read anyone's.
	_, err = svc.History(ctx, student.ID, requesterFor(uuid.New(), model.RoleTeacher))
	require.NoError(t, err)

	_, err = svc.Monthly(ctx, student.ID, requesterFor(otherUser.ID, model.RoleStudent))
	require.True(t, errors.Is(err, apperror.ErrForbidden))
}

func TestSheetDefaultsUnrecordedToPending(t *testing.T) {
	db := newTestDB(t)
	svc := newAttendanceService(db)
	student := seedStudentWithHistory(t, db)

	rows, err := svc.Sheet(context.Background(), dto.AttendanceFilter{
		CourseID: student.CourseID.String(),
		Semester: 1,
		Date:     "2024-03-01", // no records on this date
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, model.AttendancePending, rows[0].Status)

	rows, err = svc.Sheet(context.Background(), dto.AttendanceFilter{
		CourseID: student.CourseID.String(),
		Semester: 1,
		Date:     "2024-01-10",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, model.AttendanceLate, rows[0].Status)
}
