package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rizalarfiyan/siakad-backend/internal/config"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		AppEnv:           "test",
		Port:             "0",
		AllowedOrigins:   "http://localhost:3000",
		JWTSecret:        "test-secret",
		JWTTTL:           time.Hour,
		LoginMaxAttempts: 5,
		LoginWindow:      time.Minute,
	}

	return &testEnv{
		router: New(Deps{DB: db, Cfg: cfg}),
		db:     db,
	}
}

func (e *testEnv) seedAdmin(t *testing.T) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	admin := &model.User{
		Name:     "Admin",
		Username: "admin",
		Password: string(hash),
		Role:     model.RoleAdmin,
	}
	require.NoError(t, e.db.Create(admin).Error)
	return admin
}

func (e *testEnv) seedClass(t *testing.T, rollNos ...string) (*model.Course, []*model.Student) {
	t.Helper()

	course := &model.Course{Name: "BCA", Duration: 6}
	require.NoError(t, e.db.Create(course).Error)

	students := make([]*model.Student, 0, len(rollNos))
	for _, rollNo := range rollNos {
		user := &model.User{
			Name:     "Student " + rollNo,
			Username: "student-" + rollNo,
			Password: "x",
			Role:     model.RoleStudent,
		}
		require.NoError(t, e.db.Create(user).Error)

		student := &model.Student{
			UserID:   user.ID,
			RollNo:   rollNo,
			CourseID: course.ID,
			Semester: 1,
		}
		require.NoError(t, e.db.Create(student).Error)
		students = append(students, student)
	}

	return course, students
}

func (e *testEnv) login(t *testing.T, username, password, role string) string {
	t.Helper()

	body := e.request(t, "POST", "/api/auth/login", "", gin.H{
		"username": username,
		"password": password,
		"role":     role,
	}, http.StatusOK)

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "login response has no data object")
	token, ok := data["token"].(string)
	require.True(t, ok, "login response has no token")
	require.NotEmpty(t, token)
	return token
}

// request performs an HTTP call against the router, asserts the status and
// returns the decoded envelope.
func (e *testEnv) request(t *testing.T, method, path, token string, payload interface{}, wantStatus int) map[string]interface{} {
	t.Helper()

	var reqBody *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, wantStatus, rec.Code, "unexpected status, body: %s", rec.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLoginReturnsToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)

	token := env.login(t, "admin", "admin123", "ADMIN")
	require.NotEmpty(t, token)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)

	body := env.request(t, "POST", "/api/auth/login", "", gin.H{
		"username": "admin",
		"password": "wrong-password",
		"role":     "ADMIN",
	}, http.StatusUnauthorized)
	require.Equal(t, false, body["success"])
}

func TestLoginRejectsRoleMismatch(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)

	env.request(t, "POST", "/api/auth/login", "", gin.H{
		"username": "admin",
		"password": "admin123",
		"role":     "STUDENT",
	}, http.StatusUnauthorized)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	env.request(t, "GET", "/api/courses", "", nil, http.StatusUnauthorized)
	env.request(t, "GET", "/api/auth/me", "", nil, http.StatusUnauthorized)
}

func TestCourseCRUDRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	env.seedClass(t, "s1")

	studentToken := ""
	{
		// Students authenticate with their own credentials; give s1 a real hash.
		hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
		require.NoError(t, err)
		require.NoError(t, env.db.Model(&model.User{}).
			Where("username = ?", "student-s1").
			Update("password", string(hash)).Error)
		studentToken = env.login(t, "student-s1", "password1", "STUDENT")
	}
	adminToken := env.login(t, "admin", "admin123", "ADMIN")

	// Student can list but not create.
	env.request(t, "GET", "/api/courses", studentToken, nil, http.StatusOK)
	env.request(t, "POST", "/api/courses", studentToken, gin.H{
		"name": "MCA", "duration": 4,
	}, http.StatusForbidden)

	body := env.request(t, "POST", "/api/courses", adminToken, gin.H{
		"name": "MCA", "duration": 4,
	}, http.StatusCreated)
	require.Equal(t, true, body["success"])

	listBody := env.request(t, "GET", "/api/courses", adminToken, nil, http.StatusOK)
	courses, ok := listBody["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, courses, 2) // BCA from the seed + MCA
}

func TestAttendanceSheetMergesRosterWithPending(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	course, students := env.seedClass(t, "r1", "r2", "r3")
	token := env.login(t, "admin", "admin123", "ADMIN")

	// One recorded row; the other two students must still appear as PENDING.
	require.NoError(t, env.db.Create(&model.Attendance{
		StudentID: students[0].ID,
		Date:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:    model.AttendancePresent,
	}).Error)

	path := fmt.Sprintf("/api/attendance?courseId=%s&semester=1&date=2024-01-10", course.ID)
	body := env.request(t, "GET", path, token, nil, http.StatusOK)

	rows, ok := body["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, rows, 3)

	statuses := map[string]string{}
	for _, raw := range rows {
		row := raw.(map[string]interface{})
		statuses[row["rollNo"].(string)] = row["status"].(string)
	}
	require.Equal(t, "PRESENT", statuses["r1"])
	require.Equal(t, "PENDING", statuses["r2"])
	require.Equal(t, "PENDING", statuses["r3"])
}

func TestAttendanceSaveRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	course, students := env.seedClass(t, "r1", "r2", "r3")
	token := env.login(t, "admin", "admin123", "ADMIN")

	records := func(statuses ...string) []gin.H {
		out := make([]gin.H, len(statuses))
		for i, status := range statuses {
			out[i] = gin.H{"studentId": students[i].ID, "status": status}
		}
		return out
	}
	savePayload := func(recs []gin.H) gin.H {
		return gin.H{
			"courseId": course.ID,
			"semester": 1,
			"date":     "2024-01-10",
			"records":  recs,
		}
	}

	// First save writes all three rows.
	body := env.request(t, "POST", "/api/attendance", token, savePayload(records("PRESENT", "ABSENT", "PRESENT")), http.StatusOK)
	data := body["data"].(map[string]interface{})
	require.Equal(t, float64(3), data["saved"])

	var count int64
	require.NoError(t, env.db.Model(&model.Attendance{}).Count(&count).Error)
	require.Equal(t, int64(3), count)

	// Replaying the identical batch is a no-op: nothing is dirty.
	body = env.request(t, "POST", "/api/attendance", token, savePayload(records("PRESENT", "ABSENT", "PRESENT")), http.StatusOK)
	data = body["data"].(map[string]interface{})
	require.Equal(t, float64(0), data["saved"])
	require.Equal(t, "no changes to save", body["message"])

	// Changing one status writes exactly one row and the total stays at three.
	body = env.request(t, "POST", "/api/attendance", token, savePayload(records("PRESENT", "LATE", "PRESENT")), http.StatusOK)
	data = body["data"].(map[string]interface{})
	require.Equal(t, float64(1), data["saved"])

	require.NoError(t, env.db.Model(&model.Attendance{}).Count(&count).Error)
	require.Equal(t, int64(3), count)

	var changed model.Attendance
	require.NoError(t, env.db.First(&changed, "student_id = ?", students[1].ID).Error)
	require.Equal(t, model.AttendanceLate, changed.Status)
}

func TestAttendanceSaveIgnoresUnknownStudents(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	course, students := env.seedClass(t, "r1")
	token := env.login(t, "admin", "admin123", "ADMIN")

	body := env.request(t, "POST", "/api/attendance", token, gin.H{
		"courseId": course.ID,
		"semester": 1,
		"date":     "2024-01-10",
		"records": []gin.H{
			{"studentId": students[0].ID, "status": "PRESENT"},
			{"studentId": uuid.New(), "status": "PRESENT"}, // not in this roster
		},
	}, http.StatusOK)

	data := body["data"].(map[string]interface{})
	require.Equal(t, float64(1), data["saved"])

	var count int64
	require.NoError(t, env.db.Model(&model.Attendance{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestAttendanceHistoryIsOwnerOrStaffOnly(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	_, students := env.seedClass(t, "r1", "r2")

	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&model.User{}).
		Where("username = ?", "student-r1").
		Update("password", string(hash)).Error)
	studentToken := env.login(t, "student-r1", "password1", "STUDENT")
	adminToken := env.login(t, "admin", "admin123", "ADMIN")

	ownHistory := fmt.Sprintf("/api/attendance/%s/history", students[0].ID)
	otherHistory := fmt.Sprintf("/api/attendance/%s/history", students[1].ID)
	otherMonthly := fmt.Sprintf("/api/attendance/%s/monthly", students[1].ID)

	env.request(t, "GET", ownHistory, studentToken, nil, http.StatusOK)
	env.request(t, "GET", otherHistory, studentToken, nil, http.StatusForbidden)
	env.request(t, "GET", otherMonthly, studentToken, nil, http.StatusForbidden)
	env.request(t, "GET", otherHistory, adminToken, nil, http.StatusOK)
}

func TestMarksSheetAndSave(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	course, students := env.seedClass(t, "r1", "r2")
	token := env.login(t, "admin", "admin123", "ADMIN")

	subject := &model.Subject{CourseID: course.ID, Name: "Maths", Code: "MTH101", Semester: 1}
	require.NoError(t, env.db.Create(subject).Error)

	body := env.request(t, "POST", "/api/tests", token, gin.H{
		"subjectId": subject.ID,
		"title":     "Unit Test 1",
		"maxMarks":  50,
		"date":      "2024-02-01",
	}, http.StatusCreated)
	testData := body["data"].(map[string]interface{})
	testID := testData["id"].(string)

	// Fresh sheet: both students present, nothing recorded.
	body = env.request(t, "GET", "/api/tests/"+testID+"/marks", token, nil, http.StatusOK)
	rows := body["data"].([]interface{})
	require.Len(t, rows, 2)
	for _, raw := range rows {
		row := raw.(map[string]interface{})
		require.Equal(t, false, row["recorded"])
	}

	body = env.request(t, "PUT", "/api/tests", token, gin.H{
		"testId": testID,
		"marks": []gin.H{
			{"studentId": students[0].ID, "marksObtained": 42},
		},
	}, http.StatusOK)
	data := body["data"].(map[string]interface{})
	require.Equal(t, float64(1), data["saved"])

	body = env.request(t, "GET", "/api/tests/"+testID+"/marks", token, nil, http.StatusOK)
	rows = body["data"].([]interface{})
	marks := map[string]map[string]interface{}{}
	for _, raw := range rows {
		row := raw.(map[string]interface{})
		marks[row["rollNo"].(string)] = row
	}
	require.Equal(t, true, marks["r1"]["recorded"])
	require.Equal(t, float64(42), marks["r1"]["marksObtained"])
	require.Equal(t, false, marks["r2"]["recorded"])
}
