package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/rizalarfiyan/siakad-backend/internal/config"
	"github.com/rizalarfiyan/siakad-backend/internal/handler"
	"github.com/rizalarfiyan/siakad-backend/internal/middleware"
	"github.com/rizalarfiyan/siakad-backend/internal/model"
	"github.com/rizalarfiyan/siakad-backend/internal/repository"
	"github.com/rizalarfiyan/siakad-backend/internal/service"
	"github.com/rizalarfiyan/siakad-backend/pkg/storage"
)

// Deps carries the externally constructed dependencies. Redis, search and
// file storage may be nil; the respective features degrade gracefully.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Search service.SearchService
	Files  storage.FileStorage
	Cfg    *config.Config
}

// Migrate creates/updates the relational schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Student{},
		&model.Teacher{},
		&model.Subject{},
		&model.Attendance{},
		&model.Test{},
		&model.Mark{},
		&model.Assignment{},
		&model.Question{},
		&model.Submission{},
	)
}

// New wires repositories, services and handlers into a gin engine.
func New(deps Deps) *gin.Engine {
	userRepo := repository.NewUserRepository(deps.DB)
	courseRepo := repository.NewCourseRepository(deps.DB)
	subjectRepo := repository.NewSubjectRepository(deps.DB)
	attendanceRepo := repository.NewAttendanceRepository(deps.DB)
	testRepo := repository.NewTestRepository(deps.DB)
	assignmentRepo := repository.NewAssignmentRepository(deps.DB)

	search := deps.Search
	if search == nil {
		search = service.NewSearchService(nil)
	}

	authService := service.NewAuthService(userRepo, subjectRepo, deps.Redis, deps.Cfg)
	userService := service.NewUserService(userRepo, courseRepo, search)
	courseService := service.NewCourseService(courseRepo)
	subjectService := service.NewSubjectService(subjectRepo, courseRepo)
	attendanceService := service.NewAttendanceService(attendanceRepo, userRepo, deps.Redis)
	testService := service.NewTestService(testRepo, subjectRepo, userRepo)
	assignmentService := service.NewAssignmentService(assignmentRepo, subjectRepo, userRepo, deps.Files, deps.Cfg.CloudinaryUploadFolder)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	courseHandler := handler.NewCourseHandler(courseService, subjectService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, deps.Redis)
	testHandler := handler.NewTestHandler(testService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(deps.Cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/login", authHandler.Login)
	}

	api.Use(authMiddleware.RequireAuth())
	{
		api.GET("/auth/me", authHandler.Me)

		adminOnly := authMiddleware.RequireRole(model.RoleAdmin)
		staffOnly := authMiddleware.RequireRole(model.RoleAdmin, model.RoleTeacher)

		api.GET("/courses", courseHandler.ListCourses)
		api.GET("/courses/:id", courseHandler.GetCourse)
		api.POST("/courses", adminOnly, courseHandler.CreateCourse)
		api.PUT("/courses/:id", adminOnly, courseHandler.UpdateCourse)
		api.DELETE("/courses/:id", adminOnly, courseHandler.DeleteCourse)

		api.GET("/subjects", courseHandler.ListSubjects)
		api.POST("/subjects", adminOnly, courseHandler.CreateSubject)
		api.PUT("/subjects/:id", adminOnly, courseHandler.UpdateSubject)
		api.DELETE("/subjects/:id", adminOnly, courseHandler.DeleteSubject)

		api.GET("/tests", testHandler.ListTests)
		api.POST("/tests", staffOnly, testHandler.CreateTest)
		api.PUT("/tests", staffOnly, testHandler.SaveMarks)
		api.DELETE("/tests/:id", staffOnly, testHandler.DeleteTest)
		api.GET("/tests/:id/marks", staffOnly, testHandler.MarksSheet)

		api.GET("/assignments", assignmentHandler.ListAssignments)
		api.POST("/assignments", staffOnly, assignmentHandler.CreateAssignment)
		api.DELETE("/assignments/:id", staffOnly, assignmentHandler.DeleteAssignment)
		api.GET("/assignments/:id/questions", assignmentHandler.ListQuestions)
		api.POST("/assignments/:id/questions", staffOnly, assignmentHandler.AddQuestion)
		api.GET("/assignments/:id/submissions", staffOnly, assignmentHandler.ListSubmissions)
		api.PUT("/assignments/:id/submissions", staffOnly, assignmentHandler.SaveSubmissions)
		api.POST("/assignments/:id/submissions/upload", authMiddleware.RequireRole(model.RoleStudent), assignmentHandler.UploadSubmission)

		api.GET("/attendance", staffOnly, attendanceHandler.Sheet)
		api.POST("/attendance", staffOnly, attendanceHandler.Save)
		api.GET("/attendance/live", attendanceHandler.Live)
		api.GET("/attendance/:studentId/monthly", attendanceHandler.Monthly)
		api.GET("/attendance/:studentId/history", attendanceHandler.History)

		api.GET("/users/students", staffOnly, userHandler.ListStudents)
		api.POST("/users/student", adminOnly, userHandler.CreateStudent)
		api.PUT("/users/student/:id", adminOnly, userHandler.UpdateStudent)
		api.POST("/users/teacher", adminOnly, userHandler.CreateTeacher)
		api.PUT("/users/teacher/:id", adminOnly, userHandler.UpdateTeacher)
		api.POST("/users/admin", authMiddleware.RequireRole(model.RoleSuperAdmin), userHandler.CreateAdmin)
		api.DELETE("/users/student/:id", adminOnly, userHandler.DeleteUser)
		api.DELETE("/users/teacher/:id", adminOnly, userHandler.DeleteUser)
		api.DELETE("/users/admin/:id", authMiddleware.RequireRole(model.RoleSuperAdmin), userHandler.DeleteUser)
	}

	return router
}
