package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-ledger-api/internal/middleware"
	"github.com/noah-isme/campus-ledger-api/internal/models"
)

// Handlers bundles every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Grades        *GradeHandler
	Enrollments   *EnrollmentHandler
	Announcements *AnnouncementHandler
	Catalog       *CatalogHandler
	Assignments   *AssignmentHandler
	Attendance    *AttendanceHandler
	Notifications *NotificationHandler
	Dashboard     *DashboardHandler
	Export        *ExportHandler
}

// RouteDeps carries the cross-cutting collaborators of the routes.
type RouteDeps struct {
	Tokens middleware.TokenValidator
	Audit  middleware.AuditRecorder
	Logger *zap.Logger
}

// Register mounts the API routes on r. Capability checks here only reject
// roles early; ownership is enforced by the services.
func Register(r gin.IRouter, h Handlers, deps RouteDeps) {
	auth := r.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	secured := r.Group("")
	secured.Use(middleware.JWT(deps.Tokens), middleware.WithResponseMeta())

	secured.GET("/auth/me", h.Auth.Me)
	secured.POST("/auth/logout", h.Auth.Logout)
	secured.POST("/auth/change-password", h.Auth.ChangePassword)

	users := secured.Group("/users", middleware.RequireCapability(models.CapRegisterUsers))
	users.POST("", h.Users.Register)
	users.GET("", h.Users.List)
	users.GET("/:id", h.Users.Get)
	users.PATCH("/:id/status", h.Users.SetStatus)

	catalogAudit := func(resource string) gin.HandlerFunc {
		return middleware.Audit(deps.Audit, deps.Logger, models.AuditActionCatalogChange, resource)
	}
	manageCatalog := middleware.RequireCapability(models.CapManageCatalog)
	secured.GET("/departments", h.Catalog.ListDepartments)
	secured.POST("/departments", manageCatalog, catalogAudit("departments"), h.Catalog.CreateDepartment)
	secured.PUT("/departments/:id", manageCatalog, catalogAudit("departments"), h.Catalog.UpdateDepartment)
	secured.DELETE("/departments/:id", manageCatalog, catalogAudit("departments"), h.Catalog.DeleteDepartment)
	secured.GET("/courses", h.Catalog.ListCourses)
	secured.GET("/courses/:id", h.Catalog.GetCourse)
	secured.POST("/courses", manageCatalog, catalogAudit("courses"), h.Catalog.CreateCourse)
	secured.PUT("/courses/:id", manageCatalog, catalogAudit("courses"), h.Catalog.UpdateCourse)

	secured.GET("/assignments", h.Assignments.List)
	secured.POST("/assignments", middleware.RequireCapability(models.CapManageAssignments), h.Assignments.Create)

	secured.GET("/grades", middleware.RequireCapability(models.CapViewGrades), h.Grades.List)
	secured.POST("/grades", middleware.RequireCapability(models.CapRecordGrade), h.Grades.Record)

	students := secured.Group("/students/:id")
	students.GET("/report", h.Grades.Report)
	students.GET("/gpa", h.Grades.GPA)
	students.GET("/attendance", h.Attendance.Summary)
	students.GET("/transcript", middleware.RequireCapability(models.CapExportTranscript), h.Export.Transcript)

	secured.GET("/enrollments", h.Enrollments.List)
	secured.GET("/enrollments/eligible", h.Enrollments.Eligible)
	secured.POST("/enrollments", middleware.RequireCapability(models.CapEnroll), h.Enrollments.Create)
	secured.DELETE("/enrollments/:id", middleware.RequireCapability(models.CapManageEnrollments), h.Enrollments.Deactivate)

	secured.GET("/attendance", h.Attendance.List)
	secured.POST("/attendance", middleware.RequireCapability(models.CapMarkAttendance), h.Attendance.Mark)

	secured.GET("/announcements", h.Announcements.List)
	secured.POST("/announcements", middleware.RequireCapability(models.CapPublishAnnouncement), h.Announcements.Create)
	secured.DELETE("/announcements/:id", h.Announcements.Deactivate)

	secured.GET("/notifications", h.Notifications.List)
	secured.POST("/notifications/:id/read", h.Notifications.MarkRead)

	secured.GET("/dashboard", h.Dashboard.Get)
}
