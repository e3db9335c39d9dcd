package app

import (
	"coursetrack_backend/docs"
	"coursetrack_backend/internal/config"
	"coursetrack_backend/internal/middleware"
	"coursetrack_backend/internal/model"
	"coursetrack_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerParentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerStudentRoutes(group *gin.RouterGroup, c *controllers) {
	courses := group.Group("/courses/:courseId")
	courses.Use(middleware.RoleMiddleware(model.Student))
	{
		courses.POST("/enroll", c.enrollment.Enroll)
		courses.PUT("/rating", c.enrollment.Rate)
		courses.POST("/lectures/:lectureId/view", c.progress.RecordView)
		courses.GET("/lectures", c.progress.GetLectureStates)
		courses.GET("/progress", c.progress.GetSummary)
		courses.POST("/progress/reset", c.progress.Reset)
	}

	group.GET("/dashboard/student", middleware.RoleMiddleware(model.Student), c.dashboard.Student)
}

func (a *App) registerParentRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/dashboard/parent/:studentId", middleware.RoleMiddleware(model.Parent), c.dashboard.Parent)
}

func (a *App) registerTeacherRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/dashboard/instructor", middleware.RoleMiddleware(model.Teacher), c.dashboard.Instructor)

	analytics := group.Group("/analytics")
	analytics.Use(middleware.RoleMiddleware(model.Teacher))
	{
		analytics.GET("/courses/:courseId/stats", c.analytics.CourseStats)
		analytics.GET("/courses/:courseId/enrollments/recent", c.analytics.CourseRecentEnrollments)
		analytics.POST("/courses/:courseId/report", c.analytics.ExportReport)
		analytics.GET("/instructors/:instructorId/stats", c.analytics.InstructorStats)
		analytics.GET("/instructors/:instructorId/enrollments/recent", c.analytics.InstructorRecentEnrollments)
	}
}

func (a *App) registerAdminRoutes(group *gin.RouterGroup, c *controllers) {
	admin := group.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/overview", c.dashboard.AdminOverview)
	}
}
