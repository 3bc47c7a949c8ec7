package http

import (
	"github.com/gin-gonic/gin"

	"github.com/selahstudy/academy-backend/internal/domain"
	httpH "github.com/selahstudy/academy-backend/internal/http/handlers"
	httpMW "github.com/selahstudy/academy-backend/internal/http/middleware"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler         *httpH.AuthHandler
	CourseHandler       *httpH.CourseHandler
	LessonHandler       *httpH.LessonHandler
	SlideHandler        *httpH.SlideHandler
	ContentBlockHandler *httpH.ContentBlockHandler
	EnrollmentHandler   *httpH.EnrollmentHandler
	ProgressHandler     *httpH.ProgressHandler
	AnalyticsHandler    *httpH.AnalyticsHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.Tracing(cfg.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
		if cfg.CourseHandler != nil {
			api.GET("/catalog/courses", cfg.CourseHandler.ListPublished)
		}
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Authoring (teacher-owned content tree)
		teacher := protected.Group("/")
		if cfg.AuthMiddleware != nil {
			teacher.Use(cfg.AuthMiddleware.RequireRole(domain.RoleTeacher, domain.RoleAdmin))
		}
		if cfg.CourseHandler != nil {
			teacher.POST("/courses", cfg.CourseHandler.Create)
			teacher.GET("/courses", cfg.CourseHandler.ListMine)
			teacher.PATCH("/courses/:id", cfg.CourseHandler.Update)
			teacher.DELETE("/courses/:id", cfg.CourseHandler.Delete)
			teacher.POST("/courses/:id/publish", cfg.CourseHandler.Publish)
			teacher.POST("/courses/:id/unpublish", cfg.CourseHandler.Unpublish)
			teacher.POST("/courses/:id/archive", cfg.CourseHandler.Archive)
		}
		if cfg.LessonHandler != nil {
			teacher.POST("/courses/:id/lessons", cfg.LessonHandler.Create)
			teacher.PATCH("/lessons/:id", cfg.LessonHandler.Update)
			teacher.DELETE("/lessons/:id", cfg.LessonHandler.Delete)
			teacher.POST("/lessons/:id/slides", cfg.LessonHandler.CreateSlide)
			teacher.PUT("/lessons/:id/slides/reorder", cfg.LessonHandler.ReorderSlides)
		}
		if cfg.SlideHandler != nil {
			teacher.PATCH("/slides/:id", cfg.SlideHandler.Update)
			teacher.DELETE("/slides/:id", cfg.SlideHandler.Delete)
			teacher.POST("/slides/:id/duplicate", cfg.SlideHandler.Duplicate)
			teacher.POST("/slides/:id/move", cfg.SlideHandler.Move)
			teacher.POST("/slides/:id/blocks", cfg.SlideHandler.CreateBlock)
			teacher.PUT("/slides/:id/blocks/reorder", cfg.SlideHandler.ReorderBlocks)
		}
		if cfg.ContentBlockHandler != nil {
			teacher.PATCH("/blocks/:id", cfg.ContentBlockHandler.Update)
			teacher.DELETE("/blocks/:id", cfg.ContentBlockHandler.Delete)
			teacher.POST("/blocks/:id/duplicate", cfg.ContentBlockHandler.Duplicate)
			teacher.POST("/blocks/bulk-delete", cfg.ContentBlockHandler.BulkDelete)
		}

		// Reads open to any authenticated user
		if cfg.CourseHandler != nil {
			protected.GET("/courses/:id", cfg.CourseHandler.Get)
			protected.GET("/courses/:id/lessons", cfg.CourseHandler.ListLessons)
		}
		if cfg.LessonHandler != nil {
			protected.GET("/lessons/:id", cfg.LessonHandler.Get)
			protected.GET("/lessons/:id/slides", cfg.LessonHandler.ListSlides)
		}
		if cfg.SlideHandler != nil {
			protected.GET("/slides/:id", cfg.SlideHandler.Get)
			protected.GET("/slides/:id/blocks", cfg.SlideHandler.ListBlocks)
		}
		if cfg.ContentBlockHandler != nil {
			protected.GET("/blocks/:id", cfg.ContentBlockHandler.Get)
		}

		// Learning (student)
		if cfg.EnrollmentHandler != nil {
			protected.POST("/enrollments", cfg.EnrollmentHandler.Enroll)
			protected.GET("/enrollments", cfg.EnrollmentHandler.ListMine)
			protected.GET("/enrollments/:id", cfg.EnrollmentHandler.Get)
			protected.POST("/enrollments/:id/drop", cfg.EnrollmentHandler.Drop)
			protected.GET("/enrollments/:id/progress", cfg.EnrollmentHandler.ListProgress)
		}
		if cfg.ProgressHandler != nil {
			protected.POST("/lessons/:id/view", cfg.ProgressHandler.RecordSlideView)
			protected.POST("/lessons/:id/complete", cfg.ProgressHandler.CompleteLesson)
		}

		// Admin
		admin := protected.Group("/admin")
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireRole(domain.RoleAdmin))
		}
		if cfg.AnalyticsHandler != nil {
			admin.GET("/analytics/overview", cfg.AnalyticsHandler.Overview)
		}
	}

	return r
}
