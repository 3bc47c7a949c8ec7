package app

import (
	"github.com/gin-gonic/gin"

	apphttp "github.com/selahstudy/academy-backend/internal/http"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

const serviceName = "academy-backend"

func wireRouter(log *logger.Logger, cfg Config, h Handlers, mw Middleware) *gin.Engine {
	log.Info("Wiring router...")
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:         log,
		ServiceName: serviceName,
		CORSOrigins: cfg.CORSOrigins,

		AuthMiddleware: mw.Auth,

		AuthHandler:         h.Auth,
		CourseHandler:       h.Course,
		LessonHandler:       h.Lesson,
		SlideHandler:        h.Slide,
		ContentBlockHandler: h.ContentBlock,
		EnrollmentHandler:   h.Enrollment,
		ProgressHandler:     h.Progress,
		AnalyticsHandler:    h.Analytics,
		HealthHandler:       h.Health,
	})
}
