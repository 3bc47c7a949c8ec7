package app

import (
	httpH "github.com/selahstudy/academy-backend/internal/http/handlers"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

type Handlers struct {
	Auth         *httpH.AuthHandler
	Course       *httpH.CourseHandler
	Lesson       *httpH.LessonHandler
	Slide        *httpH.SlideHandler
	ContentBlock *httpH.ContentBlockHandler
	Enrollment   *httpH.EnrollmentHandler
	Progress     *httpH.ProgressHandler
	Analytics    *httpH.AnalyticsHandler
	Health       *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:         httpH.NewAuthHandler(log, s.Auth),
		Course:       httpH.NewCourseHandler(log, s.Course, s.Lesson),
		Lesson:       httpH.NewLessonHandler(log, s.Lesson, s.Slide),
		Slide:        httpH.NewSlideHandler(log, s.Slide, s.ContentBlock),
		ContentBlock: httpH.NewContentBlockHandler(log, s.ContentBlock),
		Enrollment:   httpH.NewEnrollmentHandler(log, s.Enrollment, s.Progress),
		Progress:     httpH.NewProgressHandler(log, s.Progress),
		Analytics:    httpH.NewAnalyticsHandler(log, s.Analytics),
		Health:       httpH.NewHealthHandler(),
	}
}
