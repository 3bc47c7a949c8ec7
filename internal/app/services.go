package app

import (
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/content"
	"github.com/selahstudy/academy-backend/internal/ordering"
	"github.com/selahstudy/academy-backend/internal/platform/cache"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
	"github.com/selahstudy/academy-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Course       services.CourseService
	Lesson       services.LessonService
	Slide        services.SlideService
	ContentBlock services.ContentBlockService
	Enrollment   services.EnrollmentService
	Progress     services.ProgressService
	Analytics    services.AnalyticsService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c cache.Cache) Services {
	log.Info("Wiring services...")

	ownership := services.NewOwnershipResolver(db, log, r.Course, r.Lesson, r.Slide, r.ContentBlock)
	manager := ordering.NewManager(db, log)
	registry := content.NewRegistry()
	sanitizer := content.NewSanitizer()

	progress := services.NewProgressService(db, log, r.Lesson, r.Enrollment, r.LessonProgress)

	return Services{
		Auth:   services.NewAuthService(db, log, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Course: services.NewCourseService(db, log, ownership, r.Course, r.Lesson, r.Slide, r.ContentBlock, r.Enrollment),
		Lesson: services.NewLessonService(db, log, ownership, r.Lesson, r.Slide, r.ContentBlock, r.LessonProgress, progress),
		Slide:  services.NewSlideService(db, log, ownership, manager, r.Slide, r.ContentBlock, r.Lesson),
		ContentBlock: services.NewContentBlockService(
			db, log, ownership, manager, registry, sanitizer, r.ContentBlock,
		),
		Enrollment: services.NewEnrollmentService(db, log, r.Course, r.Lesson, r.Enrollment),
		Progress:   progress,
		Analytics:  services.NewAnalyticsService(db, log, c, r.Course, r.Enrollment),
	}
}
