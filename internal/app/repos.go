package app

import (
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/data/repos"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

type Repos struct {
	User           repos.UserRepo
	UserToken      repos.UserTokenRepo
	Course         repos.CourseRepo
	Lesson         repos.LessonRepo
	Slide          repos.SlideRepo
	ContentBlock   repos.ContentBlockRepo
	Enrollment     repos.EnrollmentRepo
	LessonProgress repos.LessonProgressRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:           repos.NewUserRepo(db, log),
		UserToken:      repos.NewUserTokenRepo(db, log),
		Course:         repos.NewCourseRepo(db, log),
		Lesson:         repos.NewLessonRepo(db, log),
		Slide:          repos.NewSlideRepo(db, log),
		ContentBlock:   repos.NewContentBlockRepo(db, log),
		Enrollment:     repos.NewEnrollmentRepo(db, log),
		LessonProgress: repos.NewLessonProgressRepo(db, log),
	}
}
