package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/domain"
)

// Models enumerates every persisted type, parents before children so
// automigration creates referenced tables first.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.UserToken{},
		&domain.Course{},
		&domain.Lesson{},
		&domain.Slide{},
		&domain.ContentBlock{},
		&domain.Enrollment{},
		&domain.LessonProgress{},
	}
}

func AutoMigrateAll(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}
