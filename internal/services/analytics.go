package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/data/repos"
	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/platform/cache"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

const (
	overviewCacheKey = "analytics:overview"
	overviewCacheTTL = 60 * time.Second
)

// Overview is the admin dashboard aggregate. Read-only; numbers may lag by up
// to the cache TTL.
type Overview struct {
	CoursesByStatus     map[string]int64 `json:"courses_by_status"`
	EnrollmentsByStatus map[string]int64 `json:"enrollments_by_status"`
	TotalEnrollments    int64            `json:"total_enrollments"`
	CompletionRate      float64          `json:"completion_rate"`
	GeneratedAt         time.Time        `json:"generated_at"`
}

type AnalyticsService interface {
	GetOverview(ctx context.Context) (*Overview, error)
}

type analyticsService struct {
	db             *gorm.DB
	log            *logger.Logger
	cache          cache.Cache
	courseRepo     repos.CourseRepo
	enrollmentRepo repos.EnrollmentRepo
}

func NewAnalyticsService(
	db *gorm.DB,
	baseLog *logger.Logger,
	c cache.Cache,
	courseRepo repos.CourseRepo,
	enrollmentRepo repos.EnrollmentRepo,
) AnalyticsService {
	return &analyticsService{
		db:             db,
		log:            baseLog.With("service", "AnalyticsService"),
		cache:          c,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (s *analyticsService) GetOverview(ctx context.Context) (*Overview, error) {
	if raw, err := s.cache.Get(ctx, overviewCacheKey); err == nil {
		var cached Overview
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		s.log.Warn("discarding malformed cached overview")
	}

	overview, err := s.buildOverview(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(overview); err == nil {
		if err := s.cache.Set(ctx, overviewCacheKey, raw, overviewCacheTTL); err != nil {
			s.log.Warn("cache overview failed", "error", err)
		}
	}
	return overview, nil
}

func (s *analyticsService) buildOverview(ctx context.Context) (*Overview, error) {
	courses, err := s.courseRepo.CountByStatus(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("count courses: %w", err)
	}
	enrollments, err := s.enrollmentRepo.CountByStatus(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}

	var total int64
	for _, n := range enrollments {
		total += n
	}
	rate := 0.0
	if total > 0 {
		rate = float64(enrollments[domain.EnrollmentStatusCompleted]) / float64(total) * 100
	}

	return &Overview{
		CoursesByStatus:     courses,
		EnrollmentsByStatus: enrollments,
		TotalEnrollments:    total,
		CompletionRate:      rate,
		GeneratedAt:         time.Now().UTC(),
	}, nil
}
