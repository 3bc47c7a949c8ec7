package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/selahstudy/academy-backend/internal/data/repos/testutil"
	"github.com/selahstudy/academy-backend/internal/domain"
)

func TestContentBlockRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewContentBlockRepo(db, testutil.Logger(t))

	teacher := testutil.SeedUser(t, ctx, tx, "blockrepo@example.com", domain.RoleTeacher)
	course := testutil.SeedCourse(t, ctx, tx, teacher.ID)
	lesson := testutil.SeedLesson(t, ctx, tx, course.ID, 1)
	slide := testutil.SeedSlide(t, ctx, tx, lesson.ID, 0)

	block := &domain.ContentBlock{
		ID:        uuid.New(),
		SlideID:   slide.ID,
		BlockType: "TEXT",
		Content:   datatypes.JSON([]byte(`{"html":"<p>hi</p>"}`)),
		Metadata:  datatypes.JSON([]byte(`{}`)),
	}
	if _, err := repo.Create(ctx, tx, []*domain.ContentBlock{block}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, err := repo.GetByID(ctx, tx, block.ID); err != nil || got == nil {
		t.Fatalf("GetByID: err=%v got=%v", err, got)
	}
	if rows, err := repo.GetBySlideID(ctx, tx, slide.ID); err != nil || len(rows) != 1 {
		t.Fatalf("GetBySlideID: err=%v len=%d", err, len(rows))
	}

	courseID, found, err := repo.ResolveCourseID(ctx, tx, block.ID)
	if err != nil || !found || courseID != course.ID {
		t.Fatalf("ResolveCourseID: err=%v found=%v courseID=%s", err, found, courseID)
	}
	if _, found, err := repo.ResolveCourseID(ctx, tx, uuid.New()); err != nil || found {
		t.Fatalf("ResolveCourseID missing block: err=%v found=%v", err, found)
	}

	resolved, err := repo.ResolveCourseIDs(ctx, tx, []uuid.UUID{block.ID, uuid.New()})
	if err != nil {
		t.Fatalf("ResolveCourseIDs: %v", err)
	}
	if len(resolved) != 1 || resolved[block.ID] != course.ID {
		t.Fatalf("ResolveCourseIDs verify: %v", resolved)
	}

	if err := repo.UpdateFields(ctx, tx, block.ID, map[string]interface{}{"block_order": 5}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	after, _ := repo.GetByID(ctx, tx, block.ID)
	if after == nil || after.BlockOrder != 5 {
		t.Fatalf("UpdateFields verify: %+v", after)
	}

	if err := repo.DeleteByLessonIDs(ctx, tx, []uuid.UUID{lesson.ID}); err != nil {
		t.Fatalf("DeleteByLessonIDs: %v", err)
	}
	if rows, err := repo.GetBySlideID(ctx, tx, slide.ID); err != nil || len(rows) != 0 {
		t.Fatalf("after DeleteByLessonIDs GetBySlideID: err=%v len=%d", err, len(rows))
	}
}
