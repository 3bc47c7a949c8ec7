package ordering_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/data/repos/testutil"
	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/ordering"
	"github.com/selahstudy/academy-backend/internal/pkg/apperr"
)

func slideOrders(t *testing.T, gdb *gorm.DB, lessonID uuid.UUID) []int {
	t.Helper()
	var orders []int
	err := gdb.Table("slides").
		Where("lesson_id = ?", lessonID).
		Order("slide_order ASC").
		Pluck("slide_order", &orders).Error
	if err != nil {
		t.Fatalf("load orders: %v", err)
	}
	return orders
}

func assertOrders(t *testing.T, got []int, want ...int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("order count mismatch: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("orders mismatch at %d: got=%v want=%v", i, got, want)
		}
	}
}

func seedLessonWithSlides(t *testing.T, gdb *gorm.DB, n int) (uuid.UUID, []*domain.Slide) {
	t.Helper()
	ctx := context.Background()
	teacher := testutil.SeedUser(t, ctx, gdb, uuid.NewString()+"@example.com", domain.RoleTeacher)
	course := testutil.SeedCourse(t, ctx, gdb, teacher.ID)
	lesson := testutil.SeedLesson(t, ctx, gdb, course.ID, 1)
	slides := make([]*domain.Slide, 0, n)
	for i := 0; i < n; i++ {
		slides = append(slides, testutil.SeedSlide(t, ctx, gdb, lesson.ID, i))
	}
	return lesson.ID, slides
}

func TestNextPosition(t *testing.T) {
	gdb := testutil.DB(t)
	m := ordering.NewManager(gdb, testutil.Logger(t))
	ctx := context.Background()

	lessonID, _ := seedLessonWithSlides(t, gdb, 0)
	next, err := m.NextPosition(ctx, nil, ordering.Slides, lessonID)
	if err != nil {
		t.Fatalf("next position: %v", err)
	}
	if next != 0 {
		t.Fatalf("empty set should append at 0, got %d", next)
	}

	other, _ := seedLessonWithSlides(t, gdb, 3)
	next, err = m.NextPosition(ctx, nil, ordering.Slides, other)
	if err != nil {
		t.Fatalf("next position: %v", err)
	}
	if next != 3 {
		t.Fatalf("want append slot 3, got %d", next)
	}
}

func TestOpenSlotShiftsLaterSiblings(t *testing.T) {
	gdb := testutil.DB(t)
	m := ordering.NewManager(gdb, testutil.Logger(t))
	ctx := context.Background()

	lessonID, slides := seedLessonWithSlides(t, gdb, 3)
	if err := m.OpenSlot(ctx, nil, ordering.Slides, lessonID, 1); err != nil {
		t.Fatalf("open slot: %v", err)
	}

	var got domain.Slide
	if err := gdb.First(&got, "id = ?", slides[0].ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.SlideOrder != 0 {
		t.Fatalf("slide before the slot moved: got %d", got.SlideOrder)
	}
	var shifted domain.Slide
	if err := gdb.First(&shifted, "id = ?", slides[2].ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if shifted.SlideOrder != 3 {
		t.Fatalf("slide after the slot did not shift: got %d", shifted.SlideOrder)
	}
}

func TestCloseGapRestoresContiguity(t *testing.T) {
	gdb := testutil.DB(t)
	m := ordering.NewManager(gdb, testutil.Logger(t))
	ctx := context.Background()

	lessonID, slides := seedLessonWithSlides(t, gdb, 4)
	if err := gdb.Delete(&domain.Slide{}, "id = ?", slides[1].ID).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.CloseGap(ctx, nil, ordering.Slides, lessonID, 1); err != nil {
		t.Fatalf("close gap: %v", err)
	}
	assertOrders(t, slideOrders(t, gdb, lessonID), 0, 1, 2)
}

func TestInsertPositionClampsPastEnd(t *testing.T) {
	gdb := testutil.DB(t)
	m := ordering.NewManager(gdb, testutil.Logger(t))
	ctx := context.Background()

	lessonID, _ := seedLessonWithSlides(t, gdb, 2)

	pos, shift, err := m.InsertPosition(ctx, nil, ordering.Slides, lessonID, testutil.PtrInt(99))
	if err != nil {
		t.Fatalf("insert position: %v", err)
	}
	if pos != 2 || shift {
		t.Fatalf("past-end target should clamp to append: pos=%d shift=%v", pos, shift)
	}

	pos, shift, err = m.InsertPosition(ctx, nil, ordering.Slides, lessonID, testutil.PtrInt(1))
	if err != nil {
		t.Fatalf("insert position: %v", err)
	}
	if pos != 1 || !shift {
		t.Fatalf("interior target should require a shift: pos=%d shift=%v", pos, shift)
	}

	if _, _, err := m.InsertPosition(ctx, nil, ordering.Slides, lessonID, testutil.PtrInt(-1)); !apperr.IsInvalid(err) {
		t.Fatalf("negative position should be invalid, got %v", err)
	}
}

func TestRenumberAppliesPermutation(t *testing.T) {
	gdb := testutil.DB(t)
	m := ordering.NewManager(gdb, testutil.Logger(t))
	ctx := context.Background()

	lessonID, slides := seedLessonWithSlides(t, gdb, 3)
	assignment := map[uuid.UUID]int{
		slides[0].ID: 2,
		slides[1].ID: 0,
		slides[2].ID: 1,
	}
	if err := m.Renumber(ctx, nil, ordering.Slides, lessonID, assignment); err != nil {
		t.Fatalf("renumber: %v", err)
	}

	var got domain.Slide
	if err := gdb.First(&got, "id = ?", slides[1].ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.SlideOrder != 0 {
		t.Fatalf("want order 0, got %d", got.SlideOrder)
	}
	assertOrders(t, slideOrders(t, gdb, lessonID), 0, 1, 2)
}

func TestRenumberRejectsForeignMember(t *testing.T) {
	gdb := testutil.DB(t)
	m := ordering.NewManager(gdb, testutil.Logger(t))
	ctx := context.Background()

	lessonID, slides := seedLessonWithSlides(t, gdb, 2)
	_, foreign := seedLessonWithSlides(t, gdb, 1)

	err := m.Renumber(ctx, nil, ordering.Slides, lessonID, map[uuid.UUID]int{
		slides[0].ID:  0,
		foreign[0].ID: 1,
	})
	if !apperr.IsNotFound(err) {
		t.Fatalf("foreign member should be not found, got %v", err)
	}
	assertOrders(t, slideOrders(t, gdb, lessonID), 0, 1)
}

func TestRenumberRejectsIncompleteOrDuplicate(t *testing.T) {
	gdb := testutil.DB(t)
	m := ordering.NewManager(gdb, testutil.Logger(t))
	ctx := context.Background()

	lessonID, slides := seedLessonWithSlides(t, gdb, 3)

	err := m.Renumber(ctx, nil, ordering.Slides, lessonID, map[uuid.UUID]int{
		slides[0].ID: 0,
		slides[1].ID: 1,
	})
	if !apperr.IsInvalid(err) {
		t.Fatalf("partial assignment should be invalid, got %v", err)
	}

	err = m.Renumber(ctx, nil, ordering.Slides, lessonID, map[uuid.UUID]int{
		slides[0].ID: 0,
		slides[1].ID: 0,
		slides[2].ID: 2,
	})
	if !apperr.IsInvalid(err) {
		t.Fatalf("duplicate order should be invalid, got %v", err)
	}

	err = m.Renumber(ctx, nil, ordering.Slides, lessonID, map[uuid.UUID]int{
		slides[0].ID: 0,
		slides[1].ID: 1,
		slides[2].ID: 3,
	})
	if !apperr.IsInvalid(err) {
		t.Fatalf("out-of-range order should be invalid, got %v", err)
	}
}

func TestMoveRejectsSameParent(t *testing.T) {
	gdb := testutil.DB(t)
	m := ordering.NewManager(gdb, testutil.Logger(t))
	ctx := context.Background()

	lessonID, slides := seedLessonWithSlides(t, gdb, 2)
	err := m.Move(ctx, nil, ordering.Slides, slides[0].ID, lessonID, lessonID, nil)
	if !apperr.IsInvalid(err) {
		t.Fatalf("same-parent move should be invalid, got %v", err)
	}
}

func TestMoveAcrossParents(t *testing.T) {
	gdb := testutil.DB(t)
	m := ordering.NewManager(gdb, testutil.Logger(t))
	ctx := context.Background()

	srcLesson, srcSlides := seedLessonWithSlides(t, gdb, 3)
	dstLesson, _ := seedLessonWithSlides(t, gdb, 2)

	if err := m.Move(ctx, nil, ordering.Slides, srcSlides[1].ID, srcLesson, dstLesson, testutil.PtrInt(0)); err != nil {
		t.Fatalf("move: %v", err)
	}

	assertOrders(t, slideOrders(t, gdb, srcLesson), 0, 1)
	assertOrders(t, slideOrders(t, gdb, dstLesson), 0, 1, 2)

	var moved domain.Slide
	if err := gdb.First(&moved, "id = ?", srcSlides[1].ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if moved.LessonID != dstLesson || moved.SlideOrder != 0 {
		t.Fatalf("item not at destination head: lesson=%s order=%d", moved.LessonID, moved.SlideOrder)
	}
}

func TestMoveRejectsItemOutsideSource(t *testing.T) {
	gdb := testutil.DB(t)
	m := ordering.NewManager(gdb, testutil.Logger(t))
	ctx := context.Background()

	srcLesson, _ := seedLessonWithSlides(t, gdb, 1)
	dstLesson, dstSlides := seedLessonWithSlides(t, gdb, 1)

	err := m.Move(ctx, nil, ordering.Slides, dstSlides[0].ID, srcLesson, dstLesson, nil)
	if !apperr.IsNotFound(err) {
		t.Fatalf("foreign item should be not found, got %v", err)
	}
}
