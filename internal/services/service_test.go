package services_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/content"
	"github.com/selahstudy/academy-backend/internal/data/repos"
	"github.com/selahstudy/academy-backend/internal/data/repos/testutil"
	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/ordering"
	"github.com/selahstudy/academy-backend/internal/pkg/apperr"
	"github.com/selahstudy/academy-backend/internal/services"
)

type env struct {
	db *gorm.DB

	courses     services.CourseService
	lessons     services.LessonService
	slides      services.SlideService
	blocks      services.ContentBlockService
	enrollments services.EnrollmentService
	progress    services.ProgressService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)

	courseRepo := repos.NewCourseRepo(gdb, log)
	lessonRepo := repos.NewLessonRepo(gdb, log)
	slideRepo := repos.NewSlideRepo(gdb, log)
	blockRepo := repos.NewContentBlockRepo(gdb, log)
	enrollmentRepo := repos.NewEnrollmentRepo(gdb, log)
	progressRepo := repos.NewLessonProgressRepo(gdb, log)

	ownership := services.NewOwnershipResolver(gdb, log, courseRepo, lessonRepo, slideRepo, blockRepo)
	manager := ordering.NewManager(gdb, log)

	progress := services.NewProgressService(gdb, log, lessonRepo, enrollmentRepo, progressRepo)

	return &env{
		db:          gdb,
		courses:     services.NewCourseService(gdb, log, ownership, courseRepo, lessonRepo, slideRepo, blockRepo, enrollmentRepo),
		lessons:     services.NewLessonService(gdb, log, ownership, lessonRepo, slideRepo, blockRepo, progressRepo, progress),
		slides:      services.NewSlideService(gdb, log, ownership, manager, slideRepo, blockRepo, lessonRepo),
		blocks:      services.NewContentBlockService(gdb, log, ownership, manager, content.NewRegistry(), content.NewSanitizer(), blockRepo),
		enrollments: services.NewEnrollmentService(gdb, log, courseRepo, lessonRepo, enrollmentRepo),
		progress:    progress,
	}
}

func (e *env) seedTeacher(t *testing.T) *domain.User {
	t.Helper()
	return testutil.SeedUser(t, context.Background(), e.db, uuid.NewString()+"@example.com", domain.RoleTeacher)
}

func (e *env) seedStudent(t *testing.T) *domain.User {
	t.Helper()
	return testutil.SeedUser(t, context.Background(), e.db, uuid.NewString()+"@example.com", domain.RoleStudent)
}

func (e *env) publish(t *testing.T, courseID uuid.UUID) {
	t.Helper()
	err := e.db.Table("courses").Where("id = ?", courseID).
		UpdateColumn("status", domain.CourseStatusPublished).Error
	if err != nil {
		t.Fatalf("publish course: %v", err)
	}
}

func TestOwnershipChainForbidsOtherTeacher(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner := e.seedTeacher(t)
	intruder := e.seedTeacher(t)

	course := testutil.SeedCourse(t, ctx, e.db, owner.ID)
	lesson := testutil.SeedLesson(t, ctx, e.db, course.ID, 1)
	slide := testutil.SeedSlide(t, ctx, e.db, lesson.ID, 0)
	block := testutil.SeedContentBlock(t, ctx, e.db, slide.ID, 0)

	if _, err := e.courses.Update(ctx, intruder.ID, course.ID, services.UpdateCourseInput{}); !apperr.IsForbidden(err) {
		t.Fatalf("course update by non-owner should be forbidden, got %v", err)
	}
	if err := e.lessons.Delete(ctx, intruder.ID, lesson.ID); !apperr.IsForbidden(err) {
		t.Fatalf("lesson delete by non-owner should be forbidden, got %v", err)
	}
	if _, err := e.slides.Update(ctx, intruder.ID, slide.ID, services.UpdateSlideInput{}); !apperr.IsForbidden(err) {
		t.Fatalf("slide update by non-owner should be forbidden, got %v", err)
	}
	if err := e.blocks.Delete(ctx, intruder.ID, block.ID); !apperr.IsForbidden(err) {
		t.Fatalf("block delete by non-owner should be forbidden, got %v", err)
	}

	if _, err := e.slides.Update(ctx, owner.ID, uuid.New(), services.UpdateSlideInput{}); !apperr.IsNotFound(err) {
		t.Fatalf("missing slide should be not found, got %v", err)
	}
}

func TestPublishRequiresLessons(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.seedTeacher(t)
	course := testutil.SeedCourse(t, ctx, e.db, teacher.ID)

	if _, err := e.courses.Publish(ctx, teacher.ID, course.ID); !apperr.IsInvalid(err) {
		t.Fatalf("publishing a lessonless course should be invalid, got %v", err)
	}

	testutil.SeedLesson(t, ctx, e.db, course.ID, 1)
	published, err := e.courses.Publish(ctx, teacher.ID, course.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Status != domain.CourseStatusPublished || published.PublishedAt == nil {
		t.Fatalf("publish did not stamp status/published_at: %+v", published)
	}

	draft, err := e.courses.Unpublish(ctx, teacher.ID, course.ID)
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if draft.Status != domain.CourseStatusDraft || draft.PublishedAt != nil {
		t.Fatalf("unpublish did not clear status/published_at: %+v", draft)
	}
}

func TestDeleteCourseBlockedByActiveEnrollment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.seedTeacher(t)
	student := e.seedStudent(t)
	course := testutil.SeedCourse(t, ctx, e.db, teacher.ID)
	testutil.SeedLesson(t, ctx, e.db, course.ID, 1)
	testutil.SeedEnrollment(t, ctx, e.db, student.ID, course.ID, domain.EnrollmentStatusActive)

	err := e.courses.Delete(ctx, teacher.ID, course.ID)
	if !apperr.IsInvalid(err) {
		t.Fatalf("delete with active enrollment should be invalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "1 active enrollment") {
		t.Fatalf("error should name the count, got %q", err.Error())
	}

	if err := e.db.Table("enrollments").Where("course_id = ?", course.ID).
		UpdateColumn("status", domain.EnrollmentStatusDropped).Error; err != nil {
		t.Fatalf("drop enrollment: %v", err)
	}
	if err := e.courses.Delete(ctx, teacher.ID, course.ID); err != nil {
		t.Fatalf("delete after drop: %v", err)
	}
	if _, err := e.courses.Get(ctx, course.ID); !apperr.IsNotFound(err) {
		t.Fatalf("course should be gone, got %v", err)
	}
}

func TestLessonDeleteBlockedByProgress(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.seedTeacher(t)
	student := e.seedStudent(t)
	course := testutil.SeedCourse(t, ctx, e.db, teacher.ID)
	lesson := testutil.SeedLesson(t, ctx, e.db, course.ID, 1)
	enrollment := testutil.SeedEnrollment(t, ctx, e.db, student.ID, course.ID, domain.EnrollmentStatusActive)
	testutil.SeedLessonProgress(t, ctx, e.db, enrollment.ID, lesson.ID, domain.ProgressStatusInProgress)

	if err := e.lessons.Delete(ctx, teacher.ID, lesson.ID); !apperr.IsInvalid(err) {
		t.Fatalf("delete with progress rows should be invalid, got %v", err)
	}
}

func TestSlideDuplicateSuffixesAndClonesBlocks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.seedTeacher(t)
	course := testutil.SeedCourse(t, ctx, e.db, teacher.ID)
	lesson := testutil.SeedLesson(t, ctx, e.db, course.ID, 1)
	slide := testutil.SeedSlide(t, ctx, e.db, lesson.ID, 0)
	testutil.SeedContentBlock(t, ctx, e.db, slide.ID, 0)
	testutil.SeedContentBlock(t, ctx, e.db, slide.ID, 1)

	clone, err := e.slides.Duplicate(ctx, teacher.ID, slide.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if clone.TitleEn != "slide (Copy)" || clone.TitleFr != "diapositive (Copie)" {
		t.Fatalf("locale suffixes missing: en=%q fr=%q", clone.TitleEn, clone.TitleFr)
	}
	if clone.SlideOrder != 1 {
		t.Fatalf("clone should append, got order %d", clone.SlideOrder)
	}

	blocks, err := e.blocks.ListForSlide(ctx, clone.ID)
	if err != nil {
		t.Fatalf("list clone blocks: %v", err)
	}
	if len(blocks) != 2 || blocks[0].BlockOrder != 0 || blocks[1].BlockOrder != 1 {
		t.Fatalf("blocks not cloned in order: %+v", blocks)
	}
}

func TestSlideMoveAcrossLessonsRenumbersBothSides(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.seedTeacher(t)
	course := testutil.SeedCourse(t, ctx, e.db, teacher.ID)
	src := testutil.SeedLesson(t, ctx, e.db, course.ID, 1)
	dst := testutil.SeedLesson(t, ctx, e.db, course.ID, 2)
	a := testutil.SeedSlide(t, ctx, e.db, src.ID, 0)
	b := testutil.SeedSlide(t, ctx, e.db, src.ID, 1)
	testutil.SeedSlide(t, ctx, e.db, dst.ID, 0)

	moved, err := e.slides.Move(ctx, teacher.ID, a.ID, dst.ID, nil)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.LessonID != dst.ID || moved.SlideOrder != 1 {
		t.Fatalf("moved slide should append to destination: %+v", moved)
	}

	var remaining domain.Slide
	if err := e.db.First(&remaining, "id = ?", b.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if remaining.SlideOrder != 0 {
		t.Fatalf("source gap not closed: order=%d", remaining.SlideOrder)
	}

	if _, err := e.slides.Move(ctx, teacher.ID, moved.ID, dst.ID, nil); !apperr.IsInvalid(err) {
		t.Fatalf("same-lesson move should be invalid, got %v", err)
	}
}

func TestContentBlockCreateSanitizesBeforeValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.seedTeacher(t)
	course := testutil.SeedCourse(t, ctx, e.db, teacher.ID)
	lesson := testutil.SeedLesson(t, ctx, e.db, course.ID, 1)
	slide := testutil.SeedSlide(t, ctx, e.db, lesson.ID, 0)

	_, err := e.blocks.Create(ctx, teacher.ID, slide.ID, services.CreateBlockInput{
		BlockType: "TEXT",
		Content:   json.RawMessage(`{"html":"<script>alert(1)</script>"}`),
	})
	if !apperr.IsInvalid(err) {
		t.Fatalf("script-only html should strip to empty and fail, got %v", err)
	}
	if fields := apperr.FieldsOf(err); len(fields) != 1 || fields[0].Field != "html" {
		t.Fatalf("want a field error on html, got %v", fields)
	}

	block, err := e.blocks.Create(ctx, teacher.ID, slide.ID, services.CreateBlockInput{
		BlockType: "TEXT",
		Content:   json.RawMessage(`{"html":"<p onclick=\"x()\">ok</p><script>bad</script>"}`),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var stored map[string]string
	if err := json.Unmarshal(block.Content, &stored); err != nil {
		t.Fatalf("unmarshal stored content: %v", err)
	}
	if strings.Contains(stored["html"], "script") || strings.Contains(stored["html"], "onclick") {
		t.Fatalf("stored content not sanitized: %q", stored["html"])
	}
	if !strings.Contains(stored["html"], "<p>ok</p>") {
		t.Fatalf("allowed markup lost: %q", stored["html"])
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(block.Metadata, &meta); err != nil {
		t.Fatalf("unmarshal metadata: %v", err)
	}
	if len(meta) != 0 {
		t.Fatalf("TEXT default metadata should be empty, got %v", meta)
	}
}

func TestContentBlockUpdateKeepsType(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.seedTeacher(t)
	course := testutil.SeedCourse(t, ctx, e.db, teacher.ID)
	lesson := testutil.SeedLesson(t, ctx, e.db, course.ID, 1)
	slide := testutil.SeedSlide(t, ctx, e.db, lesson.ID, 0)
	block := testutil.SeedContentBlock(t, ctx, e.db, slide.ID, 0)

	// A heading payload has no "html", so it must fail TEXT validation.
	_, err := e.blocks.Update(ctx, teacher.ID, block.ID, services.UpdateBlockInput{
		Content: json.RawMessage(`{"text":"Heading","level":1}`),
	})
	if !apperr.IsInvalid(err) {
		t.Fatalf("payload for a different type should be invalid, got %v", err)
	}

	updated, err := e.blocks.Update(ctx, teacher.ID, block.ID, services.UpdateBlockInput{
		Content: json.RawMessage(`{"html":"<p>new</p>"}`),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.BlockType != "TEXT" {
		t.Fatalf("block type changed: %s", updated.BlockType)
	}
}

func TestBulkDeleteCompactsEachSlide(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.seedTeacher(t)
	course := testutil.SeedCourse(t, ctx, e.db, teacher.ID)
	lesson := testutil.SeedLesson(t, ctx, e.db, course.ID, 1)
	s1 := testutil.SeedSlide(t, ctx, e.db, lesson.ID, 0)
	s2 := testutil.SeedSlide(t, ctx, e.db, lesson.ID, 1)

	a0 := testutil.SeedContentBlock(t, ctx, e.db, s1.ID, 0)
	testutil.SeedContentBlock(t, ctx, e.db, s1.ID, 1)
	a2 := testutil.SeedContentBlock(t, ctx, e.db, s1.ID, 2)
	b0 := testutil.SeedContentBlock(t, ctx, e.db, s2.ID, 0)
	testutil.SeedContentBlock(t, ctx, e.db, s2.ID, 1)

	err := e.blocks.BulkDelete(ctx, teacher.ID, []uuid.UUID{a0.ID, a2.ID, b0.ID})
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}

	for _, slideID := range []uuid.UUID{s1.ID, s2.ID} {
		remaining, err := e.blocks.ListForSlide(ctx, slideID)
		if err != nil {
			t.Fatalf("list blocks: %v", err)
		}
		if len(remaining) != 1 || remaining[0].BlockOrder != 0 {
			t.Fatalf("slide %s not compacted: %+v", slideID, remaining)
		}
	}

	err = e.blocks.BulkDelete(ctx, teacher.ID, []uuid.UUID{uuid.New()})
	if !apperr.IsNotFound(err) {
		t.Fatalf("unknown id should be not found, got %v", err)
	}
}

func TestEnrollGuardsAndReactivation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.seedTeacher(t)
	student := e.seedStudent(t)
	course := testutil.SeedCourse(t, ctx, e.db, teacher.ID)
	testutil.SeedLesson(t, ctx, e.db, course.ID, 1)
	testutil.SeedLesson(t, ctx, e.db, course.ID, 2)

	if _, err := e.enrollments.Enroll(ctx, student.ID, course.ID); !apperr.IsInvalid(err) {
		t.Fatalf("enrolling in a draft course should be invalid, got %v", err)
	}

	e.publish(t, course.ID)
	enrollment, err := e.enrollments.Enroll(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if enrollment.Status != domain.EnrollmentStatusActive || enrollment.TotalLessons != 2 {
		t.Fatalf("unexpected enrollment: %+v", enrollment)
	}

	if _, err := e.enrollments.Enroll(ctx, student.ID, course.ID); !apperr.IsConflict(err) {
		t.Fatalf("double enroll should conflict, got %v", err)
	}

	dropped, err := e.enrollments.Drop(ctx, student.ID, enrollment.ID)
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if dropped.Status != domain.EnrollmentStatusDropped {
		t.Fatalf("drop did not stick: %+v", dropped)
	}

	reactivated, err := e.enrollments.Enroll(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("re-enroll: %v", err)
	}
	if reactivated.ID != enrollment.ID || reactivated.Status != domain.EnrollmentStatusActive {
		t.Fatalf("re-enroll should reactivate the same row: %+v", reactivated)
	}

	other := e.seedStudent(t)
	if _, err := e.enrollments.Get(ctx, other.ID, enrollment.ID); !apperr.IsForbidden(err) {
		t.Fatalf("reading another student's enrollment should be forbidden, got %v", err)
	}
}

func TestProgressLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.seedTeacher(t)
	student := e.seedStudent(t)
	course := testutil.SeedCourse(t, ctx, e.db, teacher.ID)
	l1 := testutil.SeedLesson(t, ctx, e.db, course.ID, 1)
	l2 := testutil.SeedLesson(t, ctx, e.db, course.ID, 2)
	e.publish(t, course.ID)

	enrollment, err := e.enrollments.Enroll(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	row, err := e.progress.RecordSlideView(ctx, student.ID, l1.ID, 30)
	if err != nil {
		t.Fatalf("record view: %v", err)
	}
	if row.Status != domain.ProgressStatusInProgress || row.SlidesViewed != 1 || row.TimeSpentSeconds != 30 {
		t.Fatalf("unexpected first view: %+v", row)
	}
	row, err = e.progress.RecordSlideView(ctx, student.ID, l1.ID, 15)
	if err != nil {
		t.Fatalf("record view: %v", err)
	}
	if row.SlidesViewed != 2 || row.TimeSpentSeconds != 45 {
		t.Fatalf("view counters did not accumulate: %+v", row)
	}

	if _, err := e.progress.CompleteLesson(ctx, student.ID, l1.ID); err != nil {
		t.Fatalf("complete l1: %v", err)
	}
	partial, err := e.enrollments.Get(ctx, student.ID, enrollment.ID)
	if err != nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if partial.LessonsCompleted != 1 || partial.ProgressPercentage != 50 {
		t.Fatalf("counters after one lesson: %+v", partial)
	}
	if partial.Status != domain.EnrollmentStatusActive {
		t.Fatalf("half-done enrollment should stay active: %s", partial.Status)
	}

	if _, err := e.progress.CompleteLesson(ctx, student.ID, l2.ID); err != nil {
		t.Fatalf("complete l2: %v", err)
	}
	done, err := e.enrollments.Get(ctx, student.ID, enrollment.ID)
	if err != nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if done.Status != domain.EnrollmentStatusCompleted || done.ProgressPercentage != 100 || done.CompletedAt == nil {
		t.Fatalf("full completion not reflected: %+v", done)
	}

	// Idempotent: recomputing a settled enrollment changes nothing.
	if err := e.progress.Recompute(ctx, enrollment.ID); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	again, _ := e.enrollments.Get(ctx, student.ID, enrollment.ID)
	if again.Status != domain.EnrollmentStatusCompleted || again.LessonsCompleted != 2 {
		t.Fatalf("recompute disturbed a settled enrollment: %+v", again)
	}
}

func TestRecomputeForCourseReopensGrownCourses(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.seedTeacher(t)
	student := e.seedStudent(t)
	course := testutil.SeedCourse(t, ctx, e.db, teacher.ID)
	l1 := testutil.SeedLesson(t, ctx, e.db, course.ID, 1)
	e.publish(t, course.ID)

	enrollment, err := e.enrollments.Enroll(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := e.progress.CompleteLesson(ctx, student.ID, l1.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// The course grows a lesson, so completion no longer holds.
	testutil.SeedLesson(t, ctx, e.db, course.ID, 2)
	if err := e.progress.RecomputeForCourse(ctx, course.ID); err != nil {
		t.Fatalf("recompute for course: %v", err)
	}

	reopened, err := e.enrollments.Get(ctx, student.ID, enrollment.ID)
	if err != nil {
		t.Fatalf("reload enrollment: %v", err)
	}
	if reopened.Status != domain.EnrollmentStatusActive || reopened.TotalLessons != 2 || reopened.ProgressPercentage != 50 {
		t.Fatalf("grown course should reopen the enrollment: %+v", reopened)
	}
	if reopened.CompletedAt != nil {
		t.Fatalf("completed_at should be cleared, got %v", reopened.CompletedAt)
	}
}

func TestProgressRejectsInactiveEnrollment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teacher := e.seedTeacher(t)
	student := e.seedStudent(t)
	course := testutil.SeedCourse(t, ctx, e.db, teacher.ID)
	lesson := testutil.SeedLesson(t, ctx, e.db, course.ID, 1)
	e.publish(t, course.ID)

	if _, err := e.progress.RecordSlideView(ctx, student.ID, lesson.ID, 10); !apperr.IsForbidden(err) {
		t.Fatalf("unenrolled student should be forbidden, got %v", err)
	}

	enrollment, err := e.enrollments.Enroll(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := e.enrollments.Drop(ctx, student.ID, enrollment.ID); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := e.progress.RecordSlideView(ctx, student.ID, lesson.ID, 10); !apperr.IsInvalid(err) {
		t.Fatalf("dropped enrollment should reject views, got %v", err)
	}
}
