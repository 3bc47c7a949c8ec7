package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/http/dto"
	"github.com/selahstudy/academy-backend/internal/http/response"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
	"github.com/selahstudy/academy-backend/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
	lessonService services.LessonService
}

func NewCourseHandler(baseLog *logger.Logger, courseService services.CourseService, lessonService services.LessonService) *CourseHandler {
	return &CourseHandler{
		log:           baseLog.With("handler", "CourseHandler"),
		courseService: courseService,
		lessonService: lessonService,
	}
}

func (h *CourseHandler) Create(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	course, err := h.courseService.Create(c.Request.Context(), rd.UserID, services.CreateCourseInput{
		Slug:          req.Slug,
		TitleEn:       req.TitleEn,
		TitleFr:       req.TitleFr,
		DescriptionEn: req.DescriptionEn,
		DescriptionFr: req.DescriptionFr,
		Tags:          req.Tags,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"course": course})
}

func (h *CourseHandler) Get(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	course, err := h.courseService.Get(c.Request.Context(), courseID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) ListMine(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	limit, offset := parsePagination(c)
	courses, total, err := h.courseService.ListForTeacher(c.Request.Context(), rd.UserID, limit, offset)
	if err != nil {
		h.log.Error("list courses failed", "error", err, "user_id", rd.UserID)
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses, "total": total})
}

func (h *CourseHandler) ListPublished(c *gin.Context) {
	limit, offset := parsePagination(c)
	courses, total, err := h.courseService.ListPublished(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses, "total": total})
}

func (h *CourseHandler) Update(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	course, err := h.courseService.Update(c.Request.Context(), rd.UserID, courseID, services.UpdateCourseInput{
		Slug:          req.Slug,
		TitleEn:       req.TitleEn,
		TitleFr:       req.TitleFr,
		DescriptionEn: req.DescriptionEn,
		DescriptionFr: req.DescriptionFr,
		Tags:          req.Tags,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) Publish(c *gin.Context) {
	h.transition(c, h.courseService.Publish)
}

func (h *CourseHandler) Unpublish(c *gin.Context) {
	h.transition(c, h.courseService.Unpublish)
}

func (h *CourseHandler) Archive(c *gin.Context) {
	h.transition(c, h.courseService.Archive)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), rd.UserID, courseID); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondNoContent(c)
}

func (h *CourseHandler) ListLessons(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lessons, err := h.lessonService.ListForCourse(c.Request.Context(), courseID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lessons": lessons})
}

func (h *CourseHandler) transition(c *gin.Context, fn func(ctx context.Context, teacherID, courseID uuid.UUID) (*domain.Course, error)) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	course, err := fn(c.Request.Context(), rd.UserID, courseID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}
