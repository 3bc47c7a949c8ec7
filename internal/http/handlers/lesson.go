package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/selahstudy/academy-backend/internal/http/dto"
	"github.com/selahstudy/academy-backend/internal/http/response"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
	"github.com/selahstudy/academy-backend/internal/services"
)

type LessonHandler struct {
	log           *logger.Logger
	lessonService services.LessonService
	slideService  services.SlideService
}

func NewLessonHandler(baseLog *logger.Logger, lessonService services.LessonService, slideService services.SlideService) *LessonHandler {
	return &LessonHandler{
		log:           baseLog.With("handler", "LessonHandler"),
		lessonService: lessonService,
		slideService:  slideService,
	}
}

func (h *LessonHandler) Create(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	lesson, err := h.lessonService.Create(c.Request.Context(), rd.UserID, courseID, services.CreateLessonInput{
		Slug:          req.Slug,
		LessonOrder:   req.LessonOrder,
		TitleEn:       req.TitleEn,
		TitleFr:       req.TitleFr,
		DescriptionEn: req.DescriptionEn,
		DescriptionFr: req.DescriptionFr,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"lesson": lesson})
}

func (h *LessonHandler) Get(c *gin.Context) {
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lesson, err := h.lessonService.Get(c.Request.Context(), lessonID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lesson": lesson})
}

func (h *LessonHandler) Update(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	lesson, err := h.lessonService.Update(c.Request.Context(), rd.UserID, lessonID, services.UpdateLessonInput{
		Slug:          req.Slug,
		LessonOrder:   req.LessonOrder,
		Status:        req.Status,
		TitleEn:       req.TitleEn,
		TitleFr:       req.TitleFr,
		DescriptionEn: req.DescriptionEn,
		DescriptionFr: req.DescriptionFr,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lesson": lesson})
}

func (h *LessonHandler) Delete(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.lessonService.Delete(c.Request.Context(), rd.UserID, lessonID); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondNoContent(c)
}

func (h *LessonHandler) ListSlides(c *gin.Context) {
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	slides, err := h.slideService.ListForLesson(c.Request.Context(), lessonID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"slides": slides})
}

func (h *LessonHandler) CreateSlide(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CreateSlideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	slide, err := h.slideService.Create(c.Request.Context(), rd.UserID, lessonID, services.CreateSlideInput{
		Layout:   req.Layout,
		TitleEn:  req.TitleEn,
		TitleFr:  req.TitleFr,
		NotesEn:  req.NotesEn,
		NotesFr:  req.NotesFr,
		Position: req.Position,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"slide": slide})
}

func (h *LessonHandler) ReorderSlides(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.slideService.Reorder(c.Request.Context(), rd.UserID, lessonID, req.Orders); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondNoContent(c)
}
