package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/selahstudy/academy-backend/internal/http/dto"
	"github.com/selahstudy/academy-backend/internal/http/response"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
	"github.com/selahstudy/academy-backend/internal/services"
)

type SlideHandler struct {
	log          *logger.Logger
	slideService services.SlideService
	blockService services.ContentBlockService
}

func NewSlideHandler(baseLog *logger.Logger, slideService services.SlideService, blockService services.ContentBlockService) *SlideHandler {
	return &SlideHandler{
		log:          baseLog.With("handler", "SlideHandler"),
		slideService: slideService,
		blockService: blockService,
	}
}

func (h *SlideHandler) Get(c *gin.Context) {
	slideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	slide, err := h.slideService.Get(c.Request.Context(), slideID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"slide": slide})
}

func (h *SlideHandler) Update(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	slideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSlideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	slide, err := h.slideService.Update(c.Request.Context(), rd.UserID, slideID, services.UpdateSlideInput{
		Layout:  req.Layout,
		TitleEn: req.TitleEn,
		TitleFr: req.TitleFr,
		NotesEn: req.NotesEn,
		NotesFr: req.NotesFr,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"slide": slide})
}

func (h *SlideHandler) Delete(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	slideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.slideService.Delete(c.Request.Context(), rd.UserID, slideID); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondNoContent(c)
}

func (h *SlideHandler) Duplicate(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	slideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	slide, err := h.slideService.Duplicate(c.Request.Context(), rd.UserID, slideID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"slide": slide})
}

func (h *SlideHandler) Move(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	slideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.MoveSlideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	slide, err := h.slideService.Move(c.Request.Context(), rd.UserID, slideID, req.TargetLessonID, req.Position)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"slide": slide})
}

func (h *SlideHandler) ListBlocks(c *gin.Context) {
	slideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	blocks, err := h.blockService.ListForSlide(c.Request.Context(), slideID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"blocks": blocks})
}

func (h *SlideHandler) CreateBlock(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	slideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	block, err := h.blockService.Create(c.Request.Context(), rd.UserID, slideID, services.CreateBlockInput{
		BlockType: req.BlockType,
		Content:   req.Content,
		Metadata:  req.Metadata,
		Position:  req.Position,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"block": block})
}

func (h *SlideHandler) ReorderBlocks(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	slideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.blockService.Reorder(c.Request.Context(), rd.UserID, slideID, req.Orders); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondNoContent(c)
}
