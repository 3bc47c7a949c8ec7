package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/selahstudy/academy-backend/internal/http/dto"
	"github.com/selahstudy/academy-backend/internal/http/response"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
	"github.com/selahstudy/academy-backend/internal/services"
)

type ContentBlockHandler struct {
	log          *logger.Logger
	blockService services.ContentBlockService
}

func NewContentBlockHandler(baseLog *logger.Logger, blockService services.ContentBlockService) *ContentBlockHandler {
	return &ContentBlockHandler{
		log:          baseLog.With("handler", "ContentBlockHandler"),
		blockService: blockService,
	}
}

func (h *ContentBlockHandler) Get(c *gin.Context) {
	blockID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	block, err := h.blockService.Get(c.Request.Context(), blockID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"block": block})
}

func (h *ContentBlockHandler) Update(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	blockID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	block, err := h.blockService.Update(c.Request.Context(), rd.UserID, blockID, services.UpdateBlockInput{
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"block": block})
}

func (h *ContentBlockHandler) Delete(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	blockID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.blockService.Delete(c.Request.Context(), rd.UserID, blockID); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondNoContent(c)
}

func (h *ContentBlockHandler) Duplicate(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	blockID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	block, err := h.blockService.Duplicate(c.Request.Context(), rd.UserID, blockID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"block": block})
}

func (h *ContentBlockHandler) BulkDelete(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	var req dto.BulkDeleteBlocksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.blockService.BulkDelete(c.Request.Context(), rd.UserID, req.IDs); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondNoContent(c)
}
