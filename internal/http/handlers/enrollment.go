package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/selahstudy/academy-backend/internal/http/dto"
	"github.com/selahstudy/academy-backend/internal/http/response"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
	"github.com/selahstudy/academy-backend/internal/services"
)

type EnrollmentHandler struct {
	log               *logger.Logger
	enrollmentService services.EnrollmentService
	progressService   services.ProgressService
}

func NewEnrollmentHandler(baseLog *logger.Logger, enrollmentService services.EnrollmentService, progressService services.ProgressService) *EnrollmentHandler {
	return &EnrollmentHandler{
		log:               baseLog.With("handler", "EnrollmentHandler"),
		enrollmentService: enrollmentService,
		progressService:   progressService,
	}
}

func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), rd.UserID, req.CourseID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"enrollment": enrollment})
}

func (h *EnrollmentHandler) Drop(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	enrollmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	enrollment, err := h.enrollmentService.Drop(c.Request.Context(), rd.UserID, enrollmentID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollment": enrollment})
}

func (h *EnrollmentHandler) Get(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	enrollmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	enrollment, err := h.enrollmentService.Get(c.Request.Context(), rd.UserID, enrollmentID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollment": enrollment})
}

func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	enrollments, err := h.enrollmentService.ListMine(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("list enrollments failed", "error", err, "user_id", rd.UserID)
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollments": enrollments})
}

func (h *EnrollmentHandler) ListProgress(c *gin.Context) {
	rd, ok := requestUser(c)
	if !ok {
		return
	}
	enrollmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.progressService.ListForEnrollment(c.Request.Context(), rd.UserID, enrollmentID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": rows})
}
