package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat/internal/app"
	"docchat/internal/transport/http/response"
)

// GuestHandler serves the unauthenticated flow: nothing is stored and the
// client sends its own context back on every chat call.
type GuestHandler struct {
	guestService *app.GuestService
	maxFileBytes int64
}

type GuestChatRequest struct {
	Message        string           `json:"message" binding:"required"`
	Context        string           `json:"context"`
	ContextSources []map[string]any `json:"context_sources"`
}

func NewGuestHandler(guestService *app.GuestService, maxFileBytes int64) *GuestHandler {
	if maxFileBytes <= 0 {
		maxFileBytes = app.DefaultMaxFileBytes
	}
	return &GuestHandler{guestService: guestService, maxFileBytes: maxFileBytes}
}

func (h *GuestHandler) ExtractText(c *gin.Context) {
	file, err := readUploadedFile(c, h.maxFileBytes)
	if err != nil {
		writeUploadError(c, err, h.maxFileBytes)
		return
	}

	result, err := h.guestService.Extract(c.Request.Context(), file.Data, file.Filename)
	if err != nil {
		writeUploadError(c, err, h.maxFileBytes)
		return
	}
	response.OK(c, result)
}

func (h *GuestHandler) Chat(c *gin.Context) {
	var req GuestChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.guestService.Chat(c.Request.Context(), app.GuestChatInput{
		Message:        req.Message,
		Context:        req.Context,
		ContextSources: req.ContextSources,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "message is required")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "chat failed")
		return
	}
	response.OK(c, result)
}
