package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docchat/internal/app"
	"docchat/internal/transport/http/middleware"
	"docchat/internal/transport/http/response"
)

type DocumentHandler struct {
	documentService *app.DocumentService
}

func NewDocumentHandler(documentService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	file, err := readUploadedFile(c, h.documentService.MaxFileBytes())
	if err != nil {
		writeUploadError(c, err, h.documentService.MaxFileBytes())
		return
	}

	result, err := h.documentService.Upload(c.Request.Context(), app.UploadInput{
		UserID:      userID,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Data:        file.Data,
	})
	if err != nil {
		writeUploadError(c, err, h.documentService.MaxFileBytes())
		return
	}

	response.Created(c, "File processed successfully", result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	docs, err := h.documentService.List(userID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, gin.H{"documents": docs})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}
	docID, ok := documentIDParam(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Get(docID, userID)
	if err != nil {
		writeDocumentError(c, err, "get document failed")
		return
	}
	response.OK(c, gin.H{"document": doc})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}
	docID, ok := documentIDParam(c)
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), docID, userID); err != nil {
		writeDocumentError(c, err, "delete document failed")
		return
	}
	response.NoContent(c)
}

func documentIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return 0, false
	}
	return uint(id), true
}

func writeDocumentError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, app.ErrDocumentNotFound) {
		response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "Document not found")
		return
	}
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
}

func writeUploadError(c *gin.Context, err error, maxBytes int64) {
	switch {
	case errors.Is(err, errFileMissing):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, errBodyTooLarge), errors.Is(err, app.ErrFileTooLarge):
		response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge, fmt.Sprintf("File size exceeds %dMB limit", maxBytes>>20))
	case errors.Is(err, app.ErrInvalidFilename):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidFilename, "Invalid filename")
	case errors.Is(err, app.ErrEmptyFile):
		response.Error(c, http.StatusBadRequest, response.CodeEmptyFile, "Empty file uploaded")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "Error processing file")
	}
}
