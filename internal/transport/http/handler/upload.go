package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the file size limit.
const multipartOverhead = 1 << 20

var (
	errFileMissing  = errors.New("file is required")
	errBodyTooLarge = errors.New("request body too large")
)

type uploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// readUploadedFile reads the multipart "file" field. At most maxBytes+1
// bytes are buffered so callers can tell an oversized file apart.
func readUploadedFile(c *gin.Context, maxBytes int64) (*uploadedFile, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, errFileMissing
	}

	data, err := readPart(header, maxBytes)
	if err != nil {
		return nil, err
	}
	return &uploadedFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readPart(header *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file failed: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read uploaded file failed: %w", err)
	}
	return data, nil
}
