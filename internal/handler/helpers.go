package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/qaforge/internal/middleware"
	"github.com/xxxsen/qaforge/internal/pkg/errcode"
	apperrors "github.com/xxxsen/qaforge/internal/pkg/errors"
	"github.com/xxxsen/qaforge/internal/pkg/response"
)

// handleError maps service errors onto the wire. Client mistakes keep their
// message, upstream outages keep their status, everything else collapses to a
// generic internal error.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get(middleware.ContextRequestIDKey)
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, apperrors.ErrMalformedInput):
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalid, err.Error())
	case errors.Is(err, apperrors.ErrNotInitialized):
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrKnowledgeBaseEmpty, err.Error())
	case errors.Is(err, apperrors.ErrUnsupportedFile):
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrUnsupportedFile, err.Error())
	case errors.Is(err, apperrors.ErrParseFailure):
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalidFile, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, errcode.ErrNotFound, err.Error())
	case errors.Is(err, apperrors.ErrCIUnavailable):
		response.ErrorWithStatus(c, http.StatusServiceUnavailable, errcode.ErrCIUnavailable, "ci backend unreachable")
	default:
		response.ErrorWithStatus(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
	}
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func formatUploadLimit(bytes int64) string {
	const mb = 1024 * 1024
	if bytes <= 0 {
		return "0MB"
	}
	value := bytes / mb
	if value <= 0 {
		value = 1
	}
	return strconv.FormatInt(value, 10) + "MB"
}
