package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/saferoadsa/saferoad/internal/auth"
	"github.com/saferoadsa/saferoad/internal/upload"
)

type UploadHandler struct {
	uploads *upload.Service
	logger  *slog.Logger
}

func NewUploadHandler(svc *upload.Service, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{uploads: svc, logger: logger}
}

// Upload handles POST /api/upload with a multipart "photo" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave headroom for multipart framing on top of the photo limit.
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxSize+64*1024)

	file, header, err := r.FormFile("photo")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, upload.ErrTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "photo field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := upload.Validate(contentType, header.Size); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("read upload", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	url, err := h.uploads.Store(r.Context(), auth.UserID(r.Context()), contentType, data)
	if err != nil {
		if errors.Is(err, upload.ErrTooLarge) || errors.Is(err, upload.ErrInvalidType) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("store upload", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
