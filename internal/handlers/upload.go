package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Nandeesh-nh/lan-chat/internal/files"
	"github.com/Nandeesh-nh/lan-chat/internal/metrics"
	"github.com/Nandeesh-nh/lan-chat/internal/models"
)

// UploadResponse represents the upload response.
type UploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"` // stored name, used for download
}

// Upload accepts one multipart file, stores it, then appends a file
// message referencing it. The message is appended only after the file
// is durably on disk, so a failed upload never yields a dangling
// reference.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// Multipart framing overhead on top of the file cap.
	r.Body = http.MaxBytesReader(w, r.Body, h.files.MaxSize()+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.Error(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	sender := strings.TrimSpace(r.FormValue("sender"))
	targetUser := strings.TrimSpace(r.FormValue("target_user"))
	if sender == "" {
		h.Error(w, http.StatusBadRequest, "sender is required")
		return
	}
	if err := h.requireActingUser(r, sender); err != nil {
		h.StoreError(w, err)
		return
	}

	if header.Size > h.files.MaxSize() {
		h.Error(w, http.StatusBadRequest, fmt.Sprintf("file too large (max %d bytes)", h.files.MaxSize()))
		return
	}

	stored, size, err := h.files.Save(file, sender, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, files.ErrTypeNotAllowed),
			errors.Is(err, files.ErrFileTooLarge),
			errors.Is(err, files.ErrEmptyFilename):
			h.Error(w, http.StatusBadRequest, err.Error())
		default:
			h.Error(w, http.StatusInternalServerError, "failed to store file")
		}
		return
	}

	original := files.OriginalName(stored)
	_, err = h.chat.Append(sender, targetUser, models.KindFile, "Sent file: "+original, &models.FileRef{
		StoredName:   stored,
		OriginalName: original,
		Size:         size,
	})
	if err != nil {
		h.StoreError(w, err)
		return
	}

	metrics.UploadsTotal.Inc()
	metrics.UploadBytes.Add(float64(size))
	metrics.MessagesAppended.WithLabelValues(scope(targetUser)).Inc()

	h.JSON(w, http.StatusOK, UploadResponse{Success: true, Filename: stored})
}

// Download serves a stored file's raw bytes, attaching the original
// name for the client's save dialog.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	stored := chi.URLParam(r, "filename")

	path, err := h.files.Path(stored)
	if err != nil {
		h.Error(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", files.OriginalName(stored)))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, path)
}
