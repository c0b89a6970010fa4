package web

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Olprog59/go-familyhub/internal/dto"
	"github.com/Olprog59/go-familyhub/internal/media"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

const (
	sniffLen            = 512
	multipartOverhead   = 64 * 1024
	mediaCacheControl   = "public, max-age=31536000, immutable"
	mediaURLPrefix      = "/media/"
	multipartFileField  = "file"
	multipartFormMemory = 1 << 20
)

// UploadMedia stores an image and returns its public URL / Stocke une image et retourne son URL publique
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.container.Config.Media.MaxUploadBytes
	limitRequestBody(w, r, maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(multipartFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		ErrorResponse(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(multipartFileField)
	if err != nil {
		ErrorResponse(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxBytes {
		ErrorResponse(w, "file too large", http.StatusRequestEntityTooLarge)
		return
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		ErrorResponse(w, "failed to read file", http.StatusBadRequest)
		return
	}
	head = head[:n]

	contentType, ext, err := media.Sniff(head)
	if err != nil {
		ErrorResponse(w, "unsupported media type "+contentType, http.StatusUnsupportedMediaType)
		return
	}

	key, err := h.container.Media.Save(r.Context(), ext, io.MultiReader(bytes.NewReader(head), file))
	if err != nil {
		respondError(w, r, err)
		return
	}

	slog.Info("media uploaded", "key", key, "content_type", contentType, "size", header.Size, "user_id", ActorFromContext(r.Context()).ID)
	writeJSON(w, http.StatusCreated, dto.MediaDTOResponse{
		Key:         key,
		URL:         mediaURLPrefix + key,
		ContentType: contentType,
	})
}

// ServeMedia serves an uploaded file read-only / Sert un fichier téléversé en lecture seule
func (h *Handler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	f, err := h.container.Media.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, ports.ErrMediaNotFound) {
			ErrorResponse(w, "not found", http.StatusNotFound)
			return
		}
		respondError(w, r, err)
		return
	}
	defer f.Close()

	ext := strings.TrimPrefix(path.Ext(key), ".")
	w.Header().Set("Content-Type", media.ContentTypeForExt(ext))
	w.Header().Set("Cache-Control", mediaCacheControl)
	http.ServeContent(w, r, key, time.Time{}, f)
}
