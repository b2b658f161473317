package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"courier/internal/blob"
	"courier/internal/domain"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	expires, err := time.Parse(time.RFC3339Nano, r.Header.Get(blob.HeaderExpires))
	if err != nil {
		http.Error(w, "missing or invalid "+blob.HeaderExpires, http.StatusBadRequest)
		return
	}
	loc, err := s.blobs.Upload(r.Context(), r.Body, expires.UTC(), r.Header.Get("Content-Type"))
	if errors.Is(err, domain.ErrInvalidArgument) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Error("upload blob", zap.Error(err))
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"location": loc})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	b, err := s.blobs.Get(r.Context(), mux.Vars(r)["name"])
	if errors.Is(err, blob.ErrNoBlob) {
		http.Error(w, "no such blob", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("download blob", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", b.ContentType)
	w.Header().Set("Expires", b.ExpiresUTC.Format(http.TimeFormat))
	w.Header().Set("Cache-Control", "public, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Content)
}
