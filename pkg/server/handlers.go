package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mandelview/pkg/bookmark"
	"github.com/matzehuels/mandelview/pkg/buildinfo"
	"github.com/matzehuels/mandelview/pkg/errors"
	"github.com/matzehuels/mandelview/pkg/palette"
	"github.com/matzehuels/mandelview/pkg/render"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := frameOptions(r.URL.Query(), s.Defaults)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Refresh = r.URL.Query().Has("refresh")

	result, err := s.Runner.Render(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cacheStatus := "MISS"
	if result.CacheHit {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", render.ContentType(result.Format))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("X-Cache", cacheStatus)
	w.Header().Set("X-Frame-Key", result.Key)
	_, _ = w.Write(result.Data)
}

func (s *Server) handlePalettes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, palette.Names())
}

// =============================================================================
// Bookmarks
// =============================================================================

// bookmarkRequest is the POST /bookmarks body.
type bookmarkRequest struct {
	Name          string  `json:"name"`
	CenterRe      float64 `json:"center_re"`
	CenterIm      float64 `json:"center_im"`
	Width         float64 `json:"width"`
	MaxIterations int     `json:"max_iterations"`
	Smooth        *bool   `json:"smooth,omitempty"`
	Palette       string  `json:"palette,omitempty"`
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	all, err := s.Bookmarks.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if all == nil {
		all = []*bookmark.Bookmark{}
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	var req bookmarkRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid bookmark body"))
		return
	}

	b, err := bookmark.New(req.Name, complex(req.CenterRe, req.CenterIm), req.Width, req.MaxIterations)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Smooth != nil {
		b.Smooth = *req.Smooth
	}
	if req.Palette != "" {
		if _, err := palette.Builtin(req.Palette, 0); err != nil {
			s.writeError(w, r, err)
			return
		}
		b.Palette = req.Palette
	}

	if err := s.Bookmarks.Save(r.Context(), b); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Logger.Info("saved bookmark", "id", b.ID, "name", b.Name)
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleGetBookmark(w http.ResponseWriter, r *http.Request) {
	b, err := bookmark.Resolve(r.Context(), s.Bookmarks, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Bookmarks.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Logger.Info("deleted bookmark", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Responses
// =============================================================================

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.IsConfig(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound),
		errors.Is(err, errors.ErrCodeBookmarkNotFound),
		errors.Is(err, errors.ErrCodeFileNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
