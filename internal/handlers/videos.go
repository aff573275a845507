package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/cricketreels/backend/internal/logging"
	"github.com/cricketreels/backend/internal/videos"
)

const apiRateLimitScope = "api"

// VideoHandler serves the public video endpoints.
type VideoHandler struct {
	Videos  VideoService
	Limiter RateLimiter
}

// Get handles GET /api/video. An optional videoId query parameter selects a
// specific entry; otherwise one is picked at random.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, apiRateLimitScope) {
		respondError(ctx, w, http.StatusTooManyRequests, "too many requests, please try again later")
		return
	}

	if h.Videos == nil {
		logger.Error("video service unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	sel := videos.Random()
	if raw := strings.TrimSpace(r.URL.Query().Get("videoId")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			logger.Warn("invalid video id", "videoId", raw, "error", err)
			respondError(ctx, w, http.StatusBadRequest, "videoId must be an integer")
			return
		}
		sel = videos.ByID(id)
	}

	payload, err := h.Videos.GetVideo(ctx, sel)
	switch {
	case errors.Is(err, videos.ErrNoVideos):
		respondError(ctx, w, http.StatusNotFound, "no videos available")
		return
	case errors.Is(err, videos.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, "video not found")
		return
	case errors.Is(err, videos.ErrIntegrity):
		logger.Error("video integrity violation", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "invalid video data")
		return
	case err != nil:
		logger.Error("get video failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(ctx, w, http.StatusOK, payload)
}

// Count handles GET /api/video-count.
func (h VideoHandler) Count(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if !allowRequest(h.Limiter, r, apiRateLimitScope) {
		respondError(ctx, w, http.StatusTooManyRequests, "too many requests, please try again later")
		return
	}

	count := 0
	if h.Videos != nil {
		count = h.Videos.Count()
	}

	respondJSON(ctx, w, http.StatusOK, map[string]int{"count": count})
}
