package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	videos := VideoHandler{Videos: deps.Videos, Limiter: deps.Limiter}

	mux.HandleFunc("/health", health.Handle)
	mux.HandleFunc("/api/video", videos.Get)
	mux.HandleFunc("/api/video-count", videos.Count)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Videos  VideoService
	Limiter RateLimiter
}
