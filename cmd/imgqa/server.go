package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	imgqa "github.com/anatolykoptev/go-imgqa"
)

const maxRequestBody = 64 << 10 // 64KB of JSON is plenty for one URL

// analyzeRequest is the event shape the catalog upstream sends.
type analyzeRequest struct {
	ImgURL string `json:"img_url"`
}

type analyzeResponse struct {
	RequestID  string            `json:"request_id"`
	Result     *imgqa.Result     `json:"result,omitempty"`
	Assessment *imgqa.Assessment `json:"assessment,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Server exposes single-image analysis over HTTP.
type Server struct {
	qa          *imgqa.Config
	headersOnly bool
	mux         *http.ServeMux
}

// NewServer builds the HTTP handler around qa.
func NewServer(qa *imgqa.Config, headersOnly bool) *Server {
	s := &Server{qa: qa, headersOnly: headersOnly, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", id)
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id := w.Header().Get("X-Request-ID")

	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		respondJSON(w, analyzeResponse{RequestID: id, Error: "invalid JSON body"}, http.StatusBadRequest)
		return
	}
	if req.ImgURL == "" {
		respondJSON(w, analyzeResponse{RequestID: id, Error: "img_url is required"}, http.StatusBadRequest)
		return
	}

	res, err := s.qa.Analyze(r.Context(), req.ImgURL, imgqa.AnalyzeOpts{HeadersOnly: s.headersOnly})
	if res == nil {
		slog.Warn("imgqa: analysis failed", "request_id", id, "url", req.ImgURL, "error", err)
		respondJSON(w, analyzeResponse{RequestID: id, Error: err.Error()}, http.StatusBadGateway)
		return
	}

	a := imgqa.Assess(res)
	out := analyzeResponse{RequestID: id, Result: res, Assessment: &a}
	if err != nil {
		out.Error = err.Error()
	}
	respondJSON(w, out, http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, addr string, qa *imgqa.Config, headersOnly bool) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewServer(qa, headersOnly),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("imgqa: listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
