package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/exedev/ticketmd/internal/config"
	"github.com/exedev/ticketmd/internal/detect"
	"github.com/exedev/ticketmd/internal/render"
)

type renderRequest struct {
	Markdown string `json:"markdown"`
	Mode     string `json:"mode,omitempty"`
}

type renderResponse struct {
	Success bool   `json:"success"`
	HTML    string `json:"html,omitempty"`
	Error   string `json:"error,omitempty"`
}

type detectRequest struct {
	Text string `json:"text"`
}

type detectResponse struct {
	Success    bool                      `json:"success"`
	Confidence int                       `json:"confidence"`
	Markdown   bool                      `json:"markdown"`
	Features   map[string]detect.Feature `json:"features,omitempty"`
}

type entryChangedRequest struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Format  string `json:"format,omitempty"`
}

type entryChangedResponse struct {
	Success bool   `json:"success"`
	Format  string `json:"format,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid JSON body"))
		return
	}
	if req.Markdown == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("markdown field is required"))
		return
	}

	html, err := s.renderer.Render(req.Markdown, render.ParseMode(req.Mode))
	if err != nil {
		slog.Error("markdown render failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("failed to render markdown"))
		return
	}

	writeJSON(w, http.StatusOK, renderResponse{Success: true, HTML: html})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid JSON body"))
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("text field is required"))
		return
	}

	settings, err := config.LoadSettings(r.Context(), s.store)
	if err != nil {
		slog.Error("load settings failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("failed to load settings"))
		return
	}

	writeJSON(w, http.StatusOK, detectResponse{
		Success:    true,
		Confidence: detect.Score(req.Text),
		Markdown:   detect.HasMarkdownSyntax(req.Text, settings.Threshold),
		Features:   detect.Analyze(req.Text),
	})
}

func (s *Server) handleEntryChanged(w http.ResponseWriter, r *http.Request) {
	var req entryChangedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid JSON body"))
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("id must be a valid UUID"))
		return
	}

	f, err := s.hook.EntryChanged(r.Context(), id, req.Message, req.Format)
	if err != nil {
		slog.Error("entry-changed hook failed", "entry_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("failed to process entry"))
		return
	}

	writeJSON(w, http.StatusOK, entryChangedResponse{Success: true, Format: string(f)})
}

func errorResponse(msg string) renderResponse {
	return renderResponse{Success: false, Error: msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response failed", "error", err)
	}
}
