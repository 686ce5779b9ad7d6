package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/regwatch/internal/crawler"
	"github.com/JakeFAU/regwatch/internal/enrich"
	"github.com/JakeFAU/regwatch/internal/llm"
	"github.com/JakeFAU/regwatch/internal/mailer"
)

const analysisCacheControl = "public, s-maxage=3600, stale-while-revalidate=60"

type itemsResponse struct {
	Items  []crawler.ScrapedItem `json:"items"`
	Cached bool                  `json:"cached"`
}

type analyzeRequest struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Date   string `json:"date"`
}

type emailRequest struct {
	Email       string              `json:"email"`
	Regulation  *emailRegulation    `json:"regulation"`
	ActionItems *enrich.ActionItems `json:"actionItems"`
}

type emailRegulation struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
	Date   string `json:"date"`
}

type cronResponse struct {
	OK    bool   `json:"ok"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

func (s *Server) getItems(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", noStore)
	items, cached, err := s.feed.latest(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoItems) {
			writeError(w, http.StatusInternalServerError, "No data could be scraped from sources")
			return
		}
		s.logger.Error("scrape failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to scrape data sources")
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: items, Cached: cached})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Title == "" || req.Source == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: title and source")
		return
	}
	s.logger.Info("analyzing notice", zap.String("title", req.Title))
	items := s.analyzer.Analyze(r.Context(), req.Title, req.Source, req.Date)
	w.Header().Set("Cache-Control", analysisCacheControl)
	writeJSON(w, http.StatusOK, map[string]enrich.ActionItems{"actionItems": items})
}

func (s *Server) sendEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" || req.Regulation == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if err := mailer.ValidateAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	if s.sender == nil {
		s.logger.Error("email requested but no smtp host is configured")
		writeError(w, http.StatusInternalServerError, "Email service not configured")
		return
	}

	item := crawler.ScrapedItem{
		Title:  req.Regulation.Title,
		URL:    req.Regulation.URL,
		Source: req.Regulation.Source,
		Date:   req.Regulation.Date,
	}
	msg, err := s.composer.Compose(req.Email, item, req.ActionItems)
	switch {
	case errors.Is(err, mailer.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	case errors.Is(err, mailer.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "Invalid email address")
		return
	case err != nil:
		s.logger.Error("compose email failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to send email")
		return
	}

	if err := s.sender.Send(r.Context(), msg); err != nil {
		s.logger.Error("send email failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("email sent", zap.String("title", item.Title))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Email sent successfully!",
	})
}

func (s *Server) getDigest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", noStore)
	if s.digest == nil {
		writeError(w, http.StatusInternalServerError, "Missing Gemini API key")
		return
	}
	text, err := llm.Digest(r.Context(), s.digest)
	if err != nil {
		status := http.StatusInternalServerError
		var statusErr *llm.StatusError
		if errors.As(err, &statusErr) && statusErr.Code >= 400 {
			status = statusErr.Code
		}
		s.logger.Warn("digest failed", zap.Error(err))
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// cronScrape refreshes the item cache. Zero items is still a successful run.
func (s *Server) cronScrape(w http.ResponseWriter, r *http.Request) {
	items, err := s.feed.refresh(r.Context())
	if err != nil && !errors.Is(err, ErrNoItems) {
		s.logger.Error("scheduled scrape failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, cronResponse{OK: false, Error: err.Error()})
		return
	}
	s.logger.Info("scheduled scrape finished", zap.Int("items", len(items)))
	writeJSON(w, http.StatusOK, cronResponse{OK: true, Count: len(items)})
}
