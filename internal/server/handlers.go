package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yildizm/CodeLens/internal/ai"
	"github.com/yildizm/CodeLens/internal/analyzer"
	"github.com/yildizm/CodeLens/internal/api"
	"github.com/yildizm/CodeLens/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, api.ErrorResponse{Detail: detail})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "index page missing")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.LanguagesResponse{Languages: s.analyzers.Languages()})
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.ProvidersResponse{Providers: s.providers.List()})
}

// handleAnalyze resolves the provider before the language, so an unknown
// provider is reported even when the language is also unknown.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}

	var req api.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}

	provider, err := s.resolveProvider(req.Provider)
	if err != nil {
		s.countAnalysis(req, "bad_provider")
		writeError(w, http.StatusBadRequest, fmt.Sprintf("LLM Provider '%s' not supported.", req.Provider))
		return
	}

	start := time.Now()
	suggestion, err := provider.Suggest(r.Context(), &ai.SuggestionRequest{Language: req.Language, Code: req.Code})
	s.metrics.analyzeLatency.WithLabelValues("suggest").Observe(time.Since(start).Seconds())
	if err != nil {
		s.countAnalysis(req, "provider_error")
		s.log.ErrorWithFields("suggestion failed", []logger.Field{
			logger.F("provider", provider.Name()),
			logger.Error(err),
		})
		writeError(w, http.StatusBadGateway, fmt.Sprintf("LLM Provider '%s' failed: %v", provider.Name(), err))
		return
	}

	a, ok := s.analyzers.Get(req.Language)
	if !ok {
		s.countAnalysis(req, "bad_language")
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Language '%s' not supported.", req.Language))
		return
	}

	start = time.Now()
	report, err := a.Analyze(r.Context(), req.Code)
	s.metrics.analyzeLatency.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	if err != nil {
		s.countAnalysis(req, "analyzer_error")
		s.log.ErrorWithFields("analysis failed", []logger.Field{
			logger.F("language", req.Language),
			logger.Error(err),
		})
		writeError(w, analyzerStatus(err), err.Error())
		return
	}

	report.RefactoringSuggestion = suggestion
	s.countAnalysis(req, "ok")
	writeJSON(w, http.StatusOK, api.AnalysisResponse{Language: req.Language, Analysis: *report})
}

func (s *Server) resolveProvider(name string) (ai.Provider, error) {
	if name == "" {
		return s.providers.Default()
	}
	return s.providers.Get(name)
}

func (s *Server) countAnalysis(req api.AnalysisRequest, result string) {
	provider := req.Provider
	if provider == "" {
		provider = "default"
	}
	// Unregistered names would otherwise grow label cardinality without bound.
	if !s.providers.IsRegistered(provider) && provider != "default" {
		provider = "unknown"
	}
	language := req.Language
	if _, ok := s.analyzers.Get(language); !ok {
		language = "unknown"
	}
	s.metrics.analysesTotal.WithLabelValues(language, provider, result).Inc()
}

// analyzerStatus maps analyzer errors to the status reported to the caller.
// Upstream HTTP errors pass their status through.
func analyzerStatus(err error) int {
	var remote *analyzer.RemoteError
	if errors.As(err, &remote) && remote.StatusCode >= 400 {
		return remote.StatusCode
	}
	return http.StatusInternalServerError
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field '%s' is required", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s' validation", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
