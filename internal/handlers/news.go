package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/contextutil"
)

// NewsProcessor ingests raw article files and searches the stored articles.
type NewsProcessor interface {
	ProcessDirectory(ctx context.Context, dir string) (int, error)
	ProcessFile(ctx context.Context, path string) (int, error)
	SearchNews(ctx context.Context, query string, limit, recentDays int, sourceDomains, categories []string) ([]map[string]any, error)
}

// NewsHandler handles HTTP requests for news ingestion and search.
type NewsHandler struct {
	processor    NewsProcessor
	defaultLimit int
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(processor NewsProcessor, defaultLimit int) *NewsHandler {
	return &NewsHandler{
		processor:    processor,
		defaultLimit: defaultLimit,
	}
}

// ProcessDirectoryRequest names the directory of raw article files to ingest.
type ProcessDirectoryRequest struct {
	DirectoryPath string `json:"directory_path"`
}

// ProcessFileRequest names a single raw article file to ingest.
type ProcessFileRequest struct {
	FilePath string `json:"file_path"`
}

// ProcessResponse reports an ingestion outcome.
type ProcessResponse struct {
	Message        string `json:"message"`
	ProcessedCount int    `json:"processed_count"`
}

// NewsSearchRequest is the search payload with optional filters.
type NewsSearchRequest struct {
	Query         string   `json:"query"`
	Limit         int      `json:"limit,omitempty"`
	RecentDays    int      `json:"recent_days,omitempty"`
	SourceDomains []string `json:"source_domains,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

// NewsSearchResponse carries search hits as stored payloads.
type NewsSearchResponse struct {
	Results []map[string]any `json:"results"`
	Count   int              `json:"count"`
}

// ProcessDirectory ingests every article file in a directory.
func (h *NewsHandler) ProcessDirectory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ProcessDirectoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if info, err := os.Stat(req.DirectoryPath); err != nil || !info.IsDir() {
		writeError(w, http.StatusBadRequest, "Invalid directory path")
		return
	}

	processed, err := h.processor.ProcessDirectory(ctx, req.DirectoryPath)
	if err != nil {
		logger.ErrorContext(ctx, "directory ingestion failed", "dir", req.DirectoryPath, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process directory")
		return
	}

	writeJSON(w, ctx, http.StatusOK, ProcessResponse{
		Message:        fmt.Sprintf("Successfully processed %d news articles", processed),
		ProcessedCount: processed,
	})
}

// ProcessDirectoryBackground kicks off directory ingestion and returns
// immediately. Only the directory path is validated up front; the work runs
// detached from the request lifetime.
func (h *NewsHandler) ProcessDirectoryBackground(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ProcessDirectoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if info, err := os.Stat(req.DirectoryPath); err != nil || !info.IsDir() {
		writeError(w, http.StatusBadRequest, "Invalid directory path")
		return
	}

	bgCtx := context.WithoutCancel(ctx)
	go func() {
		processed, err := h.processor.ProcessDirectory(bgCtx, req.DirectoryPath)
		if err != nil {
			logger.ErrorContext(bgCtx, "background directory ingestion failed", "dir", req.DirectoryPath, "error", err)
			return
		}
		logger.InfoContext(bgCtx, "background directory ingestion finished", "dir", req.DirectoryPath, "processed", processed)
	}()

	writeJSON(w, ctx, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Started processing directory: %s", req.DirectoryPath),
	})
}

// ProcessFile ingests a single article file.
func (h *NewsHandler) ProcessFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ProcessFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if info, err := os.Stat(req.FilePath); err != nil || info.IsDir() {
		writeError(w, http.StatusBadRequest, "Invalid file path")
		return
	}

	chunks, err := h.processor.ProcessFile(ctx, req.FilePath)
	if err != nil {
		logger.ErrorContext(ctx, "file ingestion failed", "path", req.FilePath, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process file")
		return
	}

	processed := 0
	if chunks > 0 {
		processed = 1
	}
	writeJSON(w, ctx, http.StatusOK, ProcessResponse{
		Message:        fmt.Sprintf("Successfully processed file into %d chunks", chunks),
		ProcessedCount: processed,
	})
}

// Search runs a filtered similarity search. POST carries a JSON body, GET
// carries the same parameters in the query string.
func (h *NewsHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req NewsSearchRequest
	if r.Method == http.MethodGet {
		req = searchRequestFromQuery(r)
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "Query must not be empty")
		return
	}
	if req.Limit <= 0 {
		req.Limit = h.defaultLimit
	}

	results, err := h.processor.SearchNews(ctx, req.Query, req.Limit, req.RecentDays, req.SourceDomains, req.Categories)
	if err != nil {
		logger.ErrorContext(ctx, "news search failed", "query", req.Query, "error", err)
		writeError(w, http.StatusInternalServerError, "Error searching news articles")
		return
	}
	if results == nil {
		results = []map[string]any{}
	}

	writeJSON(w, ctx, http.StatusOK, NewsSearchResponse{Results: results, Count: len(results)})
}

func searchRequestFromQuery(r *http.Request) NewsSearchRequest {
	q := r.URL.Query()
	req := NewsSearchRequest{Query: q.Get("query")}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		req.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("recent_days")); err == nil {
		req.RecentDays = v
	}
	if v := q.Get("source_domains"); v != "" {
		req.SourceDomains = splitCSV(v)
	}
	if v := q.Get("categories"); v != "" {
		req.Categories = splitCSV(v)
	}
	return req
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
