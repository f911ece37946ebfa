package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/contextutil"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/rag"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/session"
)

// ConversationService runs one chat turn and streams its events.
type ConversationService interface {
	ProcessMessage(ctx context.Context, sessionID, message string) (<-chan rag.Event, error)
}

// ChatHandler handles HTTP requests for the chat API.
type ChatHandler struct {
	conversations ConversationService
	sessions      session.Store
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(conversations ConversationService, sessions session.Store) *ChatHandler {
	return &ChatHandler{
		conversations: conversations,
		sessions:      sessions,
	}
}

// ChatRequest represents the HTTP request payload for a chat query.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Query processes a chat message and streams the response as Server-Sent
// Events, one JSON event per frame.
func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	events, err := h.conversations.ProcessMessage(ctx, req.SessionID, req.Message)
	if err != nil {
		h.handleError(w, ctx, err, "Failed to process chat message")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			logger.ErrorContext(ctx, "failed to encode event", "error", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			logger.WarnContext(ctx, "client disconnected mid-stream", "error", err)
			return
		}
		flusher.Flush()
	}
}

// History returns the full message history of a session.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	history, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		h.handleError(w, ctx, err, "Failed to load chat history")
		return
	}

	writeJSON(w, ctx, http.StatusOK, history)
}

// Clear deletes a session and its history.
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessions.Clear(ctx, sessionID); err != nil {
		h.handleError(w, ctx, err, "Failed to clear session")
		return
	}

	writeJSON(w, ctx, http.StatusOK, map[string]string{"message": "Session cleared successfully"})
}

// CreateSession creates a new empty chat session and returns its id.
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := uuid.NewString()

	if _, err := h.sessions.Create(ctx, sessionID); err != nil {
		h.handleError(w, ctx, err, "Failed to create session")
		return
	}

	writeJSON(w, ctx, http.StatusOK, map[string]string{"session_id": sessionID})
}

// handleError maps domain errors to HTTP status codes.
func (h *ChatHandler) handleError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "chat request failed", "error", err)

	var validationErr *rag.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
		return
	}
	if errors.Is(err, rag.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if errors.Is(err, rag.ErrNotFound) || errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if errors.Is(err, rag.ErrUpstream) {
		writeError(w, http.StatusBadGateway, "Upstream service error")
		return
	}

	writeError(w, http.StatusInternalServerError, defaultMsg)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, ctx context.Context, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
