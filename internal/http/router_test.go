package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/rag"
	sessionmocks "github.com/RahulGopathi/NewsChatbot-BE/internal/session/mocks"
	storemocks "github.com/RahulGopathi/NewsChatbot-BE/internal/vectorstore/mocks"
)

type noopConversations struct{}

func (noopConversations) ProcessMessage(ctx context.Context, sessionID, message string) (<-chan rag.Event, error) {
	ch := make(chan rag.Event)
	close(ch)
	return ch, nil
}

type noopProcessor struct{}

func (noopProcessor) ProcessDirectory(ctx context.Context, dir string) (int, error) { return 0, nil }
func (noopProcessor) ProcessFile(ctx context.Context, path string) (int, error)     { return 0, nil }
func (noopProcessor) SearchNews(ctx context.Context, query string, limit, recentDays int, sourceDomains, categories []string) ([]map[string]any, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)
	index := storemocks.NewMockVectorIndex(ctrl)
	index.EXPECT().EnsureReady(gomock.Any()).Return(nil).AnyTimes()

	return NewRouter(&Deps{
		Conversations: noopConversations{},
		Sessions:      sessionmocks.NewMockStore(ctrl),
		News:          noopProcessor{},
		VectorIndex:   index,
		TopKResults:   3,
	})
}

func TestRouterWelcome(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Welcome to News Chatbot API") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRouterHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouterRoutesRegistered(t *testing.T) {
	// Wrong-method requests prove the route exists: chi answers 405 for a
	// registered path and 404 for an unregistered one.
	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/chat/query", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/api/v1/news/search", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/news/process-directory-background", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		newTestRouter(t).ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat/query", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
