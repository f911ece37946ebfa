package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/handlers"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/session"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Conversations handlers.ConversationService
	Sessions      session.Store
	News          handlers.NewsProcessor
	VectorIndex   vectorstore.VectorIndex
	TopKResults   int
}

// NewRouter creates the HTTP router with all API routes registered.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.Conversations, deps.Sessions)
	newsHandler := handlers.NewNewsHandler(deps.News, deps.TopKResults)
	healthHandler := handlers.NewHealthHandler(deps.VectorIndex)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/chat", func(r chi.Router) {
			r.Post("/query", chatHandler.Query)
			r.Get("/history/{sessionID}", chatHandler.History)
			r.Delete("/clear/{sessionID}", chatHandler.Clear)
			r.Post("/session", chatHandler.CreateSession)
		})
		r.Route("/news", func(r chi.Router) {
			r.Post("/process-directory", newsHandler.ProcessDirectory)
			r.Post("/process-directory-background", newsHandler.ProcessDirectoryBackground)
			r.Post("/process-file", newsHandler.ProcessFile)
			r.Post("/search", newsHandler.Search)
			r.Get("/search", newsHandler.Search)
		})
	})

	r.Method(http.MethodGet, "/health", healthHandler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Welcome to News Chatbot API"})
	})

	return r
}
