package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/contextutil"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/session"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/vectorstore"
)

const (
	// contextArticles caps how many retrieved articles feed the prompt.
	contextArticles = 3
	// timelineContextArticles is the higher cap for timeline queries.
	timelineContextArticles = 5
	// excerptLength is how much of each article body goes into the prompt.
	excerptLength = 500

	apologyMessage = "I'm sorry, I encountered an error while processing your request. Please try again later."
)

// Orchestrator runs a full conversation turn: persist the user message,
// analyze the query, retrieve context, stream the generated answer as events
// and persist the final answer.
type Orchestrator struct {
	analyzer  *Analyzer
	embedder  Embedder
	index     vectorstore.VectorIndex
	generator Generator
	sessions  session.Store
	topK      int
}

func NewOrchestrator(
	analyzer *Analyzer,
	embedder Embedder,
	index vectorstore.VectorIndex,
	generator Generator,
	sessions session.Store,
	topK int,
) *Orchestrator {
	return &Orchestrator{
		analyzer:  analyzer,
		embedder:  embedder,
		index:     index,
		generator: generator,
		sessions:  sessions,
		topK:      topK,
	}
}

// ProcessMessage handles one user message and returns the event stream for
// the turn. The user message is persisted before any event is produced, so a
// returned error means nothing was stored. Later failures surface as ERROR
// events on the stream and, where a response should have been, as a persisted
// apology message. When ctx is canceled the stream stops and no assistant
// message is persisted.
func (o *Orchestrator) ProcessMessage(ctx context.Context, sessionID, userMessage string) (<-chan Event, error) {
	if strings.TrimSpace(userMessage) == "" {
		return nil, WrapError(ErrInvalidInput, (&ValidationError{Field: "message", Message: "must not be empty"}).Error())
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, WrapError(ErrInvalidInput, (&ValidationError{Field: "session_id", Message: "must not be empty"}).Error())
	}

	if _, err := o.sessions.Append(ctx, sessionID, "user", userMessage); err != nil {
		return nil, WrapError(err, "storing user message")
	}

	events := make(chan Event)
	go o.run(ctx, events, sessionID, userMessage)
	return events, nil
}

func (o *Orchestrator) run(ctx context.Context, events chan<- Event, sessionID, userMessage string) {
	defer close(events)
	logger := contextutil.LoggerFromContext(ctx)

	if !send(ctx, events, Event{Type: EventStart}) {
		return
	}

	analysis := o.analyzer.Analyze(ctx, userMessage)
	logger.Info("query analyzed",
		"session_id", sessionID,
		"query_type", analysis.QueryType,
		"ordering", analysis.Ordering,
	)

	results, err := o.retrieve(ctx, userMessage, analysis)
	if err != nil {
		logger.Error("retrieval failed", "session_id", sessionID, "error", err)
		send(ctx, events, Event{Type: EventError, Message: fmt.Sprintf("Error retrieving context: %v", err)})
		o.persistApology(ctx, sessionID)
		send(ctx, events, Event{Type: EventEnd})
		return
	}
	SortResults(results, analysis)

	contextText, sources := buildContextBlock(results, analysis.QueryType)
	if len(sources) > 0 {
		if !send(ctx, events, Event{Type: EventContext, ContextSources: sources}) {
			return
		}
	}

	prompt := BuildPrompt(userMessage, contextText, analysis.QueryType)

	var full strings.Builder
	streamErr := o.generator.GenerateStream(ctx, prompt, func(chunk string) error {
		full.WriteString(chunk)
		if !send(ctx, events, Event{Type: EventMessage, Role: "ai", Message: chunk}) {
			return ctx.Err()
		}
		return nil
	})

	if ctx.Err() != nil {
		// Canceled mid-turn: the client is gone, persist nothing.
		return
	}

	if streamErr != nil {
		logger.Error("response generation failed", "session_id", sessionID, "error", streamErr)
		send(ctx, events, Event{Type: EventError, Message: fmt.Sprintf("Error processing stream: %v", streamErr)})

		if full.Len() == 0 {
			o.persistApology(ctx, sessionID)
			send(ctx, events, Event{Type: EventEnd})
			return
		}
		// Fall through and keep the partial response.
	}

	content := full.String()
	if content == "" {
		content = "No response generated"
	}
	if _, err := o.sessions.Append(ctx, sessionID, "ai", content); err != nil {
		logger.Error("storing assistant message failed", "session_id", sessionID, "error", err)
		send(ctx, events, Event{Type: EventError, Message: "failed to store response"})
	}

	send(ctx, events, Event{Type: EventEnd})
}

// retrieve embeds the query and runs the planned vector search.
func (o *Orchestrator) retrieve(ctx context.Context, query string, analysis QueryAnalysis) ([]map[string]any, error) {
	embedding, err := o.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, WrapError(ErrUpstream, err.Error())
	}

	params := PlanSearch(ctx, analysis, o.topK)
	results, err := o.index.Search(ctx, embedding, params)
	if err != nil {
		return nil, WrapError(ErrRetrieval, err.Error())
	}
	return results, nil
}

// persistApology records the user-facing failure message so the session
// history reflects that the turn happened.
func (o *Orchestrator) persistApology(ctx context.Context, sessionID string) {
	if _, err := o.sessions.Append(ctx, sessionID, "ai", apologyMessage); err != nil {
		contextutil.LoggerFromContext(ctx).Error("storing apology message failed", "session_id", sessionID, "error", err)
	}
}

// buildContextBlock renders retrieved payloads into the numbered article
// block the prompt embeds, and collects the matching source attributions.
func buildContextBlock(results []map[string]any, queryType QueryType) (string, []ContextSource) {
	limit := contextArticles
	if queryType == QueryTypeTimeline {
		limit = timelineContextArticles
	}
	if len(results) > limit {
		results = results[:limit]
	}

	var block strings.Builder
	sources := make([]ContextSource, 0, len(results))

	for i, payload := range results {
		title := payloadString(payload, "title")
		source := payloadString(payload, "source_domain")
		url := payloadString(payload, "url")
		date := ""
		if t, ok := publishDate(payload); ok {
			date = t.Format("2006-01-02")
		}

		fmt.Fprintf(&block, "\n\nArticle %d: %s (%s, %s)\n", i+1, title, source, date)
		fmt.Fprintf(&block, "%s...\n", excerpt(payloadString(payload, "text"), excerptLength))

		sources = append(sources, ContextSource{Title: title, Source: source, URL: url})
	}

	return block.String(), sources
}

func payloadString(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// send delivers an event unless ctx is done. Returns false when the consumer
// is gone.
func send(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
