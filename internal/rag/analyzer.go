package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_deps.go -package=mocks github.com/RahulGopathi/NewsChatbot-BE/internal/rag Generator,Embedder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/contextutil"
)

// Generator produces model completions for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateStream(ctx context.Context, prompt string, callback func(chunk string) error) error
}

// Embedder turns text into a vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Analyzer classifies user queries and extracts structured filters using the
// generation model, with a keyword heuristic as fallback. Analyze never fails:
// when everything else breaks it returns a plain relevance analysis.
type Analyzer struct {
	generator Generator
}

func NewAnalyzer(generator Generator) *Analyzer {
	return &Analyzer{generator: generator}
}

const analysisPromptTemplate = `You are a query analysis system for a news chatbot. Classify the user query and extract search filters. Today's date is %s.

Respond with a single JSON object and nothing else, with these fields:
- "query_type": one of "summary", "entity", "timeline", "fact_check", "category", "relevance"
- "filters": an object that may contain "start_date" and "end_date" (YYYY-MM-DD), "entities", "categories" and "source_domains" (arrays of strings)
- "ordering": one of "recent", "relevance", "chronological"

Examples:

Query: "summarize today's top stories"
{"query_type": "summary", "filters": {"start_date": "%s"}, "ordering": "recent"}

Query: "what has Apple announced recently"
{"query_type": "entity", "filters": {"entities": ["Apple"]}, "ordering": "recent"}

Query: "timeline of the election dispute"
{"query_type": "timeline", "filters": {}, "ordering": "chronological"}

Query: "is it true that the bridge collapsed"
{"query_type": "fact_check", "filters": {}, "ordering": "recent"}

Query: "latest sports news"
{"query_type": "category", "filters": {"categories": ["sports"]}, "ordering": "recent"}

Query: "articles about renewable energy policy"
{"query_type": "relevance", "filters": {}, "ordering": "relevance"}

Query: %q
`

// Analyze interprets the query. The model is asked first; if the call fails
// the heuristic runs on the query text, and if the call succeeds but yields
// no parseable JSON the heuristic runs on the response text.
func (a *Analyzer) Analyze(ctx context.Context, query string) QueryAnalysis {
	logger := contextutil.LoggerFromContext(ctx)

	today := time.Now().Format("2006-01-02")
	prompt := fmt.Sprintf(analysisPromptTemplate, today, today, query)

	response, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		logger.Warn("query analysis call failed, using heuristic", "error", err)
		return heuristicAnalysis(query)
	}

	analysis, ok := parseAnalysis(response)
	if !ok {
		logger.Warn("query analysis returned no parseable JSON, using heuristic")
		return heuristicAnalysis(response)
	}
	return normalizeAnalysis(analysis)
}

// parseAnalysis extracts the JSON object spanning from the first "{" to the
// last "}" of the response. Models often wrap JSON in prose or code fences.
func parseAnalysis(response string) (QueryAnalysis, bool) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return QueryAnalysis{}, false
	}

	var analysis QueryAnalysis
	if err := json.Unmarshal([]byte(response[start:end+1]), &analysis); err != nil {
		return QueryAnalysis{}, false
	}
	return analysis, true
}

// normalizeAnalysis replaces unknown query types and orderings with the
// relevance defaults.
func normalizeAnalysis(analysis QueryAnalysis) QueryAnalysis {
	switch analysis.QueryType {
	case QueryTypeSummary, QueryTypeEntity, QueryTypeTimeline, QueryTypeFactCheck, QueryTypeCategory, QueryTypeRelevance:
	default:
		analysis.QueryType = QueryTypeRelevance
	}
	switch analysis.Ordering {
	case OrderingRecent, OrderingRelevance, OrderingChronological:
	default:
		analysis.Ordering = OrderingRelevance
	}
	return analysis
}

// entityMarkers introduce an explicit entity list in a query, e.g.
// "focus on: Apple, Google".
var entityMarkers = []string{"entity:", "entities:", "about:", "focus on:"}

// heuristicAnalysis classifies text by keyword when the model cannot.
func heuristicAnalysis(text string) QueryAnalysis {
	lower := strings.ToLower(text)
	analysis := QueryAnalysis{
		QueryType: QueryTypeRelevance,
		Ordering:  OrderingRelevance,
	}

	switch {
	case strings.Contains(lower, "summary") || strings.Contains(lower, "summarize"):
		analysis.QueryType = QueryTypeSummary
		analysis.Ordering = OrderingRecent
		analysis.Filters.StartDate = time.Now().Format("2006-01-02")
	case strings.Contains(lower, "entity"):
		analysis.QueryType = QueryTypeEntity
	case strings.Contains(lower, "timeline"):
		analysis.QueryType = QueryTypeTimeline
		analysis.Ordering = OrderingChronological
	case strings.Contains(lower, "fact") && strings.Contains(lower, "check"):
		analysis.QueryType = QueryTypeFactCheck
		analysis.Ordering = OrderingRecent
	case strings.Contains(lower, "category"):
		analysis.QueryType = QueryTypeCategory
		analysis.Ordering = OrderingRecent
	}

	for _, line := range strings.Split(text, "\n") {
		lowerLine := strings.ToLower(line)
		for _, marker := range entityMarkers {
			idx := strings.Index(lowerLine, marker)
			if idx == -1 {
				continue
			}
			var entities []string
			for _, part := range strings.Split(line[idx+len(marker):], ",") {
				if entity := strings.TrimSpace(part); entity != "" {
					entities = append(entities, entity)
				}
			}
			if len(entities) > 0 {
				analysis.Filters.Entities = entities
			}
			break
		}
	}

	return analysis
}
