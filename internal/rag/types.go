package rag

// QueryType classifies what kind of answer the user is after.
type QueryType string

const (
	QueryTypeSummary   QueryType = "summary"
	QueryTypeEntity    QueryType = "entity"
	QueryTypeTimeline  QueryType = "timeline"
	QueryTypeFactCheck QueryType = "fact_check"
	QueryTypeCategory  QueryType = "category"
	QueryTypeRelevance QueryType = "relevance"
)

// Ordering controls how retrieved articles are arranged in the context.
type Ordering string

const (
	OrderingRecent        Ordering = "recent"
	OrderingRelevance     Ordering = "relevance"
	OrderingChronological Ordering = "chronological"
)

// Filters are the structured constraints extracted from a query.
// All fields are optional; dates are "YYYY-MM-DD" strings as extracted.
type Filters struct {
	StartDate     string   `json:"start_date,omitempty"`
	EndDate       string   `json:"end_date,omitempty"`
	Entities      []string `json:"entities,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	SourceDomains []string `json:"source_domains,omitempty"`
}

// QueryAnalysis is the structured interpretation of a user query.
type QueryAnalysis struct {
	QueryType QueryType `json:"query_type"`
	Filters   Filters   `json:"filters"`
	Ordering  Ordering  `json:"ordering"`
}

// EventType identifies a streamed conversation event.
type EventType string

const (
	EventStart   EventType = "START"
	EventContext EventType = "CONTEXT"
	EventMessage EventType = "MESSAGE"
	EventEnd     EventType = "END"
	EventError   EventType = "ERROR"
)

// ContextSource describes one retrieved article cited in a response.
type ContextSource struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url"`
}

// Event is one frame of a streamed conversation turn. Field names follow the
// wire format clients consume: MESSAGE frames carry role and message, CONTEXT
// frames carry context_sources.
type Event struct {
	Type           EventType       `json:"type"`
	Role           string          `json:"role,omitempty"`
	Message        string          `json:"message,omitempty"`
	ContextSources []ContextSource `json:"context_sources,omitempty"`
}
