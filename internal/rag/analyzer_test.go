package rag

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/rag/mocks"
)

func TestAnalyzeParsesModelJSON(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		wantType     QueryType
		wantOrdering Ordering
		wantEntities []string
	}{
		{
			name:         "clean json",
			response:     `{"query_type": "entity", "filters": {"entities": ["Apple"]}, "ordering": "recent"}`,
			wantType:     QueryTypeEntity,
			wantOrdering: OrderingRecent,
			wantEntities: []string{"Apple"},
		},
		{
			name:         "json wrapped in prose",
			response:     "Here is the analysis:\n```json\n{\"query_type\": \"timeline\", \"filters\": {}, \"ordering\": \"chronological\"}\n```\nDone.",
			wantType:     QueryTypeTimeline,
			wantOrdering: OrderingChronological,
		},
		{
			name:         "unknown values normalized",
			response:     `{"query_type": "opinion", "filters": {}, "ordering": "backwards"}`,
			wantType:     QueryTypeRelevance,
			wantOrdering: OrderingRelevance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			generator := mocks.NewMockGenerator(ctrl)
			generator.EXPECT().
				Generate(gomock.Any(), gomock.Any()).
				Return(tt.response, nil)

			analysis := NewAnalyzer(generator).Analyze(context.Background(), "some question")

			if analysis.QueryType != tt.wantType {
				t.Errorf("QueryType = %q, want %q", analysis.QueryType, tt.wantType)
			}
			if analysis.Ordering != tt.wantOrdering {
				t.Errorf("Ordering = %q, want %q", analysis.Ordering, tt.wantOrdering)
			}
			if len(analysis.Filters.Entities) != len(tt.wantEntities) {
				t.Errorf("Entities = %v, want %v", analysis.Filters.Entities, tt.wantEntities)
			}
		})
	}
}

func TestAnalyzeFallsBackToHeuristicOnCallFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	generator.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return("", errors.New("model unavailable"))

	analysis := NewAnalyzer(generator).Analyze(context.Background(), "timeline of the port strike")

	if analysis.QueryType != QueryTypeTimeline {
		t.Errorf("QueryType = %q, want %q", analysis.QueryType, QueryTypeTimeline)
	}
	if analysis.Ordering != OrderingChronological {
		t.Errorf("Ordering = %q, want %q", analysis.Ordering, OrderingChronological)
	}
}

func TestAnalyzeHeuristicOnUnparseableResponse(t *testing.T) {
	// No JSON in the response: the heuristic runs on the response text.
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	generator.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return("This looks like a summary request to me.", nil)

	analysis := NewAnalyzer(generator).Analyze(context.Background(), "what's going on?")

	if analysis.QueryType != QueryTypeSummary {
		t.Errorf("QueryType = %q, want %q", analysis.QueryType, QueryTypeSummary)
	}
	if analysis.Ordering != OrderingRecent {
		t.Errorf("Ordering = %q, want %q", analysis.Ordering, OrderingRecent)
	}
	if analysis.Filters.StartDate == "" {
		t.Error("summary heuristic did not set a start date")
	}
}

func TestHeuristicAnalysis(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantType     QueryType
		wantOrdering Ordering
		wantEntities []string
	}{
		{
			name:         "plain question",
			text:         "what happened in parliament",
			wantType:     QueryTypeRelevance,
			wantOrdering: OrderingRelevance,
		},
		{
			name:         "fact check",
			text:         "fact check: did the dam fail",
			wantType:     QueryTypeFactCheck,
			wantOrdering: OrderingRecent,
		},
		{
			name:         "category",
			text:         "news in the sports category",
			wantType:     QueryTypeCategory,
			wantOrdering: OrderingRecent,
		},
		{
			name:         "explicit entities",
			text:         "recent moves, focus on: Apple, Microsoft",
			wantType:     QueryTypeRelevance,
			wantOrdering: OrderingRelevance,
			wantEntities: []string{"Apple", "Microsoft"},
		},
		{
			name:         "entity wins over timeline",
			text:         "entity timeline of the dispute",
			wantType:     QueryTypeEntity,
			wantOrdering: OrderingRelevance,
		},
		{
			name:         "entity marker stops at line end",
			text:         "about: Apple\nThis second line is prose, not part of the list",
			wantType:     QueryTypeRelevance,
			wantOrdering: OrderingRelevance,
			wantEntities: []string{"Apple"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := heuristicAnalysis(tt.text)

			if analysis.QueryType != tt.wantType {
				t.Errorf("QueryType = %q, want %q", analysis.QueryType, tt.wantType)
			}
			if analysis.Ordering != tt.wantOrdering {
				t.Errorf("Ordering = %q, want %q", analysis.Ordering, tt.wantOrdering)
			}
			if len(analysis.Filters.Entities) != len(tt.wantEntities) {
				t.Fatalf("Entities = %v, want %v", analysis.Filters.Entities, tt.wantEntities)
			}
			for i, want := range tt.wantEntities {
				if analysis.Filters.Entities[i] != want {
					t.Errorf("Entities[%d] = %q, want %q", i, analysis.Filters.Entities[i], want)
				}
			}
		})
	}
}

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantOK   bool
	}{
		{"valid", `{"query_type": "summary"}`, true},
		{"no braces", "no json here", false},
		{"reversed braces", "} {", false},
		{"invalid json between braces", "{not json}", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parseAnalysis(tt.response); ok != tt.wantOK {
				t.Errorf("parseAnalysis(%q) ok = %v, want %v", tt.response, ok, tt.wantOK)
			}
		})
	}
}
