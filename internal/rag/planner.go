package rag

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/contextutil"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/vectorstore"
)

// summaryLookbackDays is how far back a summary query reaches when the
// analysis carries no start date.
const summaryLookbackDays = 7

// PlanSearch turns a query analysis into vector search parameters.
// Timelines fetch twice the limit so the chronological arc has enough
// points; summaries without a start date look back a week.
func PlanSearch(ctx context.Context, analysis QueryAnalysis, limit int) vectorstore.SearchParams {
	logger := contextutil.LoggerFromContext(ctx)

	params := vectorstore.SearchParams{
		Limit:         limit,
		SourceDomains: analysis.Filters.SourceDomains,
		Categories:    analysis.Filters.Categories,
	}

	if analysis.QueryType == QueryTypeTimeline {
		params.Limit = limit * 2
	}

	params.StartDate = parsePlanDate(logger, "start_date", analysis.Filters.StartDate)
	params.EndDate = parsePlanDate(logger, "end_date", analysis.Filters.EndDate)

	if analysis.QueryType == QueryTypeSummary && params.StartDate == nil {
		start := time.Now().AddDate(0, 0, -summaryLookbackDays)
		params.StartDate = &start
	}

	return params
}

// parsePlanDate parses a date filter value. Values carrying a time component
// are truncated to the date. Unparseable dates are dropped with a warning
// rather than failing the query.
func parsePlanDate(logger *slog.Logger, field, value string) *time.Time {
	if value == "" {
		return nil
	}
	datePart := value
	if i := strings.IndexByte(datePart, 'T'); i >= 0 {
		datePart = datePart[:i]
	}
	t, err := time.Parse("2006-01-02", datePart)
	if err != nil {
		logger.Warn("dropping unparseable date filter", "field", field, "value", value)
		return nil
	}
	return &t
}

// SortResults arranges retrieved payloads for presentation. Timeline queries
// and chronological ordering sort ascending by publish date; payloads without
// a parseable date sort first. All other orderings keep similarity order.
func SortResults(results []map[string]any, analysis QueryAnalysis) {
	if analysis.Ordering != OrderingChronological && analysis.QueryType != QueryTypeTimeline {
		return
	}

	sort.SliceStable(results, func(i, j int) bool {
		ti, oki := publishDate(results[i])
		tj, okj := publishDate(results[j])
		if !oki {
			return okj
		}
		if !okj {
			return false
		}
		return ti.Before(tj)
	})
}

// publishDate extracts the publish date from a payload map.
func publishDate(payload map[string]any) (time.Time, bool) {
	raw, ok := payload["date_publish"].(string)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
