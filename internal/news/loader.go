package news

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LoadRawArticle loads a raw news article from a JSON file.
func LoadRawArticle(filePath string) (*RawArticle, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read article file: %w", err)
	}

	var raw RawArticle
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse article file %s: %w", filePath, err)
	}
	return &raw, nil
}

// PrepareArticle converts a raw article into an Article ready for chunking.
// The article id is derived from the URL basename (extension stripped); when
// the URL yields nothing usable a fresh UUID is assigned. An unparseable
// publish date falls back to the current time so the article still indexes.
func PrepareArticle(raw *RawArticle) Article {
	id := strings.SplitN(path.Base(raw.URL), ".", 2)[0]
	if id == "" || id == "/" || id == "." {
		id = uuid.NewString()
	}

	datePublish, err := time.Parse(time.RFC3339, raw.DatePublish)
	if err != nil {
		// date_publish is written by the fetcher without a zone in some feeds
		datePublish, err = time.Parse("2006-01-02T15:04:05", raw.DatePublish)
	}
	if err != nil {
		datePublish = time.Now()
	}

	categories := make([]string, 0, len(raw.Categories))
	for _, c := range raw.Categories {
		if c.Value != "" {
			categories = append(categories, c.Value)
		}
	}

	return Article{
		ID:           id,
		Title:        raw.Title,
		Text:         raw.Text,
		URL:          raw.URL,
		DatePublish:  datePublish,
		SourceDomain: raw.SourceDomain,
		Categories:   categories,
		Description:  raw.Description,
	}
}
