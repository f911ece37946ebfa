package news

import "time"

// Category is a category label attached to an article, optionally scoped to a
// taxonomy domain (as carried in RSS category elements).
type Category struct {
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
}

// RawArticle is the raw news article as ingested from JSON files on disk.
type RawArticle struct {
	Title        string     `json:"title"`
	Text         string     `json:"text"`
	URL          string     `json:"url"`
	Authors      []string   `json:"authors"`
	DatePublish  string     `json:"date_publish"`
	SourceDomain string     `json:"source_domain"`
	Language     string     `json:"language"`
	Description  string     `json:"description,omitempty"`
	Categories   []Category `json:"categories"`
	FetchTime    string     `json:"fetch_time"`
}

// Article is a prepared article ready for chunking: the raw article with a
// stable id, a parsed publish date and flattened category values.
type Article struct {
	ID           string
	Title        string
	Text         string
	URL          string
	DatePublish  time.Time
	SourceDomain string
	Categories   []string
	Description  string
}

// Chunk is a bounded slice of an article's text, the atomic unit stored in
// the vector index. Chunk ids follow the pattern "{article_id}_{index}".
type Chunk struct {
	ID           string         `json:"id"`
	ArticleID    string         `json:"article_id"`
	Title        string         `json:"title"`
	Text         string         `json:"text"`
	URL          string         `json:"url"`
	DatePublish  time.Time      `json:"date_publish"`
	SourceDomain string         `json:"source_domain"`
	Categories   []string       `json:"categories"`
	Description  string         `json:"description,omitempty"`
	Metadata     map[string]any `json:"metadata"`
}
