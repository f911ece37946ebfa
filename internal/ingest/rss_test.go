package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/news"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>First Story</title>
      <link>https://example.com/news/first-story.html</link>
      <description>The first story.</description>
      <pubDate>Thu, 20 Aug 2026 10:00:00 GMT</pubDate>
      <category>politics</category>
      <category>elections</category>
    </item>
    <item>
      <title>Second Story</title>
      <link>https://example.com/news/second-story.html</link>
      <description>The second story.</description>
    </item>
    <item>
      <title>No Link Story</title>
      <description>Skipped.</description>
    </item>
  </channel>
</rss>`

func TestFetchFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeedXML))
	}))
	defer server.Close()

	fetcher := NewFetcher([]string{server.URL}, t.TempDir())

	articles, err := fetcher.fetchFeed(context.Background(), server.URL, 10)
	if err != nil {
		t.Fatalf("fetchFeed() error = %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2 (item without link skipped)", len(articles))
	}

	first := articles[0]
	if first.Title != "First Story" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.SourceDomain != "example.com" {
		t.Errorf("SourceDomain = %q, want example.com", first.SourceDomain)
	}
	if first.DatePublish == "" {
		t.Error("DatePublish is empty despite pubDate")
	}
	if len(first.Categories) != 2 || first.Categories[0].Value != "politics" {
		t.Errorf("Categories = %v", first.Categories)
	}
	if first.FetchTime == "" {
		t.Error("FetchTime not set")
	}
}

func TestFetchFeedHonorsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testFeedXML))
	}))
	defer server.Close()

	fetcher := NewFetcher([]string{server.URL}, t.TempDir())

	articles, err := fetcher.fetchFeed(context.Background(), server.URL, 1)
	if err != nil {
		t.Fatalf("fetchFeed() error = %v", err)
	}
	if len(articles) != 1 {
		t.Errorf("got %d articles, want 1", len(articles))
	}
}

func TestSaveArticle(t *testing.T) {
	dir := t.TempDir()
	fetcher := NewFetcher(nil, dir)

	article := &news.RawArticle{
		Title:        "Big News: Markets Rally!",
		Text:         "Body text.",
		URL:          "https://example.com/a",
		SourceDomain: "example.com",
	}
	if err := fetcher.saveArticle(article); err != nil {
		t.Fatalf("saveArticle() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d files, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "Big_News__Markets_Rally_") {
		t.Errorf("filename = %q, want sanitized title prefix", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	var decoded news.RawArticle
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("saved file is not valid JSON: %v", err)
	}
	if decoded.Title != article.Title {
		t.Errorf("round-tripped title = %q", decoded.Title)
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "Hello_World"},
		{"a/b\\c:d", "a_b_c_d"},
		{strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}
	for _, tt := range tests {
		if got := safeFilename(tt.in); got != tt.want {
			t.Errorf("safeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSourceDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.nytimes.com/2026/08/20/story.html", "nytimes.com"},
		{"https://example.com/a", "example.com"},
		{"://bad", ""},
	}
	for _, tt := range tests {
		if got := sourceDomain(tt.in); got != tt.want {
			t.Errorf("sourceDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
