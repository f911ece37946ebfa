package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/contextutil"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/news"
)

const (
	extractWorkers   = 5
	extractorTimeout = 30 * time.Second
)

// Fetcher pulls article URLs from RSS feeds, extracts the full article text
// and writes raw article JSON files for the ingestion pipeline to pick up.
type Fetcher struct {
	feedURLs []string
	outDir   string
	parser   *gofeed.Parser
}

func NewFetcher(feedURLs []string, outDir string) *Fetcher {
	return &Fetcher{
		feedURLs: feedURLs,
		outDir:   outDir,
		parser:   gofeed.NewParser(),
	}
}

// FetchArticles collects up to limit articles across all feeds, extracts
// their content concurrently and saves them. Feed and article failures are
// logged and skipped. Returns the number of articles saved.
func (f *Fetcher) FetchArticles(ctx context.Context, limit int) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(f.feedURLs) == 0 {
		return 0, fmt.Errorf("no RSS feed URLs configured")
	}

	perFeed := limit / len(f.feedURLs)
	if perFeed < 1 {
		perFeed = 1
	}

	var articles []*news.RawArticle
	for _, feedURL := range f.feedURLs {
		feedArticles, err := f.fetchFeed(ctx, feedURL, perFeed)
		if err != nil {
			logger.Error("skipping RSS feed", "feed", feedURL, "error", err)
			continue
		}
		logger.Info("fetched feed", "feed", feedURL, "articles", len(feedArticles))
		articles = append(articles, feedArticles...)
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}

	f.extractAll(ctx, articles)

	saved := 0
	for _, article := range articles {
		if article.Title == "" || article.Text == "" {
			logger.Warn("dropping article without extracted content", "url", article.URL)
			continue
		}
		if err := f.saveArticle(article); err != nil {
			logger.Error("saving article failed", "url", article.URL, "error", err)
			continue
		}
		saved++
	}

	logger.Info("RSS ingestion finished", "fetched", len(articles), "saved", saved)
	return saved, nil
}

// fetchFeed parses one feed and turns up to maxItems items into raw articles
// with metadata filled from the feed entry.
func (f *Fetcher) fetchFeed(ctx context.Context, feedURL string, maxItems int) ([]*news.RawArticle, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	count := len(feed.Items)
	if count > maxItems {
		count = maxItems
	}

	articles := make([]*news.RawArticle, 0, count)
	for _, item := range feed.Items[:count] {
		if item.Link == "" {
			continue
		}

		article := &news.RawArticle{
			Title:        item.Title,
			URL:          item.Link,
			Description:  item.Description,
			SourceDomain: sourceDomain(item.Link),
			FetchTime:    time.Now().Format(time.RFC3339),
		}

		if item.PublishedParsed != nil {
			article.DatePublish = item.PublishedParsed.Format(time.RFC3339)
		} else if item.UpdatedParsed != nil {
			article.DatePublish = item.UpdatedParsed.Format(time.RFC3339)
		}

		for _, author := range item.Authors {
			if author != nil && author.Name != "" {
				article.Authors = append(article.Authors, author.Name)
			}
		}

		for _, category := range item.Categories {
			article.Categories = append(article.Categories, news.Category{Value: category})
		}

		articles = append(articles, article)
	}

	return articles, nil
}

// extractAll fetches the full article text for every article using a bounded
// worker pool. Extraction failures leave the article text empty.
func (f *Fetcher) extractAll(ctx context.Context, articles []*news.RawArticle) {
	logger := contextutil.LoggerFromContext(ctx)

	var wg sync.WaitGroup
	work := make(chan *news.RawArticle)

	for i := 0; i < extractWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for article := range work {
				extracted, err := readability.FromURL(article.URL, extractorTimeout)
				if err != nil {
					logger.Warn("content extraction failed", "url", article.URL, "error", err)
					continue
				}
				article.Text = extracted.TextContent
				if article.Description == "" {
					article.Description = extracted.Excerpt
				}
				if len(article.Authors) == 0 && extracted.Byline != "" {
					article.Authors = []string{extracted.Byline}
				}
			}
		}()
	}

	for _, article := range articles {
		select {
		case work <- article:
		case <-ctx.Done():
		}
	}
	close(work)
	wg.Wait()
}

// saveArticle writes the article as a JSON file named from its title plus a
// timestamp for uniqueness.
func (f *Fetcher) saveArticle(article *news.RawArticle) error {
	filename := fmt.Sprintf("%s_%s.json", safeFilename(article.Title), time.Now().Format("20060102150405"))

	data, err := json.MarshalIndent(article, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding article: %w", err)
	}
	path := filepath.Join(f.outDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// safeFilename keeps alphanumerics and replaces everything else, capping the
// length so titles cannot produce unwieldy paths.
func safeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := b.String()
	if len(name) > 100 {
		name = name[:100]
	}
	return name
}

// sourceDomain derives the publisher domain from an article URL.
func sourceDomain(articleURL string) string {
	u, err := url.Parse(articleURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
