package search

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"ipad-assistant-be/pkg/utils"
)

const (
	scrapeUserAgent  = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxScrapeContent = 500
)

// Scraper fetches a fixed list of known-good pages and turns each into a hit.
// Fetches are paced by a shared limiter.
type Scraper struct {
	pages   []string
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

func NewScraper(pages []string, delay time.Duration, client *http.Client, logger *log.Logger) *Scraper {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Scraper{
		pages:   pages,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

func (s *Scraper) Name() string { return SourceScrape }

func (s *Scraper) TrySearch(ctx context.Context, req Request) ([]Hit, error) {
	terms := queryTerms(req.Query)
	var hits []Hit

	for _, page := range s.pages {
		if len(hits) >= clampLimit(req.Limit, len(s.pages)) {
			break
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return hits, err
		}

		body, err := getBody(ctx, s.client, page, map[string]string{"User-Agent": scrapeUserAgent})
		if err != nil {
			s.logger.Printf("[WARN] Scrape of %s failed: %v", page, err)
			continue
		}

		hit, err := parsePage(body, terms)
		if err != nil {
			s.logger.Printf("[WARN] Parse of %s failed: %v", page, err)
			continue
		}
		if hit.Content == "" {
			continue
		}
		hit.URL = page
		hit.Source = SourceScrape
		hits = append(hits, hit)
	}
	return hits, nil
}

// parsePage pulls the title, the meta description and the paragraphs that
// mention a query term out of an HTML document.
func parsePage(body []byte, terms []string) (Hit, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return Hit{}, fmt.Errorf("parse html: %w", err)
	}

	var title, description string
	var paragraphs []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if title == "" {
					title = collapse(textOf(n))
				}
			case "meta":
				if attr(n, "name") == "description" || attr(n, "property") == "og:description" {
					if description == "" {
						description = collapse(attr(n, "content"))
					}
				}
			case "p", "h1", "h2", "h3", "li":
				if text := collapse(textOf(n)); text != "" && mentionsAny(text, terms) {
					paragraphs = append(paragraphs, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	parts := make([]string, 0, len(paragraphs)+1)
	if description != "" {
		parts = append(parts, description)
	}
	parts = append(parts, paragraphs...)

	content := utils.Clip(strings.Join(parts, " "), maxScrapeContent)
	return Hit{Title: title, Content: content}, nil
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// queryTerms keeps the words worth matching against page text.
func queryTerms(query string) []string {
	var terms []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, "\"'?!.,:;()")
		if len(w) < 4 || w == "apple" || w == "ipad" || strings.HasPrefix(w, "site:") {
			continue
		}
		terms = append(terms, w)
	}
	return terms
}

func mentionsAny(text string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
