// Package scrape extracts contact details from business websites.
package scrape

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// maxBodyBytes bounds how much of a page is read for pattern matching.
const maxBodyBytes = 2 << 20

var (
	emailRe    = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)
	facebookRe = regexp.MustCompile(`(?i)https?://(www\.)?facebook\.com/[A-Za-z0-9._-]+`)
)

// Contact holds the fields scraped from a website. Absent fields are empty.
type Contact struct {
	Email    string `json:"email"`
	Facebook string `json:"facebook"`
}

// Scraper fetches a page and extracts the first email address and facebook
// profile link. It never returns an error: any fetch or parse failure, and
// an empty URL, yield an empty Contact.
type Scraper struct {
	http      *http.Client
	userAgent string
}

// Option configures the Scraper.
type Option func(*Scraper)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Scraper) {
		s.http = hc
	}
}

// New creates a Scraper with a fixed per-request timeout and a browser-like
// client header.
func New(timeout time.Duration, userAgent string, opts ...Option) *Scraper {
	s := &Scraper{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Contacts fetches rawURL and extracts contact fields. Anchor hrefs are
// preferred (mailto: links, facebook profile links); the raw page text is
// the fallback. Only the first match of each pattern is used.
func (s *Scraper) Contacts(ctx context.Context, rawURL string) Contact {
	if rawURL == "" {
		return Contact{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Contact{}
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		zap.L().Debug("scrape: fetch failed", zap.String("url", rawURL), zap.Error(err))
		return Contact{}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Debug("scrape: non-2xx response", zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
		return Contact{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Contact{}
	}

	html := string(body)
	c := Contact{}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, _ := sel.Attr("href")
			if c.Email == "" && strings.HasPrefix(strings.ToLower(href), "mailto:") {
				c.Email = emailRe.FindString(href)
			}
			if c.Facebook == "" {
				c.Facebook = facebookRe.FindString(href)
			}
			return c.Email == "" || c.Facebook == ""
		})
	}

	if c.Email == "" {
		c.Email = emailRe.FindString(html)
	}
	if c.Facebook == "" {
		c.Facebook = facebookRe.FindString(html)
	}

	return c
}
