package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/vadimbarashkov/url-shortener/internal/metrics"
	"github.com/vadimbarashkov/url-shortener/internal/models"
	"mvdan.cc/xurls/v2"
)

// linkCreator is the part of LinkService the text processor needs.
type linkCreator interface {
	CreateLink(ctx context.Context, originalURL, preferredCode, ownerID string) (*models.Link, error)
}

// ProcessedText is the result of shortening every URL in a text.
type ProcessedText struct {
	// Text is the input with every shortened URL replaced by its short URL.
	Text string
	// Links maps each shortened original URL to its short URL.
	Links map[string]string
}

// TextProcessor shortens all URLs found in free text.
type TextProcessor struct {
	links          linkCreator
	defaultBaseURL string
	urlRe          *regexp.Regexp
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

// NewTextProcessor creates a TextProcessor. defaultBaseURL is used when a call
// does not supply a base URL. m may be nil.
func NewTextProcessor(links linkCreator, defaultBaseURL string, logger *slog.Logger, m *metrics.Metrics) *TextProcessor {
	return &TextProcessor{
		links:          links,
		defaultBaseURL: defaultBaseURL,
		urlRe:          xurls.Relaxed(),
		logger:         logger,
		metrics:        m,
	}
}

// ExtractURLs returns the distinct URLs found in text in order of first appearance.
// Both scheme-qualified URLs and bare domains are recognized. Email addresses
// are not URLs and are skipped.
func (p *TextProcessor) ExtractURLs(text string) []string {
	matches := p.urlRe.FindAllString(text, -1)

	seen := make(map[string]struct{}, len(matches))
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		if isEmail(m) {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		urls = append(urls, m)
	}

	return urls
}

// isEmail reports whether a relaxed match is an email address or mailto: link
// rather than a URL. Userinfo in a scheme-qualified URL still counts as a URL.
func isEmail(match string) bool {
	return strings.Contains(match, "@") && !strings.Contains(match, "://")
}

// Process shortens each distinct URL of text once and rewrites every occurrence
// to the short URL baseURL + "/l/" + code.
//
// URLs that fail to shorten are logged and left untouched; they are not part of
// the returned mapping. The call itself only fails when ctx is done.
func (p *TextProcessor) Process(ctx context.Context, text, baseURL, ownerID string) (*ProcessedText, error) {
	const op = "service.TextProcessor.Process"

	if baseURL == "" {
		baseURL = p.defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	urls := p.ExtractURLs(text)
	if len(urls) == 0 {
		return &ProcessedText{Text: text, Links: map[string]string{}}, nil
	}

	links := make(map[string]string, len(urls))

	// URLs are shortened one at a time in order of first appearance.
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		link, err := p.links.CreateLink(ctx, u, "", ownerID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("%s: %w", op, ctxErr)
			}

			p.metrics.TextURL(false)
			if p.logger != nil {
				p.logger.WarnContext(ctx, "failed to shorten url, keeping original",
					slog.String("op", op),
					slog.String("url", u),
					slog.Any("err", err),
				)
			}
			continue
		}

		p.metrics.TextURL(true)
		links[u] = baseURL + "/l/" + link.ShortCode
	}

	rewritten := p.urlRe.ReplaceAllStringFunc(text, func(match string) string {
		if short, ok := links[match]; ok {
			return short
		}
		return match
	})

	return &ProcessedText{Text: rewritten, Links: links}, nil
}
