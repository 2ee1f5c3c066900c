package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vadimbarashkov/url-shortener/internal/models"
)

type linkFinder interface {
	GetByCode(ctx context.Context, code string) (*models.Link, error)
}

// Redirector resolves short codes to redirect targets.
type Redirector struct {
	links linkFinder
}

func NewRedirector(links linkFinder) *Redirector {
	return &Redirector{links: links}
}

// Resolve returns the normalized target URL for code, or ErrNotFound.
func (r *Redirector) Resolve(ctx context.Context, code string) (string, error) {
	const op = "service.Redirector.Resolve"

	link, err := r.links.GetByCode(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return NormalizeURL(link.OriginalURL), nil
}

// NormalizeURL prefixes rawURL with http:// unless it already starts with
// http:// or https://. The scheme check ignores case, so HTTPS://a.com is
// returned unchanged.
func NormalizeURL(rawURL string) string {
	lower := strings.ToLower(rawURL)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return rawURL
	}
	return "http://" + rawURL
}
