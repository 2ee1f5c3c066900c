// Package service implements link management: short code allocation, lookups,
// updates, redirects and batch shortening of URLs found in text.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vadimbarashkov/url-shortener/internal/database"
	"github.com/vadimbarashkov/url-shortener/internal/metrics"
	"github.com/vadimbarashkov/url-shortener/internal/models"
	"github.com/vadimbarashkov/url-shortener/internal/shortcode"
)

// MaxGenerationAttempts bounds the number of candidate codes tried by CreateLink.
const MaxGenerationAttempts = 10

// LinkRepository defines the storage operations the service relies on.
// Lookups return a nil link and a nil error when nothing matches.
type LinkRepository interface {
	// GetByID retrieves a link by its id.
	GetByID(ctx context.Context, id int64) (*models.Link, error)

	// GetByShortCode retrieves a link by its short code.
	GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error)

	// List returns the links of the given owner, or all links when ownerID is empty.
	List(ctx context.Context, ownerID string) ([]models.Link, error)

	// Create inserts a link. It fails with database.ErrShortCodeExists when the code is taken,
	// which makes the repository the final arbiter of uniqueness.
	Create(ctx context.Context, link models.Link) (*models.Link, error)

	// Update applies the supplied fields and returns the refreshed link.
	// It fails with database.ErrShortCodeExists when the new code is taken.
	Update(ctx context.Context, id int64, upd models.LinkUpdate) (*models.Link, error)

	// Delete removes a link. Deleting a missing link is not an error.
	Delete(ctx context.Context, id int64) error
}

// CodeGenerator produces candidate short codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// LinkService manages links on top of a LinkRepository.
//
// Code allocation is optimistic: a candidate is checked first and then inserted,
// and a conflict reported by the repository at insert time counts as a collision
// within the same attempt budget.
type LinkService struct {
	repo    LinkRepository
	gen     CodeGenerator
	metrics *metrics.Metrics
}

// NewLinkService creates a LinkService. m may be nil.
func NewLinkService(repo LinkRepository, gen CodeGenerator, m *metrics.Metrics) *LinkService {
	return &LinkService{
		repo:    repo,
		gen:     gen,
		metrics: m,
	}
}

// CreateLink stores a new link for originalURL.
//
// A non-empty preferredCode is used as is and fails with ErrAlreadyExists when taken.
// Otherwise up to MaxGenerationAttempts random codes are tried before giving up
// with ErrGenerationExhausted.
func (s *LinkService) CreateLink(ctx context.Context, originalURL, preferredCode, ownerID string) (*models.Link, error) {
	const op = "service.LinkService.CreateLink"

	if strings.TrimSpace(originalURL) == "" {
		return nil, fmt.Errorf("%s: original url is empty: %w", op, ErrValidation)
	}

	if preferredCode != "" {
		link, err := s.createWithCode(ctx, originalURL, preferredCode, ownerID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return link, nil
	}

	for attempt := 0; attempt < MaxGenerationAttempts; attempt++ {
		code, err := s.gen.Generate()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		existing, err := s.repo.GetByShortCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to check short code: %w", op, err)
		}
		if existing != nil {
			s.metrics.CodeCollision()
			continue
		}

		link, err := s.repo.Create(ctx, models.Link{
			ShortCode:   code,
			OriginalURL: originalURL,
			OwnerID:     ownerID,
		})
		if err != nil {
			if errors.Is(err, database.ErrShortCodeExists) {
				s.metrics.CodeCollision()
				continue
			}

			return nil, fmt.Errorf("%s: failed to create link: %w", op, err)
		}

		s.metrics.LinkCreated(false)
		return link, nil
	}

	s.metrics.GenerationExhausted()
	return nil, fmt.Errorf("%s: %w", op, ErrGenerationExhausted)
}

func (s *LinkService) createWithCode(ctx context.Context, originalURL, code, ownerID string) (*models.Link, error) {
	if !shortcode.Valid(code) {
		return nil, fmt.Errorf("invalid preferred code %q: %w", code, ErrValidation)
	}

	existing, err := s.repo.GetByShortCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to check short code: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	link, err := s.repo.Create(ctx, models.Link{
		ShortCode:   code,
		OriginalURL: originalURL,
		OwnerID:     ownerID,
	})
	if err != nil {
		if errors.Is(err, database.ErrShortCodeExists) {
			return nil, ErrAlreadyExists
		}

		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	s.metrics.LinkCreated(true)
	return link, nil
}

// GetLink returns the link with the given id.
func (s *LinkService) GetLink(ctx context.Context, id int64) (*models.Link, error) {
	const op = "service.LinkService.GetLink"

	link, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get link: %w", op, err)
	}
	if link == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return link, nil
}

// GetByCode returns the link holding the given short code.
func (s *LinkService) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	const op = "service.LinkService.GetByCode"

	link, err := s.repo.GetByShortCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get link: %w", op, err)
	}
	if link == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return link, nil
}

// ListLinks returns every link of ownerID, or all links when ownerID is empty.
func (s *LinkService) ListLinks(ctx context.Context, ownerID string) ([]models.Link, error) {
	const op = "service.LinkService.ListLinks"

	links, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list links: %w", op, err)
	}

	return links, nil
}

// UpdateLink changes the original URL and/or the short code of a link.
// A new code must not be held by any other link; keeping the current code is allowed.
func (s *LinkService) UpdateLink(ctx context.Context, id int64, upd models.LinkUpdate) (*models.Link, error) {
	const op = "service.LinkService.UpdateLink"

	if upd.OriginalURL != nil && strings.TrimSpace(*upd.OriginalURL) == "" {
		return nil, fmt.Errorf("%s: original url is empty: %w", op, ErrValidation)
	}

	if upd.ShortCode != nil {
		if !shortcode.Valid(*upd.ShortCode) {
			return nil, fmt.Errorf("%s: invalid short code %q: %w", op, *upd.ShortCode, ErrValidation)
		}

		existing, err := s.repo.GetByShortCode(ctx, *upd.ShortCode)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to check short code: %w", op, err)
		}
		if existing != nil && existing.ID != id {
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
	}

	link, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, database.ErrShortCodeExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: failed to update link: %w", op, err)
	}
	if link == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return link, nil
}

// DeleteLink removes a link. Deleting a missing link succeeds.
func (s *LinkService) DeleteLink(ctx context.Context, id int64) error {
	const op = "service.LinkService.DeleteLink"

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: failed to delete link: %w", op, err)
	}

	return nil
}
