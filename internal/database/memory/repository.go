// Package memory provides an in-process link store with the same contract as
// the postgres one. It is meant for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vadimbarashkov/url-shortener/internal/database"
	"github.com/vadimbarashkov/url-shortener/internal/models"
)

type LinkRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*models.Link
	byCode map[string]int64
}

func NewLinkRepository() *LinkRepository {
	return &LinkRepository{
		byID:   make(map[int64]*models.Link),
		byCode: make(map[string]int64),
	}
}

func (r *LinkRepository) GetByID(_ context.Context, id int64) (*models.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.byID[id]
	if !ok {
		return nil, nil
	}

	cp := *link
	return &cp, nil
}

func (r *LinkRepository) GetByShortCode(_ context.Context, shortCode string) (*models.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[shortCode]
	if !ok {
		return nil, nil
	}

	cp := *r.byID[id]
	return &cp, nil
}

func (r *LinkRepository) List(_ context.Context, ownerID string) ([]models.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	links := make([]models.Link, 0, len(r.byID))
	for _, link := range r.byID {
		if ownerID != "" && link.OwnerID != ownerID {
			continue
		}
		links = append(links, *link)
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].ID < links[j].ID
	})

	return links, nil
}

func (r *LinkRepository) Create(_ context.Context, link models.Link) (*models.Link, error) {
	const op = "database.memory.LinkRepository.Create"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[link.ShortCode]; exists {
		return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
	}

	r.nextID++
	now := time.Now().UTC()

	stored := &models.Link{
		ID:          r.nextID,
		ShortCode:   link.ShortCode,
		OriginalURL: link.OriginalURL,
		OwnerID:     link.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.byID[stored.ID] = stored
	r.byCode[stored.ShortCode] = stored.ID

	cp := *stored
	return &cp, nil
}

func (r *LinkRepository) Update(_ context.Context, id int64, upd models.LinkUpdate) (*models.Link, error) {
	const op = "database.memory.LinkRepository.Update"

	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.byID[id]
	if !ok {
		return nil, nil
	}

	if upd.ShortCode != nil && *upd.ShortCode != link.ShortCode {
		if _, exists := r.byCode[*upd.ShortCode]; exists {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		delete(r.byCode, link.ShortCode)
		link.ShortCode = *upd.ShortCode
		r.byCode[link.ShortCode] = id
	}
	if upd.OriginalURL != nil {
		link.OriginalURL = *upd.OriginalURL
	}
	if !upd.IsEmpty() {
		link.UpdatedAt = time.Now().UTC()
	}

	cp := *link
	return &cp, nil
}

func (r *LinkRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.byID[id]
	if !ok {
		return nil
	}

	delete(r.byCode, link.ShortCode)
	delete(r.byID, id)

	return nil
}
