package service

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/url-shortener/internal/models"
)

type MockLinkRepository struct {
	mock.Mock
}

func (r *MockLinkRepository) GetByID(ctx context.Context, id int64) (*models.Link, error) {
	args := r.Called(ctx, id)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (r *MockLinkRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	args := r.Called(ctx, shortCode)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (r *MockLinkRepository) List(ctx context.Context, ownerID string) ([]models.Link, error) {
	args := r.Called(ctx, ownerID)
	links, _ := args.Get(0).([]models.Link)
	return links, args.Error(1)
}

func (r *MockLinkRepository) Create(ctx context.Context, link models.Link) (*models.Link, error) {
	args := r.Called(ctx, link)
	created, _ := args.Get(0).(*models.Link)
	return created, args.Error(1)
}

func (r *MockLinkRepository) Update(ctx context.Context, id int64, upd models.LinkUpdate) (*models.Link, error) {
	args := r.Called(ctx, id, upd)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (r *MockLinkRepository) Delete(ctx context.Context, id int64) error {
	args := r.Called(ctx, id)
	return args.Error(0)
}

type MockCodeGenerator struct {
	mock.Mock
}

func (g *MockCodeGenerator) Generate() (string, error) {
	args := g.Called()
	return args.String(0), args.Error(1)
}

type MockLinkCreator struct {
	mock.Mock
}

func (c *MockLinkCreator) CreateLink(ctx context.Context, originalURL, preferredCode, ownerID string) (*models.Link, error) {
	args := c.Called(ctx, originalURL, preferredCode, ownerID)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

type MockLinkFinder struct {
	mock.Mock
}

func (f *MockLinkFinder) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	args := f.Called(ctx, code)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}
