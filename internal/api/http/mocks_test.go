package http

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/url-shortener/internal/models"
	"github.com/vadimbarashkov/url-shortener/internal/service"
)

type MockLinkService struct {
	mock.Mock
}

func (s *MockLinkService) CreateLink(ctx context.Context, originalURL, preferredCode, ownerID string) (*models.Link, error) {
	args := s.Called(ctx, originalURL, preferredCode, ownerID)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (s *MockLinkService) GetLink(ctx context.Context, id int64) (*models.Link, error) {
	args := s.Called(ctx, id)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (s *MockLinkService) ListLinks(ctx context.Context, ownerID string) ([]models.Link, error) {
	args := s.Called(ctx, ownerID)
	links, _ := args.Get(0).([]models.Link)
	return links, args.Error(1)
}

func (s *MockLinkService) UpdateLink(ctx context.Context, id int64, upd models.LinkUpdate) (*models.Link, error) {
	args := s.Called(ctx, id, upd)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

func (s *MockLinkService) DeleteLink(ctx context.Context, id int64) error {
	args := s.Called(ctx, id)
	return args.Error(0)
}

type MockTextProcessor struct {
	mock.Mock
}

func (p *MockTextProcessor) Process(ctx context.Context, text, baseURL, ownerID string) (*service.ProcessedText, error) {
	args := p.Called(ctx, text, baseURL, ownerID)
	res, _ := args.Get(0).(*service.ProcessedText)
	return res, args.Error(1)
}

type MockRedirector struct {
	mock.Mock
}

func (r *MockRedirector) Resolve(ctx context.Context, code string) (string, error) {
	args := r.Called(ctx, code)
	return args.String(0), args.Error(1)
}
