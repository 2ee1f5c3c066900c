package http

import (
	"time"

	"github.com/vadimbarashkov/url-shortener/internal/models"
	"github.com/vadimbarashkov/url-shortener/internal/service"
)

type createLinkRequest struct {
	OriginalURL   string `json:"original_url" validate:"required,max=2048"`
	PreferredCode string `json:"preferred_code" validate:"omitempty,alphanum,max=32"`
}

type updateLinkRequest struct {
	OriginalURL *string `json:"original_url" validate:"omitempty,max=2048"`
	ShortCode   *string `json:"short_code" validate:"omitempty,alphanum,max=32"`
}

func (req updateLinkRequest) toLinkUpdate() models.LinkUpdate {
	return models.LinkUpdate{
		OriginalURL: req.OriginalURL,
		ShortCode:   req.ShortCode,
	}
}

type processTextRequest struct {
	Text    *string `json:"text" validate:"required"`
	BaseURL string  `json:"base_url" validate:"omitempty,url"`
}

type linkResponse struct {
	ID          int64     `json:"id"`
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	OwnerID     string    `json:"owner_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toLinkResponse(link *models.Link) linkResponse {
	return linkResponse{
		ID:          link.ID,
		OriginalURL: link.OriginalURL,
		ShortCode:   link.ShortCode,
		OwnerID:     link.OwnerID,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	}
}

func toLinkResponses(links []models.Link) []linkResponse {
	resp := make([]linkResponse, 0, len(links))
	for i := range links {
		resp = append(resp, toLinkResponse(&links[i]))
	}
	return resp
}

type processedTextResponse struct {
	ProcessedText  string            `json:"processed_text"`
	ShortenedLinks map[string]string `json:"shortened_links"`
}

func toProcessedTextResponse(res *service.ProcessedText) processedTextResponse {
	return processedTextResponse{
		ProcessedText:  res.Text,
		ShortenedLinks: res.Links,
	}
}

type deleteLinkResponse struct {
	Deleted bool `json:"deleted"`
}
