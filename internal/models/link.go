package models

import "time"

// Link represents a shortened link and its associated metadata.
type Link struct {
	// ID is the unique identifier assigned by the store on creation.
	ID int64
	// ShortCode is the unique code substituted for the original URL.
	ShortCode string
	// OriginalURL is the URL the short code points to. Any scheme is accepted.
	OriginalURL string
	// OwnerID references the authenticated creator. Empty when unknown.
	OwnerID string
	// CreatedAt is the timestamp indicating when the link was created.
	CreatedAt time.Time
	// UpdatedAt is the timestamp indicating when the link was last updated.
	UpdatedAt time.Time
	// DeletedAt is reserved for soft deletion and is never set.
	DeletedAt *time.Time
}

// LinkUpdate carries the fields to change on an existing link.
// A nil field is left untouched.
type LinkUpdate struct {
	OriginalURL *string
	ShortCode   *string
}

// IsEmpty reports whether the update changes nothing.
func (u LinkUpdate) IsEmpty() bool {
	return u.OriginalURL == nil && u.ShortCode == nil
}
