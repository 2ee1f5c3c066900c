package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/url-shortener/internal/database"
	"github.com/vadimbarashkov/url-shortener/internal/models"
)

const linkColumns = `id, short_code, original_url, owner_id, created_at, updated_at, deleted_at`

type linkRecord struct {
	ID          int64          `db:"id"`
	ShortCode   string         `db:"short_code"`
	OriginalURL string         `db:"original_url"`
	OwnerID     sql.NullString `db:"owner_id"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	DeletedAt   sql.NullTime   `db:"deleted_at"`
}

func (r *linkRecord) ToLink() *models.Link {
	link := &models.Link{
		ID:          r.ID,
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		OwnerID:     r.OwnerID.String,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.DeletedAt.Valid {
		t := r.DeletedAt.Time
		link.DeletedAt = &t
	}
	return link
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// LinkRepository stores links in the links table. The unique constraint on
// short_code is the only authority on code uniqueness.
type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{
		db: db,
	}
}

// GetByID returns the link with the given id, or nil if there is none.
func (r *LinkRepository) GetByID(ctx context.Context, id int64) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.GetByID"

	rec := new(linkRecord)
	query := `SELECT ` + linkColumns + `
		FROM links
		WHERE id = $1`

	err := r.db.GetContext(ctx, rec, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: failed to get link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

// GetByShortCode returns the link holding the given code, or nil if there is none.
func (r *LinkRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.GetByShortCode"

	rec := new(linkRecord)
	query := `SELECT ` + linkColumns + `
		FROM links
		WHERE short_code = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: failed to get link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

// List returns links ordered by id. An empty ownerID matches every link.
func (r *LinkRepository) List(ctx context.Context, ownerID string) ([]models.Link, error) {
	const op = "database.postgres.LinkRepository.List"

	var (
		recs []linkRecord
		err  error
	)

	if ownerID == "" {
		query := `SELECT ` + linkColumns + `
			FROM links
			ORDER BY id`
		err = r.db.SelectContext(ctx, &recs, query)
	} else {
		query := `SELECT ` + linkColumns + `
			FROM links
			WHERE owner_id = $1
			ORDER BY id`
		err = r.db.SelectContext(ctx, &recs, query, ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list link records: %w", op, err)
	}

	links := make([]models.Link, 0, len(recs))
	for i := range recs {
		links = append(links, *recs[i].ToLink())
	}

	return links, nil
}

// Create inserts a new link. A taken short code yields database.ErrShortCodeExists.
func (r *LinkRepository) Create(ctx context.Context, link models.Link) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.Create"

	rec := new(linkRecord)
	query := `INSERT INTO links(short_code, original_url, owner_id)
		VALUES ($1, $2, $3)
		RETURNING ` + linkColumns

	err := r.db.GetContext(ctx, rec, query, link.ShortCode, link.OriginalURL, nullString(link.OwnerID))
	if err != nil {
		if isShortCodeViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

// Update applies the supplied fields and returns the refreshed link, or nil if
// no link has the given id.
func (r *LinkRepository) Update(ctx context.Context, id int64, upd models.LinkUpdate) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.Update"

	if upd.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	rec := new(linkRecord)
	query := `UPDATE links
		SET original_url = COALESCE($1, original_url),
			short_code = COALESCE($2, short_code),
			updated_at = NOW()
		WHERE id = $3
		RETURNING ` + linkColumns

	err := r.db.GetContext(ctx, rec, query, upd.OriginalURL, upd.ShortCode, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if isShortCodeViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to update link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

// Delete removes the link with the given id. Deleting a missing id is not an error.
func (r *LinkRepository) Delete(ctx context.Context, id int64) error {
	const op = "database.postgres.LinkRepository.Delete"

	query := `DELETE FROM links WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: failed to delete link record: %w", op, err)
	}

	return nil
}
