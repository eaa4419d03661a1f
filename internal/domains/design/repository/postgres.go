package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"designlab-backend/internal/domains/design/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresDesignRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresDesignRepository(pool *pgxpool.Pool) DesignRepository {
	return &postgresDesignRepository{pool: pool}
}

// =====================================================
// CREATE
// =====================================================

func (r *postgresDesignRepository) Create(ctx context.Context, record *model.DesignRecord) error {
	query := `
		INSERT INTO designs (
			design_id, user_id, created_at,
			prompt_hash, model, design, previews, preview_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	designJSON, err := json.Marshal(record.Design)
	if err != nil {
		return fmt.Errorf("failed to marshal design: %w", err)
	}

	previews := record.Previews
	if previews == nil {
		previews = []model.PreviewEntry{}
	}
	previewsJSON, err := json.Marshal(previews)
	if err != nil {
		return fmt.Errorf("failed to marshal previews: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		record.DesignID,
		record.UserID,
		record.CreatedAt,
		record.PromptHash,
		record.Model,
		designJSON,
		previewsJSON,
		nullableString(record.PreviewURL),
	)

	if err != nil {
		return fmt.Errorf("failed to create design: %w", err)
	}

	return nil
}

// =====================================================
// GET BY ID
// =====================================================

func (r *postgresDesignRepository) GetByID(ctx context.Context, designID string) (*model.DesignRecord, error) {
	query := `
		SELECT
			design_id, user_id, created_at,
			prompt_hash, model, design, previews, preview_url
		FROM designs
		WHERE design_id = $1
	`

	record, err := scanRecord(r.pool.QueryRow(ctx, query, designID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrDesignNotFound
		}
		return nil, fmt.Errorf("failed to get design: %w", err)
	}

	return record, nil
}

// =====================================================
// APPEND PREVIEW
// =====================================================

// AppendPreview relies on Postgres row-level locking: the jsonb append
// and the set-if-absent of preview_url happen in one statement, so
// concurrent workers interleave without losing entries.
func (r *postgresDesignRepository) AppendPreview(ctx context.Context, designID string, entry model.PreviewEntry) error {
	query := `
		UPDATE designs
		SET previews = previews || $2::jsonb,
		    preview_url = COALESCE(preview_url, $3)
		WHERE design_id = $1
	`

	entryJSON, err := json.Marshal([]model.PreviewEntry{entry})
	if err != nil {
		return fmt.Errorf("failed to marshal preview entry: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, designID, entryJSON, entry.URL)
	if err != nil {
		return fmt.Errorf("failed to append preview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDesignNotFound
	}

	return nil
}

// =====================================================
// REFRESH PREVIEW URL
// =====================================================

// RefreshPreviewURL rewrites one entry's url field inside the jsonb
// array, keyed by storage_key, in a single statement. Row-level
// locking serializes it against concurrent AppendPreview calls, so an
// append landing mid-refresh is never lost. The record's preview_url
// follows the first entry, which is where set-if-absent pinned it.
func (r *postgresDesignRepository) RefreshPreviewURL(ctx context.Context, designID, storageKey, url string) error {
	query := `
		UPDATE designs
		SET previews = (
			SELECT COALESCE(jsonb_agg(
				CASE WHEN elem->>'storage_key' = $2
				     THEN jsonb_set(elem, '{url}', to_jsonb($3::text))
				     ELSE elem
				END ORDER BY ord), '[]'::jsonb)
			FROM jsonb_array_elements(previews) WITH ORDINALITY AS t(elem, ord)
		),
		    preview_url = CASE WHEN previews->0->>'storage_key' = $2
		                       THEN $3
		                       ELSE preview_url
		                  END
		WHERE design_id = $1
	`

	tag, err := r.pool.Exec(ctx, query, designID, storageKey, url)
	if err != nil {
		return fmt.Errorf("failed to refresh preview url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDesignNotFound
	}

	return nil
}

// =====================================================
// LIST RECENT
// =====================================================

func (r *postgresDesignRepository) ListRecent(ctx context.Context, since time.Time, limit int) ([]*model.DesignRecord, error) {
	query := `
		SELECT
			design_id, user_id, created_at,
			prompt_hash, model, design, previews, preview_url
		FROM designs
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	defer rows.Close()

	records := make([]*model.DesignRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan design: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// =====================================================
// HELPERS
// =====================================================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*model.DesignRecord, error) {
	record := &model.DesignRecord{}
	var (
		designJSON   []byte
		previewsJSON []byte
		previewURL   sql.NullString
	)

	err := row.Scan(
		&record.DesignID,
		&record.UserID,
		&record.CreatedAt,
		&record.PromptHash,
		&record.Model,
		&designJSON,
		&previewsJSON,
		&previewURL,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(designJSON, &record.Design); err != nil {
		return nil, fmt.Errorf("failed to unmarshal design: %w", err)
	}
	if err := json.Unmarshal(previewsJSON, &record.Previews); err != nil {
		return nil, fmt.Errorf("failed to unmarshal previews: %w", err)
	}
	if record.Previews == nil {
		record.Previews = []model.PreviewEntry{}
	}
	record.PreviewURL = previewURL.String

	return record, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
