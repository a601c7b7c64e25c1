package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the durable Store backed by a pgx connection pool.
// Schema lives in migrations/ and is applied with goose at startup.
type PostgresStore struct {
	pool         *pgxpool.Pool
	retryBackoff time.Duration
}

// PostgresStoreOption configures a PostgresStore.
type PostgresStoreOption func(*PostgresStore)

// WithPostgresRetryBackoff sets the wait applied to retrying items during
// due-item selection.
func WithPostgresRetryBackoff(d time.Duration) PostgresStoreOption {
	return func(s *PostgresStore) {
		if d > 0 {
			s.retryBackoff = d
		}
	}
}

// NewPostgresStore creates a Store on top of an existing pool.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresStoreOption) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("pgx pool cannot be nil")
	}

	s := &PostgresStore{
		pool:         pool,
		retryBackoff: DefaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

const itemColumns = `id, owner_id, title, body, content_type, hashtags, mentions,
	attachments, platforms, scheduled_for, status, retry_count, last_retry_at,
	publish_error, idempotency_keys, recurrence, published_at, created_at`

// Create implements Store.
func (s *PostgresStore) Create(ctx context.Context, item *Item) error {
	if item == nil {
		return ErrItemNil
	}

	keys, recurrence, err := marshalItemJSON(item)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO scheduled_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		item.ID, item.OwnerID, item.Title, item.Body, item.ContentType,
		item.Hashtags, item.Mentions, item.Attachments, platformStrings(item.Platforms),
		item.ScheduledFor, string(item.Status), item.RetryCount, item.LastRetryAt,
		item.PublishError, keys, recurrence, item.PublishedAt, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scheduled item %s: %w", item.ID, err)
	}
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM scheduled_items
		WHERE id = $1`, id)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load scheduled item %s: %w", id, err)
	}
	return item, nil
}

// Update implements Store. The status transition is validated against the
// current row inside a transaction so concurrent writers cannot skip states.
func (s *PostgresStore) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return ErrItemNil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin update transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	if err := tx.QueryRow(ctx,
		`SELECT status FROM scheduled_items WHERE id = $1 FOR UPDATE`, item.ID,
	).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to read current status for %s: %w", item.ID, err)
	}

	if !Status(current).CanTransition(item.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, item.Status)
	}

	keys, recurrence, err := marshalItemJSON(item)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE scheduled_items SET
			title = $2, body = $3, content_type = $4, hashtags = $5, mentions = $6,
			attachments = $7, platforms = $8, scheduled_for = $9, status = $10,
			retry_count = $11, last_retry_at = $12, publish_error = $13,
			idempotency_keys = $14, recurrence = $15, published_at = $16
		WHERE id = $1`,
		item.ID, item.Title, item.Body, item.ContentType, item.Hashtags,
		item.Mentions, item.Attachments, platformStrings(item.Platforms),
		item.ScheduledFor, string(item.Status), item.RetryCount, item.LastRetryAt,
		item.PublishError, keys, recurrence, item.PublishedAt,
	); err != nil {
		return fmt.Errorf("failed to update scheduled item %s: %w", item.ID, err)
	}

	return tx.Commit(ctx)
}

// ListDue implements Store.
func (s *PostgresStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*Item, error) {
	retryCutoff := now.Add(-s.retryBackoff)

	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM scheduled_items
		WHERE (status = 'scheduled' AND scheduled_for <= $1)
		   OR status = 'queued'
		   OR (status = 'retrying' AND (last_retry_at IS NULL OR last_retry_at <= $2))
		ORDER BY scheduled_for ASC
		LIMIT $3`, now, retryCutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due items: %w", err)
	}
	defer rows.Close()

	var due []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due item: %w", err)
		}
		due = append(due, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate due items: %w", err)
	}
	return due, nil
}

// CountPublishedInSeries implements Store.
func (s *PostgresStore) CountPublishedInSeries(ctx context.Context, item *Item) (int, error) {
	if item == nil {
		return 0, ErrItemNil
	}

	var (
		count int
		err   error
	)
	if item.Recurrence != nil && item.Recurrence.SeriesID != "" {
		err = s.pool.QueryRow(ctx, `
			SELECT count(*) FROM scheduled_items
			WHERE status = 'published' AND recurrence->>'series_id' = $1`,
			item.Recurrence.SeriesID,
		).Scan(&count)
	} else {
		err = s.pool.QueryRow(ctx, `
			SELECT count(*) FROM scheduled_items
			WHERE status = 'published' AND owner_id = $1 AND title = $2 AND body = $3`,
			item.OwnerID, item.Title, item.Body,
		).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count published occurrences: %w", err)
	}
	return count, nil
}

// Reschedule implements Store. Clearing idempotency keys here keeps the
// "keys reset when scheduled_for changes" invariant in one place.
func (s *PostgresStore) Reschedule(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE scheduled_items SET
			scheduled_for = $2,
			status = 'scheduled',
			retry_count = 0,
			last_retry_at = NULL,
			publish_error = '',
			idempotency_keys = NULL
		WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to reschedule item %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func platformStrings(platforms []Platform) []string {
	out := make([]string, len(platforms))
	for i, p := range platforms {
		out[i] = string(p)
	}
	return out
}

// marshalItemJSON serializes the jsonb columns; nil maps and rules become
// SQL NULLs.
func marshalItemJSON(item *Item) (keys, recurrence []byte, err error) {
	if len(item.IdempotencyKeys) > 0 {
		keys, err = json.Marshal(item.IdempotencyKeys)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal idempotency keys: %w", err)
		}
	}
	if item.Recurrence != nil {
		recurrence, err = json.Marshal(item.Recurrence)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal recurrence: %w", err)
		}
	}
	return keys, recurrence, nil
}

func scanItem(row pgx.Row) (*Item, error) {
	var (
		item       Item
		status     string
		platforms  []string
		keysJSON   []byte
		recurJSON  []byte
	)

	if err := row.Scan(
		&item.ID, &item.OwnerID, &item.Title, &item.Body, &item.ContentType,
		&item.Hashtags, &item.Mentions, &item.Attachments, &platforms,
		&item.ScheduledFor, &status, &item.RetryCount, &item.LastRetryAt,
		&item.PublishError, &keysJSON, &recurJSON, &item.PublishedAt, &item.CreatedAt,
	); err != nil {
		return nil, err
	}

	item.Status = Status(status)
	item.Platforms = make([]Platform, len(platforms))
	for i, p := range platforms {
		item.Platforms[i] = Platform(p)
	}

	if len(keysJSON) > 0 {
		if err := json.Unmarshal(keysJSON, &item.IdempotencyKeys); err != nil {
			return nil, fmt.Errorf("failed to unmarshal idempotency keys: %w", err)
		}
	}
	if len(recurJSON) > 0 {
		item.Recurrence = &Recurrence{}
		if err := json.Unmarshal(recurJSON, item.Recurrence); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recurrence: %w", err)
		}
	}

	return &item, nil
}
