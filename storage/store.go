// Package storage implements the persistent store on PostgreSQL via sqlx.
// Every mutation is a single-row statement; the FSM never needs multi-row
// transactions.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/subgate/subgatebot/core/logger"
	"github.com/subgate/subgatebot/domain"
)

// Store wraps the database handle with the queries used by the services.
type Store struct {
	db *sqlx.DB
}

// New constructs a Store over an established connection.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// UpsertChannel registers a channel or refreshes its display name, returning
// the channel row id.
func (s *Store) UpsertChannel(ctx context.Context, channelID, name string) (int64, error) {
	const q = `
		INSERT INTO channels (channel_id, channel_name)
		VALUES ($1, $2)
		ON CONFLICT (channel_id) DO UPDATE SET channel_name = EXCLUDED.channel_name
		RETURNING id`
	var rowID int64
	start := time.Now()
	err := s.db.QueryRowxContext(ctx, q, channelID, name).Scan(&rowID)
	logQuery(ctx, "channel.upsert", start, err, slog.String("channel", channelID))
	if err != nil {
		return 0, fmt.Errorf("upsert channel %s: %w", channelID, err)
	}
	return rowID, nil
}

// DeleteChannel removes the channel row; grants and posts cascade.
func (s *Store) DeleteChannel(ctx context.Context, channelID string) error {
	start := time.Now()
	res, err := s.db.ExecContext(ctx, `DELETE FROM channels WHERE channel_id = $1`, channelID)
	logQuery(ctx, "channel.delete", start, err, slog.String("channel", channelID))
	if err != nil {
		return fmt.Errorf("delete channel %s: %w", channelID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddAdmin records an admin grant; repeated grants are ignored.
func (s *Store) AddAdmin(ctx context.Context, userID int64, channelID string) error {
	const q = `
		INSERT INTO channel_admins (channel_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (channel_id, user_id) DO NOTHING`
	start := time.Now()
	_, err := s.db.ExecContext(ctx, q, channelID, userID)
	logQuery(ctx, "admin.add", start, err,
		slog.String("channel", channelID),
		slog.Int64("user_id", userID),
	)
	if err != nil {
		return fmt.Errorf("add admin grant: %w", err)
	}
	return nil
}

// IsAdmin reports whether a grant exists for the (user, channel) pair.
func (s *Store) IsAdmin(ctx context.Context, userID int64, channelID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM channel_admins WHERE user_id = $1 AND channel_id = $2)`
	var ok bool
	if err := s.db.GetContext(ctx, &ok, q, userID, channelID); err != nil {
		return false, fmt.Errorf("admin lookup: %w", err)
	}
	return ok, nil
}

// ChannelsForUser lists channels the user holds a grant for.
func (s *Store) ChannelsForUser(ctx context.Context, userID int64) ([]domain.Channel, error) {
	const q = `
		SELECT c.id, c.channel_id, c.channel_name, c.created_at
		FROM channels c
		JOIN channel_admins ca ON c.channel_id = ca.channel_id
		WHERE ca.user_id = $1
		ORDER BY c.channel_name`
	var out []domain.Channel
	if err := s.db.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, fmt.Errorf("channels for user %d: %w", userID, err)
	}
	return out, nil
}

// ChannelByID fetches a channel by its external identifier.
func (s *Store) ChannelByID(ctx context.Context, channelID string) (domain.Channel, error) {
	const q = `SELECT id, channel_id, channel_name, created_at FROM channels WHERE channel_id = $1`
	var ch domain.Channel
	if err := s.db.GetContext(ctx, &ch, q, channelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Channel{}, domain.ErrNotFound
		}
		return domain.Channel{}, fmt.Errorf("channel %s: %w", channelID, err)
	}
	return ch, nil
}

func logQuery(ctx context.Context, op string, start time.Time, err error, attrs ...slog.Attr) {
	attrs = append(attrs, slog.Duration("duration", logger.Took(start)))
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
		logger.Error(ctx, "db", op, attrs...)
		return
	}
	logger.Debug(ctx, "db", op, attrs...)
}
