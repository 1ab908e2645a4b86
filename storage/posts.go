package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/subgate/subgatebot/domain"
)

// postColumns maps editable fields to their columns. Whitelisting keeps
// UpdatePostField safe to build with fmt.
var postColumns = map[domain.PostField]string{
	domain.FieldMessageText: "message_text",
	domain.FieldSuccessText: "success_text",
	domain.FieldFailText:    "fail_text",
	domain.FieldButtonText:  "button_text",
	domain.FieldPhoto:       "photo_file_id",
	domain.FieldMessageID:   "message_id",
}

// CreatePost inserts a complete post row and returns its id. The caller is
// responsible for defaulting fail/button text beforehand.
func (s *Store) CreatePost(ctx context.Context, p domain.Post) (int64, error) {
	const q = `
		INSERT INTO posts (channel_id, message_text, success_text, fail_text, button_text, photo_file_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	var id int64
	start := time.Now()
	err := s.db.QueryRowxContext(ctx, q,
		p.ChannelID, p.MessageText, p.SuccessText, p.FailText, p.ButtonText, p.PhotoFileID,
	).Scan(&id)
	logQuery(ctx, "post.create", start, err, slog.String("channel", p.ChannelID))
	if err != nil {
		return 0, fmt.Errorf("create post: %w", err)
	}
	return id, nil
}

// PostByID fetches a post; domain.ErrNotFound when the row is gone.
func (s *Store) PostByID(ctx context.Context, id int64) (domain.Post, error) {
	const q = `
		SELECT id, channel_id, message_text, success_text, fail_text, button_text,
		       photo_file_id, message_id, created_at
		FROM posts WHERE id = $1`
	var p domain.Post
	if err := s.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, fmt.Errorf("post %d: %w", id, err)
	}
	return p, nil
}

// PostsForChannel lists a channel's posts, newest first.
func (s *Store) PostsForChannel(ctx context.Context, channelID string) ([]domain.Post, error) {
	const q = `
		SELECT id, channel_id, message_text, success_text, fail_text, button_text,
		       photo_file_id, message_id, created_at
		FROM posts WHERE channel_id = $1
		ORDER BY created_at DESC`
	var out []domain.Post
	if err := s.db.SelectContext(ctx, &out, q, channelID); err != nil {
		return nil, fmt.Errorf("posts for channel %s: %w", channelID, err)
	}
	return out, nil
}

// UpdatePostField sets exactly one column on a post row. value may be nil
// for nullable columns (photo, message id).
func (s *Store) UpdatePostField(ctx context.Context, id int64, field domain.PostField, value any) error {
	col, ok := postColumns[field]
	if !ok {
		return fmt.Errorf("post field %q is not updatable", field)
	}
	q := fmt.Sprintf(`UPDATE posts SET %s = $1 WHERE id = $2`, col)
	start := time.Now()
	res, err := s.db.ExecContext(ctx, q, value, id)
	logQuery(ctx, "post.update", start, err,
		slog.Int64("post_id", id),
		slog.String("field", col),
	)
	if err != nil {
		return fmt.Errorf("update post %d %s: %w", id, col, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeletePost removes a post row.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	start := time.Now()
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	logQuery(ctx, "post.delete", start, err, slog.Int64("post_id", id))
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
