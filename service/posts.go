package service

import (
	"context"
	"log/slog"

	"github.com/subgate/subgatebot/core/logger"
	"github.com/subgate/subgatebot/core/telegram/format"
	"github.com/subgate/subgatebot/domain"
)

// PostStore is the slice of the store used by the post service.
type PostStore interface {
	CreatePost(ctx context.Context, p domain.Post) (int64, error)
	PostByID(ctx context.Context, id int64) (domain.Post, error)
	PostsForChannel(ctx context.Context, channelID string) ([]domain.Post, error)
	UpdatePostField(ctx context.Context, id int64, field domain.PostField, value any) error
	DeletePost(ctx context.Context, id int64) error
}

// Posts owns the post lifecycle: atomic commit of a finished draft and
// independent single-field edits.
type Posts struct {
	store PostStore
}

// NewPosts wires the post service.
func NewPosts(store PostStore) *Posts {
	return &Posts{store: store}
}

// Create commits a finished draft as one row. Fail and button text fall
// back to the fixed defaults here, at commit time; the draft is never
// mutated. On store failure no partial post exists.
func (s *Posts) Create(ctx context.Context, d domain.Draft) (domain.Post, error) {
	post := domain.Post{
		ChannelID:   d.ChannelID,
		MessageText: d.MessageText,
		SuccessText: d.SuccessText,
		FailText:    format.DerefString(d.FailText, domain.DefaultFailText),
		ButtonText:  format.DerefString(d.ButtonText, domain.DefaultButtonText),
		PhotoFileID: d.PhotoFileID,
	}
	id, err := s.store.CreatePost(ctx, post)
	if err != nil {
		logger.Error(ctx, "service.posts", "create",
			slog.String("status", "fail"),
			slog.String("channel", d.ChannelID),
			slog.String("err", err.Error()),
		)
		return domain.Post{}, err
	}
	post.ID = id
	logger.Info(ctx, "service.posts", "create",
		slog.String("status", "ok"),
		slog.Int64("post_id", id),
		slog.String("channel", d.ChannelID),
	)
	return post, nil
}

// Get loads a post by id.
func (s *Posts) Get(ctx context.Context, id int64) (domain.Post, error) {
	return s.store.PostByID(ctx, id)
}

// ListForChannel returns a channel's posts, newest first.
func (s *Posts) ListForChannel(ctx context.Context, channelID string) ([]domain.Post, error) {
	return s.store.PostsForChannel(ctx, channelID)
}

// UpdateText sets a single text field on the post.
func (s *Posts) UpdateText(ctx context.Context, id int64, field domain.PostField, text string) error {
	return s.updateField(ctx, id, field, text)
}

// SetPhoto replaces or (with nil) removes the post's photo.
func (s *Posts) SetPhoto(ctx context.Context, id int64, fileID *string) error {
	var v any
	if fileID != nil {
		v = *fileID
	}
	return s.updateField(ctx, id, domain.FieldPhoto, v)
}

// SetMessageID records the delivered channel message id after publishing.
// Republishing overwrites the previous value.
func (s *Posts) SetMessageID(ctx context.Context, id int64, messageID int) error {
	return s.updateField(ctx, id, domain.FieldMessageID, messageID)
}

// Delete removes the post row.
func (s *Posts) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	logger.Info(ctx, "service.posts", "delete",
		slog.String("status", "ok"),
		slog.Int64("post_id", id),
	)
	return nil
}

func (s *Posts) updateField(ctx context.Context, id int64, field domain.PostField, value any) error {
	if err := s.store.UpdatePostField(ctx, id, field, value); err != nil {
		logger.Error(ctx, "service.posts", "update",
			slog.String("status", "fail"),
			slog.Int64("post_id", id),
			slog.String("field", string(field)),
			slog.String("err", err.Error()),
		)
		return err
	}
	logger.Info(ctx, "service.posts", "update",
		slog.String("status", "ok"),
		slog.Int64("post_id", id),
		slog.String("field", string(field)),
	)
	return nil
}
