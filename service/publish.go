package service

import (
	"context"
	"log/slog"

	"github.com/subgate/subgatebot/core/logger"
	"github.com/subgate/subgatebot/domain"
)

// ChannelSender delivers a finished post to its channel and returns the
// transport message id.
type ChannelSender interface {
	SendPost(ctx context.Context, post domain.Post) (int, error)
}

// Guard answers whether a user may act on a channel.
type Guard interface {
	Authorize(ctx context.Context, userID int64, channelID string) error
}

// Publisher sends posts to channels and records the delivered message id.
// Nothing here prevents publishing the same post twice; each call delivers
// a fresh message and overwrites the stored id.
type Publisher struct {
	posts  *Posts
	guard  Guard
	sender ChannelSender
}

// NewPublisher wires the publisher.
func NewPublisher(posts *Posts, guard Guard, sender ChannelSender) *Publisher {
	return &Publisher{posts: posts, guard: guard, sender: sender}
}

// Publish delivers the post to its channel on behalf of actingUser and
// stores the resulting message id. The acting user must hold an admin
// grant for the post's channel.
func (p *Publisher) Publish(ctx context.Context, post domain.Post, actingUser int64) (int, error) {
	if err := p.guard.Authorize(ctx, actingUser, post.ChannelID); err != nil {
		return 0, err
	}

	messageID, err := p.sender.SendPost(ctx, post)
	if err != nil {
		logger.Error(ctx, "service.publish", "send",
			slog.String("status", "fail"),
			slog.Int64("post_id", post.ID),
			slog.String("channel", post.ChannelID),
			slog.String("err", err.Error()),
		)
		return 0, err
	}

	if err := p.posts.SetMessageID(ctx, post.ID, messageID); err != nil {
		return 0, err
	}

	logger.Info(ctx, "service.publish", "publish",
		slog.String("status", "ok"),
		slog.Int64("post_id", post.ID),
		slog.String("channel", post.ChannelID),
		slog.Int64("user_id", actingUser),
	)
	return messageID, nil
}
