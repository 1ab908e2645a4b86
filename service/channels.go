// Package service implements the application services on top of the store
// and the Telegram directory: channel registration and authorization,
// post lifecycle, subscription verification and publishing.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/subgate/subgatebot/core/logger"
	"github.com/subgate/subgatebot/domain"
)

// ChannelStore is the slice of the store used by the channel service.
type ChannelStore interface {
	UpsertChannel(ctx context.Context, channelID, name string) (int64, error)
	DeleteChannel(ctx context.Context, channelID string) error
	AddAdmin(ctx context.Context, userID int64, channelID string) error
	IsAdmin(ctx context.Context, userID int64, channelID string) (bool, error)
	ChannelsForUser(ctx context.Context, userID int64) ([]domain.Channel, error)
}

// ChannelInfo is the directory's view of a channel.
type ChannelInfo struct {
	ID    string
	Title string
}

// Directory resolves channels and membership via the Telegram API.
type Directory interface {
	ResolveChannel(ctx context.Context, input string) (ChannelInfo, error)
	MemberStatus(ctx context.Context, channelID string, userID int64) (domain.MemberStatus, error)
}

// Channels registers channels and answers admin-grant questions. It is the
// authorization guard for every mutating action in the bot.
type Channels struct {
	store ChannelStore
	dir   Directory
}

// NewChannels wires the channel service.
func NewChannels(store ChannelStore, dir Directory) *Channels {
	return &Channels{store: store, dir: dir}
}

// Register verifies that the acting user administers the supplied channel,
// then persists the channel and the admin grant. The raw input ("@name" or
// "-100…") becomes the channel's external identifier.
func (s *Channels) Register(ctx context.Context, userID int64, input string) (domain.Channel, error) {
	status, err := s.dir.MemberStatus(ctx, input, userID)
	if err != nil {
		logger.Warn(ctx, "service.channels", "register.status_lookup",
			slog.String("status", "fail"),
			slog.String("channel", input),
			slog.String("err", err.Error()),
		)
		return domain.Channel{}, fmt.Errorf("channel status lookup: %w", err)
	}
	if !status.ChannelAdmin() {
		return domain.Channel{}, domain.ErrNotAdmin
	}

	info, err := s.dir.ResolveChannel(ctx, input)
	if err != nil {
		return domain.Channel{}, fmt.Errorf("channel resolve: %w", err)
	}

	rowID, err := s.store.UpsertChannel(ctx, input, info.Title)
	if err != nil {
		return domain.Channel{}, err
	}
	if err := s.store.AddAdmin(ctx, userID, input); err != nil {
		return domain.Channel{}, err
	}

	logger.Info(ctx, "service.channels", "register",
		slog.String("status", "ok"),
		slog.String("channel", input),
		slog.Int64("user_id", userID),
	)
	return domain.Channel{RowID: rowID, ID: input, Name: info.Title}, nil
}

// IsAdmin reports whether the user holds a grant for the channel.
func (s *Channels) IsAdmin(ctx context.Context, userID int64, channelID string) (bool, error) {
	return s.store.IsAdmin(ctx, userID, channelID)
}

// Authorize returns domain.ErrNotAdmin unless the user holds a grant.
func (s *Channels) Authorize(ctx context.Context, userID int64, channelID string) error {
	ok, err := s.store.IsAdmin(ctx, userID, channelID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotAdmin
	}
	return nil
}

// ListForUser returns the channels the user administers.
func (s *Channels) ListForUser(ctx context.Context, userID int64) ([]domain.Channel, error) {
	return s.store.ChannelsForUser(ctx, userID)
}

// Delete removes a registered channel after an authorization check; grants
// and posts cascade in the store.
func (s *Channels) Delete(ctx context.Context, userID int64, channelID string) error {
	if err := s.Authorize(ctx, userID, channelID); err != nil {
		return err
	}
	if err := s.store.DeleteChannel(ctx, channelID); err != nil {
		return err
	}
	logger.Info(ctx, "service.channels", "delete",
		slog.String("status", "ok"),
		slog.String("channel", channelID),
		slog.Int64("user_id", userID),
	)
	return nil
}

// Title resolves the channel's current display title for menus.
func (s *Channels) Title(ctx context.Context, channelID string) string {
	info, err := s.dir.ResolveChannel(ctx, channelID)
	if err != nil || info.Title == "" {
		return channelID
	}
	return info.Title
}
