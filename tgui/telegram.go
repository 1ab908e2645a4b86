package tgui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/subgate/subgatebot/domain"
	"github.com/subgate/subgatebot/service"

	tele "gopkg.in/telebot.v4"
)

// ErrNotBound is returned when the Bot API is used before the bot exists.
var ErrNotBound = errors.New("tgui: bot api not bound")

// channelRecipient lets raw "@username" / "-100…" identifiers be used
// wherever the API wants a recipient, without a prior chat lookup.
type channelRecipient string

func (r channelRecipient) Recipient() string { return string(r) }

// botRef holds the bot instance, bound once the runtime is up.
type botRef struct {
	bot atomic.Pointer[tele.Bot]
}

// Bind attaches the live bot; called from the runtime start hook.
func (r *botRef) Bind(b *tele.Bot) {
	r.bot.Store(b)
}

func (r *botRef) api() (*tele.Bot, error) {
	b := r.bot.Load()
	if b == nil {
		return nil, ErrNotBound
	}
	return b, nil
}

// BotDirectory implements service.Directory on top of the Bot API.
type BotDirectory struct {
	botRef
}

// NewBotDirectory creates an unbound directory adapter.
func NewBotDirectory() *BotDirectory {
	return &BotDirectory{}
}

// ResolveChannel fetches the chat behind "@username" or a numeric id.
func (d *BotDirectory) ResolveChannel(_ context.Context, input string) (service.ChannelInfo, error) {
	bot, err := d.api()
	if err != nil {
		return service.ChannelInfo{}, err
	}
	input = strings.TrimSpace(input)

	var chat *tele.Chat
	if id, convErr := strconv.ParseInt(input, 10, 64); convErr == nil {
		chat, err = bot.ChatByID(id)
	} else {
		chat, err = bot.ChatByUsername(input)
	}
	if err != nil {
		return service.ChannelInfo{}, fmt.Errorf("chat lookup %q: %w", input, err)
	}
	return service.ChannelInfo{ID: input, Title: chat.Title}, nil
}

// MemberStatus reports the user's membership in the channel.
func (d *BotDirectory) MemberStatus(_ context.Context, channelID string, userID int64) (domain.MemberStatus, error) {
	bot, err := d.api()
	if err != nil {
		return "", err
	}
	member, err := bot.ChatMemberOf(channelRecipient(channelID), &tele.User{ID: userID})
	if err != nil {
		return "", fmt.Errorf("member lookup %q: %w", channelID, err)
	}
	return domain.MemberStatus(member.Role), nil
}

// BotSender implements service.ChannelSender: it delivers a finished post to
// its channel with the gate button attached.
type BotSender struct {
	botRef
}

// NewBotSender creates an unbound sender adapter.
func NewBotSender() *BotSender {
	return &BotSender{}
}

// SendPost sends the post content to its channel and returns the message id.
func (s *BotSender) SendPost(_ context.Context, post domain.Post) (int, error) {
	bot, err := s.api()
	if err != nil {
		return 0, err
	}
	to := channelRecipient(post.ChannelID)
	markup := checkMarkup(post)

	var msg *tele.Message
	if post.HasPhoto() {
		photo := &tele.Photo{
			File:    tele.File{FileID: *post.PhotoFileID},
			Caption: post.MessageText,
		}
		msg, err = bot.Send(to, photo, markup)
	} else {
		msg, err = bot.Send(to, post.MessageText, markup)
	}
	if err != nil {
		return 0, fmt.Errorf("send to %q: %w", post.ChannelID, err)
	}
	return msg.ID, nil
}
