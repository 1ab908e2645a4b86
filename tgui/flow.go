package tgui

import (
	"errors"

	"github.com/subgate/subgatebot/core/telegram/format"
	"github.com/subgate/subgatebot/core/telegram/helpers"
	"github.com/subgate/subgatebot/dialog"
	"github.com/subgate/subgatebot/domain"

	tele "gopkg.in/telebot.v4"
)

// sendChannelMenu renders the channel menu with the title in bold; titles
// are user-controlled and escaped for MarkdownV2.
func sendChannelMenu(c tele.Context, title, channelID string) error {
	escaped, err := format.EscapeMarkdown(title, format.MarkdownV2, "")
	if err != nil {
		return helpers.SendText(c, textChannelMenu(title),
			&tele.SendOptions{ReplyMarkup: channelMenuMarkup(channelID)})
	}
	return helpers.SendMDV2(c, "📢 Канал *"+escaped+"*", channelMenuMarkup(channelID))
}

// InProgress reports whether the user is inside a dialog; the text router
// then bypasses command lookup and hands the update to ManagerHandler.
func (u *UI) InProgress(userID int64) bool {
	return u.engine.InProgress(userID)
}

// ManagerHandler feeds the incoming update into the dialog engine and
// renders the outcome.
func (u *UI) ManagerHandler(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	ev := dialog.Event{Kind: dialog.EventText, Text: c.Text()}
	switch {
	case c.Message() != nil && c.Message().Photo != nil:
		ev = dialog.Event{Kind: dialog.EventPhoto, PhotoFileID: c.Message().Photo.FileID}
	case ev.Text == "/cancel":
		// The dialog swallows text updates, so the escape hatch is
		// recognized here.
		ev = dialog.Event{Kind: dialog.EventCancel}
	}

	prev := u.engine.Session(userID).State
	res, err := u.engine.Handle(ctx, userID, ev)
	return u.render(c, prev, res, err)
}

// feed pushes a button-originated event (skip, defaults, cancel) through
// the engine. The callback is acked before rendering.
func (u *UI) feed(c tele.Context, kind dialog.EventKind) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	_ = c.Respond()
	prev := u.engine.Session(userID).State
	res, err := u.engine.Handle(ctx, userID, dialog.Event{Kind: kind})
	return u.render(c, prev, res, err)
}

func (u *UI) render(c tele.Context, prev dialog.State, res dialog.Result, err error) error {
	if err != nil {
		return u.renderError(c, prev, res, err)
	}

	switch res.Kind {
	case dialog.ResultChannelAdded:
		name := res.Channel.Name
		if name == "" {
			name = res.Channel.ID
		}
		if err := helpers.SendText(c, textChannelAdded(name)); err != nil {
			return err
		}
		return sendChannelMenu(c, name, res.Channel.ID)

	case dialog.ResultPromptPhoto:
		return helpers.SendText(c, textPromptPhoto,
			&tele.SendOptions{ReplyMarkup: photoPromptMarkup()})

	case dialog.ResultPhotoAdded:
		return helpers.SendText(c, textPhotoAdded+"\n\n"+textPromptSuccess,
			&tele.SendOptions{ReplyMarkup: cancelMarkup()})

	case dialog.ResultPromptSuccess:
		return helpers.SendText(c, textPromptSuccess,
			&tele.SendOptions{ReplyMarkup: cancelMarkup()})

	case dialog.ResultPromptFail:
		return helpers.SendText(c, textPromptFail,
			&tele.SendOptions{ReplyMarkup: failPromptMarkup()})

	case dialog.ResultPromptButton:
		return helpers.SendText(c, textPromptButton,
			&tele.SendOptions{ReplyMarkup: buttonPromptMarkup()})

	case dialog.ResultPostCreated:
		if err := helpers.SendText(c, textPostCreated); err != nil {
			return err
		}
		return u.sendPreview(c, *res.Post)

	case dialog.ResultFieldUpdated:
		if err := helpers.SendText(c, textPostUpdated); err != nil {
			return err
		}
		return u.sendPreview(c, *res.Post)

	case dialog.ResultCancelled:
		return helpers.SendText(c, textCancelled,
			&tele.SendOptions{ReplyMarkup: mainMenuMarkup()})

	case dialog.ResultNotAvailable:
		return helpers.SendText(c, textNotAvailable)
	}
	return nil
}

func (u *UI) renderError(c tele.Context, prev dialog.State, res dialog.Result, err error) error {
	var tooLong *domain.TooLongError
	switch {
	case errors.As(err, &tooLong):
		return helpers.SendText(c, textTooLong(tooLong.Length))

	case errors.Is(err, domain.ErrNotAdmin):
		return helpers.SendText(c, textChannelNotAdmin,
			&tele.SendOptions{ReplyMarkup: cancelMarkup()})

	case prev == dialog.StateAddingChannel:
		return helpers.SendText(c, textChannelResolveFail,
			&tele.SendOptions{ReplyMarkup: cancelMarkup()})

	case prev == dialog.StateCreatingButton:
		return helpers.SendText(c, textSaveFailed,
			&tele.SendOptions{ReplyMarkup: mainMenuMarkup()})
	}
	return helpers.SendText(c, textGenericError)
}
