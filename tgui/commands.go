package tgui

import (
	"github.com/subgate/subgatebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func (u *UI) handleStart(c tele.Context) error {
	return helpers.SendText(c, textStart,
		&tele.SendOptions{ReplyMarkup: mainMenuMarkup()})
}

func (u *UI) handleHelp(c tele.Context) error {
	return helpers.SendText(c, textHelp)
}

func (u *UI) handleMenu(c tele.Context) error {
	return helpers.SendText(c, textMenu,
		&tele.SendOptions{ReplyMarkup: mainMenuMarkup()})
}

func (u *UI) handleMyChannels(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	channels, err := u.channels.ListForUser(ctx, c.Sender().ID)
	if err != nil {
		return helpers.SendText(c, textGenericError)
	}
	if len(channels) == 0 {
		return helpers.SendText(c, textNoChannels)
	}
	return helpers.SendText(c, "📢 Ваши каналы:",
		&tele.SendOptions{ReplyMarkup: channelsMarkup(channels)})
}

func (u *UI) handleAddChannel(c tele.Context) error {
	u.engine.StartAddChannel(c.Sender().ID)
	return helpers.SendText(c, textAddChannelPrompt,
		&tele.SendOptions{ReplyMarkup: cancelMarkup()})
}

func (u *UI) handleCancel(c tele.Context) error {
	u.engine.Cancel(c.Sender().ID)
	return helpers.SendText(c, textCancelled,
		&tele.SendOptions{ReplyMarkup: mainMenuMarkup()})
}
