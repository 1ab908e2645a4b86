package tgui

import (
	"github.com/subgate/subgatebot/core/telegram/helpers"
	"github.com/subgate/subgatebot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

var _ ui.FallbackProvider = (*UI)(nil)

// UnknownText replies with a hint when a message matches no command and no
// active dialog.
func (u *UI) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.SendText(c, "Не понимаю. Посмотрите /help или откройте /menu.",
			&tele.SendOptions{ReplyMarkup: mainMenuMarkup()})
	}
}

// UnknownDocument rejects documents; posts carry photos only.
func (u *UI) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.SendText(c, "Документы не поддерживаются. Для поста используйте изображение.")
	}
}

// UnknownCallback answers stale buttons from old messages.
func (u *UI) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Кнопка устарела. Откройте /menu."})
	}
}
