package tgui

import (
	"fmt"
	"strings"

	"github.com/subgate/subgatebot/core/telegram/helpers"
	"github.com/subgate/subgatebot/domain"

	tele "gopkg.in/telebot.v4"
)

// sendPreview shows the post exactly as it will appear in the channel
// (content plus the gate button), followed by a summary with the editing
// controls.
func (u *UI) sendPreview(c tele.Context, post domain.Post) error {
	gate := checkMarkup(post)
	if post.HasPhoto() {
		photo := &tele.Photo{
			File:    tele.File{FileID: *post.PhotoFileID},
			Caption: post.MessageText,
		}
		if err := c.Send(photo, gate); err != nil {
			return err
		}
	} else {
		if err := helpers.SendText(c, post.MessageText,
			&tele.SendOptions{ReplyMarkup: gate}); err != nil {
			return err
		}
	}

	return helpers.SendText(c, previewSummary(post),
		&tele.SendOptions{ReplyMarkup: postControlsMarkup(post)})
}

func previewSummary(post domain.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Пост #%d\n\n", post.ID)
	fmt.Fprintf(&b, "✅ Подписан: %s\n", post.SuccessText)
	fmt.Fprintf(&b, "❌ Не подписан: %s\n", post.FailText)
	fmt.Fprintf(&b, "🔘 Кнопка: %s\n", post.ButtonText)
	if post.MessageID != nil {
		fmt.Fprintf(&b, "\n📬 Опубликован, сообщение #%d", *post.MessageID)
	}
	return b.String()
}
