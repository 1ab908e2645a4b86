package tgui

import (
	"fmt"
	"strconv"

	"github.com/subgate/subgatebot/core/telegram/keyboard"
	"github.com/subgate/subgatebot/domain"

	tele "gopkg.in/telebot.v4"
)

// Callback uniques. Payload (after '|') carries the channel id or post id.
const (
	cbCheck = "check"

	cbMainMenu   = "main_menu"
	cbMyChannels = "my_channels"
	cbAddChannel = "add_channel"

	cbChannelMenu     = "channel_menu"
	cbChannelPosts    = "channel_posts"
	cbChannelSettings = "channel_settings"
	cbDeleteChannel   = "delete_channel"
	cbConfirmDeleteCh = "confirm_delete_channel"

	cbManageAdmins = "manage_admins"

	cbCreatePost        = "create_post"
	cbOpenPost          = "open_post"
	cbPublishPost       = "publish_post"
	cbDeletePost        = "delete_post"
	cbConfirmDeletePost = "confirm_delete_post"
	cbCancelEditing     = "cancel_editing"
	cbSkipPhoto         = "skip_photo"
	cbUseDefaultFail    = "use_default_fail"
	cbUseDefaultButton  = "use_default_button"
	cbCancel            = "cancel_action"

	cbEditMessage = "edit_message"
	cbEditPhoto   = "edit_photo"
	cbEditSuccess = "edit_success"
	cbEditFail    = "edit_fail"
	cbEditButton  = "edit_button"
	cbRemovePhoto = "remove_photo"
	cbBackToPost  = "back_to_post"
)

func mainMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "📢 Мои каналы", Unique: cbMyChannels},
		{Text: "➕ Добавить канал", Unique: cbAddChannel},
	})
}

func channelsMarkup(channels []domain.Channel) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(channels)+1)
	for _, ch := range channels {
		label := ch.Name
		if label == "" {
			label = ch.ID
		}
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   label,
			Unique: cbChannelMenu,
			Data:   ch.ID,
		})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "➕ Добавить канал", Unique: cbAddChannel})
	return keyboard.InlineButtons(buttons)
}

func channelMenuMarkup(channelID string) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "✍️ Создать пост", Unique: cbCreatePost, Data: channelID},
		{Text: "📄 Посты канала", Unique: cbChannelPosts, Data: channelID},
		{Text: "⚙️ Настройки", Unique: cbChannelSettings, Data: channelID},
		{Text: "⬅️ К каналам", Unique: cbMyChannels},
	})
}

func channelSettingsMarkup(channelID string) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "👥 Администраторы", Unique: cbManageAdmins, Data: channelID},
		{Text: "🗑 Удалить канал", Unique: cbDeleteChannel, Data: channelID},
		{Text: "⬅️ Назад", Unique: cbChannelMenu, Data: channelID},
	})
}

func confirmDeletePostMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "🗑 Да, удалить", Unique: cbConfirmDeletePost},
		},
		[]keyboard.InlineBtn{
			{Text: "⬅️ Отмена", Unique: cbBackToPost},
		},
	)
}

func confirmDeleteChannelMarkup(channelID string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "🗑 Да, удалить", Unique: cbConfirmDeleteCh, Data: channelID},
		},
		[]keyboard.InlineBtn{
			{Text: "⬅️ Отмена", Unique: cbChannelMenu, Data: channelID},
		},
	)
}

func postsMarkup(channelID string, posts []domain.Post) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(posts)+1)
	for _, p := range posts {
		label := truncate(p.MessageText, 30)
		if p.MessageID != nil {
			label = "📬 " + label
		}
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   label,
			Unique: cbOpenPost,
			Data:   strconv.FormatInt(p.ID, 10),
		})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "⬅️ Назад", Unique: cbChannelMenu, Data: channelID})
	return keyboard.InlineButtons(buttons)
}

func photoPromptMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⏭ Пропустить", Unique: cbSkipPhoto},
		{Text: "❌ Отмена", Unique: cbCancel},
	})
}

func cancelMarkup() *tele.ReplyMarkup {
	return keyboard.SingleCancelMarkup(cbCancel, "", "❌ Отмена")
}

func failPromptMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "📎 Стандартный текст", Unique: cbUseDefaultFail},
		{Text: "❌ Отмена", Unique: cbCancel},
	})
}

func buttonPromptMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "📎 Стандартная подпись", Unique: cbUseDefaultButton},
		{Text: "❌ Отмена", Unique: cbCancel},
	})
}

func postControlsMarkup(post domain.Post) *tele.ReplyMarkup {
	rows := [][]keyboard.InlineBtn{
		{{Text: "🚀 Опубликовать", Unique: cbPublishPost}},
		{
			{Text: "📝 Текст", Unique: cbEditMessage},
			{Text: "✅ Успех", Unique: cbEditSuccess},
		},
		{
			{Text: "❌ Отказ", Unique: cbEditFail},
			{Text: "🔘 Кнопка", Unique: cbEditButton},
		},
	}
	if post.HasPhoto() {
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "🖼 Заменить фото", Unique: cbEditPhoto},
			{Text: "🚫 Убрать фото", Unique: cbRemovePhoto},
		})
	} else {
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "🖼 Добавить фото", Unique: cbEditPhoto},
		})
	}
	rows = append(rows, []keyboard.InlineBtn{
		{Text: "🗑 Удалить пост", Unique: cbDeletePost},
		{Text: "⬅️ Назад", Unique: cbChannelMenu, Data: post.ChannelID},
	})
	return keyboard.InlineButtonsRows(rows...)
}

func editPromptMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⬅️ К посту", Unique: cbBackToPost},
	})
}

// checkMarkup builds the gate button attached to a published post.
func checkMarkup(post domain.Post) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: post.ButtonText, Unique: cbCheck, Data: strconv.FormatInt(post.ID, 10)},
	})
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return fmt.Sprintf("%s…", string(runes[:limit-1]))
}
