package tgui

import (
	"errors"

	tg "github.com/subgate/subgatebot/core/telegram"
	"github.com/subgate/subgatebot/core/telegram/callbacks"
	"github.com/subgate/subgatebot/core/telegram/helpers"
	"github.com/subgate/subgatebot/dialog"
	"github.com/subgate/subgatebot/domain"
	"github.com/subgate/subgatebot/service"

	tele "gopkg.in/telebot.v4"
)

func (u *UI) registerCallbacks(reg *tg.Registry) {
	_ = reg.RegisterCallback(cbCheck, u.cbCheckSubscription)

	_ = reg.RegisterCallback(cbMainMenu, u.cbMainMenu)
	_ = reg.RegisterCallback(cbMyChannels, u.cbMyChannels)
	_ = reg.RegisterCallback(cbAddChannel, u.cbAddChannel)

	_ = reg.RegisterCallback(cbChannelMenu, u.cbChannelMenu)
	_ = reg.RegisterCallback(cbChannelPosts, u.cbChannelPosts)
	_ = reg.RegisterCallback(cbChannelSettings, u.cbChannelSettings)
	_ = reg.RegisterCallback(cbDeleteChannel, u.cbDeleteChannel)
	_ = reg.RegisterCallback(cbConfirmDeleteCh, u.cbConfirmDeleteChannel)

	_ = reg.RegisterCallback(cbManageAdmins, u.cbManageAdmins)

	_ = reg.RegisterCallback(cbCreatePost, u.cbCreatePost)
	_ = reg.RegisterCallback(cbOpenPost, u.cbOpenPost)
	_ = reg.RegisterCallback(cbPublishPost, u.cbPublishPost)
	_ = reg.RegisterCallback(cbDeletePost, u.cbDeletePost)
	_ = reg.RegisterCallback(cbConfirmDeletePost, u.cbConfirmDeletePost)

	_ = reg.RegisterCallback(cbSkipPhoto, func(c tele.Context) error {
		return u.feed(c, dialog.EventSkipPhoto)
	})
	_ = reg.RegisterCallback(cbUseDefaultFail, func(c tele.Context) error {
		return u.feed(c, dialog.EventUseDefault)
	})
	_ = reg.RegisterCallback(cbUseDefaultButton, func(c tele.Context) error {
		return u.feed(c, dialog.EventUseDefault)
	})
	_ = reg.RegisterCallback(cbCancel, func(c tele.Context) error {
		return u.feed(c, dialog.EventCancel)
	})

	_ = reg.RegisterCallback(cbEditMessage, u.editCallback(domain.FieldMessageText))
	_ = reg.RegisterCallback(cbEditSuccess, u.editCallback(domain.FieldSuccessText))
	_ = reg.RegisterCallback(cbEditFail, u.editCallback(domain.FieldFailText))
	_ = reg.RegisterCallback(cbEditButton, u.editCallback(domain.FieldButtonText))
	_ = reg.RegisterCallback(cbEditPhoto, u.editCallback(domain.FieldPhoto))
	_ = reg.RegisterCallback(cbRemovePhoto, u.cbRemovePhoto)
	_ = reg.RegisterCallback(cbBackToPost, u.cbBackToPost)
	_ = reg.RegisterCallback(cbCancelEditing, u.cbBackToPost)
}

// cbCheckSubscription answers the gate button under a published post. The
// verdict is shown as an alert popup; nothing is sent to the channel.
func (u *UI) cbCheckSubscription(c tele.Context) error {
	ctx := helpers.BuildContext(c)

	postID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textCheckUnavailable, ShowAlert: true})
	}

	res := u.verifier.Check(ctx, postID, c.Sender().ID)
	text := res.Text
	if res.Verdict == service.VerdictUnknown || text == "" {
		text = textCheckUnavailable
	}
	return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
}

func (u *UI) cbMainMenu(c tele.Context) error {
	_ = c.Respond()
	return helpers.SendText(c, textMenu,
		&tele.SendOptions{ReplyMarkup: mainMenuMarkup()})
}

func (u *UI) cbMyChannels(c tele.Context) error {
	_ = c.Respond()
	return u.handleMyChannels(c)
}

func (u *UI) cbAddChannel(c tele.Context) error {
	_ = c.Respond()
	return u.handleAddChannel(c)
}

func (u *UI) cbChannelMenu(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	channelID := callbacks.CallbackPayload(c)

	if err := u.channels.Authorize(ctx, c.Sender().ID, channelID); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textChannelNotAdmin, ShowAlert: true})
	}
	_ = c.Respond()
	return sendChannelMenu(c, u.channels.Title(ctx, channelID), channelID)
}

func (u *UI) cbChannelPosts(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	channelID := callbacks.CallbackPayload(c)

	if err := u.channels.Authorize(ctx, c.Sender().ID, channelID); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textChannelNotAdmin, ShowAlert: true})
	}
	_ = c.Respond()

	posts, err := u.posts.ListForChannel(ctx, channelID)
	if err != nil {
		return helpers.SendText(c, textGenericError)
	}
	if len(posts) == 0 {
		return helpers.SendText(c, textNoPosts,
			&tele.SendOptions{ReplyMarkup: channelMenuMarkup(channelID)})
	}
	return helpers.SendText(c, "📄 Посты канала:",
		&tele.SendOptions{ReplyMarkup: postsMarkup(channelID, posts)})
}

func (u *UI) cbChannelSettings(c tele.Context) error {
	_ = c.Respond()
	channelID := callbacks.CallbackPayload(c)
	return helpers.SendText(c, "⚙️ Настройки канала",
		&tele.SendOptions{ReplyMarkup: channelSettingsMarkup(channelID)})
}

func (u *UI) cbDeleteChannel(c tele.Context) error {
	_ = c.Respond()
	channelID := callbacks.CallbackPayload(c)
	return helpers.SendText(c, textConfirmChannelDelete,
		&tele.SendOptions{ReplyMarkup: confirmDeleteChannelMarkup(channelID)})
}

func (u *UI) cbConfirmDeleteChannel(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	channelID := callbacks.CallbackPayload(c)
	userID := c.Sender().ID

	if err := u.channels.Delete(ctx, userID, channelID); err != nil {
		if errors.Is(err, domain.ErrNotAdmin) {
			return c.Respond(&tele.CallbackResponse{Text: textChannelNotAdmin, ShowAlert: true})
		}
		return c.Respond(&tele.CallbackResponse{Text: textGenericError, ShowAlert: true})
	}

	if active := u.engine.Session(userID).ActivePost; active != nil && active.ChannelID == channelID {
		u.engine.DropActivePost(userID)
	}
	_ = c.Respond()
	return helpers.SendText(c, textChannelDeleted,
		&tele.SendOptions{ReplyMarkup: mainMenuMarkup()})
}

func (u *UI) cbCreatePost(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	channelID := callbacks.CallbackPayload(c)

	if err := u.engine.StartCreate(ctx, c.Sender().ID, channelID); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textChannelNotAdmin, ShowAlert: true})
	}
	_ = c.Respond()
	return helpers.SendText(c, textEnterMessage,
		&tele.SendOptions{ReplyMarkup: cancelMarkup()})
}

func (u *UI) cbOpenPost(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	postID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textPostMissing, ShowAlert: true})
	}
	post, err := u.posts.Get(ctx, postID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textPostMissing, ShowAlert: true})
	}
	if err := u.channels.Authorize(ctx, userID, post.ChannelID); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textChannelNotAdmin, ShowAlert: true})
	}

	u.engine.SetActivePost(userID, post)
	_ = c.Respond()
	return u.sendPreview(c, post)
}

func (u *UI) cbPublishPost(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	active := u.engine.Session(userID).ActivePost
	if active == nil {
		return c.Respond(&tele.CallbackResponse{Text: textPostMissing, ShowAlert: true})
	}

	messageID, err := u.publisher.Publish(ctx, *active, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotAdmin) {
			return c.Respond(&tele.CallbackResponse{Text: textChannelNotAdmin, ShowAlert: true})
		}
		_ = c.Respond()
		return helpers.SendText(c, textPublishFailed)
	}

	post := *active
	post.MessageID = &messageID
	u.engine.SetActivePost(userID, post)

	_ = c.Respond()
	return helpers.SendText(c, textPublished,
		&tele.SendOptions{ReplyMarkup: postControlsMarkup(post)})
}

func (u *UI) cbManageAdmins(c tele.Context) error {
	_ = c.Respond()
	channelID := callbacks.CallbackPayload(c)
	return helpers.SendText(c, textManageAdmins,
		&tele.SendOptions{ReplyMarkup: channelSettingsMarkup(channelID)})
}

func (u *UI) cbDeletePost(c tele.Context) error {
	if u.engine.Session(c.Sender().ID).ActivePost == nil {
		return c.Respond(&tele.CallbackResponse{Text: textPostMissing, ShowAlert: true})
	}
	_ = c.Respond()
	return helpers.SendText(c, textConfirmPostDelete,
		&tele.SendOptions{ReplyMarkup: confirmDeletePostMarkup()})
}

func (u *UI) cbConfirmDeletePost(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	active := u.engine.Session(userID).ActivePost
	if active == nil {
		return c.Respond(&tele.CallbackResponse{Text: textPostMissing, ShowAlert: true})
	}
	if err := u.channels.Authorize(ctx, userID, active.ChannelID); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textChannelNotAdmin, ShowAlert: true})
	}
	if err := u.posts.Delete(ctx, active.ID); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textGenericError, ShowAlert: true})
	}

	channelID := active.ChannelID
	u.engine.DropActivePost(userID)
	_ = c.Respond()
	return helpers.SendText(c, textPostDeleted,
		&tele.SendOptions{ReplyMarkup: channelMenuMarkup(channelID)})
}

// editCallback opens the one-shot edit state for a post field.
func (u *UI) editCallback(field domain.PostField) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := helpers.BuildContext(c)

		if err := u.engine.StartEdit(ctx, c.Sender().ID, field); err != nil {
			if errors.Is(err, domain.ErrNotAdmin) {
				return c.Respond(&tele.CallbackResponse{Text: textChannelNotAdmin, ShowAlert: true})
			}
			return c.Respond(&tele.CallbackResponse{Text: textPostMissing, ShowAlert: true})
		}
		_ = c.Respond()

		prompt := textEditPrompts
		switch field {
		case domain.FieldSuccessText:
			prompt = textPromptSuccess
		case domain.FieldFailText:
			prompt = textPromptFail
		case domain.FieldButtonText:
			prompt = textPromptButton
		case domain.FieldPhoto:
			prompt = "🖼 Отправьте новое изображение:"
		case domain.FieldMessageText:
			prompt = textEnterMessage
		}
		return helpers.SendText(c, prompt,
			&tele.SendOptions{ReplyMarkup: editPromptMarkup()})
	}
}

func (u *UI) cbRemovePhoto(c tele.Context) error {
	ctx := helpers.BuildContext(c)

	post, err := u.engine.RemovePhoto(ctx, c.Sender().ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotAdmin) {
			return c.Respond(&tele.CallbackResponse{Text: textChannelNotAdmin, ShowAlert: true})
		}
		return c.Respond(&tele.CallbackResponse{Text: textPostMissing, ShowAlert: true})
	}
	_ = c.Respond()
	if err := helpers.SendText(c, textPostUpdated); err != nil {
		return err
	}
	return u.sendPreview(c, post)
}

// cbBackToPost abandons a pending edit and re-renders the active post.
func (u *UI) cbBackToPost(c tele.Context) error {
	userID := c.Sender().ID

	res := u.engine.Cancel(userID)
	if res.Post == nil {
		return c.Respond(&tele.CallbackResponse{Text: textPostMissing, ShowAlert: true})
	}
	_ = c.Respond()
	return u.sendPreview(c, *res.Post)
}
