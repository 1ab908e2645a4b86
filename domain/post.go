// Package domain holds the entities shared by storage, services and the
// dialog flow: channels, admin grants, gated posts and their drafts.
package domain

import "time"

// PopupTextLimit is the hard ceiling Telegram imposes on callback alert
// popups; success/fail texts are rendered there and must fit.
const PopupTextLimit = 190

// Defaults applied at commit time when the author skipped the field.
const (
	DefaultFailText   = "Вы не подписаны на канал! Подпишитесь и попробуйте снова."
	DefaultButtonText = "Проверить подписку"
)

// Channel is a Telegram channel registered with the bot. ID is the external
// identifier exactly as the admin supplied it ("@name" or "-100…").
type Channel struct {
	RowID     int64     `db:"id"`
	ID        string    `db:"channel_id"`
	Name      string    `db:"channel_name"`
	CreatedAt time.Time `db:"created_at"`
}

// Post is a subscription-gated channel post. MessageID is set only after the
// post has been published to its channel.
type Post struct {
	ID          int64     `db:"id"`
	ChannelID   string    `db:"channel_id"`
	MessageText string    `db:"message_text"`
	SuccessText string    `db:"success_text"`
	FailText    string    `db:"fail_text"`
	ButtonText  string    `db:"button_text"`
	PhotoFileID *string   `db:"photo_file_id"`
	MessageID   *int      `db:"message_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// HasPhoto reports whether the post carries an image.
func (p Post) HasPhoto() bool {
	return p.PhotoFileID != nil && *p.PhotoFileID != ""
}

// Draft accumulates post fields during the creation dialog. Optional fields
// stay nil until the author supplies them; defaults are applied at commit,
// not here.
type Draft struct {
	ChannelID   string
	MessageText string
	SuccessText string
	FailText    *string
	ButtonText  *string
	PhotoFileID *string
}

// PostField names a single editable post column.
type PostField string

const (
	FieldMessageText PostField = "message_text"
	FieldSuccessText PostField = "success_text"
	FieldFailText    PostField = "fail_text"
	FieldButtonText  PostField = "button_text"
	FieldPhoto       PostField = "photo_file_id"
	FieldMessageID   PostField = "message_id"
)

// MemberStatus is the relationship of a user to a channel as reported by
// the Telegram API.
type MemberStatus string

const (
	StatusCreator       MemberStatus = "creator"
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusRestricted    MemberStatus = "restricted"
	StatusLeft          MemberStatus = "left"
	StatusKicked        MemberStatus = "kicked"
)

// Subscribed reports whether the status counts as a passed membership check.
func (s MemberStatus) Subscribed() bool {
	switch s {
	case StatusMember, StatusAdministrator, StatusCreator:
		return true
	}
	return false
}

// ChannelAdmin reports whether the status allows managing the channel.
func (s MemberStatus) ChannelAdmin() bool {
	return s == StatusAdministrator || s == StatusCreator
}
