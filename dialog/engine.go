package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/subgate/subgatebot/core/logger"
	"github.com/subgate/subgatebot/domain"
	"github.com/subgate/subgatebot/service"
)

// ResultKind tells the transport layer what to render after an event.
type ResultKind int

const (
	// ResultNone means the event did not match the current state.
	ResultNone ResultKind = iota
	// ResultChannelAdded carries the freshly registered channel.
	ResultChannelAdded
	// ResultPromptPhoto asks for an optional post image.
	ResultPromptPhoto
	// ResultPhotoAdded confirms the image and asks for the success text.
	ResultPhotoAdded
	// ResultPromptSuccess asks for the success text (photo skipped).
	ResultPromptSuccess
	// ResultPromptFail asks for the fail text.
	ResultPromptFail
	// ResultPromptButton asks for the button label.
	ResultPromptButton
	// ResultTooLong re-prompts the same state with the offending length.
	ResultTooLong
	// ResultPostCreated carries the committed post for review.
	ResultPostCreated
	// ResultFieldUpdated carries the post after a single-field edit.
	ResultFieldUpdated
	// ResultCancelled confirms a flow was aborted.
	ResultCancelled
	// ResultNotAvailable rejects input that makes no sense right now.
	ResultNotAvailable
)

// Result is the machine's answer to one event.
type Result struct {
	Kind    ResultKind
	State   State
	Channel *domain.Channel
	Post    *domain.Post
	Field   domain.PostField
	Length  int
}

// Engine executes the dialog transitions against the session store and the
// channel/post services.
type Engine struct {
	sessions SessionStore
	channels *service.Channels
	posts    *service.Posts
}

// NewEngine wires the dialog engine.
func NewEngine(sessions SessionStore, channels *service.Channels, posts *service.Posts) *Engine {
	return &Engine{sessions: sessions, channels: channels, posts: posts}
}

type transitionFunc func(e *Engine, ctx context.Context, userID int64, s Session, ev Event) (Result, error)

// transitions is the full dispatch table. A missing (state, kind) pair is
// not an error: stray text is ignored and stray photos are rejected with
// ResultNotAvailable in Handle.
var transitions = map[State]map[EventKind]transitionFunc{
	StateAddingChannel: {
		EventText: (*Engine).addChannel,
	},
	StateCreatingMessage: {
		EventText: (*Engine).acceptMessage,
	},
	StateCreatingPhoto: {
		EventPhoto:     (*Engine).acceptPhoto,
		EventSkipPhoto: (*Engine).skipPhoto,
	},
	StateCreatingSuccess: {
		EventText: (*Engine).acceptSuccess,
	},
	StateCreatingFail: {
		EventText:       (*Engine).acceptFail,
		EventUseDefault: (*Engine).defaultFail,
	},
	StateCreatingButton: {
		EventText:       (*Engine).acceptButton,
		EventUseDefault: (*Engine).defaultButton,
	},
	StateEditingMessage: {
		EventText: editText(domain.FieldMessageText),
	},
	StateEditingSuccess: {
		EventText: editText(domain.FieldSuccessText),
	},
	StateEditingFail: {
		EventText: editText(domain.FieldFailText),
	},
	StateEditingButton: {
		EventText: editText(domain.FieldButtonText),
	},
	StateEditingPhoto: {
		EventPhoto: (*Engine).editPhoto,
	},
}

// Handle feeds one event into the machine and returns what to render.
// Cancellation works from any state.
func (e *Engine) Handle(ctx context.Context, userID int64, ev Event) (Result, error) {
	s := e.sessions.Get(userID)

	if ev.Kind == EventCancel {
		return e.cancel(userID, s), nil
	}

	fn, ok := transitions[s.State][ev.Kind]
	if !ok {
		if ev.Kind == EventPhoto {
			return Result{Kind: ResultNotAvailable, State: s.State}, nil
		}
		return Result{Kind: ResultNone, State: s.State}, nil
	}

	res, err := fn(e, ctx, userID, s, ev)
	logger.Debug(ctx, "dialog", "event",
		slog.String("state", string(s.State)),
		slog.String("next", string(res.State)),
		slog.Int64("user_id", userID),
		slog.String("status", logger.Status(err)),
	)
	return res, err
}

// Session returns the user's current session snapshot.
func (e *Engine) Session(userID int64) Session {
	return e.sessions.Get(userID)
}

// InProgress reports whether the user has an active conversation; the text
// router uses it to decide between the machine and command lookup.
func (e *Engine) InProgress(userID int64) bool {
	return e.sessions.Get(userID).State != StateIdle
}

// StartAddChannel puts the user into the channel registration state.
func (e *Engine) StartAddChannel(userID int64) {
	s := e.sessions.Get(userID)
	s.State = StateAddingChannel
	s.Draft = nil
	e.sessions.Put(userID, s)
}

// StartCreate opens the creation flow for a channel. The acting user must
// hold an admin grant; no state changes otherwise.
func (e *Engine) StartCreate(ctx context.Context, userID int64, channelID string) error {
	if err := e.channels.Authorize(ctx, userID, channelID); err != nil {
		return err
	}
	s := e.sessions.Get(userID)
	s.State = StateCreatingMessage
	s.Draft = &domain.Draft{ChannelID: channelID}
	s.ActivePost = nil
	e.sessions.Put(userID, s)
	return nil
}

// editStates maps an editable field to its dialog state.
var editStates = map[domain.PostField]State{
	domain.FieldMessageText: StateEditingMessage,
	domain.FieldSuccessText: StateEditingSuccess,
	domain.FieldFailText:    StateEditingFail,
	domain.FieldButtonText:  StateEditingButton,
	domain.FieldPhoto:       StateEditingPhoto,
}

// StartEdit opens a single-field edit on the active post after an admin
// check. Without an active post there is nothing to edit.
func (e *Engine) StartEdit(ctx context.Context, userID int64, field domain.PostField) error {
	st, ok := editStates[field]
	if !ok {
		return fmt.Errorf("field %q is not editable interactively", field)
	}
	s := e.sessions.Get(userID)
	if s.ActivePost == nil {
		return domain.ErrNotFound
	}
	if err := e.channels.Authorize(ctx, userID, s.ActivePost.ChannelID); err != nil {
		return err
	}
	s.State = st
	e.sessions.Put(userID, s)
	return nil
}

// Cancel aborts whatever flow is active: the draft is discarded, the
// active post survives untouched.
func (e *Engine) Cancel(userID int64) Result {
	return e.cancel(userID, e.sessions.Get(userID))
}

func (e *Engine) cancel(userID int64, s Session) Result {
	s.State = StateIdle
	s.Draft = nil
	e.sessions.Put(userID, s)
	return Result{Kind: ResultCancelled, State: StateIdle, Post: s.ActivePost}
}

// SetActivePost loads a committed post into the session for review.
func (e *Engine) SetActivePost(userID int64, post domain.Post) {
	s := e.sessions.Get(userID)
	s.ActivePost = &post
	e.sessions.Put(userID, s)
}

// DropActivePost forgets the reviewed post (after deletion).
func (e *Engine) DropActivePost(userID int64) {
	s := e.sessions.Get(userID)
	s.ActivePost = nil
	e.sessions.Put(userID, s)
}

// RemovePhoto is the zero-input direct mutation: it nulls the photo on the
// active post in both store and session without entering any state.
func (e *Engine) RemovePhoto(ctx context.Context, userID int64) (domain.Post, error) {
	s := e.sessions.Get(userID)
	if s.ActivePost == nil {
		return domain.Post{}, domain.ErrNotFound
	}
	if err := e.channels.Authorize(ctx, userID, s.ActivePost.ChannelID); err != nil {
		return domain.Post{}, err
	}
	if err := e.posts.SetPhoto(ctx, s.ActivePost.ID, nil); err != nil {
		return domain.Post{}, err
	}
	post := *s.ActivePost
	post.PhotoFileID = nil
	s.ActivePost = &post
	e.sessions.Put(userID, s)
	return post, nil
}

func (e *Engine) addChannel(ctx context.Context, userID int64, s Session, ev Event) (Result, error) {
	input := strings.TrimSpace(ev.Text)
	ch, err := e.channels.Register(ctx, userID, input)
	if err != nil {
		if errors.Is(err, domain.ErrNotAdmin) {
			// Stay in the state so the user can retry with another id.
			return Result{Kind: ResultNone, State: s.State}, err
		}
		s.State = StateIdle
		e.sessions.Put(userID, s)
		return Result{Kind: ResultNone, State: StateIdle}, err
	}
	s.State = StateIdle
	e.sessions.Put(userID, s)
	return Result{Kind: ResultChannelAdded, State: StateIdle, Channel: &ch}, nil
}

func (e *Engine) acceptMessage(_ context.Context, userID int64, s Session, ev Event) (Result, error) {
	s.Draft.MessageText = ev.Text
	s.State = StateCreatingPhoto
	e.sessions.Put(userID, s)
	return Result{Kind: ResultPromptPhoto, State: s.State}, nil
}

func (e *Engine) acceptPhoto(_ context.Context, userID int64, s Session, ev Event) (Result, error) {
	fileID := ev.PhotoFileID
	s.Draft.PhotoFileID = &fileID
	s.State = StateCreatingSuccess
	e.sessions.Put(userID, s)
	return Result{Kind: ResultPhotoAdded, State: s.State}, nil
}

func (e *Engine) skipPhoto(_ context.Context, userID int64, s Session, _ Event) (Result, error) {
	s.State = StateCreatingSuccess
	e.sessions.Put(userID, s)
	return Result{Kind: ResultPromptSuccess, State: s.State}, nil
}

func (e *Engine) acceptSuccess(_ context.Context, userID int64, s Session, ev Event) (Result, error) {
	if res, err := popupLimit(s, ev.Text); err != nil {
		return res, err
	}
	s.Draft.SuccessText = ev.Text
	s.State = StateCreatingFail
	e.sessions.Put(userID, s)
	return Result{Kind: ResultPromptFail, State: s.State}, nil
}

func (e *Engine) acceptFail(_ context.Context, userID int64, s Session, ev Event) (Result, error) {
	if res, err := popupLimit(s, ev.Text); err != nil {
		return res, err
	}
	text := ev.Text
	s.Draft.FailText = &text
	s.State = StateCreatingButton
	e.sessions.Put(userID, s)
	return Result{Kind: ResultPromptButton, State: s.State}, nil
}

func (e *Engine) defaultFail(_ context.Context, userID int64, s Session, _ Event) (Result, error) {
	s.Draft.FailText = nil
	s.State = StateCreatingButton
	e.sessions.Put(userID, s)
	return Result{Kind: ResultPromptButton, State: s.State}, nil
}

func (e *Engine) acceptButton(ctx context.Context, userID int64, s Session, ev Event) (Result, error) {
	text := ev.Text
	s.Draft.ButtonText = &text
	return e.commit(ctx, userID, s)
}

func (e *Engine) defaultButton(ctx context.Context, userID int64, s Session, _ Event) (Result, error) {
	s.Draft.ButtonText = nil
	return e.commit(ctx, userID, s)
}

// commit atomically turns the draft into a stored post. Success or failure,
// the draft is gone and the machine rests at idle; only on success does the
// new post become the session's active post.
func (e *Engine) commit(ctx context.Context, userID int64, s Session) (Result, error) {
	draft := *s.Draft
	s.Draft = nil
	s.State = StateIdle

	post, err := e.posts.Create(ctx, draft)
	if err != nil {
		e.sessions.Put(userID, s)
		return Result{Kind: ResultNone, State: StateIdle}, err
	}
	s.ActivePost = &post
	e.sessions.Put(userID, s)
	return Result{Kind: ResultPostCreated, State: StateIdle, Post: s.ActivePost}, nil
}

// editText builds the transition for a one-shot text edit. The popup length
// limit applies to the success/fail texts exactly as during creation.
func editText(field domain.PostField) transitionFunc {
	return func(e *Engine, ctx context.Context, userID int64, s Session, ev Event) (Result, error) {
		if field == domain.FieldSuccessText || field == domain.FieldFailText {
			if res, err := popupLimit(s, ev.Text); err != nil {
				return res, err
			}
		}
		if s.ActivePost == nil {
			s.State = StateIdle
			e.sessions.Put(userID, s)
			return Result{Kind: ResultNone, State: StateIdle}, domain.ErrNotFound
		}
		if err := e.posts.UpdateText(ctx, s.ActivePost.ID, field, ev.Text); err != nil {
			// Keep the state; the user may simply retry.
			return Result{Kind: ResultNone, State: s.State}, err
		}

		post := *s.ActivePost
		switch field {
		case domain.FieldMessageText:
			post.MessageText = ev.Text
		case domain.FieldSuccessText:
			post.SuccessText = ev.Text
		case domain.FieldFailText:
			post.FailText = ev.Text
		case domain.FieldButtonText:
			post.ButtonText = ev.Text
		}
		s.ActivePost = &post
		s.State = StateIdle
		e.sessions.Put(userID, s)
		return Result{Kind: ResultFieldUpdated, State: StateIdle, Post: s.ActivePost, Field: field}, nil
	}
}

func (e *Engine) editPhoto(ctx context.Context, userID int64, s Session, ev Event) (Result, error) {
	if s.ActivePost == nil {
		s.State = StateIdle
		e.sessions.Put(userID, s)
		return Result{Kind: ResultNone, State: StateIdle}, domain.ErrNotFound
	}
	fileID := ev.PhotoFileID
	if err := e.posts.SetPhoto(ctx, s.ActivePost.ID, &fileID); err != nil {
		return Result{Kind: ResultNone, State: s.State}, err
	}
	post := *s.ActivePost
	post.PhotoFileID = &fileID
	s.ActivePost = &post
	s.State = StateIdle
	e.sessions.Put(userID, s)
	return Result{Kind: ResultFieldUpdated, State: StateIdle, Post: s.ActivePost, Field: domain.FieldPhoto}, nil
}

// popupLimit enforces the 190-rune popup ceiling without advancing state.
func popupLimit(s Session, text string) (Result, error) {
	n := utf8.RuneCountInString(text)
	if n <= domain.PopupTextLimit {
		return Result{}, nil
	}
	return Result{Kind: ResultTooLong, State: s.State, Length: n},
		&domain.TooLongError{Length: n, Limit: domain.PopupTextLimit}
}
