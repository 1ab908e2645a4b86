package dialog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/subgate/subgatebot/domain"
	"github.com/subgate/subgatebot/service"
)

type fakeChannelStore struct {
	admins   map[string]int64
	channels map[string]string
	deleted  []string
}

func newFakeChannelStore() *fakeChannelStore {
	return &fakeChannelStore{
		admins:   make(map[string]int64),
		channels: make(map[string]string),
	}
}

func (f *fakeChannelStore) grant(userID int64, channelID string) {
	f.admins[channelID] = userID
}

func (f *fakeChannelStore) UpsertChannel(_ context.Context, channelID, name string) (int64, error) {
	f.channels[channelID] = name
	return int64(len(f.channels)), nil
}

func (f *fakeChannelStore) DeleteChannel(_ context.Context, channelID string) error {
	if _, ok := f.channels[channelID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.channels, channelID)
	f.deleted = append(f.deleted, channelID)
	return nil
}

func (f *fakeChannelStore) AddAdmin(_ context.Context, userID int64, channelID string) error {
	f.admins[channelID] = userID
	return nil
}

func (f *fakeChannelStore) IsAdmin(_ context.Context, userID int64, channelID string) (bool, error) {
	return f.admins[channelID] == userID, nil
}

func (f *fakeChannelStore) ChannelsForUser(_ context.Context, userID int64) ([]domain.Channel, error) {
	var out []domain.Channel
	for id, uid := range f.admins {
		if uid == userID {
			out = append(out, domain.Channel{ID: id, Name: f.channels[id]})
		}
	}
	return out, nil
}

type fakeDirectory struct {
	titles map[string]string
	status map[string]domain.MemberStatus
	err    error
}

func (f *fakeDirectory) ResolveChannel(_ context.Context, input string) (service.ChannelInfo, error) {
	if f.err != nil {
		return service.ChannelInfo{}, f.err
	}
	return service.ChannelInfo{ID: input, Title: f.titles[input]}, nil
}

func (f *fakeDirectory) MemberStatus(_ context.Context, channelID string, _ int64) (domain.MemberStatus, error) {
	if f.err != nil {
		return "", f.err
	}
	if st, ok := f.status[channelID]; ok {
		return st, nil
	}
	return domain.StatusLeft, nil
}

type fakePostStore struct {
	posts     map[int64]domain.Post
	nextID    int64
	createErr error
	updateErr error
	updates   []domain.PostField
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[int64]domain.Post), nextID: 1}
}

func (f *fakePostStore) CreatePost(_ context.Context, p domain.Post) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	id := f.nextID
	f.nextID++
	p.ID = id
	f.posts[id] = p
	return id, nil
}

func (f *fakePostStore) PostByID(_ context.Context, id int64) (domain.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return domain.Post{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePostStore) PostsForChannel(_ context.Context, channelID string) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range f.posts {
		if p.ChannelID == channelID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostStore) UpdatePostField(_ context.Context, id int64, field domain.PostField, value any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.posts[id]
	if !ok {
		return domain.ErrNotFound
	}
	f.updates = append(f.updates, field)
	switch field {
	case domain.FieldMessageText:
		p.MessageText = value.(string)
	case domain.FieldSuccessText:
		p.SuccessText = value.(string)
	case domain.FieldFailText:
		p.FailText = value.(string)
	case domain.FieldButtonText:
		p.ButtonText = value.(string)
	case domain.FieldPhoto:
		if value == nil {
			p.PhotoFileID = nil
		} else {
			s := value.(string)
			p.PhotoFileID = &s
		}
	case domain.FieldMessageID:
		m := value.(int)
		p.MessageID = &m
	}
	f.posts[id] = p
	return nil
}

func (f *fakePostStore) DeletePost(_ context.Context, id int64) error {
	if _, ok := f.posts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func newTestEngine() (*Engine, *fakeChannelStore, *fakeDirectory, *fakePostStore) {
	chs := newFakeChannelStore()
	dir := &fakeDirectory{titles: map[string]string{}, status: map[string]domain.MemberStatus{}}
	ps := newFakePostStore()
	e := NewEngine(NewMemoryStore(), service.NewChannels(chs, dir), service.NewPosts(ps))
	return e, chs, dir, ps
}

const user = int64(100)

func TestCreateFlowWithPhoto(t *testing.T) {
	ctx := context.Background()
	e, chs, _, ps := newTestEngine()
	chs.grant(user, "@news")

	if err := e.StartCreate(ctx, user, "@news"); err != nil {
		t.Fatalf("start create: %v", err)
	}

	res, err := e.Handle(ctx, user, Event{Kind: EventText, Text: "big announcement"})
	if err != nil || res.Kind != ResultPromptPhoto {
		t.Fatalf("message step: kind=%v err=%v", res.Kind, err)
	}
	res, err = e.Handle(ctx, user, Event{Kind: EventPhoto, PhotoFileID: "file-1"})
	if err != nil || res.Kind != ResultPhotoAdded {
		t.Fatalf("photo step: kind=%v err=%v", res.Kind, err)
	}
	res, err = e.Handle(ctx, user, Event{Kind: EventText, Text: "welcome in"})
	if err != nil || res.Kind != ResultPromptFail {
		t.Fatalf("success step: kind=%v err=%v", res.Kind, err)
	}
	res, err = e.Handle(ctx, user, Event{Kind: EventText, Text: "not yet"})
	if err != nil || res.Kind != ResultPromptButton {
		t.Fatalf("fail step: kind=%v err=%v", res.Kind, err)
	}
	res, err = e.Handle(ctx, user, Event{Kind: EventText, Text: "Join check"})
	if err != nil || res.Kind != ResultPostCreated {
		t.Fatalf("button step: kind=%v err=%v", res.Kind, err)
	}
	if res.Post == nil || res.Post.ID == 0 {
		t.Fatal("expected committed post in result")
	}

	stored := ps.posts[res.Post.ID]
	if stored.MessageText != "big announcement" || stored.SuccessText != "welcome in" ||
		stored.FailText != "not yet" || stored.ButtonText != "Join check" {
		t.Fatalf("stored post fields mismatch: %+v", stored)
	}
	if stored.PhotoFileID == nil || *stored.PhotoFileID != "file-1" {
		t.Fatalf("expected photo file-1, got %v", stored.PhotoFileID)
	}

	s := e.Session(user)
	if s.State != StateIdle || s.Draft != nil || s.ActivePost == nil {
		t.Fatalf("session after commit: %+v", s)
	}
}

func TestCreateFlowDefaults(t *testing.T) {
	ctx := context.Background()
	e, chs, _, ps := newTestEngine()
	chs.grant(user, "@news")

	if err := e.StartCreate(ctx, user, "@news"); err != nil {
		t.Fatalf("start create: %v", err)
	}
	steps := []Event{
		{Kind: EventText, Text: "text only"},
		{Kind: EventSkipPhoto},
		{Kind: EventText, Text: "ok"},
		{Kind: EventUseDefault},
		{Kind: EventUseDefault},
	}
	var last Result
	for i, ev := range steps {
		res, err := e.Handle(ctx, user, ev)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		last = res
	}
	if last.Kind != ResultPostCreated {
		t.Fatalf("expected commit, got %v", last.Kind)
	}
	stored := ps.posts[last.Post.ID]
	if stored.FailText != domain.DefaultFailText {
		t.Fatalf("fail text default not applied: %q", stored.FailText)
	}
	if stored.ButtonText != domain.DefaultButtonText {
		t.Fatalf("button text default not applied: %q", stored.ButtonText)
	}
	if stored.PhotoFileID != nil {
		t.Fatalf("expected no photo, got %v", *stored.PhotoFileID)
	}
}

func TestPopupLimitBlocksWithoutAdvancing(t *testing.T) {
	ctx := context.Background()
	e, chs, _, _ := newTestEngine()
	chs.grant(user, "@news")

	if err := e.StartCreate(ctx, user, "@news"); err != nil {
		t.Fatalf("start create: %v", err)
	}
	if _, err := e.Handle(ctx, user, Event{Kind: EventText, Text: "msg"}); err != nil {
		t.Fatalf("message step: %v", err)
	}
	if _, err := e.Handle(ctx, user, Event{Kind: EventSkipPhoto}); err != nil {
		t.Fatalf("skip photo: %v", err)
	}

	long := strings.Repeat("я", domain.PopupTextLimit+1)
	res, err := e.Handle(ctx, user, Event{Kind: EventText, Text: long})
	if res.Kind != ResultTooLong {
		t.Fatalf("expected ResultTooLong, got %v", res.Kind)
	}
	if res.Length != domain.PopupTextLimit+1 {
		t.Fatalf("expected rune length %d, got %d", domain.PopupTextLimit+1, res.Length)
	}
	var tooLong *domain.TooLongError
	if !errors.As(err, &tooLong) {
		t.Fatalf("expected TooLongError, got %v", err)
	}
	if st := e.Session(user).State; st != StateCreatingSuccess {
		t.Fatalf("state advanced on oversized input: %s", st)
	}

	res, err = e.Handle(ctx, user, Event{Kind: EventText, Text: strings.Repeat("я", domain.PopupTextLimit)})
	if err != nil || res.Kind != ResultPromptFail {
		t.Fatalf("exact-limit text rejected: kind=%v err=%v", res.Kind, err)
	}
}

func TestPopupLimitAppliesWhileEditing(t *testing.T) {
	ctx := context.Background()
	e, chs, _, ps := newTestEngine()
	chs.grant(user, "@news")
	post := domain.Post{ID: 1, ChannelID: "@news", SuccessText: "ok", FailText: "no"}
	ps.posts[1] = post
	e.SetActivePost(user, post)

	if err := e.StartEdit(ctx, user, domain.FieldFailText); err != nil {
		t.Fatalf("start edit: %v", err)
	}
	res, err := e.Handle(ctx, user, Event{Kind: EventText, Text: strings.Repeat("a", domain.PopupTextLimit+5)})
	if res.Kind != ResultTooLong || err == nil {
		t.Fatalf("expected rejection, got kind=%v err=%v", res.Kind, err)
	}
	if st := e.Session(user).State; st != StateEditingFail {
		t.Fatalf("edit state lost on oversized input: %s", st)
	}
	if ps.posts[1].FailText != "no" {
		t.Fatalf("post mutated by rejected input: %q", ps.posts[1].FailText)
	}
}

func TestCancelDiscardsDraftKeepsActivePost(t *testing.T) {
	ctx := context.Background()
	e, chs, _, ps := newTestEngine()
	chs.grant(user, "@news")
	post := domain.Post{ID: 7, ChannelID: "@news", ButtonText: "check"}
	ps.posts[7] = post
	e.SetActivePost(user, post)

	if err := e.StartEdit(ctx, user, domain.FieldButtonText); err != nil {
		t.Fatalf("start edit: %v", err)
	}
	res, err := e.Handle(ctx, user, Event{Kind: EventCancel})
	if err != nil || res.Kind != ResultCancelled {
		t.Fatalf("cancel: kind=%v err=%v", res.Kind, err)
	}
	s := e.Session(user)
	if s.State != StateIdle || s.Draft != nil {
		t.Fatalf("session after cancel: %+v", s)
	}
	if s.ActivePost == nil || s.ActivePost.ID != 7 {
		t.Fatal("cancel must keep the active post")
	}
	if ps.posts[7].ButtonText != "check" {
		t.Fatal("cancel must not touch the stored post")
	}
}

func TestPhotoOutsidePhotoStates(t *testing.T) {
	ctx := context.Background()
	e, chs, _, _ := newTestEngine()
	chs.grant(user, "@news")

	if err := e.StartCreate(ctx, user, "@news"); err != nil {
		t.Fatalf("start create: %v", err)
	}
	res, err := e.Handle(ctx, user, Event{Kind: EventPhoto, PhotoFileID: "file-x"})
	if err != nil || res.Kind != ResultNotAvailable {
		t.Fatalf("expected ResultNotAvailable, got kind=%v err=%v", res.Kind, err)
	}
	if st := e.Session(user).State; st != StateCreatingMessage {
		t.Fatalf("stray photo changed state: %s", st)
	}
}

func TestAddChannel(t *testing.T) {
	ctx := context.Background()
	e, chs, dir, _ := newTestEngine()
	dir.titles["@news"] = "News"
	dir.status["@news"] = domain.StatusAdministrator

	e.StartAddChannel(user)
	res, err := e.Handle(ctx, user, Event{Kind: EventText, Text: "@news"})
	if err != nil || res.Kind != ResultChannelAdded {
		t.Fatalf("register: kind=%v err=%v", res.Kind, err)
	}
	if res.Channel == nil || res.Channel.Name != "News" {
		t.Fatalf("channel in result: %+v", res.Channel)
	}
	if chs.channels["@news"] != "News" {
		t.Fatal("channel not persisted")
	}
	if chs.admins["@news"] != user {
		t.Fatal("admin grant not persisted")
	}
	if st := e.Session(user).State; st != StateIdle {
		t.Fatalf("expected idle after register, got %s", st)
	}
}

func TestAddChannelNotAdminStaysInState(t *testing.T) {
	ctx := context.Background()
	e, _, dir, _ := newTestEngine()
	dir.status["@other"] = domain.StatusMember

	e.StartAddChannel(user)
	_, err := e.Handle(ctx, user, Event{Kind: EventText, Text: "@other"})
	if !errors.Is(err, domain.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if st := e.Session(user).State; st != StateAddingChannel {
		t.Fatalf("expected retryable state, got %s", st)
	}
}

func TestEditSingleFieldIsolation(t *testing.T) {
	ctx := context.Background()
	e, chs, _, ps := newTestEngine()
	chs.grant(user, "@news")
	post := domain.Post{
		ID: 3, ChannelID: "@news",
		MessageText: "orig", SuccessText: "s", FailText: "f", ButtonText: "b",
	}
	ps.posts[3] = post
	e.SetActivePost(user, post)

	if err := e.StartEdit(ctx, user, domain.FieldMessageText); err != nil {
		t.Fatalf("start edit: %v", err)
	}
	res, err := e.Handle(ctx, user, Event{Kind: EventText, Text: "rewritten"})
	if err != nil || res.Kind != ResultFieldUpdated || res.Field != domain.FieldMessageText {
		t.Fatalf("edit: kind=%v field=%s err=%v", res.Kind, res.Field, err)
	}

	stored := ps.posts[3]
	if stored.MessageText != "rewritten" {
		t.Fatalf("message not updated: %q", stored.MessageText)
	}
	if stored.SuccessText != "s" || stored.FailText != "f" || stored.ButtonText != "b" {
		t.Fatalf("edit leaked into other fields: %+v", stored)
	}
	if len(ps.updates) != 1 {
		t.Fatalf("expected exactly one field update, got %v", ps.updates)
	}
	s := e.Session(user)
	if s.State != StateIdle || s.ActivePost.MessageText != "rewritten" {
		t.Fatalf("session after edit: %+v", s)
	}
}

func TestEditPhotoAndRemove(t *testing.T) {
	ctx := context.Background()
	e, chs, _, ps := newTestEngine()
	chs.grant(user, "@news")
	post := domain.Post{ID: 4, ChannelID: "@news", MessageText: "m"}
	ps.posts[4] = post
	e.SetActivePost(user, post)

	if err := e.StartEdit(ctx, user, domain.FieldPhoto); err != nil {
		t.Fatalf("start edit photo: %v", err)
	}
	res, err := e.Handle(ctx, user, Event{Kind: EventPhoto, PhotoFileID: "new-photo"})
	if err != nil || res.Kind != ResultFieldUpdated {
		t.Fatalf("edit photo: kind=%v err=%v", res.Kind, err)
	}
	if got := ps.posts[4].PhotoFileID; got == nil || *got != "new-photo" {
		t.Fatalf("photo not stored: %v", got)
	}

	updated, err := e.RemovePhoto(ctx, user)
	if err != nil {
		t.Fatalf("remove photo: %v", err)
	}
	if updated.PhotoFileID != nil {
		t.Fatal("returned post still has a photo")
	}
	if ps.posts[4].PhotoFileID != nil {
		t.Fatal("stored post still has a photo")
	}
	if e.Session(user).ActivePost.PhotoFileID != nil {
		t.Fatal("session copy still has a photo")
	}
}

func TestCommitFailureResetsToIdle(t *testing.T) {
	ctx := context.Background()
	e, chs, _, ps := newTestEngine()
	chs.grant(user, "@news")
	ps.createErr = errors.New("db down")

	if err := e.StartCreate(ctx, user, "@news"); err != nil {
		t.Fatalf("start create: %v", err)
	}
	steps := []Event{
		{Kind: EventText, Text: "t"},
		{Kind: EventSkipPhoto},
		{Kind: EventText, Text: "ok"},
		{Kind: EventUseDefault},
	}
	for i, ev := range steps {
		if _, err := e.Handle(ctx, user, ev); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	_, err := e.Handle(ctx, user, Event{Kind: EventUseDefault})
	if err == nil {
		t.Fatal("expected commit error")
	}
	s := e.Session(user)
	if s.State != StateIdle || s.Draft != nil || s.ActivePost != nil {
		t.Fatalf("session after failed commit: %+v", s)
	}
}

func TestStartEntryPointsRequireGrant(t *testing.T) {
	ctx := context.Background()
	e, _, _, ps := newTestEngine()

	if err := e.StartCreate(ctx, user, "@news"); !errors.Is(err, domain.ErrNotAdmin) {
		t.Fatalf("StartCreate without grant: %v", err)
	}
	if st := e.Session(user).State; st != StateIdle {
		t.Fatalf("unauthorized StartCreate changed state: %s", st)
	}

	post := domain.Post{ID: 9, ChannelID: "@news"}
	ps.posts[9] = post
	e.SetActivePost(user, post)
	if err := e.StartEdit(ctx, user, domain.FieldMessageText); !errors.Is(err, domain.ErrNotAdmin) {
		t.Fatalf("StartEdit without grant: %v", err)
	}
	if _, err := e.RemovePhoto(ctx, user); !errors.Is(err, domain.ErrNotAdmin) {
		t.Fatalf("RemovePhoto without grant: %v", err)
	}
}

func TestIgnoredTextAtIdle(t *testing.T) {
	ctx := context.Background()
	e, _, _, _ := newTestEngine()
	res, err := e.Handle(ctx, user, Event{Kind: EventText, Text: "hello"})
	if err != nil || res.Kind != ResultNone {
		t.Fatalf("idle text: kind=%v err=%v", res.Kind, err)
	}
	if e.InProgress(user) {
		t.Fatal("idle user reported as in progress")
	}
}
