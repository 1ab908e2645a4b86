package service

import (
	"context"
	"errors"
	"testing"

	"github.com/subgate/subgatebot/domain"
)

type memPostStore struct {
	posts   map[int64]domain.Post
	updates []domain.PostField
}

func newMemPostStore() *memPostStore {
	return &memPostStore{posts: make(map[int64]domain.Post)}
}

func (m *memPostStore) CreatePost(_ context.Context, p domain.Post) (int64, error) {
	id := int64(len(m.posts) + 1)
	p.ID = id
	m.posts[id] = p
	return id, nil
}

func (m *memPostStore) PostByID(_ context.Context, id int64) (domain.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return domain.Post{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *memPostStore) PostsForChannel(_ context.Context, channelID string) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range m.posts {
		if p.ChannelID == channelID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPostStore) UpdatePostField(_ context.Context, id int64, field domain.PostField, value any) error {
	p, ok := m.posts[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.updates = append(m.updates, field)
	if field == domain.FieldMessageID {
		v := value.(int)
		p.MessageID = &v
	}
	m.posts[id] = p
	return nil
}

func (m *memPostStore) DeletePost(_ context.Context, id int64) error {
	delete(m.posts, id)
	return nil
}

type stubGuard struct{ err error }

func (g stubGuard) Authorize(context.Context, int64, string) error { return g.err }

type stubSender struct {
	messageID int
	err       error
	sent      []domain.Post
}

func (s *stubSender) SendPost(_ context.Context, post domain.Post) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.sent = append(s.sent, post)
	s.messageID++
	return s.messageID, nil
}

func TestPublishRecordsMessageID(t *testing.T) {
	ctx := context.Background()
	store := newMemPostStore()
	posts := NewPosts(store)
	post, err := posts.Create(ctx, domain.Draft{ChannelID: "@news", MessageText: "hi", SuccessText: "ok"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sender := &stubSender{messageID: 100}
	pub := NewPublisher(posts, stubGuard{}, sender)

	id, err := pub.Publish(ctx, post, 42)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if id != 101 {
		t.Fatalf("message id = %d, want 101", id)
	}
	stored := store.posts[post.ID]
	if stored.MessageID == nil || *stored.MessageID != 101 {
		t.Fatalf("stored message id: %v", stored.MessageID)
	}
}

func TestPublishTwiceOverwritesMessageID(t *testing.T) {
	ctx := context.Background()
	store := newMemPostStore()
	posts := NewPosts(store)
	post, err := posts.Create(ctx, domain.Draft{ChannelID: "@news", MessageText: "hi", SuccessText: "ok"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sender := &stubSender{messageID: 200}
	pub := NewPublisher(posts, stubGuard{}, sender)

	if _, err := pub.Publish(ctx, post, 42); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if _, err := pub.Publish(ctx, post, 42); err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected two deliveries, got %d", len(sender.sent))
	}
	stored := store.posts[post.ID]
	if stored.MessageID == nil || *stored.MessageID != 202 {
		t.Fatalf("stored message id after republish: %v", stored.MessageID)
	}
}

func TestPublishRequiresGrant(t *testing.T) {
	ctx := context.Background()
	store := newMemPostStore()
	posts := NewPosts(store)
	sender := &stubSender{}
	pub := NewPublisher(posts, stubGuard{err: domain.ErrNotAdmin}, sender)

	_, err := pub.Publish(ctx, domain.Post{ID: 1, ChannelID: "@news"}, 42)
	if !errors.Is(err, domain.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("unauthorized publish must not reach the channel")
	}
}

func TestPublishSendFailureLeavesMessageIDUnset(t *testing.T) {
	ctx := context.Background()
	store := newMemPostStore()
	posts := NewPosts(store)
	post, err := posts.Create(ctx, domain.Draft{ChannelID: "@news", MessageText: "hi", SuccessText: "ok"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	pub := NewPublisher(posts, stubGuard{}, &stubSender{err: errors.New("flood wait")})

	if _, err := pub.Publish(ctx, post, 42); err == nil {
		t.Fatal("expected send error")
	}
	if store.posts[post.ID].MessageID != nil {
		t.Fatal("message id recorded despite failed delivery")
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	store := newMemPostStore()
	posts := NewPosts(store)

	post, err := posts.Create(ctx, domain.Draft{ChannelID: "@news", MessageText: "m", SuccessText: "s"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.FailText != domain.DefaultFailText {
		t.Fatalf("fail text = %q", post.FailText)
	}
	if post.ButtonText != domain.DefaultButtonText {
		t.Fatalf("button text = %q", post.ButtonText)
	}

	custom := "custom fail"
	post2, err := posts.Create(ctx, domain.Draft{ChannelID: "@news", MessageText: "m", SuccessText: "s", FailText: &custom})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post2.FailText != custom {
		t.Fatalf("custom fail text lost: %q", post2.FailText)
	}
}
