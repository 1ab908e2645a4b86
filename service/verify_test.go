package service

import (
	"context"
	"errors"
	"testing"

	"github.com/subgate/subgatebot/domain"
)

type stubPosts struct {
	post domain.Post
	err  error
}

func (s *stubPosts) PostByID(context.Context, int64) (domain.Post, error) {
	return s.post, s.err
}

type stubDirectory struct {
	info      ChannelInfo
	infoErr   error
	status    domain.MemberStatus
	statusErr error
	calls     int
}

func (s *stubDirectory) ResolveChannel(context.Context, string) (ChannelInfo, error) {
	return s.info, s.infoErr
}

func (s *stubDirectory) MemberStatus(context.Context, string, int64) (domain.MemberStatus, error) {
	s.calls++
	return s.status, s.statusErr
}

func TestVerifierVerdicts(t *testing.T) {
	post := domain.Post{ID: 1, ChannelID: "@news", SuccessText: "welcome", FailText: "join first"}

	cases := []struct {
		name     string
		posts    *stubPosts
		dir      *stubDirectory
		verdict  Verdict
		wantText string
	}{
		{
			name:     "member passes",
			posts:    &stubPosts{post: post},
			dir:      &stubDirectory{status: domain.StatusMember},
			verdict:  VerdictPassed,
			wantText: "welcome",
		},
		{
			name:     "creator passes",
			posts:    &stubPosts{post: post},
			dir:      &stubDirectory{status: domain.StatusCreator},
			verdict:  VerdictPassed,
			wantText: "welcome",
		},
		{
			name:     "left fails",
			posts:    &stubPosts{post: post},
			dir:      &stubDirectory{status: domain.StatusLeft},
			verdict:  VerdictFailed,
			wantText: "join first",
		},
		{
			name:     "restricted fails",
			posts:    &stubPosts{post: post},
			dir:      &stubDirectory{status: domain.StatusRestricted},
			verdict:  VerdictFailed,
			wantText: "join first",
		},
		{
			name:    "oracle error is unknown, not failed",
			posts:   &stubPosts{post: post},
			dir:     &stubDirectory{statusErr: errors.New("telegram unreachable")},
			verdict: VerdictUnknown,
		},
		{
			name:    "missing post is unknown",
			posts:   &stubPosts{err: domain.ErrNotFound},
			dir:     &stubDirectory{status: domain.StatusMember},
			verdict: VerdictUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewVerifier(tc.posts, tc.dir)
			res := v.Check(context.Background(), 1, 500)
			if res.Verdict != tc.verdict {
				t.Fatalf("verdict = %s, want %s", res.Verdict, tc.verdict)
			}
			if res.Text != tc.wantText {
				t.Fatalf("text = %q, want %q", res.Text, tc.wantText)
			}
		})
	}
}

func TestVerifierIsIdempotent(t *testing.T) {
	post := domain.Post{ID: 1, ChannelID: "@news", SuccessText: "in", FailText: "out"}
	dir := &stubDirectory{status: domain.StatusMember}
	v := NewVerifier(&stubPosts{post: post}, dir)

	first := v.Check(context.Background(), 1, 500)
	second := v.Check(context.Background(), 1, 500)
	if first != second {
		t.Fatalf("repeated checks differ: %+v vs %+v", first, second)
	}
	if dir.calls != 2 {
		t.Fatalf("expected a fresh lookup per check, got %d", dir.calls)
	}
}
