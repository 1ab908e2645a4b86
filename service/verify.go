package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/subgate/subgatebot/core/logger"
	"github.com/subgate/subgatebot/domain"
)

// Verdict is the user-facing outcome of a subscription check.
type Verdict int

const (
	// VerdictPassed means the user is subscribed; show the success text.
	VerdictPassed Verdict = iota
	// VerdictFailed means the user is provably not subscribed; show the
	// fail text.
	VerdictFailed
	// VerdictUnknown means the check itself failed (post gone, Telegram
	// unreachable). Shown as a retry-later notice, never as a failure:
	// a subscribed user must not be told they are not.
	VerdictUnknown
)

// String names the verdict for logs.
func (v Verdict) String() string {
	switch v {
	case VerdictPassed:
		return "passed"
	case VerdictFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CheckResult carries the verdict and the post text to display for it.
// Text is empty for VerdictUnknown; the UI supplies the retry notice.
type CheckResult struct {
	Verdict Verdict
	Text    string
}

// PostGetter loads posts for the verifier.
type PostGetter interface {
	PostByID(ctx context.Context, id int64) (domain.Post, error)
}

// Verifier maps membership status to a check result. It is read-only: no
// post or session state is touched.
type Verifier struct {
	posts  PostGetter
	oracle Directory
}

// NewVerifier wires the verifier.
func NewVerifier(posts PostGetter, oracle Directory) *Verifier {
	return &Verifier{posts: posts, oracle: oracle}
}

// Check resolves the user's membership in the post's channel. member,
// administrator and creator pass; every other reported status fails;
// errors yield VerdictUnknown.
func (v *Verifier) Check(ctx context.Context, postID, userID int64) CheckResult {
	post, err := v.posts.PostByID(ctx, postID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Error(ctx, "service.verify", "post_lookup",
				slog.String("status", "fail"),
				slog.Int64("post_id", postID),
				slog.String("err", err.Error()),
			)
		}
		return CheckResult{Verdict: VerdictUnknown}
	}

	status, err := v.oracle.MemberStatus(ctx, post.ChannelID, userID)
	if err != nil {
		logger.Warn(ctx, "service.verify", "status_lookup",
			slog.String("status", "fail"),
			slog.Int64("post_id", postID),
			slog.String("channel", post.ChannelID),
			slog.String("err", err.Error()),
		)
		return CheckResult{Verdict: VerdictUnknown}
	}

	result := CheckResult{Verdict: VerdictFailed, Text: post.FailText}
	if status.Subscribed() {
		result = CheckResult{Verdict: VerdictPassed, Text: post.SuccessText}
	}
	logger.Info(ctx, "service.verify", "check",
		slog.String("status", "ok"),
		slog.Int64("post_id", postID),
		slog.Int64("user_id", userID),
		slog.String("verdict", result.Verdict.String()),
	)
	return result
}
