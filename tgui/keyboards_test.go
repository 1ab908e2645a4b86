package tgui

import (
	"strings"
	"testing"

	"github.com/subgate/subgatebot/domain"

	tele "gopkg.in/telebot.v4"
)

func TestCheckMarkupCarriesPostID(t *testing.T) {
	post := domain.Post{ID: 42, ChannelID: "@news", ButtonText: "Проверить подписку"}
	markup := checkMarkup(post)

	if len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 1 {
		t.Fatalf("unexpected keyboard shape: %+v", markup.InlineKeyboard)
	}
	btn := markup.InlineKeyboard[0][0]
	if btn.Text != "Проверить подписку" {
		t.Fatalf("button text = %q", btn.Text)
	}
	if btn.Unique != cbCheck {
		t.Fatalf("button unique = %q", btn.Unique)
	}
	if btn.Data != "42" {
		t.Fatalf("button payload = %q", btn.Data)
	}
}

func TestPostControlsPhotoRows(t *testing.T) {
	fileID := "photo-1"
	withPhoto := postControlsMarkup(domain.Post{ID: 1, PhotoFileID: &fileID})
	withoutPhoto := postControlsMarkup(domain.Post{ID: 1})

	if !containsUnique(withPhoto.InlineKeyboard, cbRemovePhoto) {
		t.Fatal("photo post must offer photo removal")
	}
	if containsUnique(withoutPhoto.InlineKeyboard, cbRemovePhoto) {
		t.Fatal("photoless post must not offer photo removal")
	}
	if !containsUnique(withoutPhoto.InlineKeyboard, cbEditPhoto) {
		t.Fatal("photoless post must offer adding a photo")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("короткий", 30); got != "короткий" {
		t.Fatalf("short string changed: %q", got)
	}
	long := strings.Repeat("д", 40)
	got := truncate(long, 30)
	if runes := []rune(got); len(runes) != 30 {
		t.Fatalf("truncated length = %d", len(runes))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("missing ellipsis: %q", got)
	}
}

func TestPreviewSummary(t *testing.T) {
	msgID := 77
	post := domain.Post{
		ID:          5,
		SuccessText: "добро пожаловать",
		FailText:    "подпишитесь",
		ButtonText:  "Проверить",
		MessageID:   &msgID,
	}
	summary := previewSummary(post)
	for _, want := range []string{"#5", "добро пожаловать", "подпишитесь", "Проверить", "#77"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
	draftLike := previewSummary(domain.Post{ID: 6, SuccessText: "s", FailText: "f", ButtonText: "b"})
	if strings.Contains(draftLike, "Опубликован") {
		t.Fatal("unpublished post must not claim publication")
	}
}

func containsUnique(rows [][]tele.InlineButton, unique string) bool {
	for _, row := range rows {
		for _, btn := range row {
			if btn.Unique == unique {
				return true
			}
		}
	}
	return false
}
