package publish

import (
	"errors"
	"strings"
	"testing"
	"unified-price-bot/internal/markup"
	"unified-price-bot/internal/telegram"
)

type sentDoc struct {
	chat    telegram.ChatRef
	name    string
	caption string
}

type fakeSender struct {
	sent     []sentDoc
	failName string
}

func (f *fakeSender) SendDocument(chat telegram.ChatRef, name string, data []byte, caption string) error {
	if name == f.failName {
		return errors.New("telegram says no")
	}
	f.sent = append(f.sent, sentDoc{chat: chat, name: name, caption: caption})
	return nil
}

func batch(names ...string) *markup.Output {
	out := &markup.Output{}
	for _, name := range names {
		out.Files = append(out.Files, markup.OutFile{Name: name, Data: []byte(name)})
	}
	return out
}

func TestPublisher_Publish_AllFiles(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	dest := telegram.ChatRef{ChatID: -100900}

	count, err := New(sender, dest).Publish(batch("jan.xlsx", "feb.xlsx"))
	if err != nil {
		t.Fatalf("Publish() err = %v", err)
	}
	if count != 2 {
		t.Fatalf("Publish() = %d, want 2", count)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d documents, want 2", len(sender.sent))
	}

	first := sender.sent[0]
	if first.chat != dest {
		t.Fatalf("sent to %+v, want %+v", first.chat, dest)
	}
	if !strings.HasPrefix(first.caption, "Price list is current as of ") {
		t.Fatalf("caption = %q, want the freshness line first", first.caption)
	}
	if !strings.HasSuffix(first.caption, "\njan.xlsx") {
		t.Fatalf("caption = %q, want the file name last", first.caption)
	}
}

func TestPublisher_Publish_ContinuesPastFailure(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failName: "feb.xlsx"}

	count, err := New(sender, telegram.ChatRef{ChatID: -100900}).Publish(batch("jan.xlsx", "feb.xlsx", "mar.xlsx"))
	if count != 2 {
		t.Fatalf("Publish() = %d, want 2 delivered around the failure", count)
	}

	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("Publish() expected Failure, got %v", err)
	}
	if len(failure.Failed) != 1 || failure.Failed[0] != "feb.xlsx" {
		t.Fatalf("Failure.Failed = %v, want [feb.xlsx]", failure.Failed)
	}
	if failure.Total != 3 {
		t.Fatalf("Failure.Total = %d, want 3", failure.Total)
	}

	if len(sender.sent) != 2 || sender.sent[0].name != "jan.xlsx" || sender.sent[1].name != "mar.xlsx" {
		t.Fatalf("sent = %+v, want jan.xlsx and mar.xlsx", sender.sent)
	}
}

func TestPublisher_Publish_EmptyBatch(t *testing.T) {
	t.Parallel()

	count, err := New(&fakeSender{}, telegram.ChatRef{ChatID: 1}).Publish(&markup.Output{})
	if err != nil {
		t.Fatalf("Publish() err = %v", err)
	}
	if count != 0 {
		t.Fatalf("Publish() = %d, want 0", count)
	}
}
