package telegram

import (
	"testing"
)

func TestParseChatRef(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    ChatRef
		wantErr bool
	}{
		{"@prices_out", ChatRef{Username: "@prices_out"}, false},
		{"-1001234567890", ChatRef{ChatID: -1001234567890}, false},
		{"12345", ChatRef{ChatID: 12345}, false},
		{" @padded ", ChatRef{Username: "@padded"}, false},
		{"not-a-chat", ChatRef{}, true},
		{"", ChatRef{}, true},
	}

	for _, c := range cases {
		got, err := ParseChatRef(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("ParseChatRef(%q) expected error, got nil", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseChatRef(%q) err = %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseChatRef(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}
