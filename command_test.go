package tgbotkit

import (
	"context"
	"slices"
	"testing"

	"github.com/go-telegram/bot/models"

	"github.com/tgbotkit/tgbotkit/group"
	"github.com/tgbotkit/tgbotkit/storage"
)

func TestCommandPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		command       string
		beginningOnly bool
		text          string
		want          bool
	}{
		{"bare command", "cmd", false, "/cmd", true},
		{"command with argument", "cmd", false, "/cmd arg", true},
		{"command with newline", "cmd", false, "/cmd\nmore", true},
		{"mention form", "cmd", false, "/cmd@somebot", true},
		{"mention with argument", "cmd", false, "/cmd@somebot arg", true},
		{"punctuation terminator", "cmd", false, "/cmd, hello", true},
		{"longer token does not match", "cmd", false, "/cmdextra", false},
		{"underscore suffix does not match", "cmd", false, "/cmd_12", false},
		{"wrong bot mention", "cmd", false, "/cmd@otherbot", false},
		{"mid-message command", "cmd", false, "say /cmd", false},
		{"different command", "cmd", false, "/other", false},
		{"suffix form matches with beginning only", "cmd", true, "/cmd_12345", true},
		{"negative id suffix", "cmd", true, "/cmd_m12345", true},
		{"suffix plus mention", "cmd", true, "/cmd_12@somebot", true},
		{"bare command still matches with beginning only", "cmd", true, "/cmd", true},
		{"beginning only rejects other commands", "other", true, "/cmd_12", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			re := CommandPattern(tt.command, "somebot", tt.beginningOnly)
			if got := re.MatchString(tt.text); got != tt.want {
				t.Errorf("CommandPattern(%q, beginningOnly=%v).MatchString(%q) = %v, want %v",
					tt.command, tt.beginningOnly, tt.text, got, tt.want)
			}
		})
	}
}

func TestCommandPatternQuotesMeta(t *testing.T) {
	t.Parallel()

	// Regexp metacharacters in tokens must match literally.
	re := CommandPattern("a.b", "some.bot", false)
	if !re.MatchString("/a.b") {
		t.Error("literal token did not match")
	}
	if re.MatchString("/axb") {
		t.Error("dot matched as a wildcard")
	}
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	noop := func(ctx context.Context, msg *models.Message) {}

	t.Run("duplicate token rejected", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry("somebot")
		if err := r.Register(&Command{Name: "cmd", Handler: noop}); err != nil {
			t.Fatalf("first Register failed: %v", err)
		}
		if err := r.Register(&Command{Name: "cmd", Handler: noop}); err == nil {
			t.Error("duplicate Register succeeded, want error")
		}
	})

	t.Run("empty token rejected", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry("somebot")
		if err := r.Register(&Command{Handler: noop}); err == nil {
			t.Error("empty-token Register succeeded, want error")
		}
	})

	t.Run("missing handler rejected", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry("somebot")
		if err := r.Register(&Command{Name: "cmd"}); err == nil {
			t.Error("handler-less Register succeeded, want error")
		}
	})
}

func TestRegistryMatch(t *testing.T) {
	t.Parallel()

	noop := func(ctx context.Context, msg *models.Message) {}
	r := NewRegistry("somebot")
	for _, name := range []string{"start", "help"} {
		if err := r.Register(&Command{Name: name, Handler: noop}); err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}
	if err := r.Register(&Command{Name: "toggle", MatchBeginningOnly: true, Handler: noop}); err != nil {
		t.Fatalf("Register(toggle) failed: %v", err)
	}

	tests := []struct {
		text string
		want string
	}{
		{"/start", "start"},
		{"/help me", "help"},
		{"/toggle_m123", "toggle"},
		{"/unknown", ""},
		{"plain text", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			c := r.Match(tt.text)
			switch {
			case tt.want == "" && c != nil:
				t.Errorf("Match(%q) = %q, want no match", tt.text, c.Name)
			case tt.want != "" && c == nil:
				t.Errorf("Match(%q) = nil, want %q", tt.text, tt.want)
			case tt.want != "" && c != nil && c.Name != tt.want:
				t.Errorf("Match(%q) = %q, want %q", tt.text, c.Name, tt.want)
			}
		})
	}
}

func TestRegistryByGroup(t *testing.T) {
	t.Parallel()

	noop := func(ctx context.Context, msg *models.Message) {}
	r := NewRegistry("somebot")

	st := storage.NewMemory()
	a := group.New("a", st)
	b := group.New("b", st)

	open := &Command{Name: "open", Handler: noop}
	gated := &Command{Name: "gated", Groups: []*group.Group{a}, Handler: noop}
	multi := &Command{Name: "multi", Groups: []*group.Group{a, b}, Handler: noop}
	for _, c := range []*Command{open, gated, multi} {
		if err := r.Register(c); err != nil {
			t.Fatalf("Register(%s) failed: %v", c.Name, err)
		}
	}

	byGroup := r.ByGroup()

	if got := names(byGroup[nil]); !slices.Equal(got, []string{"open"}) {
		t.Errorf("ungated commands = %v, want [open]", got)
	}
	if got := names(byGroup[a]); !slices.Equal(got, []string{"gated", "multi"}) {
		t.Errorf("group a commands = %v, want [gated multi]", got)
	}
	if got := names(byGroup[b]); !slices.Equal(got, []string{"multi"}) {
		t.Errorf("group b commands = %v, want [multi]", got)
	}
}

func names(cmds []*Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Name
	}
	return out
}

func commandEntity(length int) []models.MessageEntity {
	return []models.MessageEntity{{
		Type:   models.MessageEntityTypeBotCommand,
		Offset: 0,
		Length: length,
	}}
}

func TestParseMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		entities []models.MessageEntity
		want     MessageInfo
	}{
		{
			name:     "suffix, mention, args and text",
			text:     "/toggle_m123@somebot now please\nsecond line",
			entities: commandEntity(len("/toggle_m123@somebot")),
			want: MessageInfo{
				Command: "/toggle_m123@somebot",
				Base:    "toggle",
				Suffix:  "m123",
				BotName: "somebot",
				Text:    "now please\nsecond line",
				Args:    []string{"now", "please"},
			},
		},
		{
			name:     "bare command",
			text:     "/start",
			entities: commandEntity(len("/start")),
			want:     MessageInfo{Command: "/start", Base: "start"},
		},
		{
			name:     "extra spaces between args",
			text:     "/var  3   50",
			entities: commandEntity(len("/var")),
			want: MessageInfo{
				Command: "/var",
				Base:    "var",
				Text:    "3   50",
				Args:    []string{"3", "50"},
			},
		},
		{
			name: "no entity means no command",
			text: "/start",
			want: MessageInfo{Text: "/start"},
		},
		{
			name: "entity not at offset zero ignored",
			text: "see /start",
			entities: []models.MessageEntity{{
				Type:   models.MessageEntityTypeBotCommand,
				Offset: 4,
				Length: 6,
			}},
			want: MessageInfo{Text: "see /start"},
		},
		{
			name:     "empty text",
			text:     "",
			entities: commandEntity(6),
			want:     MessageInfo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseMessage(tt.text, tt.entities)

			if got.Command != tt.want.Command ||
				got.Base != tt.want.Base ||
				got.Suffix != tt.want.Suffix ||
				got.BotName != tt.want.BotName ||
				got.Text != tt.want.Text ||
				!slices.Equal(got.Args, tt.want.Args) {
				t.Errorf("ParseMessage(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCommandifyRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   int64
		want string
	}{
		{12345, "12345"},
		{-12345, "m12345"},
		{0, "0"},
	}

	for _, tt := range tests {
		got := Commandify(tt.id, DefaultSignRune)
		if got != tt.want {
			t.Errorf("Commandify(%d) = %q, want %q", tt.id, got, tt.want)
		}

		back, ok := Decommandify(got, DefaultSignRune)
		if !ok || back != tt.id {
			t.Errorf("Decommandify(%q) = %d, %v, want %d", got, back, ok, tt.id)
		}
	}
}

func TestDecommandifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "abc", "12m34m", "m", "--5"} {
		if id, ok := Decommandify(s, DefaultSignRune); ok {
			t.Errorf("Decommandify(%q) = %d, want rejection", s, id)
		}
	}
}

func TestCommandifyCustomSign(t *testing.T) {
	t.Parallel()

	got := Commandify(-99, 'n')
	if got != "n99" {
		t.Fatalf("Commandify(-99, 'n') = %q, want %q", got, "n99")
	}
	back, ok := Decommandify(got, 'n')
	if !ok || back != -99 {
		t.Errorf("Decommandify(%q, 'n') = %d, %v, want -99", got, back, ok)
	}
}
