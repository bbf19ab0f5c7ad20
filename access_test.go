package tgbotkit

import (
	"context"
	"strings"
	"testing"

	"github.com/go-telegram/bot/models"

	"github.com/tgbotkit/tgbotkit/group"
)

func TestEvaluateGroupGate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)
	allowed := group.New("allowed", env.store)
	if _, err := allowed.AddID(ctx, 7); err != nil {
		t.Fatalf("AddID failed: %v", err)
	}

	tests := []struct {
		name        string
		cmd         *Command
		chatID      int64
		wantVerdict Verdict
		wantReply   string
	}{
		{
			name:        "member passes",
			cmd:         &Command{Name: "x", Groups: []*group.Group{allowed}},
			chatID:      7,
			wantVerdict: VerdictOK,
		},
		{
			name:        "non-member denied with default reply",
			cmd:         &Command{Name: "x", Groups: []*group.Group{allowed}},
			chatID:      8,
			wantVerdict: VerdictDenied,
			wantReply:   DefaultAccessDeniedMessage,
		},
		{
			name: "non-member denied with custom reply",
			cmd: &Command{
				Name:                "x",
				Groups:              []*group.Group{allowed},
				AccessDeniedMessage: "ask an admin",
			},
			chatID:      8,
			wantVerdict: VerdictDenied,
			wantReply:   "ask an admin",
		},
		{
			name:        "hidden command denied silently",
			cmd:         &Command{Name: "x", Groups: []*group.Group{allowed}, Hide: true},
			chatID:      8,
			wantVerdict: VerdictDenied,
			wantReply:   "",
		},
		{
			name:        "ungated command open to all",
			cmd:         &Command{Name: "x"},
			chatID:      8,
			wantVerdict: VerdictOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verdict, reply := env.w.evaluate(ctx, privateMessage(tt.chatID, "/x"), tt.cmd)
			if verdict != tt.wantVerdict || reply != tt.wantReply {
				t.Errorf("evaluate = (%v, %q), want (%v, %q)", verdict, reply, tt.wantVerdict, tt.wantReply)
			}
		})
	}
}

func TestEvaluateDeactivationGate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)
	if _, err := env.w.deactivated.Add(ctx, "/x"); err != nil {
		t.Fatalf("deactivating command failed: %v", err)
	}

	verdict, reply := env.w.evaluate(ctx, privateMessage(7, "/x"), &Command{Name: "x"})
	if verdict != VerdictDeactivated || reply != DefaultDeactivatedMessage {
		t.Errorf("evaluate = (%v, %q), want deactivated with default reply", verdict, reply)
	}

	// Hidden commands stay silent about their deactivation.
	verdict, reply = env.w.evaluate(ctx, privateMessage(7, "/x"), &Command{Name: "x", Hide: true})
	if verdict != VerdictDeactivated || reply != "" {
		t.Errorf("evaluate hidden = (%v, %q), want silent deactivation", verdict, reply)
	}

	// Sudo members bypass deactivation entirely.
	verdict, _ = env.w.evaluate(ctx, privateMessage(1000, "/x"), &Command{Name: "x"})
	if verdict != VerdictOK {
		t.Errorf("sudo evaluate = %v, want ok", verdict)
	}

	// A different command with /x as a prefix is unaffected.
	verdict, _ = env.w.evaluate(ctx, privateMessage(7, "/xy"), &Command{Name: "xy"})
	if verdict != VerdictOK {
		t.Errorf("evaluate of sibling command = %v, want ok", verdict)
	}
}

func TestEvaluatePrivateGate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)
	cmd := &Command{Name: "x", PrivateOnly: true}

	verdict, reply := env.w.evaluate(ctx, groupMessage(-50, "/x"), cmd)
	if verdict != VerdictPrivate || reply != DefaultPrivateOnlyMessage {
		t.Errorf("evaluate in group = (%v, %q), want private denial", verdict, reply)
	}

	verdict, _ = env.w.evaluate(ctx, privateMessage(7, "/x"), cmd)
	if verdict != VerdictOK {
		t.Errorf("evaluate in private = %v, want ok", verdict)
	}

	hidden := &Command{Name: "x", PrivateOnly: true, Hide: true}
	verdict, reply = env.w.evaluate(ctx, groupMessage(-50, "/x"), hidden)
	if verdict != VerdictPrivate || reply != "" {
		t.Errorf("evaluate hidden in group = (%v, %q), want silent denial", verdict, reply)
	}
}

func TestEvaluateBanGateIsSilent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)
	if _, err := env.w.banned.AddID(ctx, 7); err != nil {
		t.Fatalf("banning chat failed: %v", err)
	}

	verdict, reply := env.w.evaluate(ctx, privateMessage(7, "/x"), &Command{Name: "x"})
	if verdict != VerdictBanned || reply != "" {
		t.Errorf("evaluate = (%v, %q), want silent ban", verdict, reply)
	}
}

func TestEvaluateGateOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)

	allowed := group.New("allowed", env.store)
	if _, err := env.w.deactivated.Add(ctx, "/x"); err != nil {
		t.Fatalf("deactivating failed: %v", err)
	}
	if _, err := env.w.banned.AddID(ctx, 7); err != nil {
		t.Fatalf("banning failed: %v", err)
	}

	// Group gate fires first even when the chat is also banned and the
	// command deactivated.
	cmd := &Command{Name: "x", Groups: []*group.Group{allowed}, PrivateOnly: true}
	verdict, _ := env.w.evaluate(ctx, groupMessage(7, "/x"), cmd)
	if verdict != VerdictDenied {
		t.Errorf("verdict = %v, want denied (group gate first)", verdict)
	}

	// Without a group gate the deactivation gate is next.
	cmd = &Command{Name: "x", PrivateOnly: true}
	verdict, _ = env.w.evaluate(ctx, groupMessage(7, "/x"), cmd)
	if verdict != VerdictDeactivated {
		t.Errorf("verdict = %v, want deactivated (before private gate)", verdict)
	}

	// Private gate precedes the ban gate.
	cmd = &Command{Name: "y", PrivateOnly: true}
	verdict, _ = env.w.evaluate(ctx, groupMessage(7, "/y"), cmd)
	if verdict != VerdictPrivate {
		t.Errorf("verdict = %v, want private (before ban gate)", verdict)
	}
}

func TestRunCommand(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("allowed command runs with chat action", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil)

		ran := false
		cmd := &Command{
			Name:       "x",
			ChatAction: models.ChatActionTyping,
			Handler: func(ctx context.Context, msg *models.Message) {
				ran = true
			},
		}

		env.w.runCommand(ctx, privateMessage(7, "/x"), cmd)

		if !ran {
			t.Error("handler did not run")
		}
		if len(env.transport.actions) != 1 {
			t.Errorf("%d chat actions sent, want 1", len(env.transport.actions))
		}
	})

	t.Run("denied command replies and skips handler", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil)
		allowed := group.New("allowed", env.store)

		ran := false
		cmd := &Command{
			Name:   "x",
			Groups: []*group.Group{allowed},
			Handler: func(ctx context.Context, msg *models.Message) {
				ran = true
			},
		}

		env.w.runCommand(ctx, privateMessage(7, "/x"), cmd)

		if ran {
			t.Error("handler ran despite denial")
		}
		texts := env.transport.sentTo(7)
		if len(texts) != 1 || !strings.Contains(texts[0], DefaultAccessDeniedMessage) {
			t.Errorf("denial replies = %v", texts)
		}
	})

	t.Run("banned chat gets nothing", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil)
		if _, err := env.w.banned.AddID(ctx, 7); err != nil {
			t.Fatalf("banning failed: %v", err)
		}

		cmd := &Command{Name: "x", Handler: func(ctx context.Context, msg *models.Message) {
			t.Error("handler ran for banned chat")
		}}
		env.w.runCommand(ctx, privateMessage(7, "/x"), cmd)

		if got := len(env.transport.sentTexts()); got != 0 {
			t.Errorf("%d messages sent to banned chat, want 0", got)
		}
	})
}
