// Package group implements named, persisted membership sets of chat and
// user identifiers. A group is stored as a newline-delimited list of
// string-coerced ids under a deterministic key, so numeric ids and their
// string form are interchangeable.
package group

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tgbotkit/tgbotkit/storage"
)

// keyPrefix namespaces group membership lists in the backing store.
const keyPrefix = "groups:"

// RequestCommand describes an optional command letting a non-member ask for
// access to the group.
type RequestCommand struct {
	// Command is the command token (without leading slash).
	Command string
	// Response is sent to the requester right away, if set.
	Response string
	// PrivateOnly restricts the request to private chats.
	PrivateOnly bool
	// Description shows up in command listings.
	Description string
	// SendTo receives the access request.
	SendTo *Group
}

// ToggleCommand describes an optional suffix-style command
// ("/cmd_<CHATID>") letting an operator add or remove a member.
type ToggleCommand struct {
	// Command is the command token (without leading slash).
	Command string
	// Description shows up in command listings.
	Description string
	// ResponseWhenAdded is sent to the new member on addition, if set.
	ResponseWhenAdded string
}

// Group is a named persisted set of ids.
type Group struct {
	name string
	st   storage.Storage

	// Request and Toggle, when set, are turned into registered commands by
	// the wrapper at construction time.
	Request *RequestCommand
	Toggle  *ToggleCommand
}

// Option configures a Group at creation.
type Option func(*Group)

// WithRequestCommand attaches a request command descriptor.
func WithRequestCommand(rc RequestCommand) Option {
	return func(g *Group) { g.Request = &rc }
}

// WithToggleCommand attaches a toggle command descriptor.
func WithToggleCommand(tc ToggleCommand) Option {
	return func(g *Group) { g.Toggle = &tc }
}

// New creates a group. The name doubles as the persistence key and the
// human-readable label; it never changes after creation.
func New(name string, st storage.Storage, opts ...Option) *Group {
	g := &Group{name: name, st: st}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns the group's identifier.
func (g *Group) Name() string { return g.name }

func (g *Group) String() string { return g.name }

// Key converts a numeric chat or user id to its canonical member form.
func Key(id int64) string { return strconv.FormatInt(id, 10) }

func (g *Group) storageKey() string { return keyPrefix + g.name }

// Members returns the current members in insertion order. Malformed or
// missing persisted data reads as an empty list.
func (g *Group) Members(ctx context.Context) []string {
	raw, err := g.st.Get(ctx, g.storageKey())
	if err != nil || raw == "" {
		return nil
	}

	lines := strings.Split(raw, "\n")
	members := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			members = append(members, line)
		}
	}
	return members
}

func (g *Group) setMembers(ctx context.Context, members []string) error {
	if err := g.st.Set(ctx, g.storageKey(), strings.Join(members, "\n")); err != nil {
		return fmt.Errorf("failed to persist group %q: %w", g.name, err)
	}
	return nil
}

// IsMember reports whether member is part of the group.
func (g *Group) IsMember(ctx context.Context, member string) bool {
	return slices.Contains(g.Members(ctx), member)
}

// IsMemberID is IsMember for numeric ids.
func (g *Group) IsMemberID(ctx context.Context, id int64) bool {
	return g.IsMember(ctx, Key(id))
}

// AnyMember reports whether member belongs to at least one of the groups.
func AnyMember(ctx context.Context, groups []*Group, member string) bool {
	for _, g := range groups {
		if g != nil && g.IsMember(ctx, member) {
			return true
		}
	}
	return false
}

// Add inserts member and reports whether it was newly added. Adding an
// existing member is a no-op returning false.
func (g *Group) Add(ctx context.Context, member string) (bool, error) {
	members := g.Members(ctx)
	if slices.Contains(members, member) {
		return false, nil
	}
	if err := g.setMembers(ctx, append(members, member)); err != nil {
		return false, err
	}
	return true, nil
}

// AddID is Add for numeric ids.
func (g *Group) AddID(ctx context.Context, id int64) (bool, error) {
	return g.Add(ctx, Key(id))
}

// ToggleMember flips membership and reports whether the member is now part
// of the group (true = added, false = removed).
func (g *Group) ToggleMember(ctx context.Context, member string) (bool, error) {
	members := g.Members(ctx)
	if i := slices.Index(members, member); i >= 0 {
		if err := g.setMembers(ctx, slices.Delete(members, i, i+1)); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := g.setMembers(ctx, append(members, member)); err != nil {
		return false, err
	}
	return true, nil
}

// ToggleMemberID is ToggleMember for numeric ids.
func (g *Group) ToggleMemberID(ctx context.Context, id int64) (bool, error) {
	return g.ToggleMember(ctx, Key(id))
}

// Clear removes every member and returns the group for chaining.
func (g *Group) Clear(ctx context.Context) *Group {
	if err := g.st.Delete(ctx, g.storageKey()); err != nil {
		// Treated as already-empty; the next write re-creates the key.
		return g
	}
	return g
}
