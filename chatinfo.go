package tgbotkit

import (
	"strings"

	"github.com/go-telegram/bot/models"
)

// displayParts joins the non-empty parts with single spaces.
func displayParts(parts []string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

func wrapTag(s, tag string, tags bool) string {
	if s == "" || !tags {
		return s
	}
	return "<" + tag + ">" + s + "</" + tag + ">"
}

// DisplayUser renders a user as "Name @username", optionally with the
// (BOT) marker and language code. With tags the name is bolded and the
// username italicized for HTML-mode messages.
func DisplayUser(u *models.User, allInfo, tags bool) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}

	parts := []string{wrapTag(name, "b", tags)}
	if u.Username != "" {
		parts = append(parts, wrapTag("@"+u.Username, "i", tags))
	}
	if allInfo {
		if u.IsBot {
			parts = append(parts, "(BOT)")
		}
		if u.LanguageCode != "" {
			parts = append(parts, "["+u.LanguageCode+"]")
		}
	}
	return displayParts(parts)
}

// DisplayChat renders a chat. Private chats render like their user; other
// chats render as "Title [type]".
func DisplayChat(c models.Chat, allInfo, tags bool) string {
	if c.Type == models.ChatTypePrivate {
		return DisplayUser(&models.User{
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Username:  c.Username,
		}, allInfo, tags)
	}
	return displayParts([]string{
		wrapTag(c.Title, "b", tags),
		"[" + string(c.Type) + "]",
	})
}

// displayChatPlace always renders the chat-style form, even for private
// chats, used where the sender and the chat are reported side by side.
func displayChatPlace(c models.Chat, tags bool) string {
	return displayParts([]string{
		wrapTag(c.Title, "b", tags),
		"[" + string(c.Type) + "]",
	})
}

// DisplayChatFull renders a chat fetched through GetChat. Private chats
// render like their user; for other chats allInfo adds the invite link.
func DisplayChatFull(c *models.ChatFullInfo, allInfo, tags bool) string {
	if string(c.Type) == string(models.ChatTypePrivate) {
		return DisplayUser(&models.User{
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Username:  c.Username,
		}, allInfo, tags)
	}

	parts := []string{
		wrapTag(c.Title, "b", tags),
		"[" + string(c.Type) + "]",
	}
	if allInfo && c.InviteLink != "" {
		parts = append(parts, wrapTag(c.InviteLink, "i", tags))
	}
	return displayParts(parts)
}
