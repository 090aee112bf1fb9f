package app

import (
	"strconv"

	"github.com/vokin23/channelsearch/core/telegram/format"
	tghelpers "github.com/vokin23/channelsearch/core/telegram/helpers"
	"github.com/vokin23/channelsearch/core/telegram/keyboard"
	"github.com/vokin23/channelsearch/internal/session"
	"github.com/vokin23/channelsearch/internal/view"

	tele "gopkg.in/telebot.v4"
)

const separatorLabel = "━━━━━━━━━━━━━━━━━━━━"

// markupFor translates a view model's buttons into an inline keyboard.
func markupFor(m view.Model) *tele.ReplyMarkup {
	if len(m.Buttons) == 0 && m.Nav == nil && !m.Actions && !m.BackOnly {
		return nil
	}

	var rows [][]keyboard.InlineBtn
	for _, b := range m.Buttons {
		rows = append(rows, []keyboard.InlineBtn{{Text: b.Label, URL: b.URL}})
	}
	if len(m.Buttons) > 0 {
		rows = append(rows, []keyboard.InlineBtn{{Text: separatorLabel, Unique: ActionIgnore}})
	}
	if m.Nav != nil {
		var nav []keyboard.InlineBtn
		if m.Nav.HasPrev {
			nav = append(nav, keyboard.InlineBtn{Text: "⬅️ Back", Unique: ActionPrevPage})
		}
		nav = append(nav, keyboard.InlineBtn{Text: "📄 " + m.Nav.Label, Unique: ActionIgnore})
		if m.Nav.HasNext {
			nav = append(nav, keyboard.InlineBtn{Text: "Next ➡️", Unique: ActionNextPage})
		}
		rows = append(rows, nav)
	}
	if m.Actions {
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "🔍 New search", Unique: ActionNewSearch},
			{Text: "ℹ️ Details", Unique: ActionDetails},
		})
	}
	if m.BackOnly {
		rows = append(rows, []keyboard.InlineBtn{{Text: "🔙 Back to list", Unique: ActionBackToList}})
	}
	return keyboard.InlineButtonsRows(rows...)
}

// renderEdit updates the message the callback originated from, falling back
// to sending a new message when editing is not possible, and to a plain-text
// send when HTML delivery itself fails.
func renderEdit(c tele.Context, m view.Model) error {
	var err error
	if markup := markupFor(m); markup != nil {
		err = tghelpers.EditOrSendHTML(c, m.Text, markup)
	} else {
		err = tghelpers.EditOrSendHTML(c, m.Text)
	}
	if err != nil {
		return c.Send(format.StripTags(m.Text))
	}
	return nil
}

// renderSend delivers models produced by a text interaction in order.
// A model carrying result buttons is sent synchronously so the message
// coordinates can be remembered for later in-place edits.
func renderSend(c tele.Context, sessions *session.Manager, models []view.Model) error {
	userID := c.Sender().ID
	for _, m := range models {
		markup := markupFor(m)
		if markup == nil {
			if err := tghelpers.SendHTML(c, m.Text); err != nil {
				return err
			}
			continue
		}

		// Retire the previous results message so stale keyboards disappear.
		if len(m.Buttons) > 0 {
			if prev := sessions.Get(userID); prev.MessageID != 0 && prev.ChatID != 0 {
				_ = c.Bot().Delete(&tele.StoredMessage{
					MessageID: strconv.Itoa(prev.MessageID),
					ChatID:    prev.ChatID,
				})
			}
		}

		opts := &tele.SendOptions{
			ParseMode:             tele.ModeHTML,
			ReplyMarkup:           markup,
			DisableWebPagePreview: true,
		}
		msg, err := c.Bot().Send(c.Recipient(), m.Text, opts)
		if err != nil {
			// HTML delivery failed; degrade to a plain-text send.
			msg, err = c.Bot().Send(c.Recipient(), format.StripTags(m.Text), &tele.SendOptions{
				ReplyMarkup:           markup,
				DisableWebPagePreview: true,
			})
			if err != nil {
				return err
			}
		}
		if msg != nil && len(m.Buttons) > 0 {
			sessions.Mutate(userID, func(s *session.Session) {
				s.ChatID = msg.Chat.ID
				s.MessageID = msg.ID
			})
		}
	}
	return nil
}
