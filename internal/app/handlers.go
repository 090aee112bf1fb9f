package app

import (
	"fmt"
	"time"

	tghelpers "github.com/vokin23/channelsearch/core/telegram/helpers"
	"github.com/vokin23/channelsearch/internal/search"
	"github.com/vokin23/channelsearch/internal/session"
	"github.com/vokin23/channelsearch/internal/view"

	tele "gopkg.in/telebot.v4"
)

// handlers binds the controller to Telegram update handling.
type handlers struct {
	ctl        *Controller
	sessions   *session.Manager
	account    string
	startedAt  time.Time
	sendErrors func() uint64
}

func (h *handlers) onStart(c tele.Context) error {
	name := ""
	if sender := c.Sender(); sender != nil {
		name = sender.FirstName
	}
	m := h.ctl.Start(c.Sender().ID, name)
	return renderSend(c, h.sessions, []view.Model{m})
}

func (h *handlers) onSearch(c tele.Context) error {
	h.ctl.Start(c.Sender().ID, "")
	return renderSend(c, h.sessions, []view.Model{view.NewSearchPrompt()})
}

func (h *handlers) onCancel(c tele.Context) error {
	m := h.ctl.Cancel(c.Sender().ID)
	return renderSend(c, h.sessions, []view.Model{m})
}

func (h *handlers) onHelp(c tele.Context) error {
	return renderSend(c, h.sessions, []view.Model{view.Help()})
}

// onStats is an admin-only diagnostic command.
func (h *handlers) onStats(c tele.Context) error {
	var sendErrs uint64
	if h.sendErrors != nil {
		sendErrs = h.sendErrors()
	}
	text := fmt.Sprintf(
		"📈 <b>Bot stats</b>\n\n"+
			"⏱ Uptime: %s\n"+
			"👤 Active sessions: %d\n"+
			"📤 Send errors: %d\n"+
			"📱 Directory account: <code>%s</code>",
		time.Since(h.startedAt).Round(time.Second),
		h.sessions.Count(),
		sendErrs,
		h.account,
	)
	return tghelpers.SendHTML(c, text)
}

// onText handles free-form messages: search queries and login codes.
// Queries get an interim progress message that is removed once results arrive.
func (h *handlers) onText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	var interim *tele.Message
	if h.sessions.Phase(userID) != session.PhaseAwaitingCode {
		if terms := search.ParseQuery(c.Text()); len(terms) > 0 {
			m := view.Searching(terms)
			interim, _ = c.Bot().Send(c.Recipient(), m.Text, &tele.SendOptions{
				ParseMode:             tele.ModeHTML,
				DisableWebPagePreview: true,
			})
			_ = c.Notify(tele.Typing)
		}
	}

	models, err := h.ctl.HandleText(ctx, userID, c.Text())
	if interim != nil {
		_ = c.Bot().Delete(interim)
	}
	if err != nil {
		return err
	}
	return renderSend(c, h.sessions, models)
}

// actionHandler returns a callback handler for a single inline action.
func (h *handlers) actionHandler(action string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		m, changed, err := h.ctl.HandleAction(ctx, c.Sender().ID, action)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return renderEdit(c, m)
	}
}

// UnknownText treats any unrouted text as a search query.
func (h *handlers) UnknownText() tele.HandlerFunc {
	return h.onText
}

// UnknownDocument nudges the user back to keyword queries.
func (h *handlers) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendHTML(c, "📎 I only understand keyword queries. Send comma-separated terms to search.")
	}
}

// UnknownCallback acknowledges stale or unsupported buttons.
func (h *handlers) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		_ = c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		return nil
	}
}
