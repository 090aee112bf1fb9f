package view

import (
	"fmt"
	"strings"

	"github.com/vokin23/channelsearch/core/telegram/format"
	"github.com/vokin23/channelsearch/internal/directory"
)

const (
	buttonTitleRunes = 35
	aboutRunes       = 150
)

// Button is a channel link button rendered into the inline keyboard.
type Button struct {
	Label string
	URL   string
}

// Nav describes the pagination row under a result list.
type Nav struct {
	HasPrev bool
	HasNext bool
	Label   string
}

// Model is a transport-free description of a message to render. The handlers
// translate it into Telegram text and markup; tests assert on it directly.
type Model struct {
	Text    string
	Buttons []Button
	Nav     *Nav
	// Actions adds the "new search / details" row.
	Actions bool
	// BackOnly adds a single back-to-list button (details view).
	BackOnly bool
}

// Pages returns the number of pages needed for total items.
func Pages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage confines page to [0, totalPages-1].
func ClampPage(page, totalPages int) int {
	if totalPages <= 0 {
		return 0
	}
	if page < 0 {
		return 0
	}
	if page >= totalPages {
		return totalPages - 1
	}
	return page
}

// BuildList renders one page of results as a button list with navigation.
func BuildList(results []directory.Candidate, page, pageSize int) Model {
	total := len(results)
	pages := Pages(total, pageSize)
	page = ClampPage(page, pages)

	start := page * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎉 <b>Found %d channels!</b>\n\n", total)
	fmt.Fprintf(&b, "📄 Page %d of %d\n", page+1, pages)
	b.WriteString("🔽 Pick a channel to open:")

	buttons := make([]Button, 0, end-start)
	for i, c := range results[start:end] {
		label := fmt.Sprintf("%d. 📢 %s", start+i+1, format.TruncateRunes(c.Title, buttonTitleRunes))
		if n := format.DerefInt(c.Participants, 0); n > 0 {
			label += fmt.Sprintf(" (%s)", format.CountSuffix(n))
		}
		buttons = append(buttons, Button{Label: label, URL: c.Link()})
	}

	return Model{
		Text:    b.String(),
		Buttons: buttons,
		Nav: &Nav{
			HasPrev: page > 0,
			HasNext: end < total,
			Label:   fmt.Sprintf("%d/%d", page+1, pages),
		},
		Actions: true,
	}
}

// BuildDetails renders the current page of results as a detailed text block.
func BuildDetails(results []directory.Candidate, page, pageSize int) Model {
	total := len(results)
	pages := Pages(total, pageSize)
	page = ClampPage(page, pages)

	start := page * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Channel details (page %d):</b>\n\n", page+1)

	for i, c := range results[start:end] {
		fmt.Fprintf(&b, "<b>%d. %s</b>\n", start+i+1, format.EscapeHTML(c.Title))
		if n := format.DerefInt(c.Participants, 0); n > 0 {
			fmt.Fprintf(&b, "👥 Subscribers: %s\n", detailCount(n))
		} else {
			b.WriteString("👥 Subscribers: unknown\n")
		}
		if about := format.DerefString(c.About, ""); about != "" {
			fmt.Fprintf(&b, "📝 Description: %s\n", format.EscapeHTML(format.TruncateRunes(about, aboutRunes)))
		} else {
			b.WriteString("📝 Description: none\n")
		}
		fmt.Fprintf(&b, "🔗 Link: %s\n\n", c.Link())
	}

	fmt.Fprintf(&b, "📄 Showing page %d of %d", page+1, pages)

	return Model{
		Text:     b.String(),
		BackOnly: true,
	}
}

// detailCount renders a subscriber count with one decimal place of precision:
// 1_530_000 -> "1.5M", 2_340 -> "2.3K".
func detailCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%d.%dM", n/1_000_000, (n%1_000_000)/100_000)
	case n >= 1_000:
		return fmt.Sprintf("%d.%dK", n/1_000, (n%1_000)/100)
	default:
		return fmt.Sprintf("%d", n)
	}
}
