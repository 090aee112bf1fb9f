package view

import (
	"fmt"
	"strings"

	"github.com/vokin23/channelsearch/core/telegram/format"
)

// Welcome greets a new user and explains the query format.
func Welcome(name string) Model {
	var b strings.Builder
	b.WriteString("🎉 <b>Welcome to Telegram channel search!</b> 🎉\n\n")
	if name != "" {
		fmt.Fprintf(&b, "Hi, %s! 👋\n\n", format.EscapeHTML(name))
	}
	b.WriteString("🔍 <b>How it works:</b>\n")
	b.WriteString("• Send me keywords separated by commas\n")
	b.WriteString("• I will find matching channels for you\n")
	b.WriteString("• Use the buttons to page through results\n\n")
	b.WriteString("📝 <b>Example query:</b>\n")
	b.WriteString("<code>programming, technology, news</code>\n\n")
	b.WriteString("💡 <b>Tip:</b> the more specific the terms, the better the results!\n\n")
	b.WriteString("🚀 Ready? Send your search query!")
	return Model{Text: b.String()}
}

// EmptyQuery rejects a query that contained no usable terms.
func EmptyQuery() Model {
	return Model{Text: "❌ <b>Invalid query</b>\n\n" +
		"📝 Please send at least one keyword\n\n" +
		"💡 <b>Example:</b> <code>news, sport, technology</code>\n" +
		"🔄 Separate terms with commas"}
}

// Searching announces that a search run has started.
func Searching(terms []string) Model {
	return Model{Text: "🔍 <b>Searching for channels...</b>\n\n" +
		fmt.Sprintf("🎯 <b>Terms:</b> <code>%s</code>\n\n", format.EscapeHTML(strings.Join(terms, ", "))) +
		"⏳ This can take up to a minute, please wait..."}
}

// AuthRequired tells the user a login code was sent to the elevated account.
func AuthRequired() Model {
	return Model{Text: "🔐 <b>Authorization required</b>\n\n" +
		"📱 The search account needs to be confirmed\n" +
		"💬 Send the verification code you received"}
}

// InvalidCode reports a rejected login code and invites a retry.
func InvalidCode() Model {
	return Model{Text: "❌ Invalid code. Try again or restart with /start"}
}

// AuthSuccess confirms sign-in and announces the search replay.
func AuthSuccess() Model {
	return Model{Text: "✅ Authorized! Re-running your search..."}
}

// NoResults reports an empty result set for the given terms.
func NoResults(terms []string) Model {
	return Model{Text: "😔 <b>No channels found</b>\n\n" +
		fmt.Sprintf("🔍 Nothing matched <code>%s</code>\n\n", format.EscapeHTML(strings.Join(terms, ", "))) +
		"💡 <b>Try:</b>\n" +
		"• More general terms\n" +
		"• Checking the spelling\n" +
		"• English terms\n\n" +
		"🔄 Send a new search query"}
}

// TransientFailure reports a failed search run that is worth retrying.
func TransientFailure() Model {
	return Model{Text: "⚠️ <b>Search failed</b>\n\n" +
		"🔄 Please try again later\n" +
		"💡 Or adjust your search terms"}
}

// NewSearchPrompt asks for fresh keywords after results were discarded.
func NewSearchPrompt() Model {
	return Model{Text: "🔍 <b>New search</b>\n\nSend new keywords to search for channels:"}
}

// NoSavedResults is shown when a list action arrives without stored results.
func NoSavedResults() Model {
	return Model{Text: "❌ No saved search results.\n\nSend a new search query:"}
}

// Cancelled confirms that the conversation was reset.
func Cancelled() Model {
	return Model{Text: "❌ Search cancelled. Use /start to begin a new one."}
}

// Help lists the available commands.
func Help() Model {
	return Model{Text: "🤖 <b>Channel search bot</b>\n\n" +
		"/start — begin a search conversation\n" +
		"/search — same as sending keywords directly\n" +
		"/cancel — reset the current conversation\n" +
		"/help — this message\n\n" +
		"Send comma-separated keywords at any time to search."}
}
