package directory

import (
	"context"
	"errors"
)

// ErrAuthRequired signals that the elevated account has no valid authorization
// and a phone-code sign-in must be completed before searching.
var ErrAuthRequired = errors.New("directory: authorization required")

// Candidate is a public broadcast channel discovered by one of the search strategies.
// Handle is the public username without the "@" prefix and uniquely identifies the channel.
type Candidate struct {
	Title        string
	Handle       string
	About        *string
	Broadcast    bool
	Participants *int
}

// Link returns the public t.me URL for the candidate.
func (c Candidate) Link() string {
	return "https://t.me/" + c.Handle
}

// Client is the directory access surface backed by an elevated MTProto account.
// All searches return only public broadcast channels; implementations filter
// out private chats, groups, and users.
type Client interface {
	// IsAuthorized reports whether the underlying account session is valid.
	IsAuthorized(ctx context.Context) (bool, error)

	// SearchGlobal queries the global directory index for a single term.
	SearchGlobal(ctx context.Context, term string, limit int) ([]Candidate, error)

	// SearchMessages searches public message content for a single term and
	// returns the channels those messages belong to.
	SearchMessages(ctx context.Context, term string, limit int) ([]Candidate, error)

	// ListOwnDialogs returns broadcast channels present in the account's own
	// conversation list, without relevance filtering.
	ListOwnDialogs(ctx context.Context, limit int) ([]Candidate, error)

	// RequestCode asks Telegram to deliver a login code to the account's phone
	// and returns the code hash required to complete sign-in.
	RequestCode(ctx context.Context) (string, error)

	// SignIn completes authorization with the delivered code and its hash.
	SignIn(ctx context.Context, code, codeHash string) error

	// Close releases the underlying connection.
	Close() error
}
