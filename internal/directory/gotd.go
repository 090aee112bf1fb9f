package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"log/slog"

	"github.com/gotd/contrib/bg"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	coreconfig "github.com/vokin23/channelsearch/core/config"
	"github.com/vokin23/channelsearch/core/logger"
)

// ErrInvalidCode is returned by SignIn when Telegram rejects the login code.
var ErrInvalidCode = errors.New("directory: invalid login code")

// gotdClient implements Client on top of an MTProto connection.
// The connection is established lazily on first use and persists across calls;
// session state is stored in a file so restarts do not require re-login.
type gotdClient struct {
	cfg coreconfig.DirectoryConfig

	mu     sync.Mutex
	client *telegram.Client
	stop   bg.StopFunc
}

// NewClient builds a lazily-connecting MTProto directory client.
func NewClient(cfg coreconfig.DirectoryConfig) Client {
	return &gotdClient{cfg: cfg}
}

// ensure connects the MTProto client if it is not running yet.
// Must be called with c.mu held.
func (c *gotdClient) ensure(ctx context.Context) (*telegram.Client, error) {
	if c.client != nil {
		return c.client, nil
	}

	client := telegram.NewClient(c.cfg.APIID, c.cfg.APIHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: c.cfg.SessionFile},
	})

	stop, err := bg.Connect(client)
	if err != nil {
		return nil, fmt.Errorf("directory: connect failed: %w", err)
	}

	c.client = client
	c.stop = stop
	logger.Info(ctx, "dir", "connect",
		slog.String("account", c.cfg.Phone),
		slog.String("session_file", c.cfg.SessionFile),
	)
	return client, nil
}

func (c *gotdClient) acquire(ctx context.Context) (*telegram.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensure(ctx)
}

func (c *gotdClient) IsAuthorized(ctx context.Context) (bool, error) {
	client, err := c.acquire(ctx)
	if err != nil {
		return false, err
	}
	status, err := client.Auth().Status(ctx)
	if err != nil {
		return false, fmt.Errorf("directory: auth status: %w", err)
	}
	return status.Authorized, nil
}

func (c *gotdClient) SearchGlobal(ctx context.Context, term string, limit int) ([]Candidate, error) {
	client, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	found, err := client.API().ContactsSearch(ctx, &tg.ContactsSearchRequest{
		Q:     term,
		Limit: limit,
	})
	if err != nil {
		return nil, classifyAPIError("contacts.search", err)
	}
	return channelCandidates(found.Chats), nil
}

func (c *gotdClient) SearchMessages(ctx context.Context, term string, limit int) ([]Candidate, error) {
	client, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	res, err := client.API().MessagesSearchGlobal(ctx, &tg.MessagesSearchGlobalRequest{
		Q:          term,
		Filter:     &tg.InputMessagesFilterEmpty{},
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      limit,
	})
	if err != nil {
		return nil, classifyAPIError("messages.searchGlobal", err)
	}

	modified, ok := res.AsModified()
	if !ok {
		return nil, nil
	}
	return channelCandidates(modified.GetChats()), nil
}

func (c *gotdClient) ListOwnDialogs(ctx context.Context, limit int) ([]Candidate, error) {
	client, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	res, err := client.API().MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      limit,
	})
	if err != nil {
		return nil, classifyAPIError("messages.getDialogs", err)
	}

	modified, ok := res.AsModified()
	if !ok {
		return nil, nil
	}
	return channelCandidates(modified.GetChats()), nil
}

func (c *gotdClient) RequestCode(ctx context.Context) (string, error) {
	client, err := c.acquire(ctx)
	if err != nil {
		return "", err
	}

	sent, err := client.Auth().SendCode(ctx, c.cfg.Phone, auth.SendCodeOptions{})
	if err != nil {
		return "", classifyAPIError("auth.sendCode", err)
	}

	code, ok := sent.(*tg.AuthSentCode)
	if !ok {
		return "", fmt.Errorf("directory: unexpected sent code type %T", sent)
	}
	logger.Info(ctx, "auth", "code.requested", slog.String("account", c.cfg.Phone))
	return code.PhoneCodeHash, nil
}

func (c *gotdClient) SignIn(ctx context.Context, code, codeHash string) error {
	client, err := c.acquire(ctx)
	if err != nil {
		return err
	}

	if _, err := client.Auth().SignIn(ctx, c.cfg.Phone, code, codeHash); err != nil {
		if tgerr.Is(err, "PHONE_CODE_INVALID", "PHONE_CODE_EXPIRED", "PHONE_CODE_EMPTY") {
			return ErrInvalidCode
		}
		if errors.Is(err, auth.ErrPasswordAuthNeeded) {
			return fmt.Errorf("directory: account requires 2FA password, not supported: %w", err)
		}
		return classifyAPIError("auth.signIn", err)
	}
	logger.Info(ctx, "auth", "sign_in.success", slog.String("account", c.cfg.Phone))
	return nil
}

func (c *gotdClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == nil {
		return nil
	}
	err := c.stop()
	c.client = nil
	c.stop = nil
	return err
}

func classifyAPIError(method string, err error) error {
	if d, ok := tgerr.AsFloodWait(err); ok {
		return fmt.Errorf("directory: %s flood wait %s: %w", method, d, err)
	}
	if tgerr.Is(err, "AUTH_KEY_UNREGISTERED", "SESSION_REVOKED", "USER_DEACTIVATED") {
		return fmt.Errorf("%w: %s: %v", ErrAuthRequired, method, err)
	}
	return fmt.Errorf("directory: %s: %w", method, err)
}

// channelCandidates keeps only public broadcast channels from a raw chat list.
func channelCandidates(chats []tg.ChatClass) []Candidate {
	var out []Candidate
	for _, chat := range chats {
		ch, ok := chat.(*tg.Channel)
		if !ok {
			continue
		}
		if !ch.Broadcast || ch.Username == "" {
			continue
		}
		cand := Candidate{
			Title:     ch.Title,
			Handle:    ch.Username,
			Broadcast: true,
		}
		if count, ok := ch.GetParticipantsCount(); ok {
			cand.Participants = &count
		}
		out = append(out, cand)
	}
	return out
}
