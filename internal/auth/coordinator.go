package auth

import (
	"context"
	"errors"
	"sync"

	"log/slog"

	"github.com/vokin23/channelsearch/core/logger"
	"github.com/vokin23/channelsearch/internal/directory"
)

// ErrNoPendingCode is returned when a code is submitted for an account that
// has no outstanding code request and no warm session.
var ErrNoPendingCode = errors.New("auth: no pending code request")

// Coordinator tracks outstanding phone-code requests for elevated accounts.
// It makes RequestCode idempotent while a code is pending and guarantees a
// code hash is consumed at most once on successful sign-in.
type Coordinator struct {
	mu      sync.Mutex
	pending map[string]string
}

// NewCoordinator builds an empty coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{pending: make(map[string]string)}
}

// RequestCode asks Telegram to deliver a login code for the account unless a
// request is already outstanding; repeated calls while a code is pending are
// no-ops so users are not spammed with codes.
func (c *Coordinator) RequestCode(ctx context.Context, account string, dir directory.Client) error {
	// The lock spans the directory round trip: a concurrent second request
	// would receive a new hash and invalidate the code already delivered.
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, pending := c.pending[account]; pending {
		logger.Debug(ctx, "auth", "code.pending", slog.String("account", account))
		return nil
	}

	hash, err := dir.RequestCode(ctx)
	if err != nil {
		return err
	}
	c.pending[account] = hash
	return nil
}

// SubmitCode completes sign-in with the pending code hash. On success the
// hash is consumed. An invalid code keeps the hash so the user may retry.
// When no request is pending but the account session is already warm, the
// submission succeeds without a sign-in round trip.
func (c *Coordinator) SubmitCode(ctx context.Context, account, code string, dir directory.Client) error {
	c.mu.Lock()
	hash, ok := c.pending[account]
	c.mu.Unlock()

	if !ok {
		authorized, err := dir.IsAuthorized(ctx)
		if err != nil {
			return err
		}
		if authorized {
			logger.Debug(ctx, "auth", "submit.warm_session", slog.String("account", account))
			return nil
		}
		return ErrNoPendingCode
	}

	if err := dir.SignIn(ctx, code, hash); err != nil {
		if errors.Is(err, directory.ErrInvalidCode) {
			logger.Warn(ctx, "auth", "submit.invalid_code", slog.String("account", account))
			return err
		}
		return err
	}

	c.mu.Lock()
	delete(c.pending, account)
	c.mu.Unlock()
	return nil
}

// Pending reports whether a code request is outstanding for the account.
func (c *Coordinator) Pending(account string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[account]
	return ok
}
