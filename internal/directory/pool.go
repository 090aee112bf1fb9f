package directory

import (
	"fmt"
	"strings"
	"sync"

	coreconfig "github.com/vokin23/channelsearch/core/config"
)

// Pool hands out a shared directory client for the configured elevated account.
// The client itself connects lazily, so constructing a pool performs no network I/O.
type Pool struct {
	cfg       coreconfig.DirectoryConfig
	newClient func(coreconfig.DirectoryConfig) Client

	mu     sync.Mutex
	client Client
	closed bool
}

// NewPool validates the directory configuration and prepares a lazy client pool.
func NewPool(cfg coreconfig.DirectoryConfig) (*Pool, error) {
	if cfg.APIID <= 0 {
		return nil, fmt.Errorf("directory: api_id is required")
	}
	if strings.TrimSpace(cfg.APIHash) == "" {
		return nil, fmt.Errorf("directory: api_hash is required")
	}
	if strings.TrimSpace(cfg.Phone) == "" {
		return nil, fmt.Errorf("directory: phone is required")
	}
	return &Pool{
		cfg:       cfg,
		newClient: NewClient,
	}, nil
}

// Acquire returns the shared client, creating it on first use.
func (p *Pool) Acquire() (Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, fmt.Errorf("directory: pool is closed")
	}
	if p.client == nil {
		p.client = p.newClient(p.cfg)
	}
	return p.client, nil
}

// Account returns the phone number of the elevated account served by this pool.
func (p *Pool) Account() string {
	return p.cfg.Phone
}

// Close shuts down the underlying client if it was created.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}
