package bootstrap

import (
	"fmt"

	coreconfig "github.com/vokin23/channelsearch/core/config"
	"github.com/vokin23/channelsearch/core/logger"
	"github.com/vokin23/channelsearch/internal/directory"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	NewPool    func(coreconfig.DirectoryConfig) (*directory.Pool, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Directory *directory.Pool
}

// Run initializes the logger and prepares the elevated-account directory pool.
// The pool connects lazily; bootstrap only validates configuration and wires it.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	newPool := opts.NewPool
	if newPool == nil {
		newPool = directory.NewPool
	}
	pool, err := newPool(opts.Config.Directory)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: directory pool initialization failed: %w", err)
	}

	return &Result{Directory: pool}, nil
}
