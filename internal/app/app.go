package app

import (
	"context"
	"fmt"
	"time"

	coreconfig "github.com/vokin23/channelsearch/core/config"
	coretelegram "github.com/vokin23/channelsearch/core/telegram"
	"github.com/vokin23/channelsearch/core/telegram/commands"
	tghelpers "github.com/vokin23/channelsearch/core/telegram/helpers"
	"github.com/vokin23/channelsearch/core/telegram/router"
	"github.com/vokin23/channelsearch/core/telegram/ui"
	"github.com/vokin23/channelsearch/internal/auth"
	"github.com/vokin23/channelsearch/internal/directory"
	"github.com/vokin23/channelsearch/internal/search"
	"github.com/vokin23/channelsearch/internal/session"

	tele "gopkg.in/telebot.v4"
)

// App composes the channel-search bot: session manager, directory pool,
// search service, auth coordinator, and the Telegram wiring around them.
type App struct {
	cfg      *coreconfig.Config
	pool     *directory.Pool
	sessions *session.Manager
	ctl      *Controller
	h        *handlers
}

// New assembles the application from validated configuration and a directory pool.
func New(cfg *coreconfig.Config, pool *directory.Pool) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	if pool == nil {
		return nil, fmt.Errorf("app: nil directory pool")
	}

	dir, err := pool.Acquire()
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	sessions := session.NewManager(time.Duration(cfg.Telegram.SessionTTLMinutes) * time.Minute)
	searcher := search.NewService(dir, search.Options{
		MaxResults:    cfg.Directory.MaxResults,
		StrategyOrder: cfg.Directory.StrategyOrder,
		CallTimeout:   time.Duration(cfg.Directory.CallTimeoutSeconds) * time.Second,
	})
	ctl := NewController(sessions, searcher, auth.NewCoordinator(), dir, cfg.Directory.Phone, cfg.Directory.PageSize)

	h := &handlers{
		ctl:       ctl,
		sessions:  sessions,
		account:   cfg.Directory.Phone,
		startedAt: time.Now(),
	}

	return &App{
		cfg:      cfg,
		pool:     pool,
		sessions: sessions,
		ctl:      ctl,
		h:        h,
	}, nil
}

// CoreConfig exposes the embedded configuration for the runner.
func (a *App) CoreConfig() *coreconfig.Config {
	return a.cfg
}

// TelegramRunOptions wires registry, routes, and middleware for RunTelegram.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.h.onStart,
		Description: "Start a channel search",
	})
	reg.RegisterCommand("/search", commands.Command{
		Handler:     a.h.onSearch,
		Description: "Search for channels by keywords",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.h.onCancel,
		Description: "Cancel the current conversation",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.h.onHelp,
		Description: "Show usage help",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.h.onStats,
		Description: "Show bot statistics",
		AdminOnly:   true,
		Hidden:      true,
	})

	for _, action := range []string{
		ActionPrevPage,
		ActionNextPage,
		ActionNewSearch,
		ActionDetails,
		ActionBackToList,
		ActionIgnore,
	} {
		if err := reg.RegisterCallback(action, a.h.actionHandler(action)); err != nil {
			return coretelegram.RunOptions{}, err
		}
	}

	var fallback ui.FallbackProvider = a.h
	reg.SetTextFallback(fallback.UnknownText())
	reg.SetCallbackNotFound(fallback.UnknownCallback())

	// Both conversation phases are driven by plain text messages.
	a.sessions.RegisterHandler(session.PhaseCollectingTerms, a.h.onText)
	a.sessions.RegisterHandler(session.PhaseAwaitingCode, a.h.onText)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: fallback.UnknownCallback(),
	}))
	routes = append(routes, router.TextRoutes(a.sessions, reg, router.TextOptions{
		UnknownText:     fallback.UnknownText(),
		UnknownDocument: fallback.UnknownDocument(),
	})...)

	onLimited := func(c tele.Context) error {
		return tghelpers.SendText(c, "⏳ Slow down a little, please.")
	}

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, onLimited),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			if rt.Dispatcher != nil {
				a.h.sendErrors = rt.Dispatcher.ErrorCount
			}
			go a.sessions.Janitor(ctx, time.Minute)
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.pool.Close()
		},
	}, nil
}
