package main

import (
	"log"

	"github.com/vokin23/channelsearch/core/bootstrap"
	corecmd "github.com/vokin23/channelsearch/core/cmd"
	coreconfig "github.com/vokin23/channelsearch/core/config"
	"github.com/vokin23/channelsearch/internal/app"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := coreconfig.Load(path)
			if err != nil {
				return nil, err
			}
			return carrier{cfg: cfg}, nil
		},
		Bootstrap: func(c corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg := c.CoreConfig()
			res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
			if err != nil {
				return nil, err
			}
			return app.New(cfg, res.Directory)
		},
	})
	if err != nil {
		log.Fatalf("bot: %v", err)
	}
}

type carrier struct {
	cfg *coreconfig.Config
}

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }
