package main

import (
	"flag"

	"github.com/caarlos0/env/v11"
)

// Config is read from FSMDEMO_* variables first; command-line flags win.
type Config struct {
	Headless  bool   `env:"FSMDEMO_HEADLESS" envDefault:"false"`
	Ticks     int    `env:"FSMDEMO_TICKS" envDefault:"600"`
	Bodies    int    `env:"FSMDEMO_BODIES" envDefault:"6"`
	Graph     string `env:"FSMDEMO_GRAPH" envDefault:"mood"`
	Watch     bool   `env:"FSMDEMO_WATCH" envDefault:"true"`
	KickEvery int    `env:"FSMDEMO_KICK_EVERY" envDefault:"180"`
	LogLevel  string `env:"FSMDEMO_LOG_LEVEL" envDefault:"info"`
}

func loadConfig(args []string) (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("fsmdemo", flag.ContinueOnError)
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run without a window for -ticks ticks")
	fs.IntVar(&cfg.Ticks, "ticks", cfg.Ticks, "ticks to run in headless mode")
	fs.IntVar(&cfg.Bodies, "bodies", cfg.Bodies, "number of bodies to spawn")
	fs.StringVar(&cfg.Graph, "graph", cfg.Graph, "mood graph name in prefabs/ (basename, .yaml optional)")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "hot-reload scripts from prefabs/")
	fs.IntVar(&cfg.KickEvery, "kick", cfg.KickEvery, "ticks between kicks of grounded bodies (0 disables)")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
