package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/milk9111/ecsfsm/metrics"
	"github.com/milk9111/ecsfsm/prefabs"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	logger := newLogger(cfg)
	reg := prometheus.NewRegistry()
	obs, err := metrics.NewObserver(reg)
	if err != nil {
		logger.Fatal().Err(err).Msg("metrics")
	}

	sim, err := NewSim(cfg, logger, obs)
	if err != nil {
		logger.Fatal().Err(err).Msg("sim")
	}

	if cfg.Headless {
		if err := runHeadless(sim, cfg.Ticks); err != nil {
			logger.Fatal().Err(err).Int("tick", sim.Ticks()).Msg("headless run")
		}
		for _, body := range sim.Bodies() {
			logger.Info().Str("entity", body.Entity.String()).Str("motion", body.Motion).Str("mood", body.Mood).Msg("final")
		}
		logTotals(logger, reg)
		return
	}

	var watcher *prefabs.Watcher
	if cfg.Watch {
		watcher, err = prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
		if err != nil {
			logger.Warn().Err(err).Msg("prefab watcher disabled")
		} else {
			defer watcher.Close()
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("fsmdemo")

	if err := ebiten.RunGame(NewGame(sim, watcher, logger)); err != nil {
		logger.Fatal().Err(err).Msg("run")
	}
}

func newLogger(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.Headless {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return logger.Level(level).With().Timestamp().Str("app", "fsmdemo").Logger()
}

func runHeadless(sim *Sim, ticks int) error {
	for i := 0; i < ticks; i++ {
		if err := sim.Step(); err != nil {
			return err
		}
	}
	return nil
}

func logTotals(logger zerolog.Logger, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		logger.Warn().Err(err).Msg("gather metrics")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			ev := logger.Info().Str("metric", mf.GetName()).Float64("value", m.GetCounter().GetValue())
			for _, lp := range m.GetLabel() {
				ev = ev.Str(lp.GetName(), lp.GetValue())
			}
			ev.Msg("total")
		}
	}
}
