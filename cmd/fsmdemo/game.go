package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/rs/zerolog"

	"github.com/milk9111/ecsfsm/prefabs"
)

var floorColor = color.RGBA{R: 0x60, G: 0x60, B: 0x70, A: 0xff}

type Game struct {
	frames int

	sim     *Sim
	watcher *prefabs.Watcher
	logger  zerolog.Logger
}

func NewGame(sim *Sim, watcher *prefabs.Watcher, logger zerolog.Logger) *Game {
	return &Game{sim: sim, watcher: watcher, logger: logger}
}

func (g *Game) Update() error {
	g.frames++
	g.drainWatcher()
	return g.sim.Step()
}

// drainWatcher applies pending prefab changes without blocking the frame.
func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.sim.Reload(path)
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.logger.Warn().Err(err).Msg("prefab watcher")
			}
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	var b strings.Builder
	fmt.Fprintf(&b, "Frames: %d    FPS: %.2f    Tick: %d\n", g.frames, ebiten.ActualFPS(), g.sim.Ticks())
	for _, body := range g.sim.Bodies() {
		b.WriteString(body.String())
		b.WriteByte('\n')
		ebitenutil.DebugPrintAt(screen, body.Mood, int(body.X-bodyRadius), int(body.Y-bodyRadius*2))
		ebitenutil.DebugPrintAt(screen, "o", int(body.X-3), int(body.Y-8))
	}
	ebitenutil.DebugPrint(screen, b.String())
	ebitenutil.DrawLine(screen, 0, floorY, screenWidth, floorY, floorColor)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return screenWidth, screenHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
