package snake

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/vovakirdan/gridsnake/internal/core"
)

const (
	defaultFramesPerTick = 10
	hudHeight            = 2 // Status line plus separator
)

// Game drives a GameState from a fixed-rate frame loop.
//
// The platform calls Step once per frame. Directional presses are held across
// frames and applied as a single AdvanceTick every framesPerTick frames, which
// keeps logic speed independent of the render rate.
type Game struct {
	state *GameState
	rng   *rand.Rand
	seed  int64

	frame         uint64 // Frames seen since Reset
	tick          uint64 // Logic ticks applied since Reset
	frameCount    int    // Frames since the last logic tick
	framesPerTick int
	held          core.InputFrame
	lastEvent     TickEvent

	cellW   int
	cellH   int
	screenW int
	screenH int

	paused   bool
	tooSmall bool
}

// New creates a Snake game. Call Reset before stepping it.
func New() *Game {
	return &Game{
		held: core.NewInputFrame(),
	}
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return "snake"
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Snake"
}

// Reset initializes/restarts the game.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.seed = cfg.Seed
	g.rng = rand.New(rand.NewSource(cfg.Seed))
	g.state = NewGameState(g.rng)

	g.frame = 0
	g.tick = 0
	g.frameCount = 0
	g.held.Clear()
	g.lastEvent = EventIgnored
	g.paused = false

	g.framesPerTick = cfg.FramesPerTick
	if g.framesPerTick <= 0 {
		g.framesPerTick = defaultFramesPerTick
	}
	g.cellW = max(1, cfg.CellW)
	g.cellH = max(1, cfg.CellH)
	g.resize(cfg.ScreenW, cfg.ScreenH)
}

// Resize updates the screen dimensions without touching the game state.
func (g *Game) Resize(width, height int) {
	g.resize(width, height)
}

func (g *Game) resize(width, height int) {
	g.screenW = width
	g.screenH = height
	boardW, boardH := g.boardSize()
	g.tooSmall = width < boardW || height < boardH+hudHeight
}

// boardSize returns the framed board size in characters.
func (g *Game) boardSize() (int, int) {
	return Cols*g.cellW + 2, Rows*g.cellH + 2
}

// Step advances the game by one frame.
func (g *Game) Step(input core.InputFrame) core.StepResult {
	g.frame++

	if input.Has(core.ActionRestart) && !g.state.IsAlive() {
		g.Reset(core.RuntimeConfig{
			Seed:          g.rng.Int63(),
			ScreenW:       g.screenW,
			ScreenH:       g.screenH,
			FramesPerTick: g.framesPerTick,
			CellW:         g.cellW,
			CellH:         g.cellH,
		})
		return core.StepResult{State: g.State()}
	}

	if input.Has(core.ActionPause) && g.state.IsAlive() {
		g.paused = !g.paused
	}

	if !g.state.IsAlive() || g.paused || g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	g.held.Merge(input)

	g.frameCount++
	if g.frameCount < g.framesPerTick {
		return core.StepResult{State: g.State()}
	}

	g.lastEvent = g.state.AdvanceTick(InputFromFrame(g.held))
	g.held.Clear()
	g.frameCount = 0
	g.tick++

	return core.StepResult{State: g.State(), Ticked: true}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.state.Length() - 1,
		GameOver: !g.state.IsAlive(),
		Won:      g.state.Won(),
		Paused:   g.paused,
	}
}

// Seed returns the seed the current game was started with.
func (g *Game) Seed() int64 {
	return g.seed
}

// Ticks returns the number of logic ticks applied since the last reset.
func (g *Game) Ticks() uint64 {
	return g.tick
}

// Core exposes the underlying state read-only by convention.
func (g *Game) Core() *GameState {
	return g.state
}

// Render draws the game to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	g.renderHUD(dst)

	if g.tooSmall {
		g.renderOverlay(dst, "Window too small", "Resize to continue")
		return
	}

	boardW, boardH := g.boardSize()
	offX := (dst.Width() - boardW) / 2
	offY := hudHeight
	dst.DrawBox(core.NewRect(offX, offY, boardW, boardH), core.ColorGray)

	cell := func(p Point) core.Rect {
		return core.NewRect(offX+1+p.X*g.cellW, offY+1+p.Y*g.cellH, g.cellW, g.cellH)
	}

	dst.DrawRect(cell(g.state.Apple()), '█', core.ColorRed)
	for i, p := range g.state.Body() {
		color := core.ColorGreen
		if i == 0 {
			color = core.ColorBrightGreen
		}
		dst.DrawRect(cell(p), '█', color)
	}

	switch {
	case g.state.Won():
		g.renderOverlay(dst, "Board filled!", fmt.Sprintf("Length %d - press R", g.state.Length()))
	case !g.state.IsAlive():
		g.renderOverlay(dst, "Game Over", "Press R to restart")
	case g.paused:
		g.renderOverlay(dst, "Paused", "Press P to continue")
	}
}

// renderHUD draws the top status bar.
func (g *Game) renderHUD(dst *core.Screen) {
	hud := fmt.Sprintf(" Snake | Length: %d/%d  Tick: %d", g.state.Length(), Capacity, g.tick)
	dst.DrawText(0, 0, hud)
	for x := 0; x < dst.Width(); x++ {
		dst.SetCell(x, 1, '─', core.ColorGray)
	}
}

// renderOverlay draws a centered overlay message.
func (g *Game) renderOverlay(dst *core.Screen, line1, line2 string) {
	boxW := max(len(line1), len(line2)) + 4
	boxH := 5
	box := core.NewRect((dst.Width()-boxW)/2, (dst.Height()-boxH)/2, boxW, boxH)

	dst.DrawRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box, core.ColorWhite)
	dst.DrawTextCentered(box.Y+1, line1)
	dst.DrawTextCentered(box.Y+3, line2)
}

// DebugState returns a string representation of the game state.
func (g *Game) DebugState() string {
	var b strings.Builder
	head, apple := g.state.Head(), g.state.Apple()
	fmt.Fprintf(&b, "Frame: %d, Tick: %d, Length: %d\n", g.frame, g.tick, g.state.Length())
	fmt.Fprintf(&b, "Head: (%d, %d), Apple: (%d, %d), Velocity: %s\n", head.X, head.Y, apple.X, apple.Y, g.state.Velocity())
	fmt.Fprintf(&b, "Alive: %v, Won: %v, Paused: %v, Last: %s\n", g.state.IsAlive(), g.state.Won(), g.paused, g.lastEvent)
	return b.String()
}
