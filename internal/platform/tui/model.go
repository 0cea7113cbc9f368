package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/gridsnake/internal/core"
	"github.com/vovakirdan/gridsnake/internal/sim"
	"github.com/vovakirdan/gridsnake/internal/storage"
)

// Game is what the terminal shell drives. Games contain pure logic with no
// Bubble Tea dependency; the shell handles input mapping, timing and rendering.
type Game interface {
	// ID returns a unique identifier, used for screenshot names.
	ID() string

	// Title returns a human-readable name.
	Title() string

	// Reset initializes or resets the game state.
	Reset(cfg core.RuntimeConfig)

	// Resize adapts to new screen dimensions without restarting.
	Resize(width, height int)

	// Step advances the game by one display frame.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current state into the pre-cleared screen buffer.
	Render(dst *core.Screen)

	// State returns the current game state (score, game over, paused).
	State() core.GameState

	// Seed returns the seed of the game in progress.
	Seed() int64

	// Ticks returns the logic ticks applied since the last reset.
	Ticks() uint64
}

// debugStater is implemented by games that can describe their internal state
// for debug logging.
type debugStater interface {
	DebugState() string
}

// Model is the Bubble Tea model for a single game session.
type Model struct {
	game       Game
	screen     *core.Screen
	store      *storage.Store
	logger     *log.Logger
	config     core.RuntimeConfig
	keys       *KeyMapper
	help       help.Model
	inputFrame core.InputFrame
	gameState  core.GameState
	quitting   bool
	goingBack  bool
	saved      bool // Whether the finished game has been recorded
}

// NewModel creates a new Bubble Tea model for the given game.
// store and logger may be nil.
func NewModel(game Game, store *storage.Store, cfg core.RuntimeConfig, logger *log.Logger) Model {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = log.Default()
	}

	h := help.New()
	h.ShowAll = false

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, screenHeight(cfg.ScreenH)),
		store:      store,
		logger:     logger,
		config:     cfg,
		keys:       NewKeyMapper(),
		help:       h,
		inputFrame: core.NewInputFrame(),
	}
}

// screenHeight leaves the bottom row for the help bar.
func screenHeight(h int) int {
	return max(1, h-1)
}

// Init initializes the model and starts the frame loop.
func (m Model) Init() tea.Cmd {
	cfg := m.config
	cfg.ScreenH = screenHeight(cfg.ScreenH)
	m.game.Reset(cfg)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input. Presses accumulate until the next frame.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Keys().Screenshot) {
		if path, err := m.saveScreenshot(); err != nil {
			m.logger.Warn("screenshot failed", "error", err)
		} else {
			m.logger.Debug("screenshot saved", "path", path)
		}
		return m, nil
	}

	if m.keys.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}

	// Leaving is only offered when the game is not running.
	if m.inputFrame.Has(core.ActionBack) && (m.gameState.GameOver || m.gameState.Paused) {
		m.goingBack = true
		return m, tea.Quit
	}

	return m, nil
}

// handleResize processes window resize events without restarting the game.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, screenHeight(msg.Height))
	m.game.Resize(msg.Width, screenHeight(msg.Height))
	m.help.Width = msg.Width
	return m, nil
}

// handleTick runs one display frame.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	result := m.game.Step(m.inputFrame)
	m.inputFrame.Clear()

	if result.Ticked && m.logger.GetLevel() <= log.DebugLevel {
		if d, ok := m.game.(debugStater); ok {
			m.logger.Debug("tick", "state", d.DebugState())
		}
	}

	// A restart inside the game starts a new recordable episode.
	if m.gameState.GameOver && !result.State.GameOver {
		m.saved = false
	}
	m.gameState = result.State

	if m.gameState.GameOver && !m.saved {
		m.recordEpisode()
		m.saved = true
	}

	return m, tickCmd(m.config.TickRate)
}

// recordEpisode stores the finished game under the human source.
func (m *Model) recordEpisode() {
	outcome := sim.OutcomeDied
	if m.gameState.Won {
		outcome = sim.OutcomeFilled
	}
	length := m.gameState.Score + 1

	m.logger.Info("game over", "length", length, "ticks", m.game.Ticks(), "outcome", outcome)

	if m.store == nil {
		return
	}
	_, err := m.store.SaveEpisode(storage.Episode{
		Source:  storage.SourceHuman,
		Seed:    m.game.Seed(),
		Length:  length,
		Ticks:   int(m.game.Ticks()),
		Outcome: string(outcome),
	})
	if err != nil {
		m.logger.Warn("could not save episode", "error", err)
	}
}

// saveScreenshot writes the current screen as plain text.
func (m *Model) saveScreenshot() (string, error) {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	dir := filepath.Join(home, ".snake", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	return path, nil
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	m.game.Render(m.screen)

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys.Keys()))
}

// IsQuitting returns true if the user asked to exit.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// IsGoingBack returns true if the user left a finished or paused game.
func (m Model) IsGoingBack() bool {
	return m.goingBack
}

// Run starts the Bubble Tea program with the given game.
func Run(game Game, store *storage.Store, cfg core.RuntimeConfig, logger *log.Logger) error {
	model := NewModel(game, store, cfg, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
