// Package ui is the terminal control surface: drop zone, open dialog,
// visualizer area and transport bar.
package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/mediashell/api"
	"github.com/jscyril/mediashell/internal/analysis"
	"github.com/jscyril/mediashell/internal/config"
	"github.com/jscyril/mediashell/internal/media"
	"github.com/jscyril/mediashell/internal/playback"
	"github.com/jscyril/mediashell/internal/source"
	"github.com/jscyril/mediashell/internal/ui/components"
	"github.com/jscyril/mediashell/internal/ui/views"
	"github.com/jscyril/mediashell/internal/visualizer"
	"go.uber.org/zap"
)

// Mode is the screen currently shown
type Mode int

const (
	ModeDrop Mode = iota
	ModeBrowser
	ModePlayer
)

// ElementFactory creates the media element for a resource
type ElementFactory func(ctx context.Context, res *api.MediaResource) (media.Element, error)

// Options wires the model to the rest of the application
type Options struct {
	Context    context.Context
	Config     *config.Config
	Logger     *zap.Logger
	Selector   *source.Selector
	Controller *playback.Controller
	Elements   ElementFactory
	Analysis   analysis.Factory
	Scheduler  visualizer.Scheduler

	// Opener is the desktop file dialog; nil uses the built-in browser
	Opener source.FileOpener
	// InitialPath is opened on start when set
	InitialPath string
}

// Model is the main bubbletea model
type Model struct {
	// Dimensions
	width  int
	height int

	mode     Mode
	prevMode Mode

	// Views
	drop     components.DropZone
	browser  components.FileBrowser
	controls views.ControlsView
	idle     components.IdleTimer

	// Components
	ctx        context.Context
	cfg        *config.Config
	logger     *zap.Logger
	selector   *source.Selector
	opener     source.FileOpener
	controller *playback.Controller
	elements   ElementFactory
	analysis   analysis.Factory
	sched      visualizer.Scheduler
	keys       appKeys
	colors     visualizer.Colors
	initial    string

	// Mounted player
	mountGen uint64
	resource *api.MediaResource
	title    string
	el       media.Element
	loop     *visualizer.Loop
	canvas   *visualizer.TermCanvas

	err error

	// Styles
	frameStyle lipgloss.Style
	errorStyle lipgloss.Style
	hintStyle  lipgloss.Style
}

// Messages
type (
	frameMsg    struct{ gen uint64 }
	dispatchMsg struct{}
	openPathMsg struct{ path string }

	mountedMsg struct {
		gen   uint64
		el    media.Element
		title string
		err   error
	}

	dialogMsg struct {
		res *api.MediaResource
		err error
	}
)

// NewModel creates the application model
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.GetDefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = visualizer.NewTickerScheduler(cfg.FrameRate)
	}

	m := Model{
		width:      80,
		height:     24,
		mode:       ModeDrop,
		ctx:        ctx,
		cfg:        cfg,
		logger:     logger,
		selector:   opts.Selector,
		opener:     opts.Opener,
		controller: opts.Controller,
		elements:   opts.Elements,
		analysis:   opts.Analysis,
		sched:      sched,
		keys:       newAppKeys(opts.Controller.Keys(), cfg.KeyBindings),
		colors:     visualizer.ThemeColors(cfg.Theme.Background, cfg.Theme.UpperBars, cfg.Theme.LowerBars),
		initial:    opts.InitialPath,
		idle:       components.NewIdleTimer(cfg.IdleTimeout()),
		frameStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		hintStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
	if m.selector == nil {
		m.selector = source.NewSelector(logger)
	}

	m.drop = components.NewDropZone(m.width, m.height, cfg.DropMode == config.DropInline)
	m.controls = views.NewControlsView(m.width, m.keys)
	m.controls.Scrub.FilledStyle = m.controls.Scrub.FilledStyle.Foreground(lipgloss.Color(cfg.Theme.Progress))
	m.controls.Volume.KnobStyle = m.controls.Volume.KnobStyle.Foreground(lipgloss.Color(cfg.Theme.Accent))
	m.canvas = visualizer.NewTermCanvas(m.width, m.height)
	return m
}

// Init starts waiting for controller updates and opens the initial file
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitDispatch()}
	if m.initial != "" {
		path := m.initial
		cmds = append(cmds, func() tea.Msg { return openPathMsg{path: path} })
	}
	return tea.Batch(cmds...)
}

// waitDispatch blocks until element notifications are queued
func (m Model) waitDispatch() tea.Cmd {
	ready := m.controller.Ready()
	return func() tea.Msg {
		<-ready
		return dispatchMsg{}
	}
}

// frameCmd schedules the next redraw of the mounted player
func (m Model) frameCmd() tea.Cmd {
	gen := m.mountGen
	interval := time.Second / time.Duration(max(m.cfg.FrameRate, 1))
	if m.resource != nil && m.resource.Kind == api.KindVideo {
		interval = media.TimeUpdateInterval
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return frameMsg{gen: gen}
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.drop.Width, m.drop.Height = m.width, m.height
		m.browser.Width, m.browser.Height = m.width, m.height
		m.controls.SetWidth(m.width)

	case dispatchMsg:
		m.controller.Flush()
		m.syncControls()
		cmds = append(cmds, m.waitDispatch())

	case frameMsg:
		if msg.gen != m.mountGen || m.el == nil {
			break
		}
		m.controller.Flush()
		m.syncControls()
		cmds = append(cmds, m.frameCmd())

	case components.IdleMsg:
		m.idle = m.idle.Update(msg)

	case openPathMsg:
		cmds = append(cmds, m.selectResource(m.selector.SelectFromPath(msg.path)))

	case mountedMsg:
		cmds = append(cmds, m.mounted(msg))

	case dialogMsg:
		switch {
		case msg.err != nil:
			m.err = msg.err
			m.logger.Warn("file dialog failed", zap.Error(msg.err))
		case msg.res != nil:
			cmds = append(cmds, m.selectResource(msg.res))
		}

	case components.FileChosenMsg:
		m.mode = m.prevMode
		cmds = append(cmds, m.selectResource(m.selector.SelectFromPath(msg.Path)))

	case components.BrowserCancelledMsg:
		m.mode = m.prevMode

	case components.DropMsg:
		cmds = append(cmds, m.selectResource(m.selector.SelectFromDrop(msg.Locator, msg.Filename)))

	case components.DropErrMsg:
		m.drop.Err = msg.Err
		m.err = msg.Err
		m.logger.Warn("drop rejected", zap.Error(msg.Err))

	case tea.MouseMsg:
		cmds = append(cmds, m.handleMouse(msg))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		cmd, quit := m.handleKey(msg)
		if quit {
			return m, tea.Quit
		}
		cmds = append(cmds, cmd)
	}

	m.layout()
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch m.mode {
	case ModeBrowser:
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return cmd, false

	case ModeDrop:
		if !msg.Paste && m.drop.Empty() {
			switch {
			case key.Matches(msg, m.keys.Quit):
				return nil, true
			case key.Matches(msg, m.keys.Open):
				return m.openDialog(), false
			}
		}
		var cmd tea.Cmd
		m.drop, cmd = m.drop.Update(msg)
		return cmd, false
	}

	// player
	touch := m.idle.Touch()
	if msg.Paste {
		// a file dragged onto the terminal replaces the current one
		var cmd tea.Cmd
		m.drop, cmd = m.drop.Update(msg)
		return tea.Batch(touch, cmd), false
	}
	if m.controller.HandleKey(msg) {
		m.syncControls()
		return touch, false
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return nil, true
	case key.Matches(msg, m.keys.Open):
		return tea.Batch(touch, m.openDialog()), false
	}
	return touch, false
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.mode != ModePlayer {
		return nil
	}

	wasVisible := m.idle.Visible
	touch := m.idle.Touch()

	left := msg.Button == tea.MouseButtonLeft
	press := msg.Action == tea.MouseActionPress
	drag := msg.Action == tea.MouseActionMotion && left
	if !left || !(press || drag) {
		return touch
	}

	if !wasVisible {
		// the first click only reveals the controls
		return touch
	}

	top := m.height - views.ControlsHeight
	if msg.Y < top {
		if press && msg.Y < m.mainHeight() {
			m.controller.TogglePlayPause()
			m.syncControls()
		}
		return touch
	}

	hit := m.controls.HitTest(msg.X, msg.Y-top)
	switch {
	case hit.Target == views.TargetVolume:
		m.controller.SetVolume(m.controls.Volume.ValueAt(hit.Offset))
	case !press:
	case hit.Target == views.TargetScrub:
		m.controller.SeekToFraction(m.controls.Scrub.FractionAt(hit.Offset))
	case hit.Target == views.TargetPlayPause:
		m.controller.TogglePlayPause()
	case hit.Target == views.TargetMute:
		m.controller.ToggleMute()
	case hit.Target == views.TargetFullscreen:
		m.controller.ToggleFullScreen()
	}
	m.syncControls()
	return touch
}

// openDialog shows the desktop dialog when configured, otherwise the
// built-in browser
func (m *Model) openDialog() tea.Cmd {
	if m.opener != nil {
		ctx, sel, opener := m.ctx, m.selector, m.opener
		return func() tea.Msg {
			res, err := sel.SelectFromDialog(ctx, opener)
			return dialogMsg{res: res, err: err}
		}
	}

	start := m.cfg.StartDir
	if start == "" && m.resource != nil && !strings.HasPrefix(m.resource.Locator, "data:") {
		start = filepath.Dir(m.resource.Locator)
	}
	m.prevMode = m.mode
	m.browser = components.NewFileBrowser(start, m.width, m.height)
	m.mode = ModeBrowser
	return nil
}

// selectResource unmounts the current player and starts creating the
// element for res
func (m *Model) selectResource(res *api.MediaResource) tea.Cmd {
	if res == nil {
		return nil
	}
	m.unmount()

	m.mountGen++
	gen := m.mountGen
	m.resource = res
	m.title = res.Name
	m.mode = ModePlayer
	m.err = nil
	m.drop.Err = nil

	ctx, create := m.ctx, m.elements
	return func() tea.Msg {
		el, err := create(ctx, res)
		return mountedMsg{gen: gen, el: el, title: source.ReadTitle(res), err: err}
	}
}

// mounted binds a freshly created element. Elements created for a resource
// that has since been replaced are closed.
func (m *Model) mounted(msg mountedMsg) tea.Cmd {
	if msg.gen != m.mountGen {
		if msg.el != nil {
			msg.el.Close()
		}
		return nil
	}
	if msg.err != nil {
		m.err = msg.err
		m.logger.Error("media element unavailable",
			zap.String("name", m.resource.Name),
			zap.Error(msg.err))
		return nil
	}

	m.el = msg.el
	m.title = msg.title
	m.controller.Bind(m.el)
	m.controller.SetVolume(m.cfg.DefaultVolume)

	if t, ok := m.el.(media.Tappable); ok && m.analysis != nil {
		m.layout()
		m.loop = visualizer.NewLoop(m.logger, m.analysis, m.sched, m.canvas, m.colors)
		if err := m.loop.Attach(t); err == nil {
			m.loop.Start()
		}
	}

	m.idle = components.NewIdleTimer(m.cfg.IdleTimeout())
	m.syncControls()
	m.logger.Info("player mounted",
		zap.String("title", m.title),
		zap.Stringer("kind", m.el.Kind()))

	return tea.Batch(
		m.idle.Touch(),
		m.frameCmd(),
		tea.SetWindowTitle(m.title),
	)
}

// unmount stops the idle timer and the redraw loop and detaches the
// controller before the element is released
func (m *Model) unmount() {
	m.idle.Stop()
	if m.loop != nil {
		m.loop.Teardown()
		m.loop = nil
	}
	m.controller.Unbind()
	if m.el != nil {
		if err := m.el.Close(); err != nil {
			m.logger.Warn("close media element", zap.Error(err))
		}
		m.el = nil
	}
	m.canvas.Clear(m.colors.Background)
	m.canvas.Present()
}

// Close releases the mounted player
func (m *Model) Close() {
	m.unmount()
	m.resource = nil
}

func (m *Model) syncControls() {
	if m.el == nil {
		m.controls.SetState(m.controller.State(), 0, 0, false)
		return
	}
	dur, ok := m.el.Duration()
	m.controls.SetState(m.controller.State(), m.el.CurrentTime(), dur, ok)
	m.controls.Title = m.title
}

// mainHeight is the number of rows above the control surface
func (m Model) mainHeight() int {
	h := m.height
	if m.idle.Visible {
		h -= views.ControlsHeight
	}
	if m.err != nil {
		h--
	}
	return max(h, 1)
}

func (m Model) fullscreen() bool {
	return m.controller.State().IsFullScreen
}

// layout sizes the canvas to the visualizer area. Outside fullscreen the
// canvas sits inside a frame.
func (m *Model) layout() {
	cols, rows := m.width, m.mainHeight()
	if !m.fullscreen() {
		cols, rows = cols-2, rows-2
	}
	cols, rows = max(cols, 1), max(rows, 1)
	if w, h := m.canvas.Size(); w != cols || h != rows*2 {
		m.canvas.Resize(cols, rows)
	}
}

// View renders the UI
func (m Model) View() string {
	switch m.mode {
	case ModeDrop:
		return m.drop.View()
	case ModeBrowser:
		return m.browser.View()
	}

	var sb strings.Builder
	sb.WriteString(m.mainView())
	if m.err != nil {
		sb.WriteString("\n")
		sb.WriteString(m.errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.idle.Visible {
		sb.WriteString("\n")
		sb.WriteString(m.controls.View())
	}
	return sb.String()
}

func (m Model) mainView() string {
	h := m.mainHeight()
	full := m.fullscreen()

	var body string
	switch {
	case m.el == nil && m.err != nil:
		body = m.placeholder("could not open " + m.resource.Name)
	case m.el == nil:
		body = m.placeholder("loading " + m.resource.Name + "...")
	case m.loop != nil && m.loop.State() == visualizer.Running:
		body = m.canvas.Render()
	case m.el.Kind() == api.KindVideo:
		body = m.placeholder("▶ " + m.title + " is playing in the video window")
	default:
		body = m.placeholder("♪ " + m.title)
	}

	if full {
		return lipgloss.NewStyle().Width(m.width).Height(h).MaxHeight(h).Render(body)
	}
	return m.frameStyle.Width(max(m.width-2, 1)).Height(max(h-2, 1)).MaxHeight(h).Render(body)
}

func (m Model) placeholder(text string) string {
	w, h := m.width-2, m.mainHeight()-2
	if m.fullscreen() {
		w, h = m.width, m.mainHeight()
	}
	return lipgloss.Place(max(w, 1), max(h, 1), lipgloss.Center, lipgloss.Center, m.hintStyle.Render(text))
}

// Run starts the bubbletea program and releases the player when it exits
func Run(ctx context.Context, model Model) error {
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	} else {
		model.Close()
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
