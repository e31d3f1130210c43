// Package tui renders a product detail page with the AI tools panel in its
// extension zone.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/mlorentedev/productai/internal/panel"
	"github.com/mlorentedev/productai/internal/product"
	"github.com/mlorentedev/productai/internal/prompt"
)

const (
	defaultWidth    = 80
	minPreviewLines = 3
	maxPreviewLines = 20
)

// refreshMsg asks the model to re-read the panel snapshot.
type refreshMsg struct{}

type savedMsg struct{ err error }

// Model is the bubbletea model hosting one Panel.
type Model struct {
	ctx    context.Context
	panel  *panel.Panel
	notify *statusNotifier
	wake   chan struct{}

	preview  textarea.Model
	spinner  spinner.Model
	width    int
	showDiff bool

	state panel.State
	gen   uint64
	snap  panel.Snapshot
}

// New builds the model and the Panel it drives. The Panel is reachable
// through Panel() so the caller can Close it after the program exits.
func New(ctx context.Context, p product.Product, s panel.Streamer, u product.Updater, opts ...panel.Option) *Model {
	m := &Model{
		ctx:   ctx,
		wake:  make(chan struct{}, 1),
		width: defaultWidth,
	}
	m.notify = &statusNotifier{wake: m.poke}
	opts = append(opts, panel.WithObserver(func(panel.Snapshot) { m.poke() }))
	m.panel = panel.New(p, s, u, m.notify, opts...)

	ta := textarea.New()
	ta.Placeholder = "Pick an action to generate a new description..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = "┃ "
	ta.SetWidth(defaultWidth - 4)
	ta.SetHeight(minPreviewLines)
	ta.Blur()
	m.preview = ta

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m.spinner = sp
	return m
}

// Panel returns the driven panel.
func (m *Model) Panel() *panel.Panel { return m.panel }

// poke wakes the program without ever blocking the caller.
func (m *Model) poke() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.wake:
			return refreshMsg{}
		case <-m.ctx.Done():
			return tea.Quit()
		}
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.spinner.Tick)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.preview.SetWidth(max(20, msg.Width-4))
		m.resizePreview()

	case refreshMsg:
		m.sync()
		return m, m.waitForChange()

	case savedMsg:
		m.sync()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	if m.snap.State == panel.ReviewReady {
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		cmds = append(cmds, cmd)
		m.resizePreview()
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return tea.Quit, true
	case "q":
		if m.snap.State != panel.ReviewReady {
			return tea.Quit, true
		}
	case "ctrl+s":
		if m.snap.State != panel.ReviewReady {
			return nil, true
		}
		if err := m.panel.Edit(m.preview.Value()); err != nil {
			return nil, true
		}
		m.sync()
		return m.save(), true
	case "ctrl+d":
		if m.snap.State == panel.ReviewReady {
			m.showDiff = !m.showDiff
		}
		return nil, true
	case "esc":
		if m.snap.State == panel.ReviewReady {
			m.panel.Cancel()
			m.sync()
		}
		return nil, true
	}

	if t, ok := actionForKey(key, m.snap.State); ok {
		if !m.panel.Visible() || !m.panel.Enabled(t) {
			return nil, true
		}
		m.panel.Select(m.ctx, t)
		m.sync()
		return m.spinner.Tick, true
	}
	return nil, false
}

// actionForKey maps F1-F4 always, and 1-4 unless the preview is being edited.
func actionForKey(key string, s panel.State) (prompt.Type, bool) {
	types := prompt.Types()
	for i, t := range types {
		if key == fmt.Sprintf("f%d", i+1) {
			return t, true
		}
		if s != panel.ReviewReady && key == fmt.Sprintf("%d", i+1) {
			return t, true
		}
	}
	return "", false
}

func (m *Model) save() tea.Cmd {
	return func() tea.Msg {
		return savedMsg{err: m.panel.Save(m.ctx)}
	}
}

// sync copies the panel snapshot into the view. The preview text is only
// replaced while streaming or on entering review so user edits survive.
func (m *Model) sync() {
	snap := m.panel.Snapshot()
	entering := snap.State != m.state || snap.Gen != m.gen

	switch snap.State {
	case panel.Streaming:
		m.preview.SetValue(snap.Draft)
		m.preview.Blur()
	case panel.ReviewReady:
		if entering && m.state != panel.Saving {
			m.preview.SetValue(snap.Draft)
		}
		m.preview.Focus()
	case panel.Saving:
		m.preview.Blur()
	case panel.Idle:
		m.preview.Reset()
		m.preview.Blur()
	}

	m.snap = snap
	m.state = snap.State
	m.gen = snap.Gen
	m.resizePreview()
}

// resizePreview sizes the editor to its wrapped content.
func (m *Model) resizePreview() {
	width := max(1, m.preview.Width())
	m.preview.SetHeight(previewHeight(m.preview.Value(), width))
}

func previewHeight(text string, width int) int {
	if text == "" {
		return minPreviewLines
	}
	wrapped := wrap.String(wordwrap.String(text, width), width)
	lines := strings.Count(wrapped, "\n") + 1
	return min(max(lines, minPreviewLines), maxPreviewLines)
}

func (m *Model) View() string {
	p := m.panel.Product()
	var b strings.Builder

	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(wordwrap.String(p.Description, max(20, m.width-6))))
	b.WriteString("\n")

	if zone := m.zoneView(p); zone != "" {
		b.WriteString(zone)
		b.WriteString("\n")
	}
	return b.String()
}

// zoneView renders the panel in the panel.Zone slot; empty when hidden.
func (m *Model) zoneView(p product.Product) string {
	if !m.panel.Visible() {
		return ""
	}

	var buttons []string
	for i, t := range prompt.Types() {
		style := buttonStyle
		switch {
		case m.snap.State == panel.Streaming && t == m.snap.Active:
			style = activeButtonStyle
		case !m.panel.Enabled(t):
			style = disabledButtonStyle
		}
		buttons = append(buttons, style.Render(fmt.Sprintf("F%d %s", i+1, t.Label())))
	}

	var lines []string
	lines = append(lines, titleStyle.Render("AI tools"))
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	if tip := prompt.ImproveSEO.Tooltip(p.Title); tip != "" {
		lines = append(lines, hintStyle.Render(fmt.Sprintf("F4 %s", tip)))
	}

	switch m.snap.State {
	case panel.Streaming:
		lines = append(lines, m.spinner.View()+" Generating...")
		lines = append(lines, m.preview.View())
	case panel.ReviewReady:
		lines = append(lines, m.preview.View())
		if m.showDiff {
			width := max(20, m.width-6)
			lines = append(lines, hintStyle.Render("Changes:"), wordwrap.String(renderDiff(p.Description, m.preview.Value()), width))
		}
		lines = append(lines, hintStyle.Render("ctrl+s update • ctrl+d changes • esc cancel • F1-F4 regenerate"))
	case panel.Saving:
		lines = append(lines, m.spinner.View()+" Saving...")
		lines = append(lines, m.preview.View())
	default:
		lines = append(lines, hintStyle.Render("1-4 or F1-F4 generate • q quit"))
	}

	if title, text, isErr := m.notify.get(); text != "" {
		style := successStyle
		if isErr {
			style = errorStyle
		}
		lines = append(lines, style.Render(title)+" "+text)
	}

	return sectionStyle.Render(strings.Join(lines, "\n"))
}

// Run starts the program and blocks until the user quits. The panel is
// closed before returning.
func Run(ctx context.Context, m *Model) error {
	defer m.panel.Close()
	prog := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := prog.Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
