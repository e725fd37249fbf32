package tui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/furi/internal/anki"
	"github.com/f3rmion/furi/internal/document"
	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/settings"
	"github.com/f3rmion/furi/internal/textenc"
	"github.com/f3rmion/furi/internal/tui/bigchar"
	"github.com/f3rmion/furi/internal/tui/views"
)

// ViewType represents the current active view
type ViewType int

const (
	ViewPreview ViewType = iota
	ViewSegment
	ViewOpen
	ViewSettings
)

// MenuItem represents a sidebar menu entry
type MenuItem struct {
	Label    string
	View     ViewType
	Shortcut string
}

// DocumentLoadedMsg carries an opened file after annotation.
type DocumentLoadedMsg struct {
	Path    string
	Content string
	Err     error
}

type settingsSavedMsg struct {
	err error
}

type glyphsLoadedMsg struct {
	glyphs *bigchar.Renderer
}

// AppModel is the main TUI model
type AppModel struct {
	engine    *furigana.Engine
	processor *document.Processor
	store     *settings.Store
	settings  settings.Settings
	toggle    key.Binding
	log       *slog.Logger

	// Layout state
	width        int
	height       int
	sidebarWidth int
	ready        bool

	// Navigation
	currentView   ViewType
	menuItems     []MenuItem
	selectedMenu  int
	sidebarActive bool

	previewView    views.PreviewModel
	segmentView    views.SegmentModel
	filePickerView views.FilePickerModel
	settingsView   views.SettingsModel

	showHelp bool
}

// NewApp creates the TUI. store may be nil, in which case mode changes are
// not persisted.
func NewApp(engine *furigana.Engine, store *settings.Store, st settings.Settings, log *slog.Logger) AppModel {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	path := "(not saved)"
	if store != nil {
		path = store.Path()
	}

	menuItems := []MenuItem{
		{Label: "Preview", View: ViewPreview, Shortcut: "1"},
		{Label: "Segment", View: ViewSegment, Shortcut: "2"},
		{Label: "Open File", View: ViewOpen, Shortcut: "3"},
		{Label: "Mode", View: ViewSettings, Shortcut: "4"},
	}

	return AppModel{
		engine:       engine,
		processor:    document.NewProcessor(engine, log),
		store:        store,
		settings:     st,
		toggle:       HotkeyBinding(st.Hotkey),
		log:          log,
		sidebarWidth: 18,
		currentView:  ViewPreview,
		menuItems:    menuItems,

		previewView:    views.NewPreviewModel(engine, st.Mode),
		segmentView:    views.NewSegmentModel(engine, nil),
		filePickerView: views.NewFilePickerModel(engine, ""),
		settingsView:   views.NewSettingsModel(engine, st, path),
	}
}

// HotkeyBinding builds the mode toggle binding. Terminals cannot report
// shift together with ctrl, so "ctrl+shift+x" is also bound as "ctrl+x".
func HotkeyBinding(hotkey string) key.Binding {
	hotkey = strings.ToLower(strings.TrimSpace(hotkey))
	if hotkey == "" {
		hotkey = settings.DefaultHotkey
	}
	keys := []string{hotkey}
	if strings.HasPrefix(hotkey, "ctrl+") && strings.Contains(hotkey, "shift+") {
		keys = append(keys, strings.Replace(hotkey, "shift+", "", 1))
	}
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(hotkey, "cycle mode"),
	)
}

// Settings returns the settings currently in effect.
func (m AppModel) Settings() settings.Settings {
	return m.settings
}

// CurrentView returns the active view.
func (m AppModel) CurrentView() ViewType {
	return m.currentView
}

// Init initializes the model
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, loadGlyphs, m.filePickerView.Init())
}

func loadGlyphs() tea.Msg {
	return glyphsLoadedMsg{glyphs: bigchar.Load()}
}

// typing reports whether the active view owns plain key presses.
func (m AppModel) typing() bool {
	if m.sidebarActive {
		return false
	}
	switch m.currentView {
	case ViewPreview:
		return m.previewView.Typing()
	case ViewSegment:
		return m.segmentView.Typing()
	}
	return false
}

// Update handles messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if key.Matches(msg, m.toggle) {
			return m.setMode(m.settings.Mode.Next())
		}

		switch msg.String() {
		case "tab":
			m.sidebarActive = !m.sidebarActive
			return m, nil
		case "esc":
			if m.sidebarActive {
				return m, tea.Quit
			}
			m.sidebarActive = true
			return m, nil
		}

		if !m.typing() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "?":
				m.showHelp = true
				return m, nil
			case "1", "2", "3", "4":
				m.switchTo(int(msg.String()[0] - '1'))
				return m, nil
			}
		}

		if m.sidebarActive {
			switch msg.String() {
			case "j", "down":
				if m.selectedMenu < len(m.menuItems)-1 {
					m.selectedMenu++
				}
			case "k", "up":
				if m.selectedMenu > 0 {
					m.selectedMenu--
				}
			case "enter", "l", "right":
				m.switchTo(m.selectedMenu)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentWidth := m.width - m.sidebarWidth - 4
		contentHeight := m.height - 2

		m.previewView.SetSize(contentWidth, contentHeight)
		m.segmentView.SetSize(contentWidth, contentHeight)
		m.filePickerView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		return m, nil

	case glyphsLoadedMsg:
		m.segmentView.SetGlyphs(msg.glyphs)
		return m, nil

	case views.ModeSelectedMsg:
		return m.setMode(msg.Mode)

	case settingsSavedMsg:
		m.settingsView.SetSaveError(msg.err)
		if msg.err != nil {
			m.log.Warn("saving settings", "error", msg.err)
		}
		return m, nil

	case views.FileSelectedMsg:
		return m, m.loadDocument(msg.Path)

	case DocumentLoadedMsg:
		m.previewView.SetDocument(msg.Path, msg.Content, msg.Err)
		m.switchTo(int(ViewPreview))
		return m, nil
	}

	// Directory listings arrive whichever view is shown.
	var listCmd tea.Cmd
	if _, isKey := msg.(tea.KeyMsg); !isKey && (m.sidebarActive || m.currentView != ViewOpen) {
		m.filePickerView, listCmd = m.filePickerView.Update(msg)
	}

	if m.sidebarActive {
		return m, listCmd
	}

	var cmd tea.Cmd
	switch m.currentView {
	case ViewPreview:
		m.previewView, cmd = m.previewView.Update(msg)
	case ViewSegment:
		m.segmentView, cmd = m.segmentView.Update(msg)
	case ViewOpen:
		m.filePickerView, cmd = m.filePickerView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}
	return m, tea.Batch(cmd, listCmd)
}

func (m *AppModel) switchTo(i int) {
	if i < 0 || i >= len(m.menuItems) {
		return
	}
	m.selectedMenu = i
	m.currentView = m.menuItems[i].View
	m.sidebarActive = false
}

// setMode applies mode to every view and persists it.
func (m AppModel) setMode(mode settings.Mode) (tea.Model, tea.Cmd) {
	m.settings.Mode = mode
	m.previewView.SetMode(mode)
	m.settingsView.SetSettings(m.settings)
	m.log.Debug("mode changed", "mode", mode)

	if m.store == nil {
		return m, nil
	}
	store, st := m.store, m.settings
	return m, func() tea.Msg {
		return settingsSavedMsg{err: store.Save(st)}
	}
}

// loadDocument annotates a file off the UI goroutine. Anki packages are
// summarized instead.
func (m AppModel) loadDocument(path string) tea.Cmd {
	mode := m.settings.Mode
	processor := m.processor
	return func() tea.Msg {
		if strings.EqualFold(filepath.Ext(path), ".apkg") {
			pkg, err := anki.Open(path)
			if err != nil {
				return DocumentLoadedMsg{Path: path, Err: err}
			}
			defer pkg.Close()
			return DocumentLoadedMsg{Path: path, Content: pkg.Summary()}
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return DocumentLoadedMsg{Path: path, Err: fmt.Errorf("reading %s: %w", path, err)}
		}
		text, _, err := textenc.Decode(raw, textenc.Auto)
		if err != nil {
			return DocumentLoadedMsg{Path: path, Err: err}
		}
		res, err := processor.Annotate([]byte(text), document.Detect(path), mode)
		if err != nil {
			return DocumentLoadedMsg{Path: path, Err: err}
		}
		return DocumentLoadedMsg{Path: path, Content: string(res.Output)}
	}
}

// View renders the UI
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	sidebar := m.renderSidebar()

	var content string
	switch m.currentView {
	case ViewPreview:
		content = m.previewView.View()
	case ViewSegment:
		content = m.segmentView.View()
	case ViewOpen:
		content = m.filePickerView.View()
	case ViewSettings:
		content = m.settingsView.View()
	}

	contentWidth := m.width - m.sidebarWidth - 4
	mainContent := ContentStyle.
		Width(contentWidth).
		Height(m.height - 2).
		Render(content)

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, mainContent)
}

// renderSidebar renders the sidebar navigation
func (m AppModel) renderSidebar() string {
	var items []string

	items = append(items, SidebarTitleStyle.Render("  振仮名 furi  "))
	items = append(items, "")

	for i, item := range m.menuItems {
		label := item.Shortcut + ". " + item.Label

		var style lipgloss.Style
		if i == m.selectedMenu {
			if m.sidebarActive {
				style = SidebarItemActiveStyle
			} else {
				style = SidebarItemStyle.Bold(true).Foreground(ColorSecondary)
			}
		} else {
			style = SidebarItemStyle
		}
		items = append(items, style.Render(label))
	}

	items = append(items, "")
	modeStyle := ModeOnStyle
	if m.settings.Mode == settings.ModeOff {
		modeStyle = ModeOffStyle
	}
	items = append(items, modeStyle.Padding(0, 1).Render("mode: "+m.settings.Mode.String()))

	usedHeight := len(items) + 4
	for i := 0; i < m.height-usedHeight-2; i++ {
		items = append(items, "")
	}

	items = append(items, SidebarHelpStyle.Render("? Help  q Quit"))

	content := lipgloss.JoinVertical(lipgloss.Left, items...)
	return SidebarStyle.
		Width(m.sidebarWidth).
		Height(m.height - 2).
		Render(content)
}

// renderHelp renders the help overlay
func (m AppModel) renderHelp() string {
	row := func(k, desc string) string {
		return HelpKeyStyle.Render(k) + HelpDescStyle.Render(desc) + "\n"
	}

	help := HelpTitleStyle.Render("furi - furigana annotation") + "\n\n"

	help += HelpSectionStyle.Render("Global Keys") + "\n"
	help += row("1-4", "Switch views")
	help += row("tab", "Toggle sidebar focus")
	help += row(m.toggle.Help().Key, "Cycle annotation mode")
	help += row("?", "Show this help")
	help += row("q / ctrl+c", "Quit")

	help += HelpSectionStyle.Render("Preview") + "\n"
	help += row("ctrl+y", "Copy markup to clipboard")
	help += row("pgup/pgdn", "Scroll opened document")
	help += row("ctrl+l", "Close document")

	help += HelpSectionStyle.Render("Segment") + "\n"
	help += row("enter", "Split reading")
	help += row("←/→", "Select character")
	help += row("y", "Copy markup")

	help += HelpSectionStyle.Render("Open File") + "\n"
	help += row("enter", "Open file or directory")
	help += row("backspace", "Parent directory")

	help += "\n" + HelpStyle.Italic(true).Render("Press any key to close")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, HelpBoxStyle.Render(help))
}

// Run starts the TUI on the alternate screen.
func Run(app AppModel) error {
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
