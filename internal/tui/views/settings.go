package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/settings"
)

// ModeSelectedMsg asks the app to switch to and persist a mode.
type ModeSelectedMsg struct {
	Mode settings.Mode
}

var modeDescriptions = map[settings.Mode]string{
	settings.ModeOff:     "Leave text as written",
	settings.ModeBracket: "Convert 漢字(かんじ) patterns to ruby",
	settings.ModeAuto:    "Annotate every known kanji with its first reading",
}

// SettingsModel is the mode selection view.
type SettingsModel struct {
	engine *furigana.Engine
	path   string

	current settings.Settings
	cursor  int
	saveErr error

	width  int
	height int
}

// NewSettingsModel creates a settings view. path is where settings are
// stored.
func NewSettingsModel(engine *furigana.Engine, st settings.Settings, path string) SettingsModel {
	m := SettingsModel{engine: engine, path: path}
	m.SetSettings(st)
	return m
}

// SetSize updates the view dimensions.
func (m *SettingsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetSettings replaces the displayed settings and moves the cursor to the
// active mode.
func (m *SettingsModel) SetSettings(st settings.Settings) {
	m.current = st
	for i, mode := range settings.Modes {
		if mode == st.Mode {
			m.cursor = i
		}
	}
}

// SetSaveError records the outcome of the last save.
func (m *SettingsModel) SetSaveError(err error) {
	m.saveErr = err
}

// Update handles messages.
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "j", "down":
		if m.cursor < len(settings.Modes)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter", " ":
		mode := settings.Modes[m.cursor]
		return m, func() tea.Msg { return ModeSelectedMsg{Mode: mode} }
	}
	return m, nil
}

// View renders the settings panel.
func (m SettingsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Annotation Mode"))
	b.WriteString("\n")
	b.WriteString(pathStyle.Render(m.path))
	b.WriteString("\n\n")
	b.WriteString(modeStatus(m.current.Mode))
	b.WriteString("\n\n")

	for i, mode := range settings.Modes {
		marker := "○"
		if mode == m.current.Mode {
			marker = "●"
		}
		line := fmt.Sprintf("%s %-8s %s", marker, mode, modeDescriptions[mode])
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
			line = selectedStyle.Render(line)
		} else {
			line = valueStyle.Render(line)
		}
		b.WriteString(prefix + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Hotkey:") + " " + valueStyle.Render(m.current.Hotkey))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Dictionary:") + " " + valueStyle.Render(fmt.Sprintf("%d entries", m.engine.Store().Snapshot().Size())))
	b.WriteString("\n")

	if m.saveErr != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Save failed: " + m.saveErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString(dividerStyle.Render(strings.Repeat("─", min(max(m.width-4, 10), 60))))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k: move • enter: select • hotkey: cycle mode"))
	return b.String()
}
