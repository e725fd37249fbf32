package views

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/furi/internal/clipboard"
	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/settings"
	"github.com/f3rmion/furi/internal/tui/components"
)

// PreviewModel converts typed text live and shows an opened document.
type PreviewModel struct {
	engine *furigana.Engine
	mode   settings.Mode

	input textinput.Model

	doc     viewport.Model
	docPath string
	docErr  error

	copied  bool
	copyErr error

	width  int
	height int
}

// NewPreviewModel creates a preview view.
func NewPreviewModel(engine *furigana.Engine, mode settings.Mode) PreviewModel {
	ti := textinput.New()
	ti.Placeholder = "漢字(かんじ)を入力..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6b6b"))
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffe66d"))

	return PreviewModel{
		engine: engine,
		mode:   mode,
		input:  ti,
		doc:    viewport.New(60, 10),
	}
}

// SetSize updates the view dimensions.
func (m *PreviewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-8, 10)
	m.doc.Width = max(width-4, 10)
	m.doc.Height = max(height-20, 5)
}

// SetMode changes the annotation mode used for the preview.
func (m *PreviewModel) SetMode(mode settings.Mode) {
	m.mode = mode
}

// SetDocument shows an annotated document below the input.
func (m *PreviewModel) SetDocument(path, content string, err error) {
	m.docPath = path
	m.docErr = err
	m.doc.SetContent(components.Wrap(content, m.doc.Width))
	m.doc.GotoTop()
}

// Typing reports whether key presses go to the text input.
func (m PreviewModel) Typing() bool {
	return m.input.Focused()
}

// Markup returns the converted form of the current input.
func (m PreviewModel) Markup() string {
	return m.engine.Convert(m.input.Value(), m.mode)
}

// Update handles messages.
func (m PreviewModel) Update(msg tea.Msg) (PreviewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+y":
			if m.input.Value() == "" {
				return m, nil
			}
			m.copyErr = clipboard.Write(m.Markup())
			m.copied = m.copyErr == nil
			return m, clearCopiedAfter(2 * time.Second)
		case "ctrl+l":
			m.SetDocument("", "", nil)
			return m, nil
		case "pgdown", "pgup", "ctrl+n", "ctrl+p":
			if m.docPath != "" {
				var cmd tea.Cmd
				m.doc, cmd = m.doc.Update(docKey(msg))
				return m, cmd
			}
		}

	case clearCopiedMsg:
		m.copied = false
		m.copyErr = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// docKey maps the line keys onto the viewport's own bindings.
func docKey(msg tea.KeyMsg) tea.KeyMsg {
	switch msg.String() {
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return msg
}

// View renders the preview.
func (m PreviewModel) View() string {
	var b strings.Builder

	header := titleStyle.Render("Preview") + "  " + modeStatus(m.mode)
	if m.copied {
		header += "  " + copiedStyle.Render("Copied!")
	} else if m.copyErr != nil {
		header += "  " + errorStyle.Render(m.copyErr.Error())
	}
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(boxStyle.Render(m.input.View()))
	b.WriteString("\n")

	width := max(m.width-8, 20)
	if text := m.input.Value(); text != "" {
		ruby := components.RubyLines(components.Chunks(m.engine, text, m.mode), width)
		b.WriteString(rubyBoxStyle.Render(ruby))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Markup:"))
		b.WriteString("\n")
		b.WriteString(valueStyle.Render(components.Wrap(m.Markup(), width)))
		b.WriteString("\n")
	}

	if m.docPath != "" {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render(m.docPath))
		b.WriteString("\n")
		if m.docErr != nil {
			b.WriteString(errorStyle.Render("Error: " + m.docErr.Error()))
		} else {
			b.WriteString(m.doc.View())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	help := "ctrl+y: copy markup"
	if m.docPath != "" {
		help += " • pgup/pgdn: scroll document • ctrl+l: close document"
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func modeStatus(mode settings.Mode) string {
	if mode == settings.ModeOff {
		return statusOffStyle.Render(mode.Status())
	}
	return statusOnStyle.Render(mode.Status())
}
