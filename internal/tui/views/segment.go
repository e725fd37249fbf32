package views

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/furi/internal/clipboard"
	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/tui/bigchar"
	"github.com/f3rmion/furi/internal/tui/components"
	"github.com/mattn/go-runewidth"
)

var errQuery = errors.New("enter 漢字(かんじ) or 漢字 かんじ")

// SegmentModel shows how a reading is split across a run.
type SegmentModel struct {
	engine *furigana.Engine
	glyphs *bigchar.Renderer

	input textinput.Model

	seg      furigana.Segmentation
	err      error
	selected int

	copied  bool
	copyErr error

	width  int
	height int
}

// NewSegmentModel creates a segmentation view. glyphs may be nil.
func NewSegmentModel(engine *furigana.Engine, glyphs *bigchar.Renderer) SegmentModel {
	ti := textinput.New()
	ti.Placeholder = "校庭(こうてい)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6b6b"))
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffe66d"))

	return SegmentModel{engine: engine, glyphs: glyphs, input: ti}
}

// SetSize updates the view dimensions.
func (m *SegmentModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetGlyphs installs the renderer used for the enlarged character.
func (m *SegmentModel) SetGlyphs(glyphs *bigchar.Renderer) {
	m.glyphs = glyphs
}

// Typing reports whether key presses go to the text input.
func (m SegmentModel) Typing() bool {
	return m.input.Focused()
}

// Segmentation returns the last successful result.
func (m SegmentModel) Segmentation() furigana.Segmentation {
	return m.seg
}

// parseQuery accepts either the bracket form or a run and reading separated
// by whitespace.
func parseQuery(matcher *furigana.Matcher, s string) (run, reading string, err error) {
	s = strings.TrimSpace(s)
	if match, ok := matcher.Scanner(s).Next(); ok {
		return match.Run, match.Reading, nil
	}
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return "", "", errQuery
	}
	return fields[0], fields[1], nil
}

func (m *SegmentModel) analyze() {
	m.seg = nil
	m.selected = 0
	run, reading, err := parseQuery(m.engine.Matcher(), m.input.Value())
	if err != nil {
		m.err = err
		return
	}
	m.seg, m.err = m.engine.Segment(run, reading)
}

// Update handles messages.
func (m SegmentModel) Update(msg tea.Msg) (SegmentModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.input.Focused() {
			if msg.String() == "enter" {
				m.analyze()
				if m.err == nil {
					m.input.Blur()
				}
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "left", "h":
			if m.selected > 0 {
				m.selected--
			}
		case "right", "l":
			if m.selected < len(m.seg)-1 {
				m.selected++
			}
		case "i", "/", "enter":
			m.input.Focus()
			return m, textinput.Blink
		case "y":
			if len(m.seg) > 0 {
				m.copyErr = clipboard.Write(m.engine.Renderer().Render(m.seg))
				m.copied = m.copyErr == nil
				return m, clearCopiedAfter(2 * time.Second)
			}
		}
		return m, nil

	case clearCopiedMsg:
		m.copied = false
		m.copyErr = nil
	}
	return m, nil
}

// View renders the segmentation.
func (m SegmentModel) View() string {
	var b strings.Builder

	header := titleStyle.Render("Segment")
	if m.copied {
		header += "  " + copiedStyle.Render("Copied!")
	} else if m.copyErr != nil {
		header += "  " + errorStyle.Render(m.copyErr.Error())
	}
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(boxStyle.Render(m.input.View()))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	if len(m.seg) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderTabs())
		b.WriteString("\n")
		b.WriteString(m.renderTable())
		b.WriteString("\n")
		b.WriteString(m.renderSelected())
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Markup:"))
		b.WriteString("\n")
		b.WriteString(valueStyle.Render(components.Wrap(m.engine.Renderer().Render(m.seg), max(m.width-4, 20))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.input.Focused() {
		b.WriteString(helpStyle.Render("enter: segment"))
	} else {
		b.WriteString(helpStyle.Render("←/→: select character • y: copy markup • i: edit"))
	}
	return b.String()
}

func (m SegmentModel) renderTabs() string {
	tabs := make([]string, len(m.seg))
	for i, p := range m.seg {
		style := charTabStyle
		if i == m.selected {
			style = charTabActiveStyle
		}
		tabs[i] = style.Render(string(p.Char))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderTable lists each pair with the dictionary candidates of its
// character, columns aligned by display width.
func (m SegmentModel) renderTable() string {
	dict := m.engine.Store().Snapshot()

	readingWidth := runewidth.StringWidth("Reading")
	for _, p := range m.seg {
		readingWidth = max(readingWidth, runewidth.StringWidth(p.Reading))
	}

	var rows []string
	rows = append(rows, labelStyle.Render("Char")+" "+components.PadRight("Reading", readingWidth)+"  Candidates")
	for i, p := range m.seg {
		candidates := "-"
		if readings, ok := dict.Lookup(p.Char); ok && len(readings) > 0 {
			candidates = strings.Join(readings, ", ")
		} else if readings, ok := furigana.NumeralReadings(p.Char); ok {
			candidates = strings.Join(readings, ", ")
		}
		row := components.PadRight(string(p.Char), 12) + " " + components.PadRight(p.Reading, readingWidth) + "  " + candidates
		if i == m.selected {
			row = selectedStyle.Render(row)
		} else {
			row = valueStyle.Render(row)
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

func (m SegmentModel) renderSelected() string {
	if m.selected >= len(m.seg) {
		return ""
	}
	p := m.seg[m.selected]

	glyph := m.glyphs.Cached(p.Char, 30, 15)
	if glyph == "" {
		glyph = bigCharStyle.Render(string(p.Char))
	} else {
		glyph = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffe66d")).Render(glyph)
	}
	under := readingUnderStyle.Render(fmt.Sprintf("%s  (%d/%d)", p.Reading, m.selected+1, len(m.seg)))
	return lipgloss.JoinVertical(lipgloss.Center, glyph, under)
}
