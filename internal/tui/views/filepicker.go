package views

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/furi/internal/document"
	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/kana"
	"github.com/f3rmion/furi/internal/textenc"
)

// FileSelectedMsg is sent when a document is chosen.
type FileSelectedMsg struct {
	Path string
}

// DocumentExtensions are the files the picker lets you open.
var DocumentExtensions = []string{".html", ".htm", ".md", ".markdown", ".txt", ".apkg"}

// inspectLimit caps how much of a file is scanned for the info pane.
const inspectLimit = 64 << 10

// docInfo summarizes what opening a file would annotate.
type docInfo struct {
	modTime   time.Time
	size      int64
	kind      string
	encoding  textenc.Encoding
	brackets  int
	kanji     int
	truncated bool
	err       error
}

// FilePickerModel lists documents and previews their furigana content.
type FilePickerModel struct {
	engine *furigana.Engine
	picker filepicker.Model

	highlighted string
	info        map[string]docInfo
	notice      string

	width  int
	height int
}

// NewFilePickerModel creates a picker rooted at startDir, falling back to the
// working directory and then the home directory. Call Init to list it.
func NewFilePickerModel(engine *furigana.Engine, startDir string) FilePickerModel {
	if startDir == "" {
		startDir, _ = os.Getwd()
	}
	if startDir == "" {
		startDir, _ = os.UserHomeDir()
	}
	if startDir == "" {
		startDir = "/"
	}

	fp := filepicker.New()
	fp.CurrentDirectory = startDir
	fp.AllowedTypes = DocumentExtensions
	fp.AutoHeight = false
	fp.Height = 10
	fp.ShowPermissions = false
	fp.Styles.Cursor = fp.Styles.Cursor.Foreground(lipgloss.Color("#ffe66d"))
	fp.Styles.Selected = selectedStyle
	fp.Styles.Directory = subtitleStyle.Bold(true)
	fp.Styles.File = valueStyle

	return FilePickerModel{
		engine: engine,
		picker: fp,
		info:   make(map[string]docInfo),
	}
}

// Init lists the start directory.
func (m FilePickerModel) Init() tea.Cmd {
	return m.picker.Init()
}

// SetSize sets the view dimensions.
func (m *FilePickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.picker.Height = max(height-14, 3)
}

// Dir returns the directory being listed.
func (m FilePickerModel) Dir() string {
	return m.picker.CurrentDirectory
}

// Highlighted returns the path under the cursor, or "" before the listing
// has arrived.
func (m FilePickerModel) Highlighted() string {
	return m.highlighted
}

// Update handles navigation and selection.
func (m FilePickerModel) Update(msg tea.Msg) (FilePickerModel, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		m.notice = ""
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if m.picker.HighlightedPath() != m.highlighted {
		m.highlighted = m.picker.HighlightedPath()
		m.refreshInfo()
	}

	if ok, path := m.picker.DidSelectFile(msg); ok {
		return m, func() tea.Msg {
			return FileSelectedMsg{Path: path}
		}
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.notice = fmt.Sprintf("%s is not a document (%s)", filepath.Base(path), strings.Join(DocumentExtensions, " "))
	}
	return m, cmd
}

// refreshInfo scans the highlighted file unless a scan of the same
// revision is cached.
func (m *FilePickerModel) refreshInfo() {
	path := m.highlighted
	if path == "" || !isDocument(path) {
		return
	}
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		return
	}
	if cached, ok := m.info[path]; ok && cached.modTime.Equal(st.ModTime()) && cached.size == st.Size() {
		return
	}
	info := inspect(m.engine, path)
	info.modTime, info.size = st.ModTime(), st.Size()
	m.info[path] = info
}

func isDocument(path string) bool {
	return slices.Contains(DocumentExtensions, strings.ToLower(filepath.Ext(path)))
}

// inspect reads the head of a document and counts what would be annotated.
func inspect(engine *furigana.Engine, path string) docInfo {
	if strings.EqualFold(filepath.Ext(path), ".apkg") {
		return docInfo{kind: "anki deck"}
	}
	info := docInfo{kind: string(document.Detect(path))}

	f, err := os.Open(path)
	if err != nil {
		info.err = err
		return info
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, inspectLimit+1))
	if err != nil {
		info.err = err
		return info
	}
	if len(data) > inspectLimit {
		data, info.truncated = data[:inspectLimit], true
	}

	text, enc, err := textenc.Decode(data, textenc.Auto)
	if err != nil {
		info.err = err
		return info
	}
	info.encoding = enc
	info.brackets = len(engine.Matcher().FindAll(text))
	for _, r := range text {
		if kana.IsKanji(r) {
			info.kanji++
		}
	}
	return info
}

// View renders the listing and the info pane for the highlighted entry.
func (m FilePickerModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Open Document"))
	b.WriteString("\n")
	b.WriteString(pathStyle.Render(m.picker.CurrentDirectory))
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(m.infoView()))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("j/k: move • l/enter: open • h/backspace: up • g/G: top/bottom"))
	return b.String()
}

func (m FilePickerModel) infoView() string {
	path := m.highlighted
	if path == "" {
		return helpStyle.Render("Loading...")
	}
	if !isDocument(path) {
		if st, err := os.Stat(path); err == nil && st.IsDir() {
			return labelStyle.Render("directory") + valueStyle.Render(filepath.Base(path))
		}
		return helpStyle.Render("not a document")
	}

	info, ok := m.info[path]
	if !ok {
		return helpStyle.Render("not scanned")
	}
	if info.err != nil {
		return errorStyle.Render(info.err.Error())
	}

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
	}
	var b strings.Builder
	b.WriteString(row("format", info.kind))
	if info.kind != "anki deck" {
		b.WriteString(row("encoding", string(info.encoding)))
		scanned := ""
		if info.truncated {
			scanned = " (first 64 KiB)"
		}
		b.WriteString(row("brackets", plural(info.brackets, "pattern")+scanned))
		b.WriteString(row("kanji", fmt.Sprint(info.kanji)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
