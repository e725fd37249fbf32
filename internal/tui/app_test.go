package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/reading"
	"github.com/f3rmion/furi/internal/settings"
	"github.com/f3rmion/furi/internal/tui/views"
)

func testEngine() *furigana.Engine {
	dict := reading.New(map[rune][]string{'駅': {"えき"}, '校': {"こう"}, '庭': {"てい"}})
	return furigana.NewEngine(reading.NewStore(dict), nil, nil)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	model, cmd := m.Update(msg)
	app, ok := model.(AppModel)
	if !ok {
		t.Fatalf("Update returned %T", model)
	}
	return app, cmd
}

func TestHotkeyBinding(t *testing.T) {
	tests := []struct {
		hotkey string
		msg    tea.KeyMsg
		want   bool
	}{
		{"ctrl+shift+f", tea.KeyMsg{Type: tea.KeyCtrlF}, true},
		{"Ctrl+Shift+F", tea.KeyMsg{Type: tea.KeyCtrlF}, true},
		{"", tea.KeyMsg{Type: tea.KeyCtrlF}, true},
		{"ctrl+t", tea.KeyMsg{Type: tea.KeyCtrlT}, true},
		{"ctrl+t", tea.KeyMsg{Type: tea.KeyCtrlF}, false},
		{"f2", tea.KeyMsg{Type: tea.KeyF2}, true},
	}
	for _, tt := range tests {
		if got := key.Matches(tt.msg, HotkeyBinding(tt.hotkey)); got != tt.want {
			t.Errorf("HotkeyBinding(%q) matches %q = %v, want %v", tt.hotkey, tt.msg, got, tt.want)
		}
	}
}

func TestAppCyclesModeAndSaves(t *testing.T) {
	store := settings.NewStore(t.TempDir(), nil)
	app := NewApp(testEngine(), store, settings.Default(), nil)

	app, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyCtrlF})
	if got := app.Settings().Mode; got != settings.ModeAuto {
		t.Fatalf("mode after toggle = %q, want auto", got)
	}
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	msg := cmd()
	saved, ok := msg.(settingsSavedMsg)
	if !ok || saved.err != nil {
		t.Fatalf("save result = %#v", msg)
	}
	app, _ = update(t, app, msg)

	st, err := store.Read()
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode != settings.ModeAuto {
		t.Errorf("stored mode = %q, want auto", st.Mode)
	}

	app, _ = update(t, app, views.ModeSelectedMsg{Mode: settings.ModeOff})
	if got := app.Settings().Mode; got != settings.ModeOff {
		t.Errorf("mode after selection = %q, want off", got)
	}
}

func TestAppWithoutStoreDoesNotSave(t *testing.T) {
	app := NewApp(testEngine(), nil, settings.Default(), nil)
	app, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyCtrlF})
	if cmd != nil {
		t.Error("expected no command without a store")
	}
	if app.Settings().Mode != settings.ModeAuto {
		t.Errorf("mode = %q", app.Settings().Mode)
	}
}

func TestAppTypingOwnsPlainKeys(t *testing.T) {
	app := NewApp(testEngine(), nil, settings.Default(), nil)

	app, _ = update(t, app, runes("2"))
	app, _ = update(t, app, runes("q"))
	if app.CurrentView() != ViewPreview {
		t.Fatalf("view = %d, want preview", app.CurrentView())
	}
	if got := app.previewView.Markup(); got != "2q" {
		t.Errorf("preview input = %q, want %q", got, "2q")
	}

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyTab})
	app, _ = update(t, app, runes("2"))
	if app.CurrentView() != ViewSegment {
		t.Errorf("view = %d, want segment", app.CurrentView())
	}
}

func TestAppSidebarNavigation(t *testing.T) {
	app := NewApp(testEngine(), nil, settings.Default(), nil)

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyTab})
	app, _ = update(t, app, runes("j"))
	app, _ = update(t, app, runes("j"))
	app, _ = update(t, app, runes("j"))
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.CurrentView() != ViewSettings {
		t.Fatalf("view = %d, want settings", app.CurrentView())
	}

	app, _ = update(t, app, runes("?"))
	if !app.showHelp {
		t.Fatal("help should be shown")
	}
	app, _ = update(t, app, runes("x"))
	if app.showHelp {
		t.Fatal("any key should close help")
	}

	_, cmd := update(t, app, runes("q"))
	if cmd == nil {
		t.Fatal("q outside a text input should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not produce a quit message")
	}
}

func TestAppView(t *testing.T) {
	app := NewApp(testEngine(), nil, settings.Default(), nil)
	if got := app.View(); got != "Loading..." {
		t.Errorf("View before size = %q", got)
	}
	app, _ = update(t, app, tea.WindowSizeMsg{Width: 100, Height: 40})
	out := app.View()
	for _, want := range []string{"Preview", "Segment", "Open File", settings.ModeBracket.Status()} {
		if !strings.Contains(out, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(path, []byte("駅(えき)\n\n`駅(えき)`\n"), 0644); err != nil {
		t.Fatal(err)
	}

	app := NewApp(testEngine(), nil, settings.Default(), nil)
	app, cmd := update(t, app, views.FileSelectedMsg{Path: path})
	if cmd == nil {
		t.Fatal("expected a load command")
	}
	msg, ok := cmd().(DocumentLoadedMsg)
	if !ok {
		t.Fatal("expected DocumentLoadedMsg")
	}
	if msg.Err != nil {
		t.Fatalf("load error: %v", msg.Err)
	}
	if !strings.Contains(msg.Content, "<ruby>駅") || !strings.Contains(msg.Content, "`駅(えき)`") {
		t.Errorf("content = %q", msg.Content)
	}

	app, _ = update(t, app, msg)
	if app.CurrentView() != ViewPreview {
		t.Errorf("view after load = %d, want preview", app.CurrentView())
	}

	missing, _ := app.loadDocument(filepath.Join(dir, "missing.html"))().(DocumentLoadedMsg)
	if missing.Err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestAppForwardsDirectoryListing(t *testing.T) {
	app := NewApp(testEngine(), nil, settings.Default(), nil)
	listing := app.filePickerView.Init()()

	app, _ = update(t, app, listing)
	if app.CurrentView() != ViewPreview {
		t.Fatalf("view = %d, want preview", app.CurrentView())
	}
	if app.filePickerView.Highlighted() == "" {
		t.Error("listing received on another view was dropped")
	}
}
