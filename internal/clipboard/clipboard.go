// Package clipboard copies ruby markup to the system clipboard.
package clipboard

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnavailable is returned when no clipboard tool is installed.
var ErrUnavailable = errors.New("no clipboard tool available")

type tool struct {
	name string
	args []string
}

// candidates lists the clipboard tools for goos, most preferred first.
func candidates(goos string) []tool {
	switch goos {
	case "darwin":
		return []tool{{name: "pbcopy"}}
	case "windows":
		return []tool{{name: "cmd", args: []string{"/c", "clip"}}}
	default:
		return []tool{
			{name: "wl-copy"},
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
		}
	}
}

// pick returns the first candidate lookPath can find.
func pick(goos string, lookPath func(string) (string, error)) (tool, bool) {
	for _, t := range candidates(goos) {
		if _, err := lookPath(t.name); err == nil {
			return t, true
		}
	}
	return tool{}, false
}

// Write copies text to the system clipboard.
func Write(text string) error {
	t, ok := pick(runtime.GOOS, exec.LookPath)
	if !ok {
		return ErrUnavailable
	}
	cmd := exec.Command(t.name, t.args...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// Available reports whether Write can succeed on this system.
func Available() bool {
	_, ok := pick(runtime.GOOS, exec.LookPath)
	return ok
}
