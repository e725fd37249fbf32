package clipboard

import (
	"errors"
	"slices"
	"testing"
)

func TestPick(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		installed []string
		want      string
		ok        bool
	}{
		{"darwin", "darwin", []string{"pbcopy"}, "pbcopy", true},
		{"windows", "windows", []string{"cmd"}, "cmd", true},
		{"wayland preferred", "linux", []string{"xclip", "wl-copy"}, "wl-copy", true},
		{"xclip before xsel", "linux", []string{"xsel", "xclip"}, "xclip", true},
		{"xsel fallback", "freebsd", []string{"xsel"}, "xsel", true},
		{"nothing installed", "linux", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookPath := func(name string) (string, error) {
				if slices.Contains(tt.installed, name) {
					return "/usr/bin/" + name, nil
				}
				return "", errors.New("not found")
			}
			got, ok := pick(tt.goos, lookPath)
			if ok != tt.ok || got.name != tt.want {
				t.Errorf("pick(%q) = %q, %v; want %q, %v", tt.goos, got.name, ok, tt.want, tt.ok)
			}
		})
	}
}
