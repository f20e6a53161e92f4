package termini

import (
	"slices"
	"testing"
)

func TestCapabilitiesEnv(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		depth Depth
		id    string
		want  []string
		not   []string
	}{
		{"xterm truecolor", ModeXterm, Depth24, "abc", []string{"TERM=xterm", "COLORTERM=truecolor", "TERMINI_SESSION=abc"}, nil},
		{"vt220 mono", ModeVT220, Depth1, "", []string{"TERM=vt220", "COLUMNS=100", "LINES=30"}, []string{"COLORTERM=truecolor"}},
		{"xterm-r5", ModeXtermR5, Depth8, "", []string{"TERM=xterm-r5"}, []string{"COLORTERM=truecolor"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := NewTerminalCapabilities(tt.mode, tt.depth)
			caps.SessionID = tt.id
			caps.SetSize(100, 30)
			env := caps.Env()
			for _, w := range tt.want {
				if !slices.Contains(env, w) {
					t.Errorf("env %v missing %s", env, w)
				}
			}
			for _, n := range tt.not {
				if slices.Contains(env, n) {
					t.Errorf("env %v has %s", env, n)
				}
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, name := range []string{"xterm", "vt220", "xterm-r5"} {
		m, err := ParseMode(name)
		if err != nil || m.TermType() != name {
			t.Errorf("ParseMode(%q) = %s, %v", name, m, err)
		}
	}
	if _, err := ParseMode("vt52"); err == nil {
		t.Errorf("ParseMode accepted vt52")
	}
}

func TestGridSize(t *testing.T) {
	tests := []struct {
		name               string
		w, h, cw, ch       int
		wantRows, wantCols int
	}{
		{"exact", 800, 480, 8, 16, 30, 100},
		{"floor", 805, 490, 8, 16, 30, 100},
		{"smaller than a cell", 3, 5, 8, 16, 1, 1},
		{"zero", 0, 0, 8, 16, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, cols := GridSize(tt.w, tt.h, tt.cw, tt.ch)
			if rows != tt.wantRows || cols != tt.wantCols {
				t.Errorf("GridSize = %dx%d, want %dx%d", rows, cols, tt.wantRows, tt.wantCols)
			}
		})
	}
}
