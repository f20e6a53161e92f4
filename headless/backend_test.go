package headless_test

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/phroun/termini"
	"github.com/phroun/termini/headless"
	"github.com/phroun/termini/vt"
)

func newSession(t *testing.T, cols, rows int, opts termini.Options) (*termini.Session, *headless.Backend) {
	t.Helper()
	b := headless.New(cols, rows)
	s, err := termini.NewSession(b, vt.New(rows, cols), opts)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s.Repaint()
	return s, b
}

func TestDisjointRowsFlushOnce(t *testing.T) {
	s, b := newSession(t, 20, 6, termini.Options{})
	s.Feed([]byte("\x1b[?25l"))
	before := b.Image()
	b.ResetStats()

	s.Feed([]byte("\x1b[2;3Hab\x1b[5;10Hcd"))

	updates := b.Updates()
	if len(updates) != 1 || b.Flips() != 0 {
		t.Fatalf("updates = %v flips = %d, want exactly one update", updates, b.Flips())
	}
	cw, ch := b.CellSize()
	// rows 1..4, cols 2..10
	want := image.Rect(2*cw, 1*ch, 11*cw, 5*ch)
	if !updates[0].Eq(want) {
		t.Errorf("update = %v, want %v", updates[0], want)
	}

	after := b.Image()
	bounds := after.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if image.Pt(x, y).In(want) {
				continue
			}
			if after.RGBAAt(x, y) != before.RGBAAt(x, y) {
				t.Fatalf("pixel %d,%d outside the damage changed", x, y)
			}
		}
	}

	changed := false
	for y := 1 * ch; y < 2*ch && !changed; y++ {
		for x := 2 * cw; x < 4*cw; x++ {
			if after.RGBAAt(x, y) != before.RGBAAt(x, y) {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Errorf("text was not drawn")
	}
}

func TestFullRepaintFlips(t *testing.T) {
	_, b := newSession(t, 10, 4, termini.Options{})
	if b.Flips() != 1 {
		t.Errorf("flips after repaint = %d, want 1", b.Flips())
	}
}

func TestMonochromeRendering(t *testing.T) {
	tests := []struct {
		name    string
		reverse bool
		paper   [3]uint8
	}{
		{"normal", false, [3]uint8{0xFF, 0xFF, 0xFF}},
		{"reverse", true, [3]uint8{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, b := newSession(t, 10, 3, termini.Options{Depth: termini.Depth1, Reverse: tt.reverse})
			s.Feed([]byte("\x1b[?25l\x1b[31;42mX"))
			img := b.Image()
			seen := map[[3]uint8]bool{}
			for i := 0; i < len(img.Pix); i += 4 {
				seen[[3]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2]}] = true
			}
			for c := range seen {
				if c != [3]uint8{0, 0, 0} && c != [3]uint8{0xFF, 0xFF, 0xFF} {
					t.Fatalf("non-monochrome pixel %v", c)
				}
			}
			c := img.RGBAAt(img.Bounds().Max.X-1, img.Bounds().Max.Y-1)
			if [3]uint8{c.R, c.G, c.B} != tt.paper {
				t.Errorf("paper = %v, want %v", c, tt.paper)
			}
		})
	}
}

func TestBoxDrawingPixels(t *testing.T) {
	s, b := newSession(t, 4, 2, termini.Options{})
	s.Feed([]byte("\x1b[?25l─"))
	img := b.Image()
	cw, ch := b.CellSize()
	mid := (ch + 1) / 2
	for x := 0; x < cw; x++ {
		if c := img.RGBAAt(x, mid); c.R != 0 || c.G != 0 || c.B != 0 {
			t.Fatalf("pixel %d,%d = %v, want ink on the horizontal line", x, mid, c)
		}
	}
	if c := img.RGBAAt(0, 0); c.R != 0xFF {
		t.Errorf("pixel 0,0 = %v, want paper", c)
	}
}

func TestTitlePasteAndPNG(t *testing.T) {
	s, b := newSession(t, 10, 3, termini.Options{})
	s.Feed([]byte("\x1b]0;hello\x07"))
	if b.Title() != "hello" {
		t.Errorf("title = %q", b.Title())
	}

	b.SetClipboard("clip")
	b.RequestPaste()
	ev := <-b.Events()
	if ev.Type != termini.EventPaste || ev.Paste != "clip" {
		t.Errorf("paste event = %+v", ev)
	}

	var buf bytes.Buffer
	if err := b.WritePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := b.Size(); img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Errorf("png bounds %v, surface %dx%d", img.Bounds(), w, h)
	}
}

func TestResizeQueuesEvent(t *testing.T) {
	b := headless.New(10, 3)
	if err := b.Resize(100, 50); err != nil {
		t.Fatal(err)
	}
	if w, h := b.Size(); w != 100 || h != 50 {
		t.Errorf("Size = %dx%d", w, h)
	}
	ev := <-b.Events()
	if ev.Type != termini.EventResize || ev.Width != 100 || ev.Height != 50 {
		t.Errorf("event = %+v", ev)
	}
	b.Close()
	if _, ok := <-b.Events(); ok {
		t.Errorf("events not closed")
	}
}
