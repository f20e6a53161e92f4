// Package bell plays the terminal bell as a short tone.
package bell

import (
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)

	defaultFrequency = 880.0
	defaultDuration  = 120 * time.Millisecond
	defaultVolume    = 0.25

	// minInterval collapses bell storms (a binary file sent to the
	// terminal) into one ring per interval.
	minInterval = 100 * time.Millisecond
)

// Player rings an audible bell through the system speaker.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	failed      bool
	last        time.Time
	now         func() time.Time
	logger      *log.Logger
}

// New creates a player. The audio device is opened on the first ring.
func New(logger *log.Logger) *Player {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Player{
		mixer:  &beep.Mixer{},
		now:    time.Now,
		logger: logger,
	}
}

// Initialize opens the audio device.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initLocked()
}

func (p *Player) initLocked() error {
	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Ring plays the bell tone. When no audio device is available the ring is
// logged instead.
func (p *Player) Ring() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.allowLocked() {
		return
	}
	if p.failed {
		p.logger.Info("bell")
		return
	}
	if err := p.initLocked(); err != nil {
		p.failed = true
		p.logger.Warn("audio unavailable, bell will be logged", "err", err)
		return
	}
	speaker.Lock()
	p.mixer.Add(newTone(defaultFrequency, defaultDuration, defaultVolume, sampleRate))
	speaker.Unlock()
}

// allowLocked applies the rate limit.
func (p *Player) allowLocked() bool {
	now := p.now()
	if !p.last.IsZero() && now.Sub(p.last) < minInterval {
		return false
	}
	p.last = now
	return true
}

// Close stops playback and releases the audio device.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}

// tone is a sine wave with a linear fade-out so it ends without a click.
type tone struct {
	freq     float64
	volume   float64
	phase    float64
	duration int
	position int
	rate     beep.SampleRate
}

func newTone(freq float64, duration time.Duration, volume float64, rate beep.SampleRate) beep.Streamer {
	return &tone{freq: freq, volume: volume, duration: rate.N(duration), rate: rate}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.position >= t.duration {
			return i, i > 0
		}
		env := 1 - float64(t.position)/float64(t.duration)
		val := t.volume * env * math.Sin(2*math.Pi*t.phase)
		samples[i][0] = val
		samples[i][1] = val

		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.position++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }
