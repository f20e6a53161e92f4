//go:build !windows

package termini

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestRunEndsWhenRealChildExits(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no sh in PATH")
	}
	e := newFakeEngine(1, 1)
	s, err := NewSession(newFakeBackend(20, 4), e, Options{})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.Start(exec.Command(sh, "-c", "echo hi")); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	start := time.Now()
	err = runWithTimeout(t, s, ctx)
	if !errors.Is(err, ErrChildExited) {
		t.Fatalf("Run = %v, want ErrChildExited", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Run took %s after the child exited", elapsed)
	}
	if !strings.Contains(e.written.String(), "hi") {
		t.Errorf("engine got %q, want the child's output", e.written.String())
	}
}
