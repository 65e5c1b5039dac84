package browser

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/config"
	"github.com/kapu/aion2-character-go/internal/dom"
)

func TestEmptySelectionNeverTouchesBrowser(t *testing.T) {
	ctx := context.Background()
	s := &selection{session: &Session{}}

	if s.Len() != 0 || s.At(0).Len() != 0 {
		t.Fatalf("expected empty selection")
	}
	if _, err := s.Text(ctx); !stderrors.Is(err, dom.ErrNoElement) {
		t.Fatalf("Text: expected ErrNoElement, got %v", err)
	}
	if _, _, err := s.Attr(ctx, "href"); !stderrors.Is(err, dom.ErrNoElement) {
		t.Fatalf("Attr: expected ErrNoElement, got %v", err)
	}
	if err := s.Click(ctx); !stderrors.Is(err, dom.ErrNoElement) {
		t.Fatalf("Click: expected ErrNoElement, got %v", err)
	}

	found, err := s.Find(ctx, ".anything")
	if err != nil || found.Len() != 0 {
		t.Fatalf("Find on empty selection = %v, %v", found, err)
	}
	filtered, err := s.HasText(ctx, "x")
	if err != nil || filtered.Len() != 0 {
		t.Fatalf("HasText on empty selection = %v, %v", filtered, err)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	s := &Session{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := s.Wait(ctx, time.Minute); !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("Wait ignored cancellation")
	}

	if err := s.Wait(context.Background(), 5*time.Millisecond); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestLaunchAbortsHungStartup(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	// Never prints a DevTools endpoint, like a Chrome stuck at startup.
	exe := filepath.Join(t.TempDir(), "hung-chrome")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\nexec sleep 30\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	l := NewLauncher(config.BrowserConfig{Headless: true, ExecPath: exe}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	session, err := l.Launch(ctx)
	if err == nil {
		_ = session.Close()
		t.Fatalf("expected startup to fail")
	}
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("Launch ignored ctx for %v", elapsed)
	}
}
