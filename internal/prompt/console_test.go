package prompt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestAskDestination_RepromptsUntilValid(t *testing.T) {
	valid := t.TempDir()
	missing := filepath.Join(valid, "missing")

	tests := []struct {
		name    string
		invalid int
	}{
		{"valid first", 0},
		{"one invalid", 1},
		{"three invalid", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var input strings.Builder
			for i := 0; i < tt.invalid; i++ {
				input.WriteString(missing + "\n")
			}
			input.WriteString("  " + valid + "  \n")
			var out bytes.Buffer

			c := NewConsole(strings.NewReader(input.String()), &out)
			got, err := c.AskDestination(context.Background(), "")
			if err != nil {
				t.Fatalf("AskDestination failed: %v", err)
			}
			if got != valid {
				t.Errorf("got %q, want %q", got, valid)
			}

			if n := strings.Count(out.String(), DestinationPrompt); n != tt.invalid+1 {
				t.Errorf("prompted %d times, want %d", n, tt.invalid+1)
			}
			if n := strings.Count(out.String(), DestinationMissing); n != tt.invalid {
				t.Errorf("missing message shown %d times, want %d", n, tt.invalid)
			}
		})
	}
}

func TestAskDestination_EmptyLineIsInvalid(t *testing.T) {
	valid := t.TempDir()
	var out bytes.Buffer

	c := NewConsole(strings.NewReader("\n"+valid+"\n"), &out)
	got, err := c.AskDestination(context.Background(), "")
	if err != nil {
		t.Fatalf("AskDestination failed: %v", err)
	}
	if got != valid {
		t.Errorf("got %q, want %q", got, valid)
	}
	if n := strings.Count(out.String(), DestinationPrompt); n != 2 {
		t.Errorf("prompted %d times, want 2", n)
	}
}

func TestAskDestination_InitialValue(t *testing.T) {
	valid := t.TempDir()
	var out bytes.Buffer

	c := NewConsole(strings.NewReader(""), &out)
	got, err := c.AskDestination(context.Background(), valid)
	if err != nil {
		t.Fatalf("AskDestination failed: %v", err)
	}
	if got != valid {
		t.Errorf("got %q, want %q", got, valid)
	}
	if strings.Contains(out.String(), DestinationPrompt) {
		t.Error("should not prompt when the initial value exists")
	}
}

func TestAskDestination_InvalidInitialFallsBackToPrompt(t *testing.T) {
	valid := t.TempDir()
	var out bytes.Buffer

	c := NewConsole(strings.NewReader(valid+"\n"), &out)
	got, err := c.AskDestination(context.Background(), filepath.Join(valid, "nope"))
	if err != nil {
		t.Fatalf("AskDestination failed: %v", err)
	}
	if got != valid {
		t.Errorf("got %q, want %q", got, valid)
	}
	if !strings.Contains(out.String(), DestinationMissing) {
		t.Error("missing message not shown for invalid initial value")
	}
}

func TestAskDestination_ClosedInputCancels(t *testing.T) {
	c := NewConsole(strings.NewReader("/does/not/exist\n"), io.Discard)

	_, err := c.AskDestination(context.Background(), "")
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestAskDestination_ContextCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConsole(pr, io.Discard)
	_, err := c.AskDestination(ctx, "")
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestShowGuide_WaitsForInput(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("whatever\n"), &out)

	if err := c.ShowGuide(context.Background()); err != nil {
		t.Fatalf("ShowGuide failed: %v", err)
	}

	for _, want := range []string{"USB debugging", "Authorize the computer", "WhatsApp is installed", guideContinue} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("guide output missing %q", want)
		}
	}
}

func TestShowGuide_AcceptsInputWithoutNewline(t *testing.T) {
	c := NewConsole(strings.NewReader("ok"), io.Discard)
	if err := c.ShowGuide(context.Background()); err != nil {
		t.Fatalf("ShowGuide failed: %v", err)
	}
}
