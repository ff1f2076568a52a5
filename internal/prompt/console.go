package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"waextract/internal/utils"
)

// ErrCancelled is returned when the operator interrupts a prompt or input
// is closed.
var ErrCancelled = errors.New("cancelled by operator")

const (
	DestinationPrompt  = "\nEnter the destination folder path: "
	DestinationMissing = "The folder does not exist. Create it first before continuing."
	guideContinue      = "Press ENTER when you have completed these steps..."
)

// Console runs the interactive parts of an extraction.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// ShowGuide prints the device setup steps and waits for any input line.
func (c *Console) ShowGuide(ctx context.Context) error {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, Title.Render("=== Setup guide ==="))
	fmt.Fprintln(c.out, Step.Render("1. Connect the phone to the computer via USB"))
	fmt.Fprintln(c.out, Step.Render("2. Enable USB debugging on the phone:"))
	fmt.Fprintln(c.out, Hint.Render("   - Go to Settings > About phone > Build number"))
	fmt.Fprintln(c.out, Hint.Render("   - Tap Build number 7 times to enable developer options"))
	fmt.Fprintln(c.out, Hint.Render("   - Go to Settings > Developer options"))
	fmt.Fprintln(c.out, Hint.Render("   - Turn on USB debugging"))
	fmt.Fprintln(c.out, Step.Render("3. Authorize the computer on the phone when asked"))
	fmt.Fprintln(c.out, Step.Render("4. Make sure WhatsApp is installed and configured"))
	fmt.Fprintln(c.out)
	fmt.Fprint(c.out, guideContinue)

	_, err := c.readLine(ctx)
	return err
}

// AskDestination keeps prompting until an existing path is entered. A
// non-empty initial value is checked first, without prompting.
func (c *Console) AskDestination(ctx context.Context, initial string) (string, error) {
	if initial = strings.TrimSpace(initial); initial != "" {
		if utils.PathExists(initial) {
			return initial, nil
		}
		fmt.Fprintln(c.out, DestinationMissing)
	}

	for {
		fmt.Fprint(c.out, DestinationPrompt)
		line, err := c.readLine(ctx)
		if err != nil {
			return "", err
		}

		dest := strings.TrimSpace(line)
		if utils.PathExists(dest) {
			return dest, nil
		}
		fmt.Fprintln(c.out, DestinationMissing)
	}
}

type readResult struct {
	line string
	err  error
}

// readLine blocks until a line arrives or ctx is done.
func (c *Console) readLine(ctx context.Context) (string, error) {
	ch := make(chan readResult, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		ch <- readResult{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrCancelled
	case r := <-ch:
		if r.err != nil {
			if errors.Is(r.err, io.EOF) && r.line != "" {
				return r.line, nil
			}
			if errors.Is(r.err, io.EOF) {
				return "", ErrCancelled
			}
			return "", r.err
		}
		return r.line, nil
	}
}
