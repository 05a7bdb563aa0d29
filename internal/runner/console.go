package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/petasbytes/go-chatbot/internal/conversation"
)

// IsExit reports whether input is the exit sentinel.
func (r *Runner) IsExit(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), r.exit)
}

// Run reads user lines from in and writes assistant text to out until the exit sentinel,
// end of input, or ctx is done. Blank lines are ignored. A model failure ends the loop
// and is returned.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		s := bufio.NewScanner(in)
		for s.Scan() {
			select {
			case lines <- s.Text():
			case <-done:
				return
			}
		}
		scanErr <- s.Err()
	}()

	fmt.Fprintf(out, "ChatBot initialized. Type '%s' to exit.\n", r.exit)
	for {
		fmt.Fprint(out, "\u001b[94mYou\u001b[0m: ")
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(out)
			select {
			case err := <-scanErr:
				return err
			default:
				return nil
			}
		}
		if r.IsExit(line) {
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		turns, err := r.Respond(ctx, line)
		for _, t := range turns {
			if t.Role != conversation.RoleAssistant {
				continue
			}
			if text := t.PlainText(); text != "" {
				fmt.Fprintf(out, "\u001b[93mAssistant\u001b[0m: %s\n", text)
			}
		}
		if err != nil {
			return err
		}
	}
}
