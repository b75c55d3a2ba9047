package preflight

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// Prompter collects a secret from the operator. An empty answer is valid and
// means "skip". Interrupts surface as ErrInterrupted.
type Prompter interface {
	ReadSecret(ctx context.Context, label string) (string, error)
}

// TerminalPrompter reads masked input on a terminal and plain lines otherwise.
// After a non-empty answer it echoes the label with a redacted value.
// A cancelled prompt returns at once, but its reader goroutine stays blocked
// on in until the next line or EOF, so a long-lived host leaks one goroutine
// per interrupted prompt unless it closes in.
type TerminalPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewTerminalPrompter prompts on out and reads from in.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &TerminalPrompter{in: in, out: out}
}

func (p *TerminalPrompter) ReadSecret(ctx context.Context, label string) (string, error) {
	inFile, outFile, interactive := terminalFiles(p.in, p.out)
	if interactive {
		value, err := readMasked(ctx, inFile, outFile, label)
		if err != nil {
			return "", err
		}
		if value != "" {
			_, _ = fmt.Fprintf(p.out, "%s: %s\n", label, color.New(color.FgHiBlack).Sprint(Redact(value)))
		}
		return value, nil
	}

	value, err := readLine(ctx, p.in, p.out, label)
	if err != nil {
		return "", err
	}
	if value != "" {
		if _, err := fmt.Fprintf(p.out, "%s: %s\n", label, Redact(value)); err != nil {
			return "", err
		}
	}
	return value, nil
}

// Redact keeps the first and last four characters of value.
func Redact(value string) string {
	runes := []rune(value)
	head := runes[:min(4, len(runes))]
	tail := runes[max(0, len(runes)-4):]
	return string(head) + "..." + string(tail)
}

func terminalFiles(in io.Reader, out io.Writer) (*os.File, *os.File, bool) {
	inFile, inOK := in.(*os.File)
	outFile, outOK := out.(*os.File)
	if !inOK || !outOK {
		return nil, nil, false
	}
	return inFile, outFile, term.IsTerminal(int(inFile.Fd())) && term.IsTerminal(int(outFile.Fd()))
}

type promptAnswer struct {
	value string
	err   error
}

func readMasked(ctx context.Context, in, out *os.File, label string) (string, error) {
	fd := int(in.Fd())
	state, stateErr := term.GetState(fd)

	prompt := promptui.Prompt{
		Label:       label,
		Mask:        '*',
		HideEntered: true,
		Stdin:       in,
		Stdout:      out,
		Templates: &promptui.PromptTemplates{
			Prompt:  "{{ . }}: ",
			Valid:   "{{ . }}: ",
			Invalid: "{{ . }}: ",
			Success: "{{ . }}: ",
		},
	}

	answers := make(chan promptAnswer, 1)
	go func() {
		value, err := prompt.Run()
		answers <- promptAnswer{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		if stateErr == nil {
			_ = term.Restore(fd, state)
		}
		_, _ = fmt.Fprintln(out)
		return "", fmt.Errorf("%w: %v", ErrInterrupted, ctx.Err())
	case answer := <-answers:
		if answer.err != nil {
			if errors.Is(answer.err, promptui.ErrInterrupt) || errors.Is(answer.err, promptui.ErrEOF) {
				return "", fmt.Errorf("%w: %v", ErrInterrupted, answer.err)
			}
			return "", fmt.Errorf("read %s: %w", label, answer.err)
		}
		return strings.TrimSpace(answer.value), nil
	}
}

func readLine(ctx context.Context, in io.Reader, out io.Writer, label string) (string, error) {
	if _, err := fmt.Fprintf(out, "%s: ", label); err != nil {
		return "", err
	}

	answers := make(chan promptAnswer, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		answers <- promptAnswer{value: line, err: err}
	}()

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(out)
		return "", fmt.Errorf("%w: %v", ErrInterrupted, ctx.Err())
	case answer := <-answers:
		if answer.err != nil {
			if errors.Is(answer.err, io.EOF) {
				return "", fmt.Errorf("%w: %v", ErrInterrupted, answer.err)
			}
			return "", fmt.Errorf("read %s: %w", label, answer.err)
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return "", err
		}
		return strings.TrimSpace(answer.value), nil
	}
}
