// Package terminal is the interactive command-line surface: masked credential prompt,
// inline transcript editing and ranked result printing.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/kailas-cloud/voicenote/internal/domain"
)

// Choice is the user's decision about a transcribed draft.
type Choice int

const (
	// ChoiceSave stores the draft.
	ChoiceSave Choice = iota
	// ChoiceEdit replaces the draft text.
	ChoiceEdit
	// ChoiceDiscard drops the draft.
	ChoiceDiscard
)

// Console reads from in and writes to out. When in is a terminal, secrets are read
// without echo.
type Console struct {
	in    *bufio.Reader
	out   io.Writer
	fd    int
	isTTY bool
}

// NewConsole binds to the process stdin and stdout.
func NewConsole() *Console {
	fd := int(os.Stdin.Fd())
	return &Console{
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stdout,
		fd:    fd,
		isTTY: term.IsTerminal(fd),
	}
}

// New creates a non-interactive console over arbitrary streams.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out, fd: -1}
}

// PromptCredential asks for the provider key. Input is masked on a terminal; piped
// input is read a line at a time.
func (c *Console) PromptCredential(ctx context.Context, varName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(c.out, "  %s is not set. Enter your API key: ", varName)

	if c.isTTY {
		b, err := term.ReadPassword(c.fd)
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := c.readLine()
	fmt.Fprintln(c.out)
	return line, err
}

// Status prints an inline status message.
func (c *Console) Status(msg string) {
	fmt.Fprintf(c.out, "  %s\n", msg)
}

// ReviewDraft shows the transcript and asks what to do with it.
func (c *Console) ReviewDraft(text string) (Choice, error) {
	fmt.Fprintf(c.out, "\n%s\n\n", indent(text))
	for {
		fmt.Fprint(c.out, "  [s]ave, [e]dit or [d]iscard? ")
		line, err := c.readLine()
		if err != nil {
			return ChoiceDiscard, err
		}
		switch strings.ToLower(line) {
		case "s", "save", "y", "yes", "":
			return ChoiceSave, nil
		case "e", "edit":
			return ChoiceEdit, nil
		case "d", "discard", "n", "no":
			return ChoiceDiscard, nil
		}
	}
}

// EditText reads replacement text for the draft. An empty line keeps current.
func (c *Console) EditText(current string) (string, error) {
	fmt.Fprint(c.out, "  New text (empty keeps current): ")
	line, err := c.readLine()
	if err != nil {
		return current, err
	}
	if line == "" {
		return current, nil
	}
	return line, nil
}

// PrintResults writes notes in the order given. Scores are shown when present.
func (c *Console) PrintResults(notes []domain.SearchResult) {
	for i, n := range notes {
		fmt.Fprintf(c.out, "%2d. %s\n", i+1, n.Text)
		if n.Score != nil {
			fmt.Fprintf(c.out, "    score %s\n", strconv.FormatFloat(*n.Score, 'f', 4, 64))
		}
	}
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("no input received on stdin")
		}
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
