// Package console is the operator's terminal: questions in, answers out.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrClosed is returned when the input ends before an answer is read.
var ErrClosed = errors.New("console input closed")

// Console reads operator answers line by line.
type Console struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// New creates a console over the given streams.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Println writes a line to the operator.
func (c *Console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// Printf writes formatted text to the operator.
func (c *Console) Printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, a...)
}

// Ask prints the prompt and returns the trimmed answer.
func (c *Console) Ask(prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return "", ErrClosed
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. "да" and "y" mean yes.
func (c *Console) Confirm(prompt string) (bool, error) {
	answer, err := c.Ask(prompt)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "да", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
