package trigger

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// Handler evaluates a message. *Dispatcher implements it.
type Handler interface {
	Handle(ctx context.Context, msg Message) Reply
}

// DefaultPrompt is shown before each line when reading from a terminal.
const DefaultPrompt = "> "

// LineOption configures a LineSource.
type LineOption func(*LineSource)

// WithPrompt sets the prompt written before each line. Empty disables it.
func WithPrompt(prompt string) LineOption {
	return func(s *LineSource) {
		s.prompt = prompt
	}
}

// WithAuthor sets the author attached to every message.
func WithAuthor(author string) LineOption {
	return func(s *LineSource) {
		s.author = author
	}
}

// WithLineLogger sets the logger.
func WithLineLogger(logger *slog.Logger) LineOption {
	return func(s *LineSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// LineSource reads one message per line and writes replies.
type LineSource struct {
	in      io.Reader
	out     io.Writer
	handler Handler
	prompt  string
	author  string
	logger  *slog.Logger
}

// NewLineSource creates a source reading from in and replying to out.
func NewLineSource(in io.Reader, out io.Writer, h Handler, opts ...LineOption) *LineSource {
	s := &LineSource{
		in:      in,
		out:     out,
		handler: h,
		author:  "stdin",
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TerminalPrompt returns DefaultPrompt if f is a terminal, else "".
func TerminalPrompt(f *os.File) string {
	if f != nil && term.IsTerminal(int(f.Fd())) {
		return DefaultPrompt
	}
	return ""
}

// Run reads lines until EOF or until ctx is done. Blank lines are
// skipped. It returns nil at EOF.
func (s *LineSource) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		s.showPrompt()
		select {
		case <-ctx.Done():
			return nil
		case line, open := <-lines:
			if !open {
				select {
				case err := <-errc:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			reply := s.handler.Handle(ctx, Message{Text: line, Author: s.author, Source: "stdin"})
			s.writeReply(reply)
		}
	}
}

func (s *LineSource) showPrompt() {
	if s.prompt != "" {
		fmt.Fprint(s.out, s.prompt)
	}
}

func (s *LineSource) writeReply(r Reply) {
	var text string
	switch r.Kind {
	case ReplyNone:
		return
	case ReplyOK:
		text = r.Text
		if r.Action != "" {
			text = fmt.Sprintf("✅ %s (%s)", r.Action, r.RunID)
		}
	case ReplyFailed:
		text = "error: " + r.Text
	}
	if _, err := fmt.Fprintln(s.out, text); err != nil {
		s.logger.Warn("failed to write reply", "error", err)
	}
}
