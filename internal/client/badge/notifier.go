package badge

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/term"
)

// Notifier kinds accepted by NewNotifier
const (
	NotifierFile     = "file"
	NotifierTerminal = "terminal"
	NotifierNone     = "none"
)

// Notifier displays the badge on the host.
// Counter calls Set only with count > 0 and Clear for 0.
type Notifier interface {
	// Supported reports whether the host can display a badge
	Supported() bool
	Set(count int64) error
	Clear() error
}

// NewNotifier selects a strategy by kind. file is the badge file path for "file",
// out is the terminal for "terminal".
func NewNotifier(kind, file string, out *os.File) (Notifier, error) {
	switch kind {
	case NotifierFile:
		if file == "" {
			return nil, errors.New("badge file path is required")
		}
		return NewFileNotifier(file), nil
	case NotifierTerminal:
		return NewTerminalNotifier(out, "tmasync"), nil
	case NotifierNone, "":
		return NopNotifier{}, nil
	default:
		return nil, fmt.Errorf("unknown badge notifier %q", kind)
	}
}

// FileNotifier writes the count to a file that status bars can read.
// Clearing removes the file so that "no badge" differs from "0".
type FileNotifier struct {
	path string
}

// NewFileNotifier creates a FileNotifier for path
func NewFileNotifier(path string) *FileNotifier {
	return &FileNotifier{path: path}
}

// Supported always returns true
func (n *FileNotifier) Supported() bool {
	return true
}

// Set atomically replaces the badge file
func (n *FileNotifier) Set(count int64) error {
	if err := os.MkdirAll(filepath.Dir(n.path), 0o755); err != nil {
		return fmt.Errorf("failed to create badge directory: %w", err)
	}

	tmp := n.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.FormatInt(count, 10)+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write badge file: %w", err)
	}
	if err := os.Rename(tmp, n.path); err != nil {
		return fmt.Errorf("failed to replace badge file: %w", err)
	}

	return nil
}

// Clear removes the badge file
func (n *FileNotifier) Clear() error {
	if err := os.Remove(n.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove badge file: %w", err)
	}
	return nil
}

// TerminalNotifier shows the count in the terminal window title
type TerminalNotifier struct {
	out   io.Writer
	title string
	tty   bool
}

// NewTerminalNotifier creates a TerminalNotifier; it is supported only when out is a TTY
func NewTerminalNotifier(out *os.File, title string) *TerminalNotifier {
	n := &TerminalNotifier{title: title}
	if out != nil {
		n.out = out
		n.tty = term.IsTerminal(int(out.Fd()))
	}
	return n
}

// Supported reports whether the output is a terminal
func (n *TerminalNotifier) Supported() bool {
	return n.tty
}

// Set writes an OSC title sequence with the count
func (n *TerminalNotifier) Set(count int64) error {
	return n.writeTitle(fmt.Sprintf("%s (%d)", n.title, count))
}

// Clear restores the plain title
func (n *TerminalNotifier) Clear() error {
	return n.writeTitle(n.title)
}

func (n *TerminalNotifier) writeTitle(title string) error {
	if _, err := fmt.Fprintf(n.out, "\x1b]0;%s\x07", title); err != nil {
		return fmt.Errorf("failed to write terminal title: %w", err)
	}
	return nil
}

// NopNotifier is used when the host has no badge display
type NopNotifier struct{}

// Supported always returns false
func (NopNotifier) Supported() bool { return false }

// Set does nothing
func (NopNotifier) Set(int64) error { return nil }

// Clear does nothing
func (NopNotifier) Clear() error { return nil }
