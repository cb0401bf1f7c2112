package offline

import (
	"fmt"
	"io"
	"sync"

	"github.com/iudanet/tmasync/internal/client/connectivity"
)

// OfflineMessage текст индикатора офлайн-режима
const OfflineMessage = "📡 Offline - Changes will sync when connection returns"

// Indicator is a visible connectivity indicator
type Indicator interface {
	Show()
	Hide()
}

// TerminalIndicator prints connectivity changes to a terminal
type TerminalIndicator struct {
	out   io.Writer
	mu    sync.Mutex
	shown bool
}

// NewTerminalIndicator creates an indicator writing to out
func NewTerminalIndicator(out io.Writer) *TerminalIndicator {
	return &TerminalIndicator{out: out}
}

// Show prints the offline banner once
func (i *TerminalIndicator) Show() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.shown {
		return
	}
	i.shown = true
	_, _ = fmt.Fprintln(i.out, OfflineMessage)
}

// Hide announces that the connection is back
func (i *TerminalIndicator) Hide() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.shown {
		return
	}
	i.shown = false
	_, _ = fmt.Fprintln(i.out, "✓ Back online")
}

// SetupOfflineIndicators shows indicator while watcher reports offline.
// The initial state is applied immediately.
func SetupOfflineIndicators(watcher connectivity.Watcher, indicator Indicator) (stop func()) {
	unsubscribe := watcher.Subscribe(func(online bool) {
		if online {
			indicator.Hide()
		} else {
			indicator.Show()
		}
	})

	if !watcher.IsOnline() {
		indicator.Show()
	}

	return unsubscribe
}
