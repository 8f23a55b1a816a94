//go:build windows

package mcp

import (
	"os"
	"os/signal"
)

// notifySignals registers Ctrl+C as the stop signal; Windows has no SIGTERM.
func notifySignals(ch chan<- os.Signal) {
	signal.Notify(ch, os.Interrupt)
}
