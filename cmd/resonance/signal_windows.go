//go:build windows

package main

import (
	"os"
	"os/signal"
)

// notifySignals registers Ctrl+C so long runs can be cancelled.
func notifySignals(ch chan<- os.Signal) {
	signal.Notify(ch, os.Interrupt)
}
