//go:build linux

// Package keyboard reads single keypresses from the controlling terminal
// and emits them on a channel, for operator control of advertising and
// the receive gate. The terminal is put in cbreak mode (canonical input
// and echo off) and restored on Stop.
package keyboard

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Listener emits one byte per keypress.
type Listener struct {
	ch   chan byte
	done chan struct{}
	once sync.Once

	fd  int
	old *unix.Termios
}

// NewListener creates a Listener reading from stdin.
func NewListener() *Listener {
	return &Listener{
		ch:   make(chan byte, 16),
		done: make(chan struct{}),
		fd:   int(os.Stdin.Fd()),
	}
}

// Events returns the channel that receives keypresses.
func (l *Listener) Events() <-chan byte {
	return l.ch
}

// Start switches the terminal to cbreak mode and begins reading keys in a
// background goroutine. It fails if stdin is not a terminal; the caller
// may continue headless in that case.
func (l *Listener) Start() error {
	old, err := unix.IoctlGetTermios(l.fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("keyboard: get termios: %w", err)
	}

	raw := *old
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(l.fd, unix.TCSETS, &raw); err != nil {
		return fmt.Errorf("keyboard: set cbreak mode: %w", err)
	}
	l.old = old

	go l.readLoop()
	return nil
}

func (l *Listener) readLoop() {
	var buf [1]byte
	for {
		n, err := os.Stdin.Read(buf[:])
		if err != nil {
			close(l.ch)
			return
		}
		if n == 0 {
			continue
		}
		select {
		case l.ch <- buf[0]:
		case <-l.done:
			return
		default:
			// Operator keys are not worth blocking the reader for.
		}
	}
}

// Stop restores the terminal mode. Safe to call multiple times. The read
// goroutine exits on the next keypress or stdin close; it never touches
// the restored terminal state.
func (l *Listener) Stop() {
	l.once.Do(func() {
		close(l.done)
		if l.old != nil {
			_ = unix.IoctlSetTermios(l.fd, unix.TCSETS, l.old)
		}
	})
}
