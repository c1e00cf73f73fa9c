// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpio

import (
	"fmt"

	"github.com/go-radio/k5hal/internal/critical"
)

// SharedPin wraps a fully typed pin with the rule that every access (read,
// write, temporary mode change) happens inside a critical section, and
// permits cloning. It exists for pins physically multiplexed between a
// peripheral and software bit-banging, where more than one piece of code
// legitimately needs to touch the same physical pin.
type SharedPin[P PortTag, N PinIndexTag, M ModeTag] struct {
	port, idx uint8
}

// NewSharedPin wraps a fully typed pin for sharing.
func NewSharedPin[P PortTag, N PinIndexTag, M ModeTag](Pin[P, N, M]) *SharedPin[P, N, M] {
	return &SharedPin[P, N, M]{port: portOf[P](), idx: indexOf[N]()}
}

// Clone returns an independent handle to the same physical pin. Because
// SharedPin carries no mutable state of its own — only the critical
// section and the shared register file are mutated — cloning is always
// safe, and nested WithMode calls across clones compose correctly.
func (s *SharedPin[P, N, M]) Clone() *SharedPin[P, N, M] {
	return &SharedPin[P, N, M]{port: s.port, idx: s.idx}
}

func (s *SharedPin[P, N, M]) String() string {
	var m M
	return fmt.Sprintf("P%s%d<%s> (shared)", portNameByID(s.port), s.idx, m.String())
}

// Read returns the pin's current level, inside a critical section.
func (s *SharedPin[P, N, M]) Read() Level {
	t := critical.Enter()
	defer critical.Exit(t)
	return Level(ports[s.port].level&(uint16(1)<<s.idx) != 0)
}

// Write sets the pin's output-data bit, inside a critical section.
func (s *SharedPin[P, N, M]) Write(level Level) {
	t := critical.Enter()
	defer critical.Exit(t)
	setBit(&ports[s.port].outputData, uint16(1)<<s.idx, bool(level))
	setBit(&ports[s.port].level, uint16(1)<<s.idx, bool(level))
}

// SharedWithMode temporarily transitions the shared pin's hardware mode
// from M to M2 for the duration of f, restoring M on every exit path
// (including a panic propagating out of f), all inside one critical
// section. Because the critical section is a reentrant depth counter
// (internal/critical), two SharedPin clones calling SharedWithMode in a
// nested fashion compose correctly rather than deadlocking.
func SharedWithMode[M2 ModeTag, P PortTag, N PinIndexTag, M ModeTag](s *SharedPin[P, N, M], f func()) {
	t := critical.Enter()
	defer critical.Exit(t)
	from, to := modeBitsOf[M](), modeBitsOf[M2]()
	transitionLocked(s.port, s.idx, from, to, isUnspecified[M]())
	defer transitionLocked(s.port, s.idx, to, from, false)
	f()
}

// transitionLocked performs the six-field transition without itself
// entering a critical section; callers must already hold one. Factored out
// of transitionRaw so SharedWithMode's whole before/during/after sequence
// runs under a single Enter/Exit pair instead of three nested ones.
func transitionLocked(port, idx uint8, from, to bits, full bool) {
	r := &ports[port]
	mask := uint16(1) << idx
	if full || from.inputEnable != to.inputEnable {
		setBit(&r.inputEnable, mask, to.inputEnable)
	}
	if full || from.pullDown != to.pullDown {
		setBit(&r.pullDown, mask, to.pullDown)
	}
	if full || from.pullUp != to.pullUp {
		setBit(&r.pullUp, mask, to.pullUp)
	}
	if full || from.openDrain != to.openDrain {
		setBit(&r.openDrain, mask, to.openDrain)
	}
	if full || from.function != to.function {
		r.function[idx] = to.function
	}
	if full || from.direction != to.direction {
		setBit(&r.direction, mask, to.direction == DirOut)
	}
}
