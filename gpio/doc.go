// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpio implements the chip's GPIO typestate and mode-transition
// engine.
//
// A Pin[P, N, M] is a capability token for one physical pin: P and N are
// compile-time markers for port and pin index, M is a compile-time marker
// for the pin's current mode. Binding a peripheral to a pin only
// type-checks when the pin's M already names the right alternate function,
// so a misconfigured pin is a compile error rather than a runtime surprise.
//
// Pins can be erased one axis at a time for code that needs to hold pins in
// a runtime-keyed table: ErasePin drops N to a runtime field (PartialPin),
// EraseFurther additionally drops P (ErasedPin). Restoring an erased pin
// checks the runtime port/index against the caller's requested type
// parameters and fails, returning the original erased token, on mismatch.
package gpio
