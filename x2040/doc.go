// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package x2040 controls the Pertelian X2040, a 4x20 character LCD with an
// HD44780 compatible controller sitting behind a USB serial bridge.
//
// The bridge is write-only and has no flow control. Every byte written to
// it must be followed by a pause long enough for the controller to finish
// processing it, so the driver sends one byte at a time and sleeps after
// each one. Character data uses a short pause, instructions a longer one.
//
// Instructions are sent as the escape byte 0xFE followed by the HD44780
// instruction code. The firmware reuses the codes 0x02 and 0x03 to switch the
// backlight, so the controller's "return home" instruction is not available;
// Home() positions the cursor explicitly instead.
//
// Custom characters are loaded into eight CGRAM slots, numbered 1 to 8 by
// this package. Glyphs can be decoded from text rows ('#' or '*' is a lit
// pixel) and read from .chr files with package chrfile. Loaded glyphs are
// kept by name in an in-memory registry.
//
// # Line settings
//
// 9600 baud, 8 data bits, no parity, 1 stop bit.
package x2040
