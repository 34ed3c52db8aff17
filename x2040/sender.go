// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package x2040

import (
	"fmt"
	"io"
	"time"
)

// sendInstruction sends the escape byte and code, pausing after both.
func (dev *Dev) sendInstruction(code byte) error {
	_, err := dev.send([]byte{dev.cfg.escape, code}, dev.cfg.instructionDelay)
	return err
}

// sendData sends character or bitmap bytes.
func (dev *Dev) sendData(p []byte) (int, error) {
	return dev.send(p, dev.cfg.writeDelay)
}

// send writes p one byte at a time and sleeps for delay after every byte.
// The controller has no input buffer, so bytes are never batched. It stops
// at the first failed write.
func (dev *Dev) send(p []byte, delay time.Duration) (int, error) {
	for n, b := range p {
		if err := dev.writeByte(b); err != nil {
			dev.log.Warn().Err(err).Int("sent", n).Int("len", len(p)).Msg("write failed")
			return n, fmt.Errorf("x2040: %w: %w", ErrTransport, err)
		}
		dev.sleep(delay)
	}
	return len(p), nil
}

func (dev *Dev) writeByte(b byte) error {
	buf := [1]byte{b}
	if dev.w == nil {
		return dev.c.Tx(buf[:], nil)
	}
	n, err := dev.w.Write(buf[:])
	if err == nil && n != 1 {
		err = io.ErrShortWrite
	}
	return err
}
