// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package x2040

import (
	"fmt"

	"go.bug.st/serial"
)

// BaudRate is the fixed line speed of the X2040 serial bridge.
const BaudRate = 9600

// Open opens the serial port portName (e.g. /dev/ttyUSB0 or COM3) and
// returns an initialized display. Halt closes the port.
func Open(portName string, opts *Opts) (*Dev, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("x2040: open serial port %s: %w", portName, err)
	}
	dev, err := NewWriter(port, opts)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return dev, nil
}

// Ports lists the serial ports present on the host.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	return ports, wrapErr(err)
}
