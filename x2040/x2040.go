// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package x2040

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

const (
	// Rows is the number of lines on the display.
	Rows = 4
	// Cols is the number of characters per line.
	Cols = 20
	// Slots is the number of user-definable characters.
	Slots = 8

	escape byte = 0xfe
)

// Instruction codes. Each one is sent preceded by the escape byte.
const (
	cmdClear         byte = 0x01
	cmdBacklightOff  byte = 0x02
	cmdBacklightOn   byte = 0x03
	cmdEntryMode     byte = 0x06 // increment, no display shift
	cmdEntryShift    byte = 0x07 // increment, shift display
	cmdDisplayOff    byte = 0x08
	cmdDisplayOn     byte = 0x0c // cursor off, no blink
	cmdCursorLeft    byte = 0x10
	cmdCursorRight   byte = 0x14
	cmdFunctionSet   byte = 0x38 // 8 bit bus, 2 lines, 5x7 font
	cmdSetCGRAMAddr  byte = 0x40
	cmdSetDDRAMAddr  byte = 0x80
	displayCursorBit byte = 0x02
	displayBlinkBit  byte = 0x01
)

// initSequence is sent once, in this order, when a Dev is created.
var initSequence = []byte{cmdFunctionSet, cmdEntryMode, cmdCursorLeft, cmdDisplayOn, cmdClear}

var (
	// ErrTransport is returned when a byte could not be written to the
	// display. The controller may be left holding a partial instruction.
	ErrTransport = errors.New("transport write failed")
	// ErrInvalidPosition is returned for a row, column or flat index outside
	// of the display.
	ErrInvalidPosition = errors.New("invalid cursor position")
	// ErrInvalidSlot is returned for a custom character slot outside 1..8.
	ErrInvalidSlot = errors.New("invalid character slot")
	// ErrInvalidGlyph is returned for a bitmap that is not 8 rows of 5 bits.
	ErrInvalidGlyph = errors.New("invalid glyph bitmap")
)

// Opts holds the timing and logging configuration of the display.
type Opts struct {
	// WriteDelay is the pause after each character or bitmap byte.
	WriteDelay time.Duration
	// InstructionDelay is the pause after each byte of an instruction.
	InstructionDelay time.Duration
	// Logger receives a debug event per operation. nil disables logging.
	Logger *zerolog.Logger
}

// DefaultOpts are the delays the X2040 is known to work with.
var DefaultOpts = Opts{
	WriteDelay:       2 * time.Millisecond,
	InstructionDelay: 10 * time.Millisecond,
}

// config is the immutable per-device protocol configuration.
type config struct {
	escape           byte
	writeDelay       time.Duration
	instructionDelay time.Duration
	rowWidth         int
	rowOffsets       [Rows]byte
}

func newConfig(opts *Opts) config {
	c := config{
		escape:           escape,
		writeDelay:       DefaultOpts.WriteDelay,
		instructionDelay: DefaultOpts.InstructionDelay,
		rowWidth:         Cols,
		rowOffsets:       [Rows]byte{0x00, 0x40, 0x14, 0x54},
	}
	if opts != nil {
		if opts.WriteDelay > 0 {
			c.writeDelay = opts.WriteDelay
		}
		if opts.InstructionDelay > 0 {
			c.instructionDelay = opts.InstructionDelay
		}
	}
	return c
}

// Dev is a handle to a Pertelian X2040 display.
//
// It is not safe for concurrent use. The underlying connection must not be
// written to by anything else while the Dev is in use.
//
// Implements periph.io/x/conn/v3/display.TextDisplay and DisplayBacklight.
type Dev struct {
	c     conn.Conn
	w     io.Writer
	cfg   config
	log   zerolog.Logger
	sleep func(time.Duration)
	icons map[string]Icon

	on      bool
	control byte
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("x2040: %w", err)
}

// NewWriter returns an initialized display that writes to w. Any io.Writer
// works, typically a serial port. See Open to open a serial port directly.
func NewWriter(w io.Writer, opts *Opts) (*Dev, error) {
	return newDev(nil, w, opts, time.Sleep)
}

// NewConn returns an initialized display using a periph.io connection.
func NewConn(c conn.Conn, opts *Opts) (*Dev, error) {
	return newDev(c, nil, opts, time.Sleep)
}

func newDev(c conn.Conn, w io.Writer, opts *Opts, sleep func(time.Duration)) (*Dev, error) {
	log := zerolog.Nop()
	if opts != nil && opts.Logger != nil {
		log = opts.Logger.With().Str("device", "x2040").Logger()
	}
	dev := &Dev{
		c:     c,
		w:     w,
		cfg:   newConfig(opts),
		log:   log,
		sleep: sleep,
		icons: make(map[string]Icon),
	}
	if err := dev.init(); err != nil {
		return nil, err
	}
	return dev, nil
}

// init runs the controller setup. Each instruction depends on the state left
// by the previous one.
func (dev *Dev) init() error {
	dev.log.Debug().Msg("initialize")
	for _, code := range initSequence {
		if err := dev.sendInstruction(code); err != nil {
			return err
		}
	}
	dev.on = true
	dev.control = cmdDisplayOn
	return nil
}

// Power turns the display on or off. Turning it on also hides the cursor.
func (dev *Dev) Power(on bool) error {
	dev.log.Debug().Bool("on", on).Msg("power")
	code := cmdDisplayOff
	if on {
		code = cmdDisplayOn
	}
	if err := dev.sendInstruction(code); err != nil {
		return err
	}
	dev.on = on
	dev.control = code
	return nil
}

// SetBacklight switches the backlight on or off.
func (dev *Dev) SetBacklight(on bool) error {
	dev.log.Debug().Bool("on", on).Msg("backlight")
	if on {
		return dev.sendInstruction(cmdBacklightOn)
	}
	return dev.sendInstruction(cmdBacklightOff)
}

// Clear blanks the display. The controller moves the cursor to (1,1).
func (dev *Dev) Clear() error {
	dev.log.Debug().Msg("clear")
	return dev.sendInstruction(cmdClear)
}

// Message writes text at the current cursor position, one data byte per
// character. Nothing wraps to the next row and nothing is clipped. See
// encodeText for characters outside of ASCII.
func (dev *Dev) Message(text string) error {
	dev.log.Debug().Str("text", text).Msg("message")
	_, err := dev.sendData(encodeText(text))
	return err
}

// MessageAt moves the cursor to pos and writes text.
func (dev *Dev) MessageAt(text string, pos Position) error {
	if err := dev.SetCursor(pos); err != nil {
		return err
	}
	return dev.Message(text)
}

// LoadCharacter stores an 8 byte bitmap in the custom character slot (1..8).
// Only the 5 low bits of each byte are pixels, the first byte is the top row.
func (dev *Dev) LoadCharacter(slot int, bitmap []byte) error {
	if err := validateSlot(slot); err != nil {
		return wrapErr(err)
	}
	if err := validateBitmap(bitmap); err != nil {
		return wrapErr(err)
	}
	dev.log.Debug().Int("slot", slot).Hex("bitmap", bitmap).Msg("load character")
	if err := dev.sendInstruction(cmdSetCGRAMAddr + byte(8*(slot-1))); err != nil {
		return err
	}
	_, err := dev.sendData(bitmap)
	return err
}

// WriteCharacter writes the custom character stored in slot at the current
// cursor position.
func (dev *Dev) WriteCharacter(slot int) error {
	if err := validateSlot(slot); err != nil {
		return wrapErr(err)
	}
	dev.log.Debug().Int("slot", slot).Msg("write character")
	_, err := dev.sendData([]byte{byte(slot - 1)})
	return err
}

// WriteCharacterAt moves the cursor to pos and writes the custom character
// stored in slot.
func (dev *Dev) WriteCharacterAt(slot int, pos Position) error {
	if err := validateSlot(slot); err != nil {
		return wrapErr(err)
	}
	if err := dev.SetCursor(pos); err != nil {
		return err
	}
	return dev.WriteCharacter(slot)
}

// AutoScroll enables or disables shifting the display as characters are
// written.
func (dev *Dev) AutoScroll(enabled bool) error {
	if enabled {
		return dev.sendInstruction(cmdEntryShift)
	}
	return dev.sendInstruction(cmdEntryMode)
}

// Cols returns the number of columns.
func (dev *Dev) Cols() int {
	return dev.cfg.rowWidth
}

// Rows returns the number of rows.
func (dev *Dev) Rows() int {
	return len(dev.cfg.rowOffsets)
}

// MinCol returns 1, columns are numbered from 1.
func (dev *Dev) MinCol() int {
	return 1
}

// MinRow returns 1, rows are numbered from 1.
func (dev *Dev) MinRow() int {
	return 1
}

// Cursor sets the cursor mode. Multiple modes can be combined:
// Cursor(display.CursorUnderline, display.CursorBlink).
func (dev *Dev) Cursor(modes ...display.CursorMode) error {
	val := cmdDisplayOff
	if dev.on {
		val = cmdDisplayOn
	}
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			val &^= displayCursorBit | displayBlinkBit
		case display.CursorUnderline:
			val |= displayCursorBit
		case display.CursorBlock, display.CursorBlink:
			val |= displayBlinkBit
		default:
			return fmt.Errorf("x2040: cursor mode %d: %w", mode, display.ErrInvalidCommand)
		}
	}
	if err := dev.sendInstruction(val); err != nil {
		return err
	}
	dev.control = val
	return nil
}

// Display turns the display on or off, keeping the cursor mode.
func (dev *Dev) Display(on bool) error {
	val := dev.control | 0x04
	if !on {
		val &^= 0x04
	}
	if err := dev.sendInstruction(val); err != nil {
		return err
	}
	dev.on = on
	dev.control = val
	return nil
}

// Home moves the cursor to the first row and column.
func (dev *Dev) Home() error {
	return dev.SetCursor(RowCol(1, 1))
}

// Move shifts the cursor one position forward or backward. Up and Down are
// not supported by the controller.
func (dev *Dev) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Forward:
		return dev.sendInstruction(cmdCursorRight)
	case display.Backward:
		return dev.sendInstruction(cmdCursorLeft)
	default:
		return wrapErr(display.ErrNotImplemented)
	}
}

// MoveTo moves the cursor to row, col, both starting at 1.
func (dev *Dev) MoveTo(row, col int) error {
	return dev.SetCursor(RowCol(row, col))
}

// Backlight turns the backlight on for any non-zero intensity. The X2040
// backlight has no dimming.
func (dev *Dev) Backlight(intensity display.Intensity) error {
	return dev.SetBacklight(intensity > 0)
}

// Write sends p as character data at the current cursor position.
func (dev *Dev) Write(p []byte) (int, error) {
	return dev.sendData(p)
}

// WriteString sends text as character data at the current cursor position,
// one byte per character. It returns the number of characters sent.
func (dev *Dev) WriteString(text string) (int, error) {
	return dev.sendData(encodeText(text))
}

// encodeText maps each character of text to one byte of the controller's
// character ROM. Characters up to U+00FF are sent as their code point, the
// rest as '?'.
func encodeText(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if r > 0xff {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return out
}

// Halt clears the display, turns it and its backlight off, and closes the
// connection if it implements io.Closer. The connection is closed even if
// the display can't be reached.
func (dev *Dev) Halt() error {
	dev.log.Debug().Msg("halt")
	err := dev.Clear()
	if err == nil {
		err = dev.Power(false)
	}
	if err == nil {
		err = dev.SetBacklight(false)
	}
	// The transport is closed even when the display stopped answering.
	var cl io.Closer
	var ok bool
	if dev.w != nil {
		cl, ok = dev.w.(io.Closer)
	} else {
		cl, ok = dev.c.(io.Closer)
	}
	if ok {
		err = errors.Join(err, wrapErr(cl.Close()))
	}
	return err
}

func (dev *Dev) String() string {
	var ioType any = dev.c
	if dev.w != nil {
		ioType = dev.w
	}
	return fmt.Sprintf("Pertelian X2040 %dx%d Display - %T", dev.Cols(), dev.Rows(), ioType)
}

var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ conn.Resource = &Dev{}
