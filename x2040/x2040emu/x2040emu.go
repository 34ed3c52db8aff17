// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package x2040emu emulates a Pertelian X2040 display. It decodes the byte
// stream a driver writes into the controller's display and character memory
// and renders the result to the terminal using ANSI color codes, or to an
// image.
//
// Useful to work on screen layouts without the hardware, and to check what
// a byte stream actually shows.
package x2040emu

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3"
)

const (
	rows     = 4
	cols     = 20
	escape   = 0xfe
	cellW    = 7
	cellH    = 13
	ddramLen = 0x80
	cgramLen = 0x40
)

var rowOffsets = [rows]byte{0x00, 0x40, 0x14, 0x54}

// Opts represents the options available for the emulator.
type Opts struct {
	// W receives the terminal rendering. Defaults to stdout.
	W io.Writer
	// Palette is used for terminal rendering. Defaults to ansi256.Default.
	Palette *ansi256.Palette
	// Refresh renders to W after every write.
	Refresh bool

	_ struct{}
}

// Dev is an emulated X2040 display.
//
// Implements io.Writer and periph.io/x/conn/v3.Conn so it can be handed to
// the x2040 driver in place of a serial port. It is safe for concurrent use.
type Dev struct {
	mu      sync.Mutex
	w       io.Writer
	palette ansi256.Palette
	refresh bool

	escaped   bool
	ddram     [ddramLen]byte
	cgram     [cgramLen]byte
	addr      byte
	cgMode    bool
	increment bool
	shift     bool
	function  byte
	displayOn bool
	cursorOn  bool
	blink     bool
	backlight bool
}

// New returns an emulated display in its power-on state: blank, display
// off, backlight on.
func New(opts *Opts) *Dev {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	d := &Dev{
		w:         w,
		palette:   *p,
		refresh:   opts.Refresh,
		increment: true,
		backlight: true,
	}
	d.clear()
	return d
}

func (d *Dev) String() string {
	return "X2040 emulator"
}

// Duplex implements conn.Conn.
func (d *Dev) Duplex() conn.Duplex {
	return conn.Half
}

// Tx implements conn.Conn. The display is write-only, r must be empty.
func (d *Dev) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("x2040emu: display is write-only")
	}
	_, err := d.Write(w)
	return err
}

// Write feeds bytes to the emulated controller.
func (d *Dev) Write(p []byte) (int, error) {
	d.mu.Lock()
	for _, b := range p {
		d.feed(b)
	}
	d.mu.Unlock()
	if d.refresh {
		if err := d.Refresh(); err != nil {
			return len(p), err
		}
	}
	return len(p), nil
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the console is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

func (d *Dev) feed(b byte) {
	if d.escaped {
		d.escaped = false
		d.instruction(b)
		return
	}
	if b == escape {
		d.escaped = true
		return
	}
	if d.cgMode {
		d.cgram[d.addr&(cgramLen-1)] = b & 0x1f
		d.addr = (d.addr + 1) & (cgramLen - 1)
		return
	}
	d.ddram[d.addr] = b
	d.step(d.increment)
}

func (d *Dev) instruction(b byte) {
	switch {
	case b&0x80 != 0:
		d.cgMode = false
		d.addr = b & (ddramLen - 1)
	case b&0x40 != 0:
		d.cgMode = true
		d.addr = b & (cgramLen - 1)
	case b&0x20 != 0:
		d.function = b
	case b&0x10 != 0:
		// Display shifts are not rendered, only cursor moves.
		if b&0x08 == 0 {
			d.step(b&0x04 != 0)
		}
	case b&0x08 != 0:
		d.displayOn = b&0x04 != 0
		d.cursorOn = b&0x02 != 0
		d.blink = b&0x01 != 0
	case b&0x04 != 0:
		d.increment = b&0x02 != 0
		d.shift = b&0x01 != 0
	case b == 0x03:
		d.backlight = true
	case b == 0x02:
		d.backlight = false
	case b == 0x01:
		d.clear()
	}
}

func (d *Dev) clear() {
	for i := range d.ddram {
		d.ddram[i] = ' '
	}
	d.addr = 0
	d.cgMode = false
	d.increment = true
}

// step moves the DDRAM address counter, wrapping between the two 40
// character lines of controller memory.
func (d *Dev) step(forward bool) {
	if d.cgMode {
		return
	}
	if forward {
		switch d.addr {
		case 0x27:
			d.addr = 0x40
		case 0x67:
			d.addr = 0x00
		default:
			d.addr++
		}
		return
	}
	switch d.addr {
	case 0x00:
		d.addr = 0x67
	case 0x40:
		d.addr = 0x27
	default:
		d.addr--
	}
}

// Text returns the characters on each of the 4 visible rows. Custom
// characters show as their codes 0 to 7.
func (d *Dev) Text() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, rows)
	for i, off := range rowOffsets {
		out[i] = string(d.ddram[int(off) : int(off)+cols])
	}
	return out
}

// Glyph returns the 8 byte bitmap stored in custom character slot (1..8).
func (d *Dev) Glyph(slot int) ([]byte, error) {
	if slot < 1 || slot > 8 {
		return nil, fmt.Errorf("x2040emu: invalid slot %d", slot)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	g := make([]byte, 8)
	copy(g, d.cgram[(slot-1)*8:slot*8])
	return g, nil
}

// Cursor returns the 1-based row and column of the address counter. ok is
// false when the counter points to CGRAM or to an address that is not
// visible.
func (d *Dev) Cursor() (row, col int, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cgMode {
		return 0, 0, false
	}
	for i, off := range rowOffsets {
		if d.addr >= off && d.addr < off+cols {
			return i + 1, int(d.addr-off) + 1, true
		}
	}
	return 0, 0, false
}

// DisplayOn reports whether the display is on.
func (d *Dev) DisplayOn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.displayOn
}

// BacklightOn reports whether the backlight is on.
func (d *Dev) BacklightOn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.backlight
}

// CursorMode reports whether the cursor is shown and whether it blinks.
func (d *Dev) CursorMode() (visible, blink bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursorOn, d.blink
}

// AutoScroll reports whether the entry mode shifts the display.
func (d *Dev) AutoScroll() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shift
}

// Function returns the last function set instruction received.
func (d *Dev) Function() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.function
}

var (
	litBacklight  = color.NRGBA{0x9a, 0xcd, 0x32, 0xff}
	darkBacklight = color.NRGBA{0x2f, 0x3f, 0x1f, 0xff}
	ink           = color.NRGBA{0x10, 0x20, 0x10, 0xff}
)

// Image renders the display. Each character cell is 7x13 pixels; custom
// characters are drawn from CGRAM and other printable ASCII characters with
// a 7x13 bitmap font.
func (d *Dev) Image() *image.NRGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	img := image.NewNRGBA(image.Rect(0, 0, cols*cellW, rows*cellH))
	bg := darkBacklight
	if d.backlight {
		bg = litBacklight
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}
	if !d.displayOn {
		return img
	}
	drawer := font.Drawer{Dst: img, Src: image.NewUniform(ink), Face: basicfont.Face7x13}
	for r, off := range rowOffsets {
		for c := 0; c < cols; c++ {
			code := d.ddram[int(off)+c]
			x, y := c*cellW, r*cellH
			switch {
			case code < 0x10:
				d.drawGlyph(img, x, y, code&0x07)
			case code >= 0x20 && code < 0x7f:
				drawer.Dot = fixed.P(x, y+basicfont.Face7x13.Ascent)
				drawer.DrawString(string(rune(code)))
			}
		}
	}
	return img
}

func (d *Dev) drawGlyph(img *image.NRGBA, x, y int, code byte) {
	for row := 0; row < 8; row++ {
		bits := d.cgram[int(code)*8+row]
		for col := 0; col < 5; col++ {
			if bits&(0x10>>col) != 0 {
				img.SetNRGBA(x+1+col, y+2+row, ink)
			}
		}
	}
}

// SavePNG writes the rendered display to a PNG file.
func (d *Dev) SavePNG(path string) error {
	if err := gg.SavePNG(path, d.Image()); err != nil {
		return fmt.Errorf("x2040emu: %w", err)
	}
	return nil
}

// Refresh renders the display to the terminal, one colored block per pixel.
func (d *Dev) Refresh() error {
	img := d.Image()
	var buf bytes.Buffer
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		_, _ = buf.WriteString("\r\033[0m")
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _ = io.WriteString(&buf, d.palette.Block(img.NRGBAAt(x, y)))
		}
		_, _ = buf.WriteString("\033[0m\n")
	}
	_, err := buf.WriteTo(d.w)
	return err
}

var _ conn.Conn = &Dev{}
var _ conn.Resource = &Dev{}
var _ io.Writer = &Dev{}
var _ fmt.Stringer = &Dev{}
