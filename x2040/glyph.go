// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package x2040

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/GermanBionicSystems/pertelian/x2040/chrfile"
)

const (
	// GlyphRows is the number of bytes in a custom character bitmap.
	GlyphRows = 8
	// GlyphCols is the number of pixels per bitmap row.
	GlyphCols = 5
)

// Icon is a custom character loaded into the display.
type Icon struct {
	Slot   int
	Bitmap []byte
}

// isLit reports whether c marks a lit pixel in a glyph row.
func isLit(c rune) bool {
	return c == '#' || c == '*'
}

// DecodeGlyph converts text rows into a custom character bitmap. Each row is
// padded on the right to 5 columns and packed with the leftmost column in bit
// 4; '#' and '*' are lit pixels, anything else is dark. Glyphs with fewer
// than 8 rows are padded with dark rows at the bottom.
//
//	"##.. " -> 0x18
func DecodeGlyph(rows []string) ([]byte, error) {
	if len(rows) > GlyphRows {
		return nil, fmt.Errorf("%d rows: %w", len(rows), ErrInvalidGlyph)
	}
	bitmap := make([]byte, GlyphRows)
	for i, row := range rows {
		b, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		bitmap[i] = b
	}
	return bitmap, nil
}

func decodeRow(row string) (byte, error) {
	row = strings.TrimRight(row, " \t\r")
	var v uint
	n := 0
	for _, c := range row {
		v <<= 1
		if isLit(c) {
			v |= 1
		}
		if v >= 1<<GlyphCols {
			return 0, fmt.Errorf("%q is wider than %d pixels: %w", row, GlyphCols, ErrInvalidGlyph)
		}
		n++
	}
	for ; n < GlyphCols; n++ {
		v <<= 1
	}
	return byte(v), nil
}

func validateSlot(slot int) error {
	if slot < 1 || slot > Slots {
		return fmt.Errorf("slot %d: %w", slot, ErrInvalidSlot)
	}
	return nil
}

func validateBitmap(bitmap []byte) error {
	if len(bitmap) != GlyphRows {
		return fmt.Errorf("%d bytes: %w", len(bitmap), ErrInvalidGlyph)
	}
	for i, b := range bitmap {
		if b >= 1<<GlyphCols {
			return fmt.Errorf("row %d is 0x%02x: %w", i+1, b, ErrInvalidGlyph)
		}
	}
	return nil
}

// LoadGlyph decodes rows, loads the result into slot and registers it under
// name, replacing any icon already registered with that name. The registry is
// left untouched on error.
func (dev *Dev) LoadGlyph(name string, rows []string, slot int) (Icon, error) {
	bitmap, err := DecodeGlyph(rows)
	if err != nil {
		return Icon{}, wrapErr(err)
	}
	if err := dev.LoadCharacter(slot, bitmap); err != nil {
		return Icon{}, err
	}
	icon := Icon{Slot: slot, Bitmap: bitmap}
	dev.icons[name] = icon
	dev.log.Debug().Str("name", name).Int("slot", slot).Msg("registered icon")
	return Icon{Slot: slot, Bitmap: slices.Clone(bitmap)}, nil
}

// LoadGlyphFromSource reads glyph number index (starting at 1, 0 means 1)
// from a .chr file and loads it into slot. The icon is registered under the
// file name without its .chr extension.
func (dev *Dev) LoadGlyphFromSource(path string, slot, index int) (Icon, error) {
	if err := validateSlot(slot); err != nil {
		return Icon{}, wrapErr(err)
	}
	glyphs, err := chrfile.ReadFile(path)
	if err != nil {
		return Icon{}, wrapErr(err)
	}
	rows, err := chrfile.Glyph(glyphs, index)
	if err != nil {
		return Icon{}, wrapErr(fmt.Errorf("%s: %w", path, err))
	}
	return dev.LoadGlyph(chrfile.Name(path), rows, slot)
}

// Icon returns the icon registered under name.
func (dev *Dev) Icon(name string) (Icon, bool) {
	icon, ok := dev.icons[name]
	if !ok {
		return Icon{}, false
	}
	return Icon{Slot: icon.Slot, Bitmap: slices.Clone(icon.Bitmap)}, true
}

// Icons returns the sorted names of the registered icons.
func (dev *Dev) Icons() []string {
	names := make([]string, 0, len(dev.icons))
	for name := range dev.icons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
