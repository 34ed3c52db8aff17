// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package x2040

import "fmt"

type positionKind uint8

const (
	kindIndex positionKind = iota + 1
	kindRowCol
)

// Position is a cursor position on the display, either a flat index or a
// row and column. Use Index or RowCol to create one. The zero value is not a
// valid position.
type Position struct {
	kind  positionKind
	index int
	row   int
	col   int
}

// Index returns the position of the p-th cell, counting from 1 at the top
// left, left to right then top to bottom. Valid values are 1 to 80.
func Index(p int) Position {
	return Position{kind: kindIndex, index: p}
}

// RowCol returns the position at row (1..4) and col (1..20).
func RowCol(row, col int) Position {
	return Position{kind: kindRowCol, row: row, col: col}
}

// RowCol returns the row and column of the position. A flat index is
// folded onto rows by repeated subtraction of the row width, so 20 is (1,20)
// and 21 is (2,1).
func (p Position) RowCol() (row, col int, err error) {
	switch p.kind {
	case kindIndex:
		if p.index < 1 || p.index > Rows*Cols {
			return 0, 0, fmt.Errorf("index %d: %w", p.index, ErrInvalidPosition)
		}
		row, col = 1, p.index
		for col > Cols {
			col -= Cols
			row++
		}
		return row, col, nil
	case kindRowCol:
		if p.row < 1 || p.row > Rows || p.col < 1 || p.col > Cols {
			return 0, 0, fmt.Errorf("(%d, %d): %w", p.row, p.col, ErrInvalidPosition)
		}
		return p.row, p.col, nil
	default:
		return 0, 0, fmt.Errorf("unset position: %w", ErrInvalidPosition)
	}
}

func (p Position) String() string {
	switch p.kind {
	case kindIndex:
		return fmt.Sprintf("Index(%d)", p.index)
	case kindRowCol:
		return fmt.Sprintf("RowCol(%d, %d)", p.row, p.col)
	default:
		return "Position(unset)"
	}
}

// address returns the DDRAM address of pos.
func (c *config) address(pos Position) (byte, error) {
	row, col, err := pos.RowCol()
	if err != nil {
		return 0, err
	}
	return c.rowOffsets[row-1] + byte(col-1), nil
}

// Address returns the controller's DDRAM address for pos.
func (dev *Dev) Address(pos Position) (byte, error) {
	addr, err := dev.cfg.address(pos)
	return addr, wrapErr(err)
}

// SetCursor moves the cursor to pos. Nothing is sent if pos is out of range.
func (dev *Dev) SetCursor(pos Position) error {
	addr, err := dev.cfg.address(pos)
	if err != nil {
		return wrapErr(err)
	}
	dev.log.Debug().Stringer("pos", pos).Uint8("addr", addr).Msg("set cursor")
	return dev.sendInstruction(cmdSetDDRAMAddr | addr)
}
