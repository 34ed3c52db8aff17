// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package chrfile reads custom character definitions from .chr text files.
//
// A file holds one or more glyphs separated by a line of five hyphens. Each
// glyph is a list of rows, top row first, where '#' or '*' is a lit pixel:
//
//	.###.
//	#...#
//	#...#
//	-----
//	##..
//	##..
package chrfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Separator is the line between two glyphs.
	Separator = "-----"
	// Ext is the file extension of glyph files.
	Ext = ".chr"
)

var (
	// ErrEmpty is returned when a resource holds no glyph definitions.
	ErrEmpty = errors.New("chrfile: no glyph definitions")
	// ErrGlyphNotFound is returned when the requested glyph index does not
	// exist.
	ErrGlyphNotFound = errors.New("chrfile: glyph not found")
)

// Parse reads all the glyphs in r. Trailing blank rows of a glyph are
// dropped, blank rows between lit rows are kept.
func Parse(r io.Reader) ([][]string, error) {
	var glyphs [][]string
	var cur []string
	flush := func() {
		for len(cur) > 0 && strings.TrimSpace(cur[len(cur)-1]) == "" {
			cur = cur[:len(cur)-1]
		}
		glyphs = append(glyphs, cur)
		cur = nil
	}
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimRight(s.Text(), "\r")
		if line == Separator {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("chrfile: %w", err)
	}
	flush()
	// A separator at the end of the file does not start a new glyph.
	for len(glyphs) > 0 && len(glyphs[len(glyphs)-1]) == 0 {
		glyphs = glyphs[:len(glyphs)-1]
	}
	if len(glyphs) == 0 {
		return nil, ErrEmpty
	}
	return glyphs, nil
}

// ReadFile parses the glyph file at path.
func ReadFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("chrfile: %w", err)
	}
	defer f.Close()
	glyphs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return glyphs, nil
}

// Glyph returns glyph number index, counting from 1. An index of 0 selects
// the first glyph.
func Glyph(glyphs [][]string, index int) ([]string, error) {
	if index == 0 {
		index = 1
	}
	if index < 1 || index > len(glyphs) {
		return nil, fmt.Errorf("index %d of %d: %w", index, len(glyphs), ErrGlyphNotFound)
	}
	return glyphs[index-1], nil
}

// Name returns the base name of path without the .chr extension. It is the
// name icons loaded from the file are registered under.
func Name(path string) string {
	return strings.TrimSuffix(filepath.Base(path), Ext)
}
