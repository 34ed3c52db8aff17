// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package x2040_test

import (
	"fmt"
	"log"
	"os"

	"github.com/GermanBionicSystems/pertelian/x2040"
	"github.com/GermanBionicSystems/pertelian/x2040/x2040emu"
	"github.com/rs/zerolog"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)
	opts := x2040.DefaultOpts
	opts.Logger = &logger

	dev, err := x2040.Open("/dev/ttyUSB0", &opts)
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Halt()

	if err := dev.MessageAt("Hello", x2040.RowCol(2, 8)); err != nil {
		log.Fatal(err)
	}
	heart := []string{
		".....",
		".#.#.",
		"#####",
		"#####",
		".###.",
		"..#..",
	}
	if _, err := dev.LoadGlyph("heart", heart, 1); err != nil {
		log.Fatal(err)
	}
	if err := dev.WriteCharacterAt(1, x2040.Index(47)); err != nil {
		log.Fatal(err)
	}
}

func ExampleNewWriter() {
	emu := x2040emu.New(&x2040emu.Opts{W: os.Stdout})
	dev, err := x2040.NewWriter(emu, &x2040.DefaultOpts)
	if err != nil {
		log.Fatal(err)
	}
	if err := dev.MessageAt("Hello, world", x2040.Index(25)); err != nil {
		log.Fatal(err)
	}
	for _, row := range emu.Text() {
		fmt.Printf("|%s|\n", row)
	}
	// Output:
	// |                    |
	// |    Hello, world    |
	// |                    |
	// |                    |
}
