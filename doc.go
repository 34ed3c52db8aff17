// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pertelian is a container for the Pertelian X2040 character LCD
// driver and its tooling.
//
// See x2040 for the driver, x2040/chrfile for the custom character file
// format and x2040/x2040emu for a display emulator.
package pertelian
