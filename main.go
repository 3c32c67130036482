// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/geotester/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
