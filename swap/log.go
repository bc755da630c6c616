// Copyright (c) 2026 The btc-mars-bridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package swap

import "github.com/btcsuite/btclog"

// log is initialized with no output filters so the package stays silent
// until the host process calls UseLogger.
var log btclog.Logger

// UseLogger directs package log output to logger.
func UseLogger(logger btclog.Logger) {
	log = logger
}

func init() {
	DisableLog()
}

// DisableLog disables all library log output for this package.
func DisableLog() {
	log = btclog.Disabled
}
