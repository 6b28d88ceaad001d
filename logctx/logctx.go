// Package logctx wires a single btclog backend across every package's
// per-package log.go, mirroring the teacher's root-level log setup: each
// package declares its own `var log btclog.Logger` plus a `UseLogger`
// setter defaulting to btclog.Disabled, and a binary's main calls
// InitLoggers once at startup to give every subsystem a live, tagged
// logger backed by the same io.Writer.
package logctx

import (
	"io"
	"os"

	"github.com/btcsuite/btclog"

	"github.com/fogcompute/platform/delay"
	"github.com/fogcompute/platform/fogcoord"
	"github.com/fogcompute/platform/lottery"
	"github.com/fogcompute/platform/mixnode"
	"github.com/fogcompute/platform/orchestrator"
	"github.com/fogcompute/platform/placement"
	"github.com/fogcompute/platform/sphinx"
)

// subsystemTags abbreviate each package's name to four letters, the way the teacher
// tags its own per-package subsystem loggers (e.g. "PEER", "HSWC").
const (
	tagSphinx       = "SPHX"
	tagDelay        = "DELY"
	tagLottery      = "LOTT"
	tagMixnode      = "MIXN"
	tagPlacement    = "PLCE"
	tagFogCoord     = "FGCD"
	tagOrchestrator = "ORCH"
)

// Backend wraps the btclog.Backend every subsystem logger is minted from,
// kept around so Logger can mint further tagged loggers from it.
type Backend struct {
	backend *btclog.Backend
}

// NewBackend constructs a Backend writing to w (e.g. os.Stdout, a rotating
// file, or io.MultiWriter of both).
func NewBackend(w io.Writer) *Backend {
	return &Backend{backend: btclog.NewBackend(w)}
}

// NewStdoutBackend is the common case: a single backend writing to stdout,
// for a daemon that doesn't otherwise configure log file rotation.
func NewStdoutBackend() *Backend {
	return NewBackend(os.Stdout)
}

// Logger mints a single tagged logger at the given level, for callers that
// want one subsystem logger without pulling in InitLoggers' whole-module
// wiring (e.g. a cmd/ binary's own top-level messages).
func (b *Backend) Logger(tag string, level btclog.Level) btclog.Logger {
	logger := b.backend.Logger(tag)
	logger.SetLevel(level)
	return logger
}

// InitLoggers wires a tagged logger at level into every package that
// declares a UseLogger setter: sphinx, delay, lottery, mixnode, placement,
// fogcoord, orchestrator. Call once at process startup, before
// constructing any of those packages' types.
func InitLoggers(b *Backend, level btclog.Level) {
	sphinx.UseLogger(b.Logger(tagSphinx, level))
	delay.UseLogger(b.Logger(tagDelay, level))
	lottery.UseLogger(b.Logger(tagLottery, level))
	mixnode.UseLogger(b.Logger(tagMixnode, level))
	placement.UseLogger(b.Logger(tagPlacement, level))
	fogcoord.UseLogger(b.Logger(tagFogCoord, level))
	orchestrator.UseLogger(b.Logger(tagOrchestrator, level))
}

// ParseLevel maps a config-file log-level string onto btclog.Level,
// defaulting to Info for an unrecognized value rather than failing
// startup over a logging typo.
func ParseLevel(s string) btclog.Level {
	level, ok := btclog.LevelFromString(s)
	if !ok {
		return btclog.LevelInfo
	}
	return level
}
