// Package obslog wraps zap for the resolver's ambient structured logging —
// the teacher itself has no logger (dwscript writes straight to stdout/
// stderr), so this follows wippyai-wasm-runtime's zap-wrapper shape
// instead: a package-level constructor handing back a ready logger at Info
// level, one flag away from verbose, plus a Nop logger for library callers.
package obslog

import "go.uber.org/zap"

// Logger is the SugaredLogger threaded through the interpreter facade and
// scheduler. Scheduler workers log "worker starting module" and "worker
// quiescent on module", and the interpreter logs "parse error" and "module
// loaded", all at Debug; nothing is logged at Info.
type Logger struct {
	*zap.SugaredLogger
}

// New builds a Logger. verbose selects Debug level with a human-readable
// console encoder; otherwise Info level with the same encoder — this
// repository has no machine-consumed log pipeline to justify JSON-encoded
// production config.
func New(verbose bool) *Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	base, err := cfg.Build()
	if err != nil {
		return Nop()
	}
	return &Logger{base.Sugar()}
}

// Nop returns a logger that discards everything — used where no logger was
// configured (e.g. library callers of the interp facade that don't want
// obslog's opinions).
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}
