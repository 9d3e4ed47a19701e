// Package logx wires the engine's subsystems to a shared structured
// logging facade, grounded on the logiface builder used throughout
// this module's teacher packages.
package logx

import (
	"github.com/joeycumines/logiface"
)

// Logger is the structured logger type accepted by every subsystem's
// functional options. It is a plain alias so callers can pass any
// logiface-backed logger (stumpy, zerolog, slog, logrus adapters)
// without this package needing to know about the concrete backend.
type Logger = *logiface.Logger[*logiface.Event]

// Nop returns a logger that discards everything written to it. It is
// the default used by subsystems when WithLogger is not supplied.
func Nop() Logger {
	return logiface.New[*logiface.Event]()
}
