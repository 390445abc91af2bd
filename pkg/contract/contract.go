package contract

import (
	"fmt"

	"github.com/nodelet/nodelet/pkg/log"
)

// Check panics when cond is false. The violation is logged at panic level
// with full context before the panic unwinds, so the crash diagnostic is
// emitted even if nothing recovers.
//
// Checks guard invariants that only a daemon bug can break. Callers must
// never recover from them; an unrecovered check brings the process down,
// which is the intended behavior.
func Check(cond bool, msg string) {
	if cond {
		return
	}
	fail(msg)
}

// Checkf is Check with printf-style message construction. The message
// should name the violated invariant and the conflicting values.
func Checkf(cond bool, format string, args ...any) {
	if cond {
		return
	}
	fail(fmt.Sprintf(format, args...))
}

func fail(msg string) {
	log.WithComponent("contract").Panic().Msg(msg)
}
