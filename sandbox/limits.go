package sandbox

import (
	"fmt"
	"strings"
)

// Limits describes the OS-level caps applied to the child execution context
// before user code runs: an address-space ceiling, a cumulative CPU-time
// ceiling, and core-dump suppression.
type Limits struct {
	// MemoryBytes caps the child's address space. Zero disables the cap.
	MemoryBytes int64

	// CPUSeconds caps cumulative CPU time. Zero disables the cap.
	CPUSeconds int
}

// Prelude renders the shell commands that install the caps inside the child's
// own shell ahead of the interpreter. Each limit is applied independently; a
// platform that rejects one still gets the others, and the execution proceeds
// either way.
func (l Limits) Prelude() string {
	var parts []string
	if l.MemoryBytes > 0 {
		kb := (l.MemoryBytes + 1023) / 1024
		parts = append(parts, fmt.Sprintf("ulimit -v %d 2>/dev/null", kb))
	}
	if l.CPUSeconds > 0 {
		parts = append(parts, fmt.Sprintf("ulimit -t %d 2>/dev/null", l.CPUSeconds))
	}
	parts = append(parts, "ulimit -c 0 2>/dev/null")
	return strings.Join(parts, "; ")
}
