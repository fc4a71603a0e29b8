package sandbox

import (
	"fmt"
	"strings"
)

// harnessTemplate wraps the user payload so the child records its own wall
// time, converts an uncaught failure into a diagnostic on stderr plus a
// non-zero exit, and always reports elapsed time on the way out.
const harnessTemplate = `import sys
import time

start_time = time.time()

try:
%s
except Exception as e:
    print(f"Execution error: {e}", file=sys.stderr)
    sys.exit(1)
finally:
    elapsed = time.time() - start_time
    print(f"\nExecution time: {elapsed:.2f}s", file=sys.stderr)
`

// wrapCode embeds the payload into the self-timing harness.
func wrapCode(code string) string {
	return fmt.Sprintf(harnessTemplate, indentCode(code, 1))
}

// indentCode shifts every payload line right so it nests under the harness
// try block.
func indentCode(code string, levels int) string {
	indent := strings.Repeat("    ", levels)
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
