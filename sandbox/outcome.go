package sandbox

// Outcome is the terminal record of one sandboxed execution. Expected failure
// modes (non-zero exit, timeout) are encoded here rather than raised.
type Outcome struct {
	// Succeeded is true only when the child exited normally with code 0.
	Succeeded bool `json:"succeeded"`

	// Stdout and Stderr hold the captured child streams. On timeout both are
	// empty: the process is killed, not drained.
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`

	// ExitCode is the child's exit code; -1 means the process did not exit
	// normally (timeout or abnormal termination).
	ExitCode int `json:"exitCode"`

	// WallTime is the elapsed execution time in seconds.
	WallTime float64 `json:"wallTime"`

	// MemoryPeak is the best-effort peak resident memory in bytes, 0 when the
	// platform did not report it.
	MemoryPeak int64 `json:"memoryPeak"`
}
