// Package sandbox executes untrusted, caller-supplied code in an isolated,
// resource-constrained child process. The payload is wrapped in a self-timing
// harness, persisted to a private temporary artifact, and run under an
// address-space/CPU-time ceiling with a hard wall-clock deadline.
package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/swarmlab/swarm/internal/clock"
	"github.com/swarmlab/swarm/internal/idgen"
	"github.com/swarmlab/swarm/tracing"
)

// Config represents sandbox configuration.
type Config struct {
	// Timeout is the hard wall-clock deadline per execution.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MemoryMB caps the child's address space, in megabytes.
	MemoryMB int `json:"memoryMb" yaml:"memoryMb"`

	// CPUSeconds caps the child's cumulative CPU time.
	CPUSeconds int `json:"cpuSeconds" yaml:"cpuSeconds"`

	// Interpreter runs the wrapped program (default python3).
	Interpreter string `json:"interpreter" yaml:"interpreter"`

	// Location is the base URL for per-call program artifacts; defaults to
	// the OS temp directory.
	Location string `json:"location" yaml:"location"`
}

// DefaultConfig returns the default sandbox configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:     300 * time.Second,
		MemoryMB:    512,
		CPUSeconds:  600,
		Interpreter: "python3",
	}
}

// Validate reports invalid settings.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("sandbox.timeout must be > 0")
	}
	if c.MemoryMB < 0 || c.CPUSeconds < 0 {
		return fmt.Errorf("sandbox resource ceilings must not be negative")
	}
	return nil
}

// Service executes code payloads in sandboxed child processes.
type Service struct {
	config Config
	fs     afs.Service
}

// New creates a sandbox service. Zero-value config fields inherit defaults.
func New(config Config) *Service {
	defaults := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MemoryMB == 0 {
		config.MemoryMB = defaults.MemoryMB
	}
	if config.CPUSeconds == 0 {
		config.CPUSeconds = defaults.CPUSeconds
	}
	if config.Interpreter == "" {
		config.Interpreter = defaults.Interpreter
	}
	if config.Location == "" {
		config.Location = os.TempDir()
	}
	return &Service{config: config, fs: afs.New()}
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.config
}

// Execute wraps the payload, persists it to a private temporary artifact and
// runs it as an isolated child process. Non-zero exits and timeouts come back
// inside the Outcome; only infrastructure failures (artifact persistence,
// process spawn) return an error.
func (s *Service) Execute(ctx context.Context, code, callerID string) (o Outcome, err error) {
	ctx, span := tracing.StartSpan(ctx, "sandbox.Execute", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"caller.id": callerID})

	artifact := url.Join(s.config.Location, fmt.Sprintf("swarm-%s.py", idgen.New()))
	if err = s.fs.Upload(ctx, artifact, file.DefaultFileOsMode, strings.NewReader(wrapCode(code))); err != nil {
		return Outcome{}, fmt.Errorf("failed to persist execution artifact: %w", err)
	}
	defer func() {
		// the artifact is private to this call and must not outlive it; the
		// caller's ctx may already be cancelled by the time cleanup runs
		_ = s.fs.Delete(context.Background(), artifact)
	}()

	return s.run(ctx, url.Path(artifact))
}

// run launches the wrapped program in its own process group, with the limit
// prelude installed ahead of the interpreter, and enforces the wall-clock
// deadline.
func (s *Service) run(ctx context.Context, programPath string) (Outcome, error) {
	limits := Limits{
		MemoryBytes: int64(s.config.MemoryMB) << 20,
		CPUSeconds:  s.config.CPUSeconds,
	}
	script := fmt.Sprintf("%s; exec %s %s", limits.Prelude(), s.config.Interpreter, programPath)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command("/bin/sh", "-c", script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	started := clock.Now()
	if err := cmd.Start(); err != nil {
		return Outcome{}, fmt.Errorf("failed to spawn sandbox process: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(s.config.Timeout)
	defer timer.Stop()

	select {
	case <-done:
		elapsed := clock.Now().Sub(started).Seconds()
		exitCode := cmd.ProcessState.ExitCode()
		return Outcome{
			Succeeded:  exitCode == 0,
			Stdout:     stdout.String(),
			Stderr:     stderr.String(),
			ExitCode:   exitCode,
			WallTime:   elapsed,
			MemoryPeak: peakMemory(cmd),
		}, nil
	case <-timer.C:
		s.terminate(cmd)
		<-done
		// partial output is discarded: the process was killed, not drained
		return Outcome{
			Succeeded: false,
			Stderr:    fmt.Sprintf("execution timeout after %gs", s.config.Timeout.Seconds()),
			ExitCode:  -1,
			WallTime:  s.config.Timeout.Seconds(),
		}, nil
	case <-ctx.Done():
		s.terminate(cmd)
		<-done
		return Outcome{}, ctx.Err()
	}
}

// terminate kills the whole process group so grandchildren spawned by the
// payload do not survive the deadline.
func (s *Service) terminate(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
		return
	}
	_ = cmd.Process.Kill()
}

// peakMemory reads the child's maximum resident set size from its rusage.
// Linux reports kilobytes.
func peakMemory(cmd *exec.Cmd) int64 {
	if cmd.ProcessState == nil {
		return 0
	}
	usage, ok := cmd.ProcessState.SysUsage().(*syscall.Rusage)
	if !ok || usage == nil {
		return 0
	}
	return usage.Maxrss * 1024
}
