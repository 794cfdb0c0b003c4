package forge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/creack/pty"

	"github.com/osmium-toolchains/osmium-cli/internal/domain/config"
	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

const chunkSize = 4096

// ForgeAdapter starts forge subprocesses in the project root and streams their output
type ForgeAdapter struct {
	log         *slog.Logger
	projectRoot string
	binary      string
	usePTY      bool
	profile     string
}

var _ usecase.ForgeRunner = (*ForgeAdapter)(nil)

// NewForgeAdapter creates a new forge runner
func NewForgeAdapter(cfg *config.RuntimeConfig, log *slog.Logger) *ForgeAdapter {
	binary := cfg.ForgeBinary
	if binary == "" {
		binary = "forge"
	}
	return &ForgeAdapter{
		log:         log.With("component", "ForgeAdapter"),
		projectRoot: cfg.ProjectRoot,
		binary:      binary,
		usePTY:      cfg.ForgePTY,
		profile:     cfg.FoundryProfile,
	}
}

// Script broadcasts a deployment script
func (f *ForgeAdapter) Script(ctx context.Context, run usecase.ScriptRun) (usecase.Execution, error) {
	return f.start(ctx, BuildScriptArgs(run))
}

// Create deploys a single contract
func (f *ForgeAdapter) Create(ctx context.Context, run usecase.CreateRun) (usecase.Execution, error) {
	return f.start(ctx, BuildCreateArgs(run))
}

// BuildScriptArgs builds the forge script command arguments
func BuildScriptArgs(run usecase.ScriptRun) []string {
	args := []string{"script", run.Target, "--rpc-url", run.RPCURL, "--broadcast"}
	if run.Verify {
		args = append(args, "--verify")
	}
	return args
}

// BuildCreateArgs builds the forge create command arguments.
// --constructor-args consumes the rest of the line so it always comes last.
func BuildCreateArgs(run usecase.CreateRun) []string {
	args := []string{"create", run.Target, "--rpc-url", run.RPCURL, "--private-key", run.PrivateKey, "--broadcast"}
	if run.Value != nil && run.Value.Sign() > 0 {
		args = append(args, "--value", run.Value.String())
	}
	if run.GasLimit > 0 {
		args = append(args, "--gas-limit", strconv.FormatUint(run.GasLimit, 10))
	}
	if run.Verify {
		args = append(args, "--verify")
	}
	if len(run.ConstructorArgs) > 0 {
		args = append(args, "--constructor-args")
		args = append(args, run.ConstructorArgs...)
	}
	return args
}

func (f *ForgeAdapter) start(ctx context.Context, args []string) (usecase.Execution, error) {
	cmd := exec.CommandContext(ctx, f.binary, args...)
	cmd.Dir = f.projectRoot
	cmd.Env = os.Environ()
	if f.profile != "" {
		cmd.Env = append(cmd.Env, "FOUNDRY_PROFILE="+f.profile)
	}

	f.log.Debug("running forge", "args", redact(args), "dir", f.projectRoot, "pty", f.usePTY)

	e := &execution{
		chunks: make(chan usecase.Chunk, 64),
		done:   make(chan struct{}),
		start:  time.Now(),
		log:    f.log,
	}
	if f.usePTY {
		if err := e.startPTY(cmd); err != nil {
			return nil, err
		}
	} else {
		if err := e.startPipes(cmd); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// execution is a running forge process. Chunks must be drained for the process to finish.
type execution struct {
	chunks chan usecase.Chunk
	done   chan struct{}
	result usecase.ExecResult
	start  time.Time
	log    *slog.Logger

	stdout, stderr bytes.Buffer
}

func (e *execution) Chunks() <-chan usecase.Chunk { return e.chunks }

func (e *execution) Wait() usecase.ExecResult {
	<-e.done
	return e.result
}

func (e *execution) startPipes(cmd *exec.Cmd) error {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start forge: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go e.pump(&wg, stdout, usecase.Stdout, &e.stdout)
	go e.pump(&wg, stderr, usecase.Stderr, &e.stderr)

	go func() {
		// Wait must only be called once both pipes are drained
		wg.Wait()
		close(e.chunks)
		e.finish(cmd.Wait())
	}()
	return nil
}

func (e *execution) startPTY(cmd *exec.Cmd) error {
	ptyFile, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start pty: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go e.pump(&wg, ptyFile, usecase.Stdout, &e.stdout)

	go func() {
		// The pty reader ends with EIO once the child exits
		wg.Wait()
		close(e.chunks)
		waitErr := cmd.Wait()
		_ = ptyFile.Close()
		e.finish(waitErr)
	}()
	return nil
}

// pump forwards everything read from r as chunks and keeps a copy in buf
func (e *execution) pump(wg *sync.WaitGroup, r io.Reader, stream usecase.Stream, buf *bytes.Buffer) {
	defer wg.Done()
	b := make([]byte, chunkSize)
	for {
		n, err := r.Read(b)
		if n > 0 {
			data := append([]byte(nil), b[:n]...)
			buf.Write(data)
			e.chunks <- usecase.Chunk{Stream: stream, Data: data}
		}
		if err != nil {
			return
		}
	}
}

func (e *execution) finish(waitErr error) {
	e.result = usecase.ExecResult{
		Stdout: e.stdout.String(),
		Stderr: e.stderr.String(),
		Err:    waitErr,
	}
	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
		e.result.ExitCode = exitErr.ExitCode()
	default:
		e.result.ExitCode = -1
	}
	e.log.Debug("forge finished", "exitCode", e.result.ExitCode, "duration", time.Since(e.start))
	close(e.done)
}

// redact hides the value following --private-key for logging
func redact(args []string) []string {
	out := append([]string(nil), args...)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "--private-key" {
			out[i+1] = "***"
		}
	}
	return out
}
