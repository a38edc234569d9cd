package subprocess

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/wagiedev/codex-agent-sdk-go/internal/config"
	"github.com/wagiedev/codex-agent-sdk-go/internal/errors"
	"github.com/wagiedev/codex-agent-sdk-go/internal/jsonrpc"
	"github.com/wagiedev/codex-agent-sdk-go/internal/launcher"
)

// maxStderrBufferSize is the maximum size for the stderr buffer.
// Stderr reading continues indefinitely (callback receives all lines),
// but the buffer stops growing after this limit to prevent unbounded
// memory usage.
const maxStderrBufferSize = 10 * 1024 * 1024 // 10MB

// AppServer implements Transport by spawning a codex app-server subprocess.
type AppServer struct {
	log            *slog.Logger
	options        *config.Options
	codexPath      string
	args           []string
	env            []string
	cwd            string
	maxLineBytes   int
	cmd            *exec.Cmd
	stdin          io.WriteCloser
	stdout         io.ReadCloser
	stderr         io.ReadCloser
	stderrCallback func(string) // Callback for streaming stderr output
	mu             sync.Mutex   // Protects stdin writes
	reading        bool         // Whether ReadMessages has started the read loop
	closing        bool         // Whether Close() has been called (intentional shutdown)
	stdinClosed    bool         // Whether stdin was closed (e.g., due to context cancellation)
}

// Compile-time verification that AppServer implements the Transport interface.
var _ config.Transport = (*AppServer)(nil)

// NewAppServer creates a new app-server transport with the given options.
//
// The logger is used for operation tracking and debugging. It will receive
// debug, info, warn, and error messages during transport operations.
//
// Binary discovery is deferred to Start(), which searches for the codex
// binary in the following order:
//  1. The explicit path in options.CodexPath (if provided)
//  2. The system PATH
//  3. Common installation directories (/usr/local/bin, /usr/bin, ~/.local/bin)
//
// Start() returns CodexNotFoundError if the binary cannot be located.
func NewAppServer(log *slog.Logger, options *config.Options) *AppServer {
	maxLineBytes := options.MaxLineBytes
	if maxLineBytes <= 0 {
		maxLineBytes = config.DefaultMaxLineBytes
	}

	return &AppServer{
		log:            log.With("component", "app_server"),
		options:        options,
		maxLineBytes:   maxLineBytes,
		stderrCallback: options.Stderr,
	}
}

// Start starts the app-server subprocess.
//
// This method discovers the codex binary, builds command arguments,
// and spawns the process with the configured environment variables.
// It sets up stdin, stdout, and stderr pipes for communication.
//
// Returns CodexNotFoundError if the binary cannot be located,
// or ConnectionError if the process fails to start.
func (t *AppServer) Start(ctx context.Context) error {
	t.log.Info("Starting codex app-server subprocess")

	// Discover codex binary
	discoverer := launcher.NewDiscoverer(&launcher.Config{
		CodexPath:        t.options.CodexPath,
		SkipVersionCheck: t.options.SkipVersionCheck,
		Logger:           t.log,
	})

	codexPath, err := discoverer.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover codex: %w", err)
	}

	t.codexPath = codexPath

	// Build command arguments
	t.args = launcher.BuildArgs(t.options)
	t.log.Debug("Built command arguments", "args", t.args)

	// Build environment
	t.env = launcher.BuildEnvironment(t.options)

	// Set working directory
	t.cwd = t.options.Cwd
	if t.cwd == "" {
		t.cwd, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
	}

	t.log.Debug("Set working directory", "cwd", t.cwd)

	// The context bounds discovery and the version probe only. The process
	// itself is not tied to it: a startup deadline expiring later must not
	// kill a healthy session. Close() owns termination.
	//nolint:gosec // G204: Subprocess launching with dynamic args is expected for server invocation
	cmd := exec.Command(t.codexPath, t.args...)
	cmd.Dir = t.cwd
	cmd.Env = t.env

	// Set up stdin pipe for sending messages
	stdin, err := cmd.StdinPipe()
	if err != nil {
		t.log.Error("Failed to create stdin pipe", "error", err)

		return &errors.ConnectionError{Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	t.stdin = stdin

	// Set up stdout pipe
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.log.Error("Failed to create stdout pipe", "error", err)

		return &errors.ConnectionError{Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	t.stdout = stdout

	// Set up stderr pipe for log output
	stderr, err := cmd.StderrPipe()
	if err != nil {
		t.log.Error("Failed to create stderr pipe", "error", err)

		return &errors.ConnectionError{Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	t.stderr = stderr

	// Start the process
	if err := cmd.Start(); err != nil {
		t.log.Error("Failed to start app-server process", "error", err)

		return &errors.ConnectionError{Err: fmt.Errorf("start process: %w", err)}
	}

	t.cmd = cmd
	t.log.Info("codex app-server subprocess started successfully", "pid", cmd.Process.Pid)

	return nil
}

// ReadMessages reads wire messages from the app-server stdout.
//
// This method starts a goroutine that reads line-delimited JSON from the
// process stdout. Each line is decoded into a jsonrpc.Message and sent to
// the messages channel.
//
// The goroutine exits when:
//   - The app-server process terminates
//   - The context is cancelled
//   - An unrecoverable read error occurs
//
// Oversized lines and decode failures for individual messages are sent to
// the error channel but do not stop message processing. Every exit path
// falls through to reaping the child's exit status, so the process never
// lingers as a zombie. The goroutine closes both channels when it exits.
func (t *AppServer) ReadMessages(
	ctx context.Context,
) (<-chan jsonrpc.Message, <-chan error) {
	messages := make(chan jsonrpc.Message)
	errs := make(chan error, 1)

	t.mu.Lock()
	t.reading = true
	t.mu.Unlock()

	// Start stderr streaming goroutine
	var stderrWg sync.WaitGroup

	var stderrBuffer strings.Builder

	var stderrMu sync.Mutex

	// Always buffer stderr for error reporting (must complete reads before Wait())
	// See: https://pkg.go.dev/os/exec#Cmd.StderrPipe

	stderrWg.Go(func() {
		// Simple scanner loop - relies on process kill to close pipes and unblock
		// reads. No nested goroutine needed: when Close() kills the process, the
		// OS closes all pipes, which reliably returns from blocked Read() calls.
		scanner := newLineScanner(t.stderr, t.maxLineBytes)

		for {
			// Check context between lines for cooperative cancellation
			select {
			case <-ctx.Done():
				return
			default:
			}

			lineBytes, err := scanner.ReadLine()
			if err != nil {
				if stderrors.Is(err, io.EOF) {
					return
				}

				// Oversized or failed stderr lines are dropped, not fatal
				t.log.Debug("Stderr read error", "error", err)

				var tooLong *errors.LineTooLongError
				if stderrors.As(err, &tooLong) {
					continue
				}

				return
			}

			line := string(lineBytes)

			// Buffer stderr for error reporting (capped at maxStderrBufferSize)
			stderrMu.Lock()

			if stderrBuffer.Len() < maxStderrBufferSize {
				if stderrBuffer.Len() > 0 {
					stderrBuffer.WriteString("\n")
				}

				stderrBuffer.WriteString(line)
			}

			stderrMu.Unlock()

			// Invoke callback if set
			if t.stderrCallback != nil {
				t.stderrCallback(line)
			}
		}
	})

	go func() {
		defer close(messages)
		defer close(errs)
		defer t.log.Debug("ReadMessages goroutine stopped")

		scanner := newLineScanner(t.stdout, t.maxLineBytes)

		messageCount := 0

	readLoop:
		for {
			select {
			case <-ctx.Done():
				t.log.Debug("Context cancelled during scan", "error", ctx.Err())

				select {
				case errs <- ctx.Err():
				default:
				}

				break readLoop
			default:
			}

			line, err := scanner.ReadLine()
			if err != nil {
				if stderrors.Is(err, io.EOF) {
					break readLoop
				}

				var tooLong *errors.LineTooLongError
				if stderrors.As(err, &tooLong) {
					// The oversized line was consumed; subsequent lines parse cleanly
					t.log.Warn("Dropping oversized line from app-server",
						"limit", tooLong.Limit,
					)

					select {
					case errs <- err:
					case <-ctx.Done():
						break readLoop
					}

					continue
				}

				t.log.Error("Read error on app-server stdout", "error", err)

				select {
				case errs <- fmt.Errorf("read stdout: %w", err):
				case <-ctx.Done():
				}

				break readLoop
			}

			// Skip blank keepalive lines
			if len(line) == 0 {
				continue
			}

			msg, err := jsonrpc.Decode(line)
			if err != nil {
				t.log.Debug("Failed to decode message", "error", err, "message", string(line))

				select {
				case errs <- err:
				case <-ctx.Done():
					break readLoop
				}

				continue
			}

			messageCount++
			t.log.Debug("Received message from app-server", "message_count", messageCount)

			select {
			case messages <- msg:
			case <-ctx.Done():
				t.log.Debug("Context cancelled during message send", "error", ctx.Err())

				select {
				case errs <- ctx.Err():
				default:
				}

				break readLoop
			}
		}

		// Wait for stderr goroutine before process wait
		stderrWg.Wait()

		// Wait for process to exit and capture any errors
		t.log.Debug("Waiting for app-server process to exit")

		if err := t.cmd.Wait(); err != nil {
			// Check if this is an intentional shutdown
			t.mu.Lock()
			isClosing := t.closing
			t.mu.Unlock()

			if isClosing {
				t.log.Debug("app-server process terminated during shutdown")

				return
			}

			// Use buffered stderr for error reporting
			stderrMu.Lock()

			stderrOutput := stderrBuffer.String()

			stderrMu.Unlock()

			exitCode := 0

			if exitErr, ok := stderrors.AsType[*exec.ExitError](err); ok {
				exitCode = exitErr.ExitCode()
			}

			t.log.Error("app-server process exited with error", "exit_code", exitCode, "stderr", stderrOutput)

			// The consumer may already be gone when the context is done;
			// do not block on a channel nobody drains.
			select {
			case errs <- &errors.ProcessError{
				ExitCode: exitCode,
				Stderr:   stderrOutput,
				Err:      err,
			}:
			case <-ctx.Done():
			}
		} else {
			t.log.Info("app-server process exited successfully")
		}
	}()

	return messages, errs
}

// SendMessage sends an encoded message to the app-server stdin.
//
// The data should be a complete JSON message followed by a newline.
// This method is safe for concurrent use and respects context cancellation
// even during blocking writes. Concurrent calls are serialized, so a
// message is never interleaved inside another.
//
// If context is cancelled during a blocked write, stdin is closed to unblock
// the goroutine (safe since Go 1.9+). Subsequent calls will return ErrStdinClosed.
func (t *AppServer) SendMessage(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdinClosed {
		return errors.ErrStdinClosed
	}

	if t.stdin == nil {
		return errors.ErrTransportNotStarted
	}

	// Check context before starting
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.log.Debug("Sending message to app-server", "data_len", len(data))

	// Ensure data ends with newline
	// Use explicit copy to avoid mutating caller's backing array if slice has spare capacity
	if len(data) == 0 || data[len(data)-1] != '\n' {
		newData := make([]byte, len(data)+1)
		copy(newData, data)
		newData[len(data)] = '\n'
		data = newData
	}

	// Write in goroutine to respect context cancellation
	done := make(chan error, 1)

	go func() {
		_, err := t.stdin.Write(data)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.log.Error("Failed to write message to app-server", "error", err)

			return fmt.Errorf("write to stdin: %w", err)
		}

		t.log.Debug("Message sent successfully")

		return nil

	case <-ctx.Done():
		t.log.Debug("Context cancelled during write, closing stdin")
		// Close stdin to unblock the blocked Write (safe since Go 1.9+)
		if t.stdin != nil {
			_ = t.stdin.Close()
			t.stdinClosed = true
		}
		// Wait for goroutine to exit with timeout to prevent leak
		select {
		case <-done:
			// Write goroutine exited cleanly
		case <-time.After(1 * time.Second):
			t.log.Warn("Write goroutine did not exit after stdin close, potential leak")
		}

		return ctx.Err()
	}
}

// IsReady checks if the transport is ready for communication.
//
// Returns true if the app-server process is running and stdin is open.
func (t *AppServer) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cmd != nil && t.cmd.Process != nil && t.stdin != nil && !t.stdinClosed
}

// EndInput ends the input stream (closes stdin for process transports).
//
// This signals to the app-server that no more input will be sent. The
// process will finish any in-flight work and then exit normally.
func (t *AppServer) EndInput() error {
	return t.CloseStdin()
}

// CloseStdin closes the stdin pipe to signal end of input.
func (t *AppServer) CloseStdin() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdin != nil && !t.stdinClosed {
		t.log.Debug("Closing stdin pipe")

		err := t.stdin.Close()
		t.stdinClosed = true
		t.stdin = nil

		return err
	}

	return nil
}

// Close terminates the app-server process.
//
// This forcefully kills the process using SIGKILL. It's safe to call
// Close multiple times or on an already-terminated process. When no
// read loop is running, the exit status is reaped here so the child
// never lingers as a zombie.
func (t *AppServer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closing = true
	t.stdinClosed = true

	if t.cmd != nil && t.cmd.Process != nil {
		t.log.Debug("Killing app-server process", "pid", t.cmd.Process.Pid)

		if err := t.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("kill app-server process (pid %d): %w", t.cmd.Process.Pid, err)
		}

		if !t.reading {
			// The ReadMessages goroutine normally reaps via Wait; with no
			// reader the exit status must be collected here.
			_ = t.cmd.Wait()
		}
	}

	return nil
}
