package protocol

import (
	"sync"

	"github.com/wagiedev/codex-agent-sdk-go/internal/errors"
)

// Phase is the lifecycle state of an app-server session.
type Phase int

const (
	// PhaseUninitialized is the state before the subprocess is spawned.
	PhaseUninitialized Phase = iota

	// PhaseInitializing covers the window between spawn and the completed
	// initialize handshake.
	PhaseInitializing

	// PhaseReady means the handshake finished and no thread is active.
	PhaseReady

	// PhaseThreadActive means a thread exists and no turn is running.
	PhaseThreadActive

	// PhaseTurnActive means a turn is currently running.
	PhaseTurnActive

	// PhaseClosed is terminal; no further operations are accepted.
	PhaseClosed
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "Uninitialized"
	case PhaseInitializing:
		return "Initializing"
	case PhaseReady:
		return "Ready"
	case PhaseThreadActive:
		return "ThreadActive"
	case PhaseTurnActive:
		return "TurnActive"
	case PhaseClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Session is the phase machine guarding every client operation. Operations
// validate the current phase before any bytes reach the wire; a violation
// produces a PhaseError and writes nothing. The turn-start transition
// happens before the write, with an explicit rollback when the write
// fails, so a turn-final notification can never race past an in-flight
// turn start.
type Session struct {
	mu       sync.Mutex
	phase    Phase
	threadID string
}

// NewSession returns a session in PhaseUninitialized.
func NewSession() *Session {
	return &Session{phase: PhaseUninitialized}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase
}

// ThreadID returns the tracked active thread id, or "" when none.
func (s *Session) ThreadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.threadID
}

// require returns a PhaseError unless the current phase is one of allowed.
// Callers must hold s.mu.
func (s *Session) require(op string, allowed ...Phase) error {
	for _, p := range allowed {
		if s.phase == p {
			return nil
		}
	}

	want := make([]string, len(allowed))
	for i, p := range allowed {
		want[i] = p.String()
	}

	return &errors.PhaseError{Op: op, Phase: s.phase.String(), Want: want}
}

// BeginSpawn transitions Uninitialized to Initializing.
func (s *Session) BeginSpawn() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("spawn", PhaseUninitialized); err != nil {
		return err
	}
	s.phase = PhaseInitializing

	return nil
}

// AbortSpawn rolls back a BeginSpawn whose process never came up, so the
// client may retry spawning.
func (s *Session) AbortSpawn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseInitializing {
		s.phase = PhaseUninitialized
	}
}

// CheckInitialize validates that the initialize handshake may be sent.
func (s *Session) CheckInitialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.require("initialize", PhaseInitializing)
}

// FinishInitialize transitions Initializing to Ready once the handshake
// response has arrived. A no-op in any other phase.
func (s *Session) FinishInitialize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseInitializing {
		s.phase = PhaseReady
	}
}

// CheckThreadStart validates that a thread may be started.
func (s *Session) CheckThreadStart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.require("thread/start", PhaseReady, PhaseThreadActive)
}

// FinishThreadStart records the started thread and enters ThreadActive.
// Starting a thread while another is tracked replaces the tracked thread.
func (s *Session) FinishThreadStart(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseClosed {
		return
	}
	s.threadID = threadID
	if s.phase == PhaseReady {
		s.phase = PhaseThreadActive
	}
}

// BeginTurn validates and enters TurnActive. The transition happens before
// the turn/start request is written; call AbortTurn if the write fails.
func (s *Session) BeginTurn() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("turn/start", PhaseThreadActive); err != nil {
		return err
	}
	s.phase = PhaseTurnActive

	return nil
}

// AbortTurn rolls back a BeginTurn whose write never reached the server.
func (s *Session) AbortTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseTurnActive {
		s.phase = PhaseThreadActive
	}
}

// CheckTurnSteer validates that input may be injected into a running turn.
func (s *Session) CheckTurnSteer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.require("turn/steer", PhaseTurnActive)
}

// CheckTurnInterrupt validates that a running turn may be interrupted.
// The phase stays TurnActive until the server confirms the interruption
// with a turn-final notification.
func (s *Session) CheckTurnInterrupt() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.require("turn/interrupt", PhaseTurnActive)
}

// CheckThreadArchive validates that a thread may be archived.
func (s *Session) CheckThreadArchive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.require("thread/archive", PhaseReady, PhaseThreadActive)
}

// FinishThreadArchive clears the tracked thread when it was the archived
// one, returning the session to Ready. Archiving any other thread leaves
// the phase alone.
func (s *Session) FinishThreadArchive(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.threadID == "" || threadID != s.threadID {
		return
	}
	s.threadID = ""
	if s.phase == PhaseThreadActive {
		s.phase = PhaseReady
	}
}

// CheckRespond validates that a server request may be answered. Responses
// are legal in every live phase after spawn.
func (s *Session) CheckRespond() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.require("respond", PhaseInitializing, PhaseReady, PhaseThreadActive, PhaseTurnActive)
}

// Observe updates the phase from an inbound notification. Turn-final
// notifications return the session to ThreadActive; all other methods are
// ignored.
func (s *Session) Observe(method string) {
	switch method {
	case MethodTurnCompleted, MethodTurnFailed:
		s.mu.Lock()
		if s.phase == PhaseTurnActive {
			s.phase = PhaseThreadActive
		}
		s.mu.Unlock()
	}
}

// Close transitions to PhaseClosed from any phase. Safe to call multiple
// times.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseClosed
}
