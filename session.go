package omgo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// SessionOptions configures a Session.
type SessionOptions struct {
	// SkipMessageCheck disables the per-command query of the OMC message
	// log. Commands then never fail with *OMCError, only with transport
	// or parse errors.
	SkipMessageCheck bool
	Verbose          bool
}

// Session drives one OMC server: it sends expressions over a Transport,
// surfaces the OMC message log as errors, and parses replies with the typed
// grammar first and the heuristic reassembler as fallback. All methods are
// serialized; a Session may be shared between goroutines.
type Session struct {
	opts      SessionOptions
	transport Transport
	proc      *Process // non-nil when the session owns the server

	mu     sync.Mutex
	closed bool
}

// NewSession wraps an already connected transport.
func NewSession(t Transport, opts SessionOptions) *Session {
	return &Session{opts: opts, transport: t}
}

// Connect dials a running OMC server at the given ZeroMQ endpoint.
func Connect(ctx context.Context, endpoint string, opts SessionOptions) (*Session, error) {
	t, err := DialZMQ(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return NewSession(t, opts), nil
}

// Launch spawns a local omc server and connects to it. Closing the session
// also shuts the server down.
func Launch(ctx context.Context, omc OMCOptions, opts SessionOptions) (*Session, error) {
	proc, err := StartOMC(ctx, omc)
	if err != nil {
		return nil, err
	}
	t, err := DialZMQ(ctx, proc.Endpoint)
	if err != nil {
		proc.Close()
		return nil, err
	}
	s := NewSession(t, opts)
	s.proc = proc
	return s, nil
}

// Reply pairs the raw reply text with its parsed form. Tree is non-nil only
// when the heuristic fallback was used; Value then holds the scalar result
// if the reply was one, and None otherwise.
type Reply struct {
	Raw   string
	Value Value
	Tree  *Tree
}

// SendExpression evaluates one expression and parses the reply.
// Replies the typed grammar rejects go through the heuristic reassembler;
// when both parsers fail the error carries the raw reply text for
// diagnosis.
func (s *Session) SendExpression(ctx context.Context, expr string) (*Reply, error) {
	raw, err := s.SendRaw(ctx, expr)
	if err != nil {
		return nil, err
	}

	v, err := ParseTyped(raw)
	if err == nil {
		return &Reply{Raw: raw, Value: v}, nil
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		return nil, err
	}
	s.logf("typed parser rejected reply for %q (%v), trying the heuristic parser", expr, err)

	res, berr := ParseBasic(raw)
	if berr != nil {
		return nil, fmt.Errorf("cannot parse reply from OMC for %q: %w (raw reply: %q)", expr, berr, raw)
	}
	reply := &Reply{Raw: raw, Tree: res.Tree}
	if res.Scalar != nil {
		reply.Value = *res.Scalar
	}
	return reply, nil
}

// SendRaw evaluates one expression and returns the raw reply text without
// parsing it. The OMC message log is still checked unless the session was
// configured not to, or the expression is itself a log query.
func (s *Session) SendRaw(ctx context.Context, expr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", fmt.Errorf("session is closed")
	}
	s.logf("sendExpression(%q)", expr)

	if expr == "quit()" {
		// the server may exit before replying; a failed receive is fine
		raw, _ := s.transport.Send(ctx, expr)
		s.shutdownLocked()
		return raw, nil
	}

	raw, err := s.transport.Send(ctx, expr)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(raw, "Error occurred building AST") {
		return "", fmt.Errorf("OMC error: %s", raw)
	}
	if s.opts.SkipMessageCheck || expr == "getErrorString()" || expr == "getMessagesStringInternal()" {
		return raw, nil
	}

	logRaw, err := s.transport.Send(ctx, "getMessagesStringInternal()")
	if err != nil {
		return "", fmt.Errorf("query OMC message log: %w", err)
	}
	msgs := parseMessages(logRaw)
	var errored []OMCMessage
	for _, m := range msgs {
		s.logf("OMC %s: %s", m.Level, m)
		if m.Level == "error" {
			errored = append(errored, m)
		}
	}
	if len(errored) > 0 {
		return "", &OMCError{Expr: expr, Messages: errored}
	}
	return raw, nil
}

// Version asks the server for its version string.
func (s *Session) Version(ctx context.Context) (string, error) {
	r, err := s.SendExpression(ctx, "getVersion()")
	if err != nil {
		return "", err
	}
	return r.Value.Str, nil
}

// LoadFile loads a Modelica file into the server.
func (s *Session) LoadFile(ctx context.Context, path string) error {
	return s.expectTrue(ctx, fmt.Sprintf(`loadFile("%s")`, EscapeString(path)))
}

// LoadString loads Modelica source text into the server.
func (s *Session) LoadString(ctx context.Context, code string) error {
	return s.expectTrue(ctx, fmt.Sprintf(`loadString("%s")`, EscapeString(code)))
}

// Cd changes the server's working directory and returns the new one.
func (s *Session) Cd(ctx context.Context, dir string) (string, error) {
	expr := "cd()"
	if dir != "" {
		expr = fmt.Sprintf(`cd("%s")`, EscapeString(dir))
	}
	r, err := s.SendExpression(ctx, expr)
	if err != nil {
		return "", err
	}
	return r.Value.Str, nil
}

func (s *Session) expectTrue(ctx context.Context, expr string) error {
	r, err := s.SendExpression(ctx, expr)
	if err != nil {
		return err
	}
	if r.Value.Kind != KindBoolean || !r.Value.Bool {
		return fmt.Errorf("%s returned %s", expr, r.Value)
	}
	return nil
}

// Quit asks the server to exit and closes the session.
func (s *Session) Quit(ctx context.Context) error {
	_, err := s.SendRaw(ctx, "quit()")
	return err
}

// Close shuts the transport down and, when the session owns the server
// process, kills it.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdownLocked()
}

func (s *Session) shutdownLocked() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.transport.Close()
	if s.proc != nil {
		if perr := s.proc.Close(); err == nil {
			err = perr
		}
	}
	return err
}

func (s *Session) logf(format string, args ...any) {
	if s.opts.Verbose {
		fmt.Printf("[SESSION] "+format+"\n", args...)
	}
}

// EscapeString quotes a value for embedding inside a double-quoted OMC
// expression argument.
func EscapeString(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `"`, `\"`)
}
