package omgo

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-zeromq/zmq4"
)

// Transport delivers one command string to the engine and returns the raw
// reply text. Implementations must be safe for use from a single goroutine
// at a time; Session serializes access.
type Transport interface {
	Send(ctx context.Context, command string) (string, error)
	Close() error
}

// ZMQTransport talks to an OMC server over its ZeroMQ REQ/REP endpoint,
// the one omc publishes in its port file when started with
// --interactive=zmq.
type ZMQTransport struct {
	endpoint string

	mu   sync.Mutex
	sock zmq4.Socket
}

// DialZMQ connects to an OMC endpoint such as "tcp://127.0.0.1:44741".
func DialZMQ(ctx context.Context, endpoint string) (*ZMQTransport, error) {
	sock := zmq4.NewReq(ctx)
	conn, err := withRetry(ctx, DefaultRetryConfig(), "ZMQ dial", false, func() (zmq4.Socket, error) {
		if err := sock.Dial(endpoint); err != nil {
			return nil, err
		}
		return sock, nil
	})
	if err != nil {
		sock.Close()
		return nil, fmt.Errorf("connect to OMC at %s: %w", endpoint, err)
	}
	return &ZMQTransport{endpoint: endpoint, sock: conn}, nil
}

// Endpoint returns the address this transport is connected to.
func (t *ZMQTransport) Endpoint() string { return t.endpoint }

// Send performs one REQ/REP round trip.
func (t *ZMQTransport) Send(ctx context.Context, command string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sock == nil {
		return "", fmt.Errorf("transport is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := t.sock.Send(zmq4.NewMsgString(command)); err != nil {
		return "", fmt.Errorf("send to OMC: %w", err)
	}
	msg, err := t.sock.Recv()
	if err != nil {
		return "", fmt.Errorf("receive from OMC: %w", err)
	}
	if len(msg.Frames) == 0 {
		return "", nil
	}
	return string(msg.Frames[0]), nil
}

// Close shuts the socket down. Further Sends fail.
func (t *ZMQTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sock == nil {
		return nil
	}
	err := t.sock.Close()
	t.sock = nil
	return err
}
