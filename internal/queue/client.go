package queue

import (
	"context"
	"errors"
	"time"
)

// ErrNoMessage is returned by Receive when the wait times out.
var ErrNoMessage = errors.New("queue: no message")

// Client sends messages to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Consumer receives raw message bodies, blocking up to timeout.
type Consumer interface {
	Receive(ctx context.Context, timeout time.Duration) (string, error)
}
