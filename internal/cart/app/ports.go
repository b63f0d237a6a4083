package app

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Storage.Load when nothing is stored under key.
var ErrNotFound = errors.New("cart: no stored cart")

// Storage is a string-keyed blob store holding one serialized cart per key.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Recorder receives counters for store activity.
type Recorder interface {
	CommandApplied(command string)
	CommandRejected(command string)
	PersistenceFailed(op string)
}

type nopRecorder struct{}

func (nopRecorder) CommandApplied(string)    {}
func (nopRecorder) CommandRejected(string)   {}
func (nopRecorder) PersistenceFailed(string) {}
