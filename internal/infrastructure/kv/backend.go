package kv

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"
)

// ErrClosed is returned by backends after Close.
var ErrClosed = errors.New("kv: backend closed")

// OpKind distinguishes the operations of a batch.
type OpKind int

const (
	OpSet OpKind = iota
	OpRemove
)

// Op is one write of an atomic batch.
type Op struct {
	Kind  OpKind
	Key   string
	Value any
}

// Set builds a set operation.
func Set(key string, value any) Op {
	return Op{Kind: OpSet, Key: key, Value: value}
}

// Remove builds a remove operation.
func Remove(key string) Op {
	return Op{Kind: OpRemove, Key: key}
}

// Backend is a flat durable key namespace holding JSON-serializable values.
// Values read back are JSON-decoded, so numbers come back as float64, objects
// as map[string]any and arrays as []any.
type Backend interface {
	Get(ctx context.Context, key string) (any, bool, error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)
	// Apply performs every op or none of them.
	Apply(ctx context.Context, ops []Op) error
	Close() error
}

func encode(value any) ([]byte, error) {
	return sonic.Marshal(value)
}

func decode(data []byte) (any, error) {
	var value any
	if err := sonic.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return value, nil
}
