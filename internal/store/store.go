// Package store defines the two collaborators the core talks to: a shared remote document store and a
// small client-local key/value store.
package store

import "context"

// Document is a flat field set, the unit the remote store reads and writes.
type Document map[string]any

func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Child is one appended entry of a collection path.
type Child struct {
	ID  string
	Doc Document
}

// Snapshot is the full value at a path. Doc is set for written paths, Children for appended ones;
// both are empty when nothing was ever stored there.
type Snapshot struct {
	Path     string
	Doc      Document
	Children []Child
}

// RemoteStore is the shared store every client reads and writes.
//
// Write replaces the value at path wholesale; concurrent writers race and the last one wins. There is
// no read-modify-write primitive: callers that derive a write from a snapshot can lose updates.
//
// AppendUnique adds a child under path with a store-assigned id. Children keep insertion order.
//
// Subscribe delivers the current value first and then a full snapshot after every change. Delivery is
// conflated so a slow reader only sees the newest snapshot. The channel is closed when ctx ends or the
// subscription is lost.
type RemoteStore interface {
	Write(ctx context.Context, path string, doc Document) error
	AppendUnique(ctx context.Context, path string, doc Document) (string, error)
	Subscribe(ctx context.Context, path string) (<-chan Snapshot, error)
}

// LocalStore is durable storage private to one client.
type LocalStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Offer replaces whatever is buffered in ch with v. ch must have capacity 1 and a single sender.
func Offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
