// Package ident generates unique 64-bit identifiers without touching the
// network or the database, so records created offline keep stable keys if
// they are later written to the remote store.
package ident

import (
	"sync"
	"time"
)

const (
	sequenceBits  = 20
	sequenceMask  = (1 << sequenceBits) - 1
	timestampMask = (1 << 43) - 1
)

// Generator produces roughly-increasing int64 IDs: 43 bits of millisecond
// wall-clock time followed by a 20-bit per-millisecond sequence. Within one
// process IDs are strictly increasing as long as fewer than 2^20 are taken
// in the same millisecond; past that the sequence wraps and collisions are
// possible. That bound is accepted, not handled.
type Generator struct {
	mu     sync.Mutex
	lastMs int64
	seq    int64
}

func New() *Generator {
	return &Generator{}
}

// NextID returns the next identifier. Safe for concurrent use.
func (g *Generator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UnixMilli()
	if now == g.lastMs {
		g.seq = (g.seq + 1) & sequenceMask
	} else {
		g.seq = 0
	}
	g.lastMs = now

	return (now&timestampMask)<<sequenceBits | g.seq
}
