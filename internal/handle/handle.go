// Package handle tracks the validity of native handles that form ownership
// chains (device -> client -> service -> connection).
//
// Every wrapper stores a [Lock] instead of the raw native handle. A Lock points
// to a shared cell holding the handle and a one-way liveness flag, and to the
// Lock of the object it was derived from. Before using the handle a wrapper
// calls [Lock.Check], which only succeeds when the whole chain is still alive.
//
// Invalidation is local: releasing an object marks its own cell dead and
// nothing else. Descendants are not reachable from their parent, so they find
// out about a dead ancestor on their next Check.
package handle

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/native"
)

// ErrInvalid is returned by Check when the handle or any of its ancestors has
// been released.
var ErrInvalid = fmt.Errorf("invalid handle: %w", model.ErrMissingDependency)

type cell struct {
	value native.Handle
	alive atomic.Bool
}

// Lock is a shared, chainable reference to a native handle.
type Lock struct {
	cell   *cell
	parent *Lock
}

// New wraps h as a live handle derived from parent. A nil parent makes the Lock
// the root of its chain.
func New(h native.Handle, parent *Lock) *Lock {
	c := &cell{value: h}
	c.alive.Store(true)

	return &Lock{cell: c, parent: parent}
}

// Clone returns a Lock sharing the same cell and ancestors. Invalidating any of
// the two is observed by both.
func (l *Lock) Clone() *Lock {
	return &Lock{cell: l.cell, parent: l.parent}
}

// Check returns the handle when the Lock and all its ancestors are alive.
func (l *Lock) Check() (native.Handle, error) {
	if l == nil || l.cell == nil {
		return native.NullHandle, ErrInvalid
	}

	for cur := l; cur != nil; cur = cur.parent {
		if !cur.cell.alive.Load() {
			return native.NullHandle, ErrInvalid
		}
	}

	return l.cell.value, nil
}

// Invalidate marks the handle as dead. Only the call that performs the
// transition returns true. Ancestors and siblings are left untouched.
func (l *Lock) Invalidate() bool {
	if l == nil || l.cell == nil {
		return false
	}
	return l.cell.alive.CompareAndSwap(true, false)
}

// Release invalidates the handle and calls free with it when the whole chain
// was still alive. free runs at most once per cell, no matter how many clones
// release it or how many times. It returns whether free was called.
func (l *Lock) Release(free func(native.Handle)) bool {
	h, err := l.Check()
	if !l.Invalidate() {
		return false
	}

	// An ancestor was released first, the native object is already gone with it.
	if errors.Is(err, ErrInvalid) {
		return false
	}

	free(h)
	return true
}

// Alive reports the liveness of this handle only, ignoring its ancestors.
func (l *Lock) Alive() bool {
	return l != nil && l.cell != nil && l.cell.alive.Load()
}

// Parent returns the Lock this one was derived from, nil for roots.
func (l *Lock) Parent() *Lock {
	if l == nil {
		return nil
	}
	return l.parent
}

// Depth returns the number of ancestors of the Lock.
func (l *Lock) Depth() int {
	depth := 0
	for cur := l.Parent(); cur != nil; cur = cur.parent {
		depth++
	}
	return depth
}
