package predicate

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Alias names the SQL join a contains/containsAny predicate introduces.
type Alias string

// LegacyAliasSpace is the size of the fixed, process-wide alias space of
// older releases. A CyclicAllocator of this size hands out M0..M49 and then
// starts over, so a 51st join-requiring predicate in the same statement
// collides with the first. Use it only to reproduce that behaviour.
const LegacyAliasSpace = 50

// AliasAllocator hands out join aliases at predicate construction.
// Implementations must be safe for concurrent use.
type AliasAllocator interface {
	Allocate() Alias
}

// AllocatorFunc adapts a function to AliasAllocator.
type AllocatorFunc func() Alias

// Allocate implements AliasAllocator.
func (f AllocatorFunc) Allocate() Alias { return f() }

// SequentialAllocator yields M0, M1, M2, ... without wrapping.
//
// Thread-safety: Allocate uses atomic operations.
type SequentialAllocator struct {
	next atomic.Int64
}

// NewSequentialAllocator creates an allocator starting at M0.
func NewSequentialAllocator() *SequentialAllocator {
	return &SequentialAllocator{}
}

// Allocate implements AliasAllocator.
func (a *SequentialAllocator) Allocate() Alias {
	return Alias(fmt.Sprintf("M%d", a.next.Add(1)-1))
}

// CyclicAllocator yields M0..M(size-1) and wraps.
type CyclicAllocator struct {
	size int64
	next atomic.Int64
}

// NewCyclicAllocator creates a wrapping allocator. size must be positive.
func NewCyclicAllocator(size int) *CyclicAllocator {
	if size <= 0 {
		panic(fmt.Sprintf("predicate: cyclic allocator size must be positive, got %d", size))
	}
	return &CyclicAllocator{size: int64(size)}
}

// Allocate implements AliasAllocator.
func (a *CyclicAllocator) Allocate() Alias {
	n := a.next.Add(1) - 1
	return Alias(fmt.Sprintf("M%d", n%a.size))
}

// UUIDAllocator yields globally unique aliases of the form M<32 hex digits>.
type UUIDAllocator struct{}

// NewUUIDAllocator creates a UUID-backed allocator.
func NewUUIDAllocator() UUIDAllocator {
	return UUIDAllocator{}
}

// Allocate implements AliasAllocator.
func (UUIDAllocator) Allocate() Alias {
	return Alias("M" + strings.ReplaceAll(uuid.NewString(), "-", ""))
}
