package cpu

import (
	"fmt"
)

// AccessKind is the direction of an access.
type AccessKind int

const (
	ACCESS_READ  = AccessKind(0)
	ACCESS_WRITE = AccessKind(1)
)

func (kind AccessKind) String() string {
	if kind == ACCESS_WRITE {
		return "write"
	}
	return "read"
}

// Location is a register slot, or a range of memory.
type Location struct {
	Memory  bool   // Set for memory; Slot is used otherwise.
	Slot    uint8  // Register slot.
	Address uint64 // Memory address.
	Width   int    // Memory access width, in bytes.
}

func (loc Location) String() string {
	if loc.Memory {
		return fmt.Sprintf("[%#x]/%d", loc.Address, loc.Width)
	}
	return SlotName(loc.Slot)
}

// Observer is told of the accesses of each notifying step, in the order
// they were made.
type Observer interface {
	OnAccess(kind AccessKind, loc Location, old, new uint64)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(kind AccessKind, loc Location, old, new uint64)

func (fn ObserverFunc) OnAccess(kind AccessKind, loc Location, old, new uint64) {
	fn(kind, loc, old, new)
}

// access is a recorded access.
type access struct {
	kind     AccessKind
	loc      Location
	old, new uint64
}
