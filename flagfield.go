package funcz

import (
	"fmt"
	"math/bits"
)

// Unsigned is the set of fixed-width unsigned integers a FlagField can
// hold.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// FlagFieldReader is the read-only view of a flag field.
type FlagFieldReader[T Unsigned] interface {
	// Size returns the bit width of the field.
	Size() int
	// GetAt reports whether the bit at index is set.
	GetAt(index int) bool
	// Get reports whether every bit in mask is set.
	Get(mask T) bool
	// GetAny reports whether at least one bit in mask is set.
	GetAny(mask T) bool
	// Value returns the raw bits.
	Value() T
}

// FlagFieldWriter is a flag field that can be modified.
type FlagFieldWriter[T Unsigned] interface {
	FlagFieldReader[T]
	SetAt(index int, value bool)
	SetMask(mask T, value bool)
	Set(value T)
	Clear()
}

// FlagField is a fixed-width set of bits. The zero value has every bit
// cleared. A FlagField is a plain value with no synchronization.
type FlagField[T Unsigned] struct {
	value T
}

// FlagField8 holds 8 flags.
type FlagField8 = FlagField[uint8]

// FlagField16 holds 16 flags.
type FlagField16 = FlagField[uint16]

// FlagField32 holds 32 flags.
type FlagField32 = FlagField[uint32]

// FlagField64 holds 64 flags.
type FlagField64 = FlagField[uint64]

// NewFlagField returns a field initialized to value.
func NewFlagField[T Unsigned](value T) *FlagField[T] {
	return &FlagField[T]{value: value}
}

// NewFlagField8 returns an 8-bit field initialized to value.
func NewFlagField8(value uint8) *FlagField8 { return NewFlagField(value) }

// NewFlagField16 returns a 16-bit field initialized to value.
func NewFlagField16(value uint16) *FlagField16 { return NewFlagField(value) }

// NewFlagField32 returns a 32-bit field initialized to value.
func NewFlagField32(value uint32) *FlagField32 { return NewFlagField(value) }

// NewFlagField64 returns a 64-bit field initialized to value.
func NewFlagField64(value uint64) *FlagField64 { return NewFlagField(value) }

// Size returns the bit width of T.
func (f *FlagField[T]) Size() int {
	return bits.OnesCount64(uint64(^T(0)))
}

// GetAt reports whether the bit at index is set.
// It panics if index is outside [0, Size()).
func (f *FlagField[T]) GetAt(index int) bool {
	return f.value&f.bit(index) != 0
}

// Get reports whether every bit in mask is set. An empty mask is
// trivially contained.
func (f *FlagField[T]) Get(mask T) bool {
	return f.value&mask == mask
}

// GetAny reports whether at least one bit in mask is set.
func (f *FlagField[T]) GetAny(mask T) bool {
	return f.value&mask != 0
}

// Value returns the raw bits.
func (f *FlagField[T]) Value() T {
	return f.value
}

// SetAt sets or clears the bit at index.
// It panics if index is outside [0, Size()).
func (f *FlagField[T]) SetAt(index int, value bool) {
	f.SetMask(f.bit(index), value)
}

// SetMask sets or clears every bit in mask.
func (f *FlagField[T]) SetMask(mask T, value bool) {
	if value {
		f.value |= mask
	} else {
		f.value &^= mask
	}
}

// Set replaces every bit.
func (f *FlagField[T]) Set(value T) {
	f.value = value
}

// Clear clears every bit.
func (f *FlagField[T]) Clear() {
	f.value = 0
}

// Toggle flips the bit at index.
func (f *FlagField[T]) Toggle(index int) {
	f.value ^= f.bit(index)
}

// Count returns the number of set bits.
func (f *FlagField[T]) Count() int {
	return bits.OnesCount64(uint64(f.value))
}

// ForEachSet calls c with the index of every set bit, lowest first.
func (f *FlagField[T]) ForEachSet(c Consumer[int]) {
	if c == nil {
		panic(nilOperation("FlagField.ForEachSet"))
	}
	v := uint64(f.value)
	for v != 0 {
		i := bits.TrailingZeros64(v)
		c(i)
		v &= v - 1
	}
}

// ReadOnly returns a view that exposes only the read methods. The view
// shares storage with f.
func (f *FlagField[T]) ReadOnly() FlagFieldReader[T] {
	return readOnlyField[T]{f: f}
}

// String renders the bits most significant first.
func (f *FlagField[T]) String() string {
	return fmt.Sprintf("%0*b", f.Size(), uint64(f.value))
}

func (f *FlagField[T]) bit(index int) T {
	if index < 0 || index >= f.Size() {
		panic(fmt.Errorf("funcz: bit %d of %d-bit field: %w", index, f.Size(), ErrIndexOutOfBounds))
	}
	return T(1) << index
}

type readOnlyField[T Unsigned] struct {
	f *FlagField[T]
}

func (r readOnlyField[T]) Size() int          { return r.f.Size() }
func (r readOnlyField[T]) GetAt(i int) bool   { return r.f.GetAt(i) }
func (r readOnlyField[T]) Get(mask T) bool    { return r.f.Get(mask) }
func (r readOnlyField[T]) GetAny(mask T) bool { return r.f.GetAny(mask) }
func (r readOnlyField[T]) Value() T           { return r.f.Value() }
