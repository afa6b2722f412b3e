package upbeat

import (
	"sync/atomic"

	"hatchery/src/lib/trust"
)

// BitSet is a fixed size set of bits where each bit can be set or cleared by
// a different core at the same time.  Every update is a single atomic
// read-modify-write on the word holding the bit, so two cores touching
// neighbouring bits never lose each other's update.
type BitSet struct {
	size  uint32
	words []atomic.Uint32
}

type BitIndex uint32

//bitsets have to be multiples of 32.
func NewBitSet(size uint32) *BitSet {
	mask := ^(uint32(0x1f))
	if size == 0 || size&mask != size {
		trust.Errorf("your bitset size is not a multiple of 32: %d", size)
		return nil
	}
	return &BitSet{
		size:  size,
		words: make([]atomic.Uint32, size>>5),
	}
}

func (b *BitSet) Size() uint32 {
	return b.size
}

func (b *BitSet) locate(bit BitIndex) (*atomic.Uint32, uint32) {
	if uint32(bit) >= b.size {
		panic("upbeat: bit index out of range for bitset")
	}
	return &b.words[bit>>5], uint32(1) << (bit % 32)
}

func (b *BitSet) On(bit BitIndex) bool {
	w, mask := b.locate(bit)
	return w.Load()&mask != 0
}

// Set turns the bit on and reports whether it was already on.
func (b *BitSet) Set(bit BitIndex) bool {
	w, mask := b.locate(bit)
	return w.Or(mask)&mask != 0
}

func (b *BitSet) Clear(bit BitIndex) {
	w, mask := b.locate(bit)
	w.And(^mask)
}

func (b *BitSet) ClearAll() {
	for i := range b.words {
		b.words[i].Store(0)
	}
}

// Word returns a snapshot of the i'th 32 bit word.
func (b *BitSet) Word(i int) uint32 {
	return b.words[i].Load()
}
