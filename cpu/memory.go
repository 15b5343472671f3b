// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// Memory is a flat, byte-addressable store whose size is fixed when it is
// created. Addresses are never checked against the store's size: callers
// must size memory to cover every address a program touches. An access
// beyond the end of the store panics.
type Memory struct {
	b []byte
}

// NewMemory creates a memory store of 'size' bytes. A negative size is
// treated as zero.
func NewMemory(size int) *Memory {
	if size < 0 {
		size = 0
	}
	return &Memory{b: make([]byte, size)}
}

// Size returns the number of bytes in the store.
func (m *Memory) Size() int {
	return len(m.b)
}

// Clear zero-fills the store.
func (m *Memory) Clear() {
	clear(m.b)
}

// LoadByte loads a single byte from the address and returns it.
func (m *Memory) LoadByte(addr uint16) byte {
	return m.b[addr]
}

// LoadBytes loads len(b) bytes starting at the address into 'b'. Bytes
// that would lie beyond the end of the store are returned as zero.
func (m *Memory) LoadBytes(addr uint16, b []byte) {
	if int(addr) >= len(m.b) {
		clear(b)
		return
	}
	n := copy(b, m.b[addr:])
	clear(b[n:])
}

// StoreByte stores a byte at the requested address.
func (m *Memory) StoreByte(addr uint16, v byte) {
	m.b[addr] = v
}

// StoreBytes stores the bytes in 'b' starting at the requested address.
// It panics if the bytes do not fit in the store.
func (m *Memory) StoreBytes(addr uint16, b []byte) {
	copy(m.b[addr:int(addr)+len(b)], b)
}

// Offset a zero-page address 'addr' by 'offset'. The result wraps within
// the zero page and never carries into page 1.
func offsetZeroPage(addr byte, offset byte) uint16 {
	return uint16(addr + offset)
}

// Return the offset address 'addr' + 'offset' using full 16-bit
// arithmetic. If the offset crossed a page boundary, return 'pageCrossed'
// as true.
func offsetAddress(addr uint16, offset byte) (newAddr uint16, pageCrossed bool) {
	newAddr = addr + uint16(offset)
	pageCrossed = ((newAddr & 0xff00) != (addr & 0xff00))
	return newAddr, pageCrossed
}
