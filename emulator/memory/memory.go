/*
Copyright (C) 2019-2021 Andreas T Jonsson

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

package memory

import (
	"fmt"

	"github.com/spf13/afero"
)

// Size of the 8080 address space.
const Size = 0x10000

type latch struct {
	data byte
	full bool
}

// Bus is the 64KiB flat memory of the machine together with the
// 256 input and 256 output port latches. An optional read-only
// window turns part of the space into ROM: writes that land inside
// it are silently discarded, reads are unaffected.
type Bus struct {
	ram [Size]byte

	romLo, romHi uint16
	romEnabled   bool

	ioIn, ioOut [0x100]latch

	fs afero.Fs
}

func NewBus() *Bus {
	return &Bus{fs: afero.NewOsFs()}
}

// SetFs replaces the filesystem LoadBin reads from.
func (b *Bus) SetFs(fs afero.Fs) {
	b.fs = fs
}

func (b *Bus) ReadByte(addr uint16) byte {
	return b.ram[addr]
}

func (b *Bus) WriteByte(addr uint16, data byte) {
	if b.romEnabled && addr >= b.romLo && addr <= b.romHi {
		return
	}
	b.ram[addr] = data
}

// ReadWord reads a little-endian word. The high byte address wraps
// at the end of the space.
func (b *Bus) ReadWord(addr uint16) uint16 {
	return uint16(b.ReadByte(addr)) | uint16(b.ReadByte(addr+1))<<8
}

func (b *Bus) WriteWord(addr uint16, data uint16) {
	b.WriteByte(addr, byte(data&0xFF))
	b.WriteByte(addr+1, byte(data>>8))
}

// LoadBin copies the named file into memory starting at origin,
// wrapping at the end of the address space. It bypasses the
// read-only window since this is how firmware is installed.
func (b *Bus) LoadBin(name string, origin uint16) error {
	data, err := afero.ReadFile(b.fs, name)
	if err != nil {
		return fmt.Errorf("could not load binary %s: %w", name, err)
	}
	addr := origin
	for _, v := range data {
		b.ram[addr] = v
		addr++
	}
	return nil
}

// SetROMSpace installs the read-only window [lo, hi], both inclusive.
func (b *Bus) SetROMSpace(lo, hi uint16) {
	b.romLo, b.romHi = lo, hi
	b.romEnabled = true
}

func (b *Bus) ClearROMSpace() {
	b.romEnabled = false
}

func (b *Bus) SetIOIn(port, data byte) {
	b.ioIn[port] = latch{data, true}
}

func (b *Bus) GetIOIn(port byte) (byte, bool) {
	l := b.ioIn[port]
	return l.data, l.full
}

func (b *Bus) ClearIOIn(port byte) {
	b.ioIn[port] = latch{}
}

func (b *Bus) SetIOOut(port, data byte) {
	b.ioOut[port] = latch{data, true}
}

func (b *Bus) GetIOOut(port byte) (byte, bool) {
	l := b.ioOut[port]
	return l.data, l.full
}

func (b *Bus) ClearIOOut(port byte) {
	b.ioOut[port] = latch{}
}
