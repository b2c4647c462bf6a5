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

package cpu

import (
	"strings"

	"github.com/andreas-jonsson/virtual8080/emulator/memory"
	"github.com/andreas-jonsson/virtual8080/emulator/processor"
)

// CPU is a single 8080 core wired to its address bus. The host drives
// it by calling Step in a loop; interrupts and port traffic are
// exchanged between steps through IntPending/IntOpcode and the bus
// latches. The core is not internally synchronized.
type CPU struct {
	processor.Registers

	Bus *memory.Bus

	Halted bool

	// INTE is the interrupt enable latch. IntPending/IntOpcode form
	// the one-shot interrupt request slot: when serviced, the opcode
	// is executed as if fetched but PC is not advanced across it.
	INTE       bool
	IntPending bool
	IntOpcode  byte

	// DebugEnabled makes Step append a trace record for every retired
	// instruction to an internal buffer the host reads and clears.
	DebugEnabled bool

	eiPending    bool
	servicingInt bool

	nsPerCycle int64

	opcode     byte
	cycleCount uint32
	stats      processor.Stats

	debug strings.Builder
}

func NewCPU() *CPU {
	return &CPU{Bus: memory.NewBus()}
}

// GetStats returns the execution counters and resets them.
func (p *CPU) GetStats() processor.Stats {
	s := p.stats
	p.stats = processor.Stats{}
	return s
}

// SetNsPerCycle makes Step sleep cycles*ns after every instruction.
// Zero disables throttling.
func (p *CPU) SetNsPerCycle(ns int64) {
	p.nsPerCycle = ns
}

// SetFreq throttles execution to the given clock in MHz.
func (p *CPU) SetFreq(mhz float64) {
	if mhz <= 0 {
		p.nsPerCycle = 0
		return
	}
	p.nsPerCycle = int64(1000 / mhz)
}

// DebugString returns the accumulated trace records.
func (p *CPU) DebugString() string {
	return p.debug.String()
}

func (p *CPU) ClearDebug() {
	p.debug.Reset()
}

// readReg reads a register by its 3-bit opcode field. Index 6 is the
// M pseudo register: the byte at (HL).
func (p *CPU) readReg(i byte) byte {
	switch i & 7 {
	case 0:
		return p.B
	case 1:
		return p.C
	case 2:
		return p.D
	case 3:
		return p.E
	case 4:
		return p.H
	case 5:
		return p.L
	case 6:
		return p.Bus.ReadByte(p.HL())
	default:
		return p.A
	}
}

func (p *CPU) writeReg(i, v byte) {
	switch i & 7 {
	case 0:
		p.B = v
	case 1:
		p.C = v
	case 2:
		p.D = v
	case 3:
		p.E = v
	case 4:
		p.H = v
	case 5:
		p.L = v
	case 6:
		p.Bus.WriteByte(p.HL(), v)
	default:
		p.A = v
	}
}

// readPair reads a register pair by its 2-bit opcode field,
// with index 3 mapping to SP.
func (p *CPU) readPair(i byte) uint16 {
	switch i & 3 {
	case 0:
		return p.BC()
	case 1:
		return p.DE()
	case 2:
		return p.HL()
	default:
		return p.SP
	}
}

func (p *CPU) writePair(i byte, v uint16) {
	switch i & 3 {
	case 0:
		p.SetBC(v)
	case 1:
		p.SetDE(v)
	case 2:
		p.SetHL(v)
	default:
		p.SP = v
	}
}

func (p *CPU) fetchByte() byte {
	v := p.Bus.ReadByte(p.PC)
	p.PC++
	return v
}

func (p *CPU) fetchWord() uint16 {
	v := p.Bus.ReadWord(p.PC)
	p.PC += 2
	return v
}

func (p *CPU) push16(v uint16) {
	p.SP -= 2
	p.Bus.WriteWord(p.SP, v)
}

func (p *CPU) pop16() uint16 {
	v := p.Bus.ReadWord(p.SP)
	p.SP += 2
	return v
}

func (p *CPU) updateFlagsSZP(res byte) {
	p.SF = processor.Sign(res)
	p.ZF = processor.Zero(res)
	p.PF = processor.Parity(res)
}

func (p *CPU) add(n byte) {
	r := p.A + n
	p.updateFlagsSZP(r)
	p.AF = processor.AuxAdd(p.A, n, false)
	p.CF = processor.CarryAdd(p.A, n, false)
	p.A = r
}

func (p *CPU) adc(n byte) {
	c := p.CF
	r := p.A + n
	if c {
		r++
	}
	p.updateFlagsSZP(r)
	p.AF = processor.AuxAdd(p.A, n, c)
	p.CF = processor.CarryAdd(p.A, n, c)
	p.A = r
}

func (p *CPU) sub(n byte) {
	r := p.A - n
	p.updateFlagsSZP(r)
	p.AF = processor.AuxSub(p.A, n, false)
	p.CF = processor.CarrySub(p.A, n, false)
	p.A = r
}

func (p *CPU) sbb(n byte) {
	c := p.CF
	r := p.A - n
	if c {
		r--
	}
	p.updateFlagsSZP(r)
	p.AF = processor.AuxSub(p.A, n, c)
	p.CF = processor.CarrySub(p.A, n, c)
	p.A = r
}

// ana sets the aux flag to bit 3 of the OR of both operands. This is
// the documented AND quirk the exerciser programs observe.
func (p *CPU) ana(n byte) {
	r := p.A & n
	p.updateFlagsSZP(r)
	p.AF = (p.A|n)&0x08 != 0
	p.CF = false
	p.A = r
}

func (p *CPU) xra(n byte) {
	r := p.A ^ n
	p.updateFlagsSZP(r)
	p.AF = false
	p.CF = false
	p.A = r
}

func (p *CPU) ora(n byte) {
	r := p.A | n
	p.updateFlagsSZP(r)
	p.AF = false
	p.CF = false
	p.A = r
}

func (p *CPU) cmp(n byte) {
	a := p.A
	p.sub(n)
	p.A = a
}

// inr and dcr leave the carry flag untouched.
func (p *CPU) inr(n byte) byte {
	r := n + 1
	p.updateFlagsSZP(r)
	p.AF = (n&0x0F)+1 > 0x0F
	return r
}

func (p *CPU) dcr(n byte) byte {
	r := n - 1
	p.updateFlagsSZP(r)
	p.AF = r&0x0F != 0x0F
	return r
}

// dad only touches the carry flag: the carry out of bit 15.
func (p *CPU) dad(n uint16) {
	h := p.HL()
	p.CF = processor.CarryDAD(h, n)
	p.SetHL(h + n)
}

// daa corrects A to packed BCD after an addition or subtraction.
func (p *CPU) daa() {
	var inc byte
	c := p.CF
	lsb := p.A & 0x0F
	msb := p.A >> 4

	if lsb > 9 || p.AF {
		inc += 0x06
	}
	if msb > 9 || p.CF || (msb >= 9 && lsb > 9) {
		inc += 0x60
		c = true
	}

	p.add(inc)
	p.CF = c
}

func (p *CPU) rlc() {
	p.CF = p.A&0x80 != 0
	p.A = p.A << 1
	if p.CF {
		p.A |= 0x01
	}
}

func (p *CPU) rrc() {
	p.CF = p.A&0x01 != 0
	p.A = p.A >> 1
	if p.CF {
		p.A |= 0x80
	}
}

func (p *CPU) ral() {
	c := p.CF
	p.CF = p.A&0x80 != 0
	p.A = p.A << 1
	if c {
		p.A |= 0x01
	}
}

func (p *CPU) rar() {
	c := p.CF
	p.CF = p.A&0x01 != 0
	p.A = p.A >> 1
	if c {
		p.A |= 0x80
	}
}

// cond evaluates the 3-bit condition field shared by the conditional
// jump, call and return families.
func (p *CPU) cond(i byte) bool {
	switch i & 7 {
	case 0:
		return !p.ZF
	case 1:
		return p.ZF
	case 2:
		return !p.CF
	case 3:
		return p.CF
	case 4:
		return !p.PF
	case 5:
		return p.PF
	case 6:
		return !p.SF
	default:
		return p.SF
	}
}
