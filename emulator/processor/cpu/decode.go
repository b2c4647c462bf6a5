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
	"fmt"
	"time"

	"github.com/andreas-jonsson/virtual8080/emulator/dasm"
)

// Step fetches, decodes and executes one instruction and returns the
// number of clock cycles it consumed. A pending interrupt is serviced
// before the fetch: the slot opcode runs through the regular dispatch
// but PC is not advanced across it. When halted with no serviceable
// interrupt, Step does nothing and returns 0.
func (p *CPU) Step() uint32 {
	p.cycleCount = 0

	// An EI from the previous step takes effect only after this
	// instruction retires.
	enableInt := p.eiPending

	switch {
	case p.INTE && p.IntPending:
		p.INTE = false
		p.IntPending = false
		p.Halted = false
		p.eiPending = false
		enableInt = false
		p.servicingInt = true
		p.opcode = p.IntOpcode
		p.stats.NumInterrupts++
	case p.Halted:
		return 0
	default:
		p.servicingInt = false
		p.opcode = p.fetchByte()
	}

	startPC := p.PC
	if !p.servicingInt {
		startPC--
	}
	operandAt := p.PC

	p.cycleCount = uint32(cycleLookup[p.opcode])
	p.execute()
	p.stats.NumInstructions++

	// DI cancels a delayed enable; a second EI keeps it pending for
	// its own following instruction.
	if enableInt && p.opcode != 0xF3 {
		p.INTE = true
		if p.opcode != 0xFB {
			p.eiPending = false
		}
	}

	if p.DebugEnabled {
		p.appendDebug(startPC, operandAt)
	}

	if p.nsPerCycle > 0 {
		time.Sleep(time.Duration(int64(p.cycleCount) * p.nsPerCycle))
	}
	return p.cycleCount
}

func (p *CPU) execute() {
	op := p.opcode

	switch {
	case op&0xC0 == 0x40 && op != 0x76: // MOV r,r
		p.writeReg(op>>3, p.readReg(op))
		return
	case op&0xC0 == 0x80: // ADD/ADC/SUB/SBB/ANA/XRA/ORA/CMP r
		p.alu(op>>3, p.readReg(op))
		return
	}

	switch op {
	case 0x00: // NOP

	/* Data movement */
	case 0x01, 0x11, 0x21, 0x31: // LXI rp,d16
		p.writePair(op>>4, p.fetchWord())
	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x36, 0x3E: // MVI r,d8
		p.writeReg(op>>3, p.fetchByte())
	case 0x02: // STAX B
		p.Bus.WriteByte(p.BC(), p.A)
	case 0x12: // STAX D
		p.Bus.WriteByte(p.DE(), p.A)
	case 0x0A: // LDAX B
		p.A = p.Bus.ReadByte(p.BC())
	case 0x1A: // LDAX D
		p.A = p.Bus.ReadByte(p.DE())
	case 0x32: // STA a16
		p.Bus.WriteByte(p.fetchWord(), p.A)
	case 0x3A: // LDA a16
		p.A = p.Bus.ReadByte(p.fetchWord())
	case 0x22: // SHLD a16
		p.Bus.WriteWord(p.fetchWord(), p.HL())
	case 0x2A: // LHLD a16
		p.SetHL(p.Bus.ReadWord(p.fetchWord()))
	case 0xEB: // XCHG
		d, e := p.D, p.E
		p.D, p.E = p.H, p.L
		p.H, p.L = d, e
	case 0xE3: // XTHL
		v := p.Bus.ReadWord(p.SP)
		p.Bus.WriteWord(p.SP, p.HL())
		p.SetHL(v)
	case 0xF9: // SPHL
		p.SP = p.HL()

	/* Arithmetic and logic */
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x34, 0x3C: // INR r
		p.writeReg(op>>3, p.inr(p.readReg(op>>3)))
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x35, 0x3D: // DCR r
		p.writeReg(op>>3, p.dcr(p.readReg(op>>3)))
	case 0x03, 0x13, 0x23, 0x33: // INX rp
		p.writePair(op>>4, p.readPair(op>>4)+1)
	case 0x0B, 0x1B, 0x2B, 0x3B: // DCX rp
		p.writePair(op>>4, p.readPair(op>>4)-1)
	case 0x09, 0x19, 0x29, 0x39: // DAD rp
		p.dad(p.readPair(op >> 4))
	case 0xC6: // ADI d8
		p.add(p.fetchByte())
	case 0xCE: // ACI d8
		p.adc(p.fetchByte())
	case 0xD6: // SUI d8
		p.sub(p.fetchByte())
	case 0xDE: // SBI d8
		p.sbb(p.fetchByte())
	case 0xE6: // ANI d8
		p.ana(p.fetchByte())
	case 0xEE: // XRI d8
		p.xra(p.fetchByte())
	case 0xF6: // ORI d8
		p.ora(p.fetchByte())
	case 0xFE: // CPI d8
		p.cmp(p.fetchByte())
	case 0x27: // DAA
		p.daa()
	case 0x2F: // CMA
		p.A = ^p.A
	case 0x37: // STC
		p.CF = true
	case 0x3F: // CMC
		p.CF = !p.CF

	/* Rotates */
	case 0x07: // RLC
		p.rlc()
	case 0x0F: // RRC
		p.rrc()
	case 0x17: // RAL
		p.ral()
	case 0x1F: // RAR
		p.rar()

	/* Control flow */
	case 0xC3: // JMP a16
		p.PC = p.fetchWord()
	case 0xC2, 0xCA, 0xD2, 0xDA, 0xE2, 0xEA, 0xF2, 0xFA: // Jcc a16
		addr := p.fetchWord()
		if p.cond(op >> 3) {
			p.PC = addr
		}
	case 0xCD: // CALL a16
		addr := p.fetchWord()
		p.push16(p.PC)
		p.PC = addr
	case 0xC4, 0xCC, 0xD4, 0xDC, 0xE4, 0xEC, 0xF4, 0xFC: // Ccc a16
		addr := p.fetchWord()
		if p.cond(op >> 3) {
			p.push16(p.PC)
			p.PC = addr
			p.cycleCount += 6
		}
	case 0xC9: // RET
		p.PC = p.pop16()
	case 0xC0, 0xC8, 0xD0, 0xD8, 0xE0, 0xE8, 0xF0, 0xF8: // Rcc
		if p.cond(op >> 3) {
			p.PC = p.pop16()
			p.cycleCount += 6
		}
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF: // RST n
		p.push16(p.PC)
		p.PC = uint16(op & 0x38)
	case 0xE9: // PCHL
		p.PC = p.HL()

	/* Stack */
	case 0xC5, 0xD5, 0xE5: // PUSH rp
		p.push16(p.readPair(op >> 4))
	case 0xF5: // PUSH PSW
		p.SP -= 2
		p.Bus.WriteByte(p.SP, p.PackFlags())
		p.Bus.WriteByte(p.SP+1, p.A)
	case 0xC1, 0xD1, 0xE1: // POP rp
		p.writePair(op>>4, p.pop16())
	case 0xF1: // POP PSW
		p.UnpackFlags(p.Bus.ReadByte(p.SP))
		p.A = p.Bus.ReadByte(p.SP + 1)
		p.SP += 2

	/* I/O */
	case 0xDB: // IN d8
		if v, ok := p.Bus.GetIOIn(p.fetchByte()); ok {
			p.A = v
		}
	case 0xD3: // OUT d8
		p.Bus.SetIOOut(p.fetchByte(), p.A)

	/* Misc */
	case 0x76: // HLT
		p.Halted = true
	case 0xFB: // EI
		p.eiPending = true
	case 0xF3: // DI
		p.INTE = false
		p.eiPending = false

	default: // Undocumented opcodes behave as NOP.
	}
}

// alu dispatches the 0x80-0xBF block on the 3-bit operation field.
func (p *CPU) alu(i, n byte) {
	switch i & 7 {
	case 0:
		p.add(n)
	case 1:
		p.adc(n)
	case 2:
		p.sub(n)
	case 3:
		p.sbb(n)
	case 4:
		p.ana(n)
	case 5:
		p.xra(n)
	case 6:
		p.ora(n)
	default:
		p.cmp(n)
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// appendDebug writes one trace record: the machine code bytes and
// mnemonic, then PC, SP and flags, then the registers.
func (p *CPU) appendDebug(pc, operandAt uint16) {
	b1 := p.Bus.ReadByte(operandAt)
	b2 := p.Bus.ReadByte(operandAt + 1)
	mnemonic, length := dasm.Disassemble(p.opcode, b1, b2)

	code := fmt.Sprintf("%02X", p.opcode)
	if length > 1 {
		code += fmt.Sprintf(" %02x", b1)
	}
	if length > 2 {
		code += fmt.Sprintf(" %02x", b2)
	}

	fmt.Fprintf(&p.debug, "%-10s%s\n", code, mnemonic)
	fmt.Fprintf(&p.debug, "PC : 0x%04x\tSP : 0x%04x\tS : %d\tZ : %d\tA : %d\tP : %d\tC : %d\n",
		pc, p.SP, b2i(p.SF), b2i(p.ZF), b2i(p.AF), b2i(p.PF), b2i(p.CF))
	fmt.Fprintf(&p.debug, "B : 0x%02x\tC : 0x%02x\tD : 0x%02x\tE : 0x%02x\tH : 0x%02x\tL : 0x%02x\tA : 0x%02x\n",
		p.B, p.C, p.D, p.E, p.H, p.L, p.A)
}
