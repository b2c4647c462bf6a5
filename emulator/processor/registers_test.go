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

package processor

import "testing"

func TestPairs(t *testing.T) {
	var r Registers

	r.SetBC(0x1234)
	if r.B != 0x12 || r.C != 0x34 || r.BC() != 0x1234 {
		t.Errorf("BC: B = 0x%02X C = 0x%02X", r.B, r.C)
	}

	r.SetDE(0x5678)
	if r.D != 0x56 || r.E != 0x78 || r.DE() != 0x5678 {
		t.Errorf("DE: D = 0x%02X E = 0x%02X", r.D, r.E)
	}

	r.SetHL(0x9ABC)
	if r.H != 0x9A || r.L != 0xBC || r.HL() != 0x9ABC {
		t.Errorf("HL: H = 0x%02X L = 0x%02X", r.H, r.L)
	}
}

func TestFlagsFromByte(t *testing.T) {
	var r Registers
	r.UnpackFlags(0xC3)
	if !r.SF || !r.ZF || !r.CF {
		t.Error("S, Z and C should be set")
	}
	if r.AF || r.PF {
		t.Error("A and P should be clear")
	}
}

func TestFlagsAsByte(t *testing.T) {
	var r Registers
	r.SF = true
	r.ZF = true
	r.CF = true
	if v := r.PackFlags(); v != 0xC3 {
		t.Errorf("flag byte = 0x%02X, want 0xC3", v)
	}
}

func TestFlagsFixedBits(t *testing.T) {
	var r Registers
	r.UnpackFlags(0xFF)
	if v := r.PackFlags(); v != 0xD7 {
		t.Errorf("flag byte = 0x%02X, want 0xD7", v)
	}

	r.UnpackFlags(0x00)
	if v := r.PackFlags(); v != 0x02 {
		t.Errorf("flag byte = 0x%02X, want 0x02", v)
	}
}

func TestReset(t *testing.T) {
	r := Registers{A: 1, SP: 0xFF00, PC: 0x100, CF: true}
	r.Reset()
	if r != (Registers{}) {
		t.Error("Reset left state behind")
	}
}
