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

package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/cespare/xxhash"

	"github.com/andreas-jonsson/virtual8080/emulator/processor/cpu"
	"github.com/andreas-jonsson/virtual8080/platform"
)

// Teletype serial port. Keys typed on the console are latched on the
// input side, bytes the program writes with OUT are drained from the
// output side.
const ttyPort = 1

var (
	debugTrace,
	useTTY,
	quiet bool

	clockMHz float64
	origin   uint
)

func init() {
	flag.BoolVar(&debugTrace, "debug", false, "Print CPU state after each instruction")
	flag.BoolVar(&useTTY, "tty", false, "Open a teletype console instead of plain stdout")
	flag.BoolVar(&quiet, "q", false, "Do not print load information")
	flag.Float64Var(&clockMHz, "mhz", 0, "Throttle execution to the given clock in MHz, 0 runs unthrottled")
	flag.UintVar(&origin, "org", 0x100, "Load origin, CP/M binaries expect 0x100")
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] program.bin\n\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		log.Fatal(err)
	}
}

func run(name string) error {
	console := platform.NewStdio()
	if useTTY {
		var err error
		if console, err = platform.NewTcell(); err != nil {
			return err
		}
	}
	defer console.Close()

	c := cpu.NewCPU()
	if err := c.Bus.LoadBin(name, uint16(origin)); err != nil {
		return err
	}

	if !quiet && !useTTY {
		if bin, err := ioutil.ReadFile(name); err == nil {
			log.Printf("Loaded %d bytes at 0x%04X (xxh64 %016x)", len(bin), origin, xxhash.Sum64(bin))
		}
	}

	// CP/M environment: RET at the BDOS entry so syscalls bounce back,
	// the stack base readable at 0x0006, SP preset in case the program
	// never reads it.
	c.Bus.WriteByte(0x0005, 0xC9)
	c.Bus.WriteWord(0x0006, 0xFF00)
	c.SP = 0xFF00
	c.PC = uint16(origin)

	if clockMHz > 0 {
		c.SetFreq(clockMHz)
	}
	c.DebugEnabled = debugTrace

	for {
		if key, ok := console.ReadKey(); ok {
			if key == 0x03 {
				return nil
			}
			c.Bus.SetIOIn(ttyPort, key)
		}

		c.Step()

		if debugTrace {
			fmt.Print(c.DebugString())
			c.ClearDebug()
		}
		if v, ok := c.Bus.GetIOOut(ttyPort); ok {
			console.WriteByte(v)
			c.Bus.ClearIOOut(ttyPort)
		}

		if c.PC == 0x0005 {
			bdosCall(c, console)
		}
		if c.PC == 0x0000 {
			return nil
		}
		if c.Halted && !c.IntPending {
			return nil
		}
	}
}

// bdosCall stubs the two CP/M BDOS services the test programs use:
// function 2 prints the character in E, function 9 prints the
// '$' terminated string at (DE).
func bdosCall(c *cpu.CPU, console platform.Console) {
	switch c.C {
	case 0x02:
		console.WriteByte(c.E)
	case 0x09:
		for addr := c.DE(); ; addr++ {
			ch := c.Bus.ReadByte(addr)
			if ch == '$' {
				break
			}
			console.WriteByte(ch)
		}
	}
}
