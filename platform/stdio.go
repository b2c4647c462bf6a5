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

package platform

import (
	"bufio"
	"os"
)

type stdioConsole struct {
	out *bufio.Writer
}

// NewStdio returns a write-only console on standard output.
func NewStdio() Console {
	return &stdioConsole{out: bufio.NewWriter(os.Stdout)}
}

func (c *stdioConsole) WriteByte(b byte) {
	if b == '\r' {
		return
	}
	c.out.WriteByte(b)
	c.out.Flush()
}

func (c *stdioConsole) ReadKey() (byte, bool) {
	return 0, false
}

func (c *stdioConsole) Close() {
	c.out.Flush()
}
