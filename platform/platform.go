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

// Package platform provides the console surfaces a host can wire the
// machine's serial traffic to: plain standard output, or a full
// terminal teletype.
package platform

// Console receives bytes the machine prints and offers bytes typed by
// the operator. ReadKey never blocks; it reports false when no key is
// waiting.
type Console interface {
	WriteByte(b byte)
	ReadKey() (byte, bool)
	Close()
}
