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
	"sync"

	"github.com/gdamore/tcell"
)

type tcellConsole struct {
	sync.Mutex

	screen tcell.Screen
	keys   chan byte

	lines  [][]rune
	cx, cy int

	width, height int
}

// NewTcell opens a teletype console on the controlling terminal.
// Keystrokes are queued for ReadKey, written bytes are rendered with
// scrollback handling.
func NewTcell() (Console, error) {
	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	c := &tcellConsole{
		screen: screen,
		keys:   make(chan byte, 64),
	}
	c.width, c.height = screen.Size()
	c.lines = [][]rune{{}}

	go c.eventLoop()
	return c, nil
}

func (c *tcellConsole) eventLoop() {
	for {
		switch ev := c.screen.PollEvent().(type) {
		case *tcell.EventKey:
			c.queueKey(ev)
		case *tcell.EventResize:
			c.Lock()
			c.width, c.height = ev.Size()
			c.redraw()
			c.Unlock()
		case nil:
			return
		}
	}
}

func (c *tcellConsole) queueKey(ev *tcell.EventKey) {
	var b byte
	switch ev.Key() {
	case tcell.KeyRune:
		r := ev.Rune()
		if r > 0x7F {
			return
		}
		b = byte(r)
	case tcell.KeyEnter:
		b = '\r'
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		b = 0x08
	case tcell.KeyEscape, tcell.KeyCtrlC:
		b = 0x03
	default:
		return
	}

	select {
	case c.keys <- b:
	default:
	}
}

func (c *tcellConsole) WriteByte(b byte) {
	c.Lock()
	defer c.Unlock()

	switch b {
	case '\r':
		c.cx = 0
	case '\n':
		c.lines = append(c.lines, []rune{})
		if len(c.lines) > 500 {
			c.lines = c.lines[len(c.lines)-250:]
		}
		c.cy = len(c.lines) - 1
	case 0x08:
		if c.cx > 0 {
			c.cx--
			c.lines[c.cy] = c.lines[c.cy][:c.cx]
		}
	default:
		if b < 0x20 || b > 0x7E {
			break
		}
		line := c.lines[c.cy]
		for len(line) <= c.cx {
			line = append(line, ' ')
		}
		line[c.cx] = rune(b)
		c.lines[c.cy] = line
		c.cx++
	}
	c.redraw()
}

func (c *tcellConsole) redraw() {
	c.screen.Clear()

	top := 0
	if len(c.lines) > c.height {
		top = len(c.lines) - c.height
	}
	for y, line := range c.lines[top:] {
		for x, r := range line {
			if x >= c.width {
				break
			}
			c.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
		}
	}

	c.screen.ShowCursor(c.cx, c.cy-top)
	c.screen.Show()
}

func (c *tcellConsole) ReadKey() (byte, bool) {
	select {
	case b := <-c.keys:
		return b, true
	default:
		return 0, false
	}
}

func (c *tcellConsole) Close() {
	c.screen.Fini()
}
