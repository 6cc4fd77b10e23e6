package sim

import (
	"sync"

	"github.com/robotalks/opmode/pkg/periph"
)

// LCD is a simulated 2x16 character display.
type LCD struct {
	lock  sync.Mutex
	lines [periph.LCDLines]string
}

// NewLCD creates a blank display.
func NewLCD() *LCD {
	lcd := &LCD{}
	for n := range lcd.lines {
		lcd.lines[n] = periph.PadLine("")
	}
	return lcd
}

// WriteLine implements periph.LCD. Lines out of range are ignored.
func (d *LCD) WriteLine(line int, text string) {
	if line < 0 || line >= periph.LCDLines {
		return
	}
	d.lock.Lock()
	d.lines[line] = periph.PadLine(text)
	d.lock.Unlock()
}

// Lines returns the content of the display.
func (d *LCD) Lines() [periph.LCDLines]string {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.lines
}
