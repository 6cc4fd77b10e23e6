// Package sh provides the operator console of the device.
package sh

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/opmode/pkg/board"
	"github.com/robotalks/opmode/pkg/fault"
	"github.com/robotalks/opmode/pkg/indicator"
	"github.com/robotalks/opmode/pkg/periph"
)

// Shell provides ishell backed interactive console.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell *ishell.Shell
	Board *board.Board
}

// Status is the console view of the device.
type Status struct {
	Device   string `json:"device"`
	Mode     string `json:"mode"`
	Position uint8  `json:"position"`
	Halted   bool   `json:"halted"`
	Fault    string `json:"fault,omitempty"`
	// Sweep is the actuator profile range, absent if the drive never
	// came up.
	Sweep []int `json:"sweep,omitempty"`
}

// TaskStatus is the console view of a task.
type TaskStatus struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	PeriodMs int64  `json:"period_ms"`
	Runs     uint64 `json:"runs"`
	Wakes    uint64 `json:"wakes"`
	Timeouts uint64 `json:"timeouts"`
}

const shellKey = "$shell"

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&StatusCmd,
		&TasksCmd,
		&LEDsCmd,
		&LCDCmd,
		&ResetCmd,
		&FaultCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell.
func New(b *board.Board) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Shell:       ishell.New(),
		Board:       b,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(b.Config.DeviceID + " > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// StatusOf collects the status of the device.
func StatusOf(b *board.Board) Status {
	mode, pos := b.Cell.Snapshot()
	st := Status{
		Device:   b.Config.DeviceID,
		Mode:     mode.String(),
		Position: pos,
		Halted:   b.Kernel.Halted(),
	}
	if err := b.Fault.Err(); err != nil {
		st.Fault = err.Error()
	}
	if b.Drive != nil {
		lo, hi := b.Drive.Osc.Bounds()
		st.Sweep = []int{int(lo), int(hi)}
	}
	return st
}

// TasksOf collects the task counters ordered by priority.
func TasksOf(b *board.Board) []TaskStatus {
	var tasks []TaskStatus
	for _, t := range b.Kernel.Tasks() {
		stats := t.Stats()
		tasks = append(tasks, TaskStatus{
			Name:     t.Name(),
			Priority: int(t.Priority),
			PeriodMs: t.Period.Milliseconds(),
			Runs:     stats.Runs,
			Wakes:    stats.Wakes,
			Timeouts: stats.Timeouts,
		})
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority > tasks[j].Priority
	})
	return tasks
}

// LitLEDs describes the lit LEDs. The state is read back from the LEDs
// when they support it, otherwise it's the pattern of the current mode.
func LitLEDs(b *board.Board) []string {
	isLit := indicator.PatternFor(b.Cell.Mode()).Lit
	if leds, ok := b.Periph.LEDs.(interface {
		State() [periph.NumLEDs]bool
	}); ok {
		state := leds.State()
		isLit = func(id periph.LEDID) bool { return state[id] }
	}
	var lit []string
	for _, id := range []periph.LEDID{periph.Green, periph.Amber, periph.Red} {
		if isLit(id) {
			lit = append(lit, id.String())
		}
	}
	return lit
}

// ErrHalted is reported by commands which need running tasks.
var ErrHalted = errors.New("device halted")

func (s *Shell) print(c *ishell.Context, v interface{}, text string) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
	}
}

var (
	// StatusCmd prints mode and position.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "show mode and position",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			st := StatusOf(s.Board)
			text := fmt.Sprintf("%s: %s at %d deg", st.Device, st.Mode, st.Position)
			if len(st.Sweep) == 2 {
				text += fmt.Sprintf(" (sweep %d-%d)", st.Sweep[0], st.Sweep[1])
			}
			if st.Fault != "" {
				text += "\n" + st.Fault
			}
			s.print(c, st, text)
		},
	}

	// TasksCmd prints task counters.
	TasksCmd = ishell.Cmd{
		Name: "tasks",
		Help: "show task counters",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			tasks := TasksOf(s.Board)
			lines := make([]string, len(tasks))
			for n, t := range tasks {
				lines[n] = fmt.Sprintf("%-10s prio=%d period=%dms runs=%d wakes=%d timeouts=%d",
					t.Name, t.Priority, t.PeriodMs, t.Runs, t.Wakes, t.Timeouts)
			}
			s.print(c, tasks, strings.Join(lines, "\n"))
		},
	}

	// LEDsCmd prints the LED pattern.
	LEDsCmd = ishell.Cmd{
		Name: "leds",
		Help: "show lit LEDs",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			lit := LitLEDs(s.Board)
			text := strings.Join(lit, " ")
			if text == "" {
				text = "(off)"
			}
			s.print(c, lit, text)
		},
	}

	// LCDCmd prints the LCD content if it can be read back.
	LCDCmd = ishell.Cmd{
		Name: "lcd",
		Help: "show LCD content",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			lcd, ok := s.Board.Periph.LCD.(interface {
				Lines() [periph.LCDLines]string
			})
			if !ok {
				c.Err(errors.New("LCD not readable"))
				return
			}
			lines := lcd.Lines()
			s.print(c, lines, "|"+lines[0]+"|\n|"+lines[1]+"|")
		},
	}

	// ResetCmd restarts the actuator profile.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "restart the actuator profile",
		Func: func(c *ishell.Context) {
			b := ShellFrom(c).Board
			if b.Drive == nil || b.Kernel.Halted() {
				c.Err(ErrHalted)
				return
			}
			b.Drive.Reset()
			c.Println("OK")
		},
	}

	// FaultCmd injects a firmware fault.
	FaultCmd = ishell.Cmd{
		Name: "fault",
		Help: "inject a firmware fault",
		Func: func(c *ishell.Context) {
			b := ShellFrom(c).Board
			go b.Fault.Escalate(fault.Assertion("console", errors.New("fault injected by operator")))
			<-b.Fault.Done()
			c.Println(b.Cell.Mode().String())
		},
	}
)
