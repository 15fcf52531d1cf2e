// Package monitor is the line-oriented console shell the kernel and the
// simulator drop into after boot.
package monitor

import (
	"strconv"
	"strings"
	"time"

	"sagehal-go/console"
	"sagehal-go/errcode"
	"sagehal-go/hal"
	"sagehal-go/x/timex"

	"github.com/google/shlex"
)

const Prompt = "sage> "

var errUsage = errcode.New(errcode.InvalidParams, "", "bad arguments, see help")

// scanner is implemented by I²C controllers that can probe their bus.
type scanner interface {
	Scan() ([]uint16, error)
}

// smbus is implemented by I²C controllers with SMBus byte-data transfers.
type smbus interface {
	ReadByteData(addr uint16, reg byte, pec bool) (byte, error)
	WriteByteData(addr uint16, reg, v byte, pec bool) error
}

type command struct {
	usage string
	run   func(m *Monitor, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":   {"help", (*Monitor).help},
		"info":   {"info", (*Monitor).info},
		"echo":   {"echo <text>", (*Monitor).echo},
		"map":    {"map <addr>", (*Monitor).lookup},
		"pin":    {"pin <n> [0|1]", (*Monitor).pin},
		"sleep":  {"sleep <ms>", (*Monitor).sleep},
		"scan":   {"scan [i2c bus]", (*Monitor).scan},
		"i2cget": {"i2cget <bus> <addr> <reg> [pec]", (*Monitor).i2cget},
		"i2cset": {"i2cset <bus> <addr> <reg> <val> [pec]", (*Monitor).i2cset},
		"halt":   {"halt", nil},
	}
}

var order = []string{"help", "info", "echo", "map", "pin", "sleep", "scan", "i2cget", "i2cset", "halt"}

type Monitor struct {
	con  *console.Console
	hal  *hal.HAL
	line []byte
}

func New(con *console.Console, h *hal.HAL) *Monitor {
	return &Monitor{con: con, hal: h, line: make([]byte, 128)}
}

// Run reads and executes lines until "halt".
func (m *Monitor) Run() {
	for {
		m.con.Printf(Prompt)
		n := m.con.ReadLine(m.line)
		if !m.Exec(string(m.line[:n])) {
			return
		}
	}
}

// Exec runs one command line and reports whether the monitor should keep
// going.
func (m *Monitor) Exec(line string) bool {
	args, err := shlex.Split(line)
	if err != nil {
		m.con.Printfln("parse error: %v", err)
		return true
	}
	if len(args) == 0 {
		return true
	}
	cmd, ok := commands[args[0]]
	switch {
	case !ok:
		m.con.Printfln("unknown command %q, try help", args[0])
	case cmd.run == nil:
		m.con.Printfln("halting")
		return false
	default:
		if err := cmd.run(m, args[1:]); err != nil {
			m.con.Printfln("%s: %v", args[0], err)
		}
	}
	return true
}

func (m *Monitor) help([]string) error {
	for _, name := range order {
		m.con.Printfln("  %s", commands[name].usage)
	}
	return nil
}

func (m *Monitor) info([]string) error {
	p := m.hal.Platform()
	t := m.hal.Timer()
	m.con.Printfln("board:  %s (%s, %s)", p.Name, p.ID, p.Arch)
	ticks := t.Ticks()
	m.con.Printfln("timer:  %d Hz, %d ticks, up %v", t.Frequency(), ticks, timex.DurationOf(ticks, t.Frequency()))
	m.con.Printfln("irq:    %d lines", m.hal.Interrupt().Lines())
	m.con.Printfln("gpio:   %d pins", m.hal.GPIO().Pins())
	m.con.Printfln("mmu:    %t", m.hal.MMU().Enabled())
	return nil
}

func (m *Monitor) echo(args []string) error {
	m.con.Printfln("%s", strings.Join(args, " "))
	return nil
}

func (m *Monitor) lookup(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	va, err := parse(args[0], 64)
	if err != nil {
		return err
	}
	mp, ok := m.hal.MMU().Lookup(va)
	if !ok {
		m.con.Printfln("0x%x: unmapped", va)
		return nil
	}
	m.con.Printfln("0x%x -> 0x%x %s exec=%t", va, mp.PA, mp.Kind, mp.Exec)
	return nil
}

func (m *Monitor) pin(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return errcode.Wrap(errcode.InvalidParams, "", err)
	}
	g := m.hal.GPIO()
	if len(args) == 1 {
		high, err := g.Get(n)
		if err != nil {
			return err
		}
		m.con.Printfln("pin %d: %s", n, level(high))
		return nil
	}
	high := args[1] == "1"
	if !high && args[1] != "0" {
		return errUsage
	}
	if err := g.SetFunction(n, hal.FuncOutput); err != nil {
		return err
	}
	if err := g.Set(n, high); err != nil {
		return err
	}
	m.con.Printfln("pin %d <- %s", n, level(high))
	return nil
}

func level(high bool) string {
	if high {
		return "high"
	}
	return "low"
}

func (m *Monitor) sleep(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	ms, err := parse(args[0], 32)
	if err != nil {
		return err
	}
	m.hal.Timer().Delay(time.Duration(ms) * time.Millisecond)
	return nil
}

func (m *Monitor) scan(args []string) error {
	id := "i2c1"
	if len(args) > 0 {
		id = args[0]
	}
	s, err := i2cAs[scanner](m, id)
	if err != nil {
		return err
	}
	found, err := s.Scan()
	for _, a := range found {
		m.con.Printfln("  0x%02x", a)
	}
	m.con.Printfln("%d device(s) on %s", len(found), id)
	return err
}

func (m *Monitor) i2cget(args []string) error {
	pec, args := trailingPEC(args)
	if len(args) != 3 {
		return errUsage
	}
	bus, addr, reg, err := m.smbusArgs(args)
	if err != nil {
		return err
	}
	v, err := bus.ReadByteData(addr, reg, pec)
	if err != nil {
		return err
	}
	m.con.Printfln("0x%02x", v)
	return nil
}

func (m *Monitor) i2cset(args []string) error {
	pec, args := trailingPEC(args)
	if len(args) != 4 {
		return errUsage
	}
	bus, addr, reg, err := m.smbusArgs(args)
	if err != nil {
		return err
	}
	v, err := parse(args[3], 8)
	if err != nil {
		return err
	}
	if err := bus.WriteByteData(addr, reg, byte(v), pec); err != nil {
		return err
	}
	m.con.Printfln("0x%02x:0x%02x <- 0x%02x", addr, reg, v)
	return nil
}

// smbusArgs resolves "<bus> <addr> <reg>".
func (m *Monitor) smbusArgs(args []string) (smbus, uint16, byte, error) {
	bus, err := i2cAs[smbus](m, args[0])
	if err != nil {
		return nil, 0, 0, err
	}
	addr, err := parse(args[1], 7)
	if err != nil {
		return nil, 0, 0, err
	}
	reg, err := parse(args[2], 8)
	if err != nil {
		return nil, 0, 0, err
	}
	return bus, uint16(addr), byte(reg), nil
}

func trailingPEC(args []string) (bool, []string) {
	if n := len(args); n > 0 && args[n-1] == "pec" {
		return true, args[:n-1]
	}
	return false, args
}

// i2cAs looks up an I²C bus and checks it offers T.
func i2cAs[T any](m *Monitor, id string) (T, error) {
	var zero T
	bus, ok := m.hal.Buses().I2C(id)
	if !ok {
		return zero, errcode.New(errcode.UnknownBus, "", id)
	}
	t, ok := bus.(T)
	if !ok {
		return zero, errcode.New(errcode.Unsupported, "", id)
	}
	return t, nil
}

// parse reads an unsigned number in any Go base prefix that fits bits.
func parse(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, errcode.Wrap(errcode.InvalidParams, "", err)
	}
	return v, nil
}
