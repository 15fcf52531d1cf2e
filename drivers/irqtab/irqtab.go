// Package irqtab is the handler table shared by the interrupt controller
// drivers.
package irqtab

import (
	"strconv"

	"sagehal-go/errcode"
	"sagehal-go/hal"
)

// Table maps interrupt lines to handlers. Lines are numbered from 0; a line
// holds at most one handler. Registration happens during bring-up, before
// interrupts are unmasked, so the table is not locked.
type Table struct {
	op       string
	handlers []hal.Handler
}

// New returns a table for lines [0, n). op prefixes errors.
func New(op string, n int) *Table {
	return &Table{op: op, handlers: make([]hal.Handler, n)}
}

func (t *Table) Lines() int { return len(t.handlers) }

// Check reports errcode.UnknownIRQ for a line outside the table.
func (t *Table) Check(irq int) error {
	if irq < 0 || irq >= len(t.handlers) {
		return errcode.New(errcode.UnknownIRQ, t.op, "irq "+strconv.Itoa(irq))
	}
	return nil
}

// Register binds h to irq. A second registration for the same line fails
// with errcode.Busy.
func (t *Table) Register(irq int, h hal.Handler) error {
	if err := t.Check(irq); err != nil {
		return err
	}
	if h == nil {
		return errcode.New(errcode.InvalidParams, t.op, "nil handler")
	}
	if t.handlers[irq] != nil {
		return errcode.New(errcode.Busy, t.op, "irq "+strconv.Itoa(irq)+" already registered")
	}
	t.handlers[irq] = h
	return nil
}

// Run calls the handler of irq and reports whether one was registered.
func (t *Table) Run(irq int) bool {
	if irq < 0 || irq >= len(t.handlers) || t.handlers[irq] == nil {
		return false
	}
	t.handlers[irq]()
	return true
}
