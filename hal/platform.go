package hal

import "sagehal-go/errcode"

// PlatformID names a supported board. The set is closed.
type PlatformID uint8

const (
	RPi4 PlatformID = iota + 1
	QEMUVirt
	RISCV64Virt
)

func (id PlatformID) String() string {
	switch id {
	case RPi4:
		return "rpi4"
	case QEMUVirt:
		return "qemuvirt"
	case RISCV64Virt:
		return "riscv64virt"
	}
	return "unknown"
}

// Platform binds one implementation of each capability to a board.
type Platform struct {
	ID     PlatformID
	Name   string // human readable board name
	Arch   string // GOARCH the board boots
	Memory []Region

	UART      UART
	GPIO      GPIO
	Timer     Timer
	Interrupt InterruptController
	MMU       MMU
	Buses     Buses // nil means NoBuses
}

// Validate reports a missing capability.
func (p *Platform) Validate() error {
	const op = "hal.Platform"
	switch {
	case p.ID < RPi4 || p.ID > RISCV64Virt:
		return errcode.New(errcode.InvalidParams, op, "unknown platform id")
	case p.UART == nil:
		return errcode.New(errcode.InvalidParams, op, "no uart")
	case p.GPIO == nil:
		return errcode.New(errcode.InvalidParams, op, "no gpio")
	case p.Timer == nil:
		return errcode.New(errcode.InvalidParams, op, "no timer")
	case p.Interrupt == nil:
		return errcode.New(errcode.InvalidParams, op, "no interrupt controller")
	case p.MMU == nil:
		return errcode.New(errcode.InvalidParams, op, "no mmu")
	}
	return nil
}
