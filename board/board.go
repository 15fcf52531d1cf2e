// Package board assembles the driver set of each supported board.
//
// The builders take their register windows from a Mapper, so the same
// composition runs on hardware (Physical) and against simulated registers.
package board

import (
	"sagehal-go/drivers/armmmu"
	"sagehal-go/drivers/armtimer"
	"sagehal-go/drivers/bcmgpio"
	"sagehal-go/drivers/bcmintc"
	"sagehal-go/drivers/bcmtimer"
	"sagehal-go/drivers/clint"
	"sagehal-go/drivers/gicv2"
	"sagehal-go/drivers/ns16550"
	"sagehal-go/drivers/pl011"
	"sagehal-go/drivers/pl061"
	"sagehal-go/drivers/plic"
	"sagehal-go/drivers/sv39"
	"sagehal-go/hal"
	"sagehal-go/mmio"
)

// Mapper returns the register window of the block at physical address base.
type Mapper func(base uintptr) mmio.Bus

// Physical maps the identity-mapped physical address space.
func Physical(base uintptr) mmio.Bus { return mmio.NewWindow(base) }

// ---- Raspberry Pi 4 ----

const (
	RPi4Peripherals = 0xFE00_0000
	RPi4UART0       = RPi4Peripherals + 0x20_1000
	RPi4SystemTimer = RPi4Peripherals + 0x3000

	rpi4GPIO   = RPi4Peripherals + 0x20_0000
	rpi4IRQ    = RPi4Peripherals + 0xB000
	rpi4BSC1   = RPi4Peripherals + 0x80_4000
	rpi4SPI0   = RPi4Peripherals + 0x20_4000
	rpi4Device = 0xFC00_0000
)

// RPi4Memory is RAM below the low peripheral window, device memory above it.
var RPi4Memory = []hal.Region{
	{Base: 0, Size: rpi4Device, Kind: hal.Normal},
	{Base: rpi4Device, Size: 1<<32 - rpi4Device, Kind: hal.Device},
}

// RPi4 builds the BCM2711 driver set: PL011 UART0, system timer, legacy
// interrupt controller, GPIO and the BSC1/SPI0 buses.
func RPi4(m Mapper, mmu armmmu.Activator) hal.Platform {
	return hal.Platform{
		ID:        hal.RPi4,
		Name:      "Raspberry Pi 4 Model B",
		Arch:      "arm64",
		Memory:    RPi4Memory,
		UART:      pl011.New(m(RPi4UART0), pl011.Config{ClockHz: 48_000_000, Baud: 115_200}),
		GPIO:      bcmgpio.New(m(rpi4GPIO), bcmgpio.Config{}),
		Timer:     bcmtimer.New(m(RPi4SystemTimer)),
		Interrupt: bcmintc.New(m(rpi4IRQ)),
		MMU:       armmmu.New(mmu, armmmu.Config{Regions: RPi4Memory}),
		Buses:     newRPi4Buses(m(rpi4BSC1), m(rpi4SPI0)),
	}
}

// ---- QEMU virt (AArch64) ----

const (
	qemuGICD = 0x0800_0000
	qemuGICC = 0x0801_0000
	qemuUART = 0x0900_0000
	qemuGPIO = 0x0903_0000
	qemuRAM  = 0x4000_0000
)

var QEMUVirtMemory = []hal.Region{
	{Base: 0, Size: qemuRAM, Kind: hal.Device},
	{Base: qemuRAM, Size: 3 << 30, Kind: hal.Normal},
}

// QEMUVirt builds the driver set of QEMU's AArch64 virt machine. The
// timer is the generic timer behind sys.
func QEMUVirt(m Mapper, sys armtimer.SysRegs, mmu armmmu.Activator) hal.Platform {
	return hal.Platform{
		ID:        hal.QEMUVirt,
		Name:      "QEMU virt (AArch64)",
		Arch:      "arm64",
		Memory:    QEMUVirtMemory,
		UART:      pl011.New(m(qemuUART), pl011.Config{ClockHz: 24_000_000, Baud: 115_200}),
		GPIO:      pl061.New(m(qemuGPIO)),
		Timer:     armtimer.New(sys),
		Interrupt: gicv2.New(m(qemuGICD), m(qemuGICC)),
		MMU:       armmmu.New(mmu, armmmu.Config{Regions: QEMUVirtMemory}),
	}
}

// ---- QEMU virt (RISC-V 64) ----

const (
	riscvCLINT = 0x0200_0000
	riscvPLIC  = 0x0C00_0000
	riscvUART  = 0x1000_0000
	riscvRAM   = 0x8000_0000
)

var RISCV64VirtMemory = []hal.Region{
	{Base: 0, Size: riscvRAM, Kind: hal.Device},
	{Base: riscvRAM, Size: 1 << 30, Kind: hal.Normal},
}

// RISCV64Virt builds the driver set of QEMU's RISC-V virt machine for
// hart 0 in machine mode. The machine has no GPIO block.
func RISCV64Virt(m Mapper, csr sv39.SATP) hal.Platform {
	return hal.Platform{
		ID:        hal.RISCV64Virt,
		Name:      "QEMU virt (RISC-V 64)",
		Arch:      "riscv64",
		Memory:    RISCV64VirtMemory,
		UART:      ns16550.New(m(riscvUART), ns16550.Config{}),
		GPIO:      hal.NoGPIO{},
		Timer:     clint.New(m(riscvCLINT), clint.Config{Hart: 0}),
		Interrupt: plic.New(m(riscvPLIC), plic.Config{Context: 0}),
		MMU:       sv39.New(csr, RISCV64VirtMemory),
	}
}
