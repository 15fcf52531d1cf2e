//go:build rpi4 || qemuvirt || riscv64virt

// Command kernel is the boot entry of the HAL: it brings up the board picked
// by the platform build tag, greets on the console and runs the monitor.
package main

import (
	"sagehal-go/console"
	"sagehal-go/hal"
	"sagehal-go/monitor"
	"sagehal-go/platform"
)

func main() {
	h, err := hal.New(platform.New())
	if err != nil {
		// No console yet; nothing to report to.
		hal.Halt()
		return
	}
	h.Init()

	con := console.New(h.UART())
	defer func() {
		if r := recover(); r != nil {
			con.Fatal(panicMessage(r))
		}
	}()

	p := h.Platform()
	con.Printfln("SAGE OS HAL on %s (%s)", p.Name, p.Arch)
	con.Logf("hal", "timer %d Hz, %d interrupt lines, mmu %t",
		h.Timer().Frequency(), h.Interrupt().Lines(), h.MMU().Enabled())

	monitor.New(con, h).Run()
	con.Printfln("System halted")
	hal.Halt()
}

func panicMessage(r any) string {
	switch v := r.(type) {
	case string:
		return v
	case error:
		return v.Error()
	}
	return "unknown panic value"
}
