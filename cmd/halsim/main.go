// Command halsim boots the Raspberry Pi 4 driver set against simulated
// registers on a development machine. The PL011 is modelled at register
// level and wired to the terminal; the system timer counts real time; every
// other block is a recording register bank.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sagehal-go/board"
	"sagehal-go/console"
	"sagehal-go/cpu"
	"sagehal-go/drivers/bcmtimer"
	"sagehal-go/drivers/pl011"
	"sagehal-go/drivers/pl011/pl011sim"
	"sagehal-go/hal"
	"sagehal-go/mmio"
	"sagehal-go/mmio/mmiotest"
	"sagehal-go/monitor"

	"golang.org/x/sync/errgroup"
)

var (
	flagClock = flag.Uint("clock", pl011.DefaultClockHz, "UART reference clock in Hz")
	flagBaud  = flag.Uint("baud", pl011.DefaultBaud, "UART baud rate")
	flagRaw   = flag.Bool("raw", true, "put the terminal in raw mode")
)

// restore undoes raw mode; replaced once the terminal is switched.
var restore = func() {}

func exit(code int) {
	restore()
	os.Exit(code)
}

func main() {
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("halsim: ")

	ibrd, fbrd, err := pl011.Divisor(uint32(*flagClock), uint32(*flagBaud))
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("uart %d Hz / %d baud -> IBRD=%d FBRD=%d", *flagClock, *flagBaud, ibrd, fbrd)

	if *flagRaw {
		undo, err := makeRaw(int(os.Stdin.Fd()))
		if err != nil {
			log.Printf("raw mode unavailable: %v", err)
		} else {
			restore = undo
		}
	}

	uart := pl011sim.New(os.Stdout)
	p := board.RPi4(simMapper(uart), cpu.AArch64MMU{})
	p.UART = pl011.New(uart, pl011.Config{ClockHz: uint32(*flagClock), Baud: uint32(*flagBaud)})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	go pump(os.Stdin, uart, cancel)
	g.Go(func() error {
		defer cancel()
		return run(p)
	})
	g.Go(func() error {
		<-ctx.Done()
		// Unblocks the monitor's ReadLine.
		uart.Feed([]byte("\rhalt\r"))
		return nil
	})
	err = g.Wait()
	restore()
	if err != nil {
		log.Fatal(err)
	}
}

func run(p hal.Platform) error {
	h, err := hal.New(p, hal.WithHalt(func() { exit(1) }))
	if err != nil {
		return err
	}
	h.Init()

	con := console.New(h.UART(), console.WithHalt(func() { exit(2) }))
	defer func() {
		if r := recover(); r != nil {
			con.Fatal("halsim: unexpected panic")
		}
	}()
	// From here on the terminal belongs to the simulated UART; host
	// diagnostics share it with CR LF line ends.
	log.SetOutput(con.Writer())
	start := time.Now()

	con.Printfln("SAGE OS HAL on %s (simulated)", p.Name)
	con.Logf("hal", "timer %d Hz, %d interrupt lines, mmu %t",
		h.Timer().Frequency(), h.Interrupt().Lines(), h.MMU().Enabled())
	monitor.New(con, h).Run()
	con.Printfln("System halted")
	log.Printf("monitor ran for %v", time.Since(start).Round(time.Millisecond))
	return nil
}

// simMapper routes the UART window to the PL011 model and the system timer
// to a bank whose counter follows the wall clock.
func simMapper(uart *pl011sim.Device) board.Mapper {
	return func(base uintptr) mmio.Bus {
		switch base {
		case board.RPi4UART0:
			return uart
		case board.RPi4SystemTimer:
			return liveTimer()
		}
		return mmiotest.New()
	}
}

func liveTimer() *mmiotest.Bank {
	b := mmiotest.New()
	start := time.Now()
	micros := func() uint64 { return uint64(time.Since(start) / time.Microsecond) }
	b.OnLoad(bcmtimer.RegCLO, func() uint32 { return uint32(micros()) })
	b.OnLoad(bcmtimer.RegCHI, func() uint32 { return uint32(micros() >> 32) })
	return b
}

// pump feeds terminal input to the UART receiver. Ctrl-C, Ctrl-D or end of
// input stop the simulation.
func pump(r io.Reader, uart *pl011sim.Device, stop func()) {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if b == 0x03 || b == 0x04 {
				stop()
				return
			}
		}
		if n > 0 {
			uart.Feed(buf[:n])
		}
		if err != nil {
			stop()
			return
		}
	}
}
