package pl011

// Register offsets from the UART base.
const (
	regDR   = 0x00 // data (RW)
	regRSR  = 0x04 // receive status / error clear (RW)
	regFR   = 0x18 // flags (RO)
	regIBRD = 0x24 // integer baud divisor (RW)
	regFBRD = 0x28 // fractional baud divisor (RW)
	regLCRH = 0x2C // line control (RW)
	regCR   = 0x30 // control (RW)
	regIFLS = 0x34 // FIFO level select (RW)
	regIMSC = 0x38 // interrupt mask set/clear (RW)
	regRIS  = 0x3C // raw interrupt status (RO)
	regMIS  = 0x40 // masked interrupt status (RO)
	regICR  = 0x44 // interrupt clear (WO)
)

// Exported for register models built on top of the driver's layout.
const (
	RegDR   = regDR
	RegFR   = regFR
	RegIBRD = regIBRD
	RegFBRD = regFBRD
	RegLCRH = regLCRH
	RegCR   = regCR
	RegIMSC = regIMSC
	RegICR  = regICR
)

// Flag is the FR register.
type Flag uint32

const (
	FlagCTS  Flag = 1 << iota // clear to send
	FlagDSR                   // data set ready
	FlagDCD                   // data carrier detect
	FlagBUSY                  // transmitting
	FlagRXFE                  // receive FIFO empty
	FlagTXFF                  // transmit FIFO full
	FlagRXFF                  // receive FIFO full
	FlagTXFE                  // transmit FIFO empty
	FlagRI                    // ring indicator
)

// LineCtl is the LCRH register.
type LineCtl uint32

const (
	LineBRK  LineCtl = 1 << 0
	LinePEN  LineCtl = 1 << 1
	LineEPS  LineCtl = 1 << 2
	LineSTP2 LineCtl = 1 << 3
	LineFEN  LineCtl = 1 << 4 // FIFOs enabled
	LineWLEN LineCtl = 3 << 5 // word length field
	LineSPS  LineCtl = 1 << 7

	LineWLEN8 LineCtl = 3 << 5
)

// Ctl is the CR register.
type Ctl uint32

const (
	CtlUARTEN Ctl = 1 << 0
	CtlLBE    Ctl = 1 << 7
	CtlTXE    Ctl = 1 << 8
	CtlRXE    Ctl = 1 << 9
	CtlRTS    Ctl = 1 << 11
)

// Intr covers IMSC, RIS, MIS and ICR.
type Intr uint32

const (
	IntrRX  Intr = 1 << 4 // receive
	IntrTX  Intr = 1 << 5 // transmit
	IntrRT  Intr = 1 << 6 // receive timeout
	IntrAll Intr = 0x7FF
)

const dataMask = 0xFF
