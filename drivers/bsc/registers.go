package bsc

// Register offsets from the controller base.
const (
	regC    = 0x00 // control
	regS    = 0x04 // status
	regDLEN = 0x08 // data length
	regA    = 0x0C // slave address
	regFIFO = 0x10 // data FIFO
	regDIV  = 0x14 // clock divider
	regDEL  = 0x18 // data delay
	regCLKT = 0x1C // clock stretch timeout
)

// Exported for register models built on top of the driver's layout.
const (
	RegC    = regC
	RegS    = regS
	RegDLEN = regDLEN
	RegA    = regA
	RegFIFO = regFIFO
	RegDIV  = regDIV
	RegDEL  = regDEL
	RegCLKT = regCLKT
)

// Ctl is the C register.
type Ctl uint32

const (
	CtlRead   Ctl = 1 << 0
	CtlClear  Ctl = 3 << 4 // flush the FIFO
	CtlStart  Ctl = 1 << 7
	CtlIntD   Ctl = 1 << 8
	CtlIntT   Ctl = 1 << 9
	CtlIntR   Ctl = 1 << 10
	CtlEnable Ctl = 1 << 15
)

// Status is the S register. ERR, CLKT and DONE are write-1-to-clear.
type Status uint32

const (
	StatusTA   Status = 1 << iota // transfer active
	StatusDONE                    // transfer done
	StatusTXW                     // FIFO needs writing
	StatusRXR                     // FIFO needs reading
	StatusTXD                     // FIFO can accept data
	StatusRXD                     // FIFO contains data
	StatusTXE                     // FIFO empty
	StatusRXF                     // FIFO full
	StatusERR                     // slave did not acknowledge
	StatusCLKT                    // slave held SCL too long

	statusClear = StatusERR | StatusCLKT | StatusDONE
)

const fifoDepth = 16
