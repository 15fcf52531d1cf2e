package bcmgpio

// Register offsets from the GPIO base.
const (
	regGPFSEL0 = 0x00 // function select, 10 pins per register, 3 bits each
	regGPSET0  = 0x1C // output set (WO)
	regGPCLR0  = 0x28 // output clear (WO)
	regGPLEV0  = 0x34 // pin level (RO)

	// BCM2835..2837 pull control: value, then a clock strobe per pin.
	regGPPUD     = 0x94
	regGPPUDCLK0 = 0x98

	// BCM2711 pull control: 2 bits per pin, 16 pins per register.
	regPUPPDN0 = 0xE4
)

// function select codes
const (
	fselInput  = 0b000
	fselOutput = 0b001
	fselAlt0   = 0b100
	fselAlt1   = 0b101
	fselAlt2   = 0b110
	fselAlt3   = 0b111
	fselAlt4   = 0b011
	fselAlt5   = 0b010
	fselMask   = 0b111
)

// legacy GPPUD codes
const (
	gppudOff  = 0
	gppudDown = 1
	gppudUp   = 2
)

// BCM2711 pull codes
const (
	puppdnNone = 0
	puppdnUp   = 1
	puppdnDown = 2
	puppdnMask = 0b11
)

// pullSettle is the number of cycles GPPUD needs before and after the strobe.
const pullSettle = 150
