//go:build rpi4

package platform

import (
	"sagehal-go/board"
	"sagehal-go/cpu"
	"sagehal-go/hal"
)

const Selected = hal.RPi4

func New() hal.Platform { return board.RPi4(board.Physical, cpu.AArch64MMU{}) }
