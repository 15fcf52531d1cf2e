//go:build qemuvirt

package platform

import (
	"sagehal-go/board"
	"sagehal-go/cpu"
	"sagehal-go/hal"
)

const Selected = hal.QEMUVirt

func New() hal.Platform { return board.QEMUVirt(board.Physical, cpu.GenericTimer{}, cpu.AArch64MMU{}) }
