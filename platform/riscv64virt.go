//go:build riscv64virt

package platform

import (
	"sagehal-go/board"
	"sagehal-go/cpu"
	"sagehal-go/hal"
)

const Selected = hal.RISCV64Virt

func New() hal.Platform { return board.RISCV64Virt(board.Physical, cpu.Sv39MMU{}) }
