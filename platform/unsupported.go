//go:build !rpi4 && !qemuvirt && !riscv64virt

package platform

// Building a kernel needs one of the tags rpi4, qemuvirt or riscv64virt.
// The undefined identifier below turns a missing tag into a compile error
// naming the problem.
var _ = platformBuildTagRequired_rpi4_qemuvirt_or_riscv64virt
