// Package platform selects the board the kernel is built for.
//
// Exactly one of the build tags rpi4, qemuvirt or riscv64virt must be set.
// The tagged file defines Selected and New; with no tag the package does not
// compile, and with two the duplicate definitions do not either.
package platform
