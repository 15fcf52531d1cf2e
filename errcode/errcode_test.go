package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"ok":             OK,
		"busy":           Busy,
		"unsupported":    Unsupported,
		"invalid_params": InvalidParams,
		"not_ready":      NotReady,
		"unknown_pin":    UnknownPin,
		"unknown_irq":    UnknownIRQ,
		"unknown_bus":    UnknownBus,
		"timeout":        Timeout,
		"nack":           Nack,
		"checksum":       Checksum,
		"error":          Error,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOf(t *testing.T) {
	cause := errors.New("bus stuck")
	for _, c := range []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", Timeout, Timeout},
		{"wrapped E", Wrap(Nack, "bsc.Tx", cause), Nack},
		{"fmt wrapped", fmt.Errorf("probe: %w", New(UnknownPin, "gpio.Set", "pin 99")), UnknownPin},
		{"foreign", cause, Error},
	} {
		if got := Of(c.err); got != c.want {
			t.Fatalf("%s: Of()=%q want %q", c.name, got, c.want)
		}
	}
}

func TestEIsAndMessage(t *testing.T) {
	cause := errors.New("no ack")
	e := Wrap(Nack, "bsc.Tx", cause)
	if !errors.Is(e, Nack) {
		t.Fatal("errors.Is should match the code")
	}
	if !errors.Is(e, cause) {
		t.Fatal("errors.Is should reach the cause")
	}
	if errors.Is(e, Timeout) {
		t.Fatal("errors.Is matched the wrong code")
	}
	if got, want := e.Error(), "bsc.Tx: nack: no ack"; got != want {
		t.Fatalf("Error()=%q want %q", got, want)
	}
	if got, want := New(InvalidParams, "", "baud 0").Error(), "invalid_params: baud 0"; got != want {
		t.Fatalf("Error()=%q want %q", got, want)
	}
}
