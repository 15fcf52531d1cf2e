package conv

import "testing"

func TestUtoa(t *testing.T) {
	var buf [20]byte
	for _, c := range []struct {
		n    uint64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{4096, "4096"},
		{18446744073709551615, "18446744073709551615"},
	} {
		if got := string(Utoa(buf[:], c.n)); got != c.want {
			t.Fatalf("Utoa(%d)=%q want %q", c.n, got, c.want)
		}
	}
	if got := Utoa(nil, 5); len(got) != 0 {
		t.Fatalf("Utoa on empty buf returned %q", got)
	}
}

func TestNoAllocs(t *testing.T) {
	var buf [20]byte
	if n := testing.AllocsPerRun(100, func() { _ = Utoa(buf[:], 123456789) }); n != 0 {
		t.Fatalf("Utoa allocated %v times", n)
	}
}
