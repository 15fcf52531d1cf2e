// Package fmtx is a small printf that appends into a caller-owned buffer.
//
// It covers what kernel log lines need: %s %q %d %x %X %c %t %v and %%,
// the '0' and '-' flags, width, and precision for strings. Output goes into
// a buffer the caller reuses, so steady-state logging does not grow the heap.
package fmtx

import (
	"reflect"
	"strconv"
	"unicode/utf8"
)

type directive struct {
	width   int
	prec    int
	hasPrec bool
	zero    bool
	left    bool
}

// Appendf formats according to format and appends the result to dst.
// Bad verbs and argument mismatches are written inline as %!verb(?).
func Appendf(dst []byte, format string, args ...any) []byte {
	ai := 0
	for i := 0; i < len(format); {
		if format[i] != '%' {
			dst = append(dst, format[i])
			i++
			continue
		}
		i++
		if i < len(format) && format[i] == '%' {
			dst = append(dst, '%')
			i++
			continue
		}

		var sp directive
	flags:
		for ; i < len(format); i++ {
			switch format[i] {
			case '0':
				sp.zero = true
			case '-':
				sp.left = true
			default:
				break flags
			}
		}
		i = parseNum(format, i, &sp.width)
		if i < len(format) && format[i] == '.' {
			sp.hasPrec = true
			i = parseNum(format, i+1, &sp.prec)
		}
		if i >= len(format) {
			return append(dst, "%!(NOVERB)"...)
		}
		verb := format[i]
		i++
		if ai >= len(args) {
			dst = append(dst, '%', '!', verb)
			dst = append(dst, "(MISSING)"...)
			continue
		}
		dst = sp.arg(dst, verb, args[ai])
		ai++
	}
	if ai < len(args) {
		dst = append(dst, "%!(EXTRA)"...)
	}
	return dst
}

func parseNum(s string, i int, out *int) int {
	n := 0
	for ; i < len(s) && '0' <= s[i] && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}
	*out = n
	return i
}

func (sp directive) arg(dst []byte, verb byte, a any) []byte {
	start := len(dst)
	ok := true
	numeric := false
	switch verb {
	case 'd':
		dst, ok = appendInt(dst, a, 10, false)
		numeric = true
	case 'x', 'X':
		if dst, ok = appendInt(dst, a, 16, verb == 'X'); !ok {
			dst, ok = appendHexBytes(dst, a, verb == 'X')
		}
		numeric = true
	case 'c':
		var r int64
		if r, ok = asRune(a); ok {
			dst = utf8.AppendRune(dst, rune(r))
		}
	case 't':
		var b bool
		if b, ok = a.(bool); ok {
			dst = strconv.AppendBool(dst, b)
		}
	case 's':
		dst, ok = appendText(dst, a)
		dst = sp.truncate(dst, start)
	case 'q':
		switch v := a.(type) {
		case string:
			dst = strconv.AppendQuote(dst, v)
		case []byte:
			dst = strconv.AppendQuote(dst, string(v))
		default:
			ok = false
		}
	case 'v':
		if dst, ok = appendText(dst, a); ok {
			break
		}
		if b, isBool := a.(bool); isBool {
			dst, ok = strconv.AppendBool(dst, b), true
			break
		}
		dst, ok = appendInt(dst, a, 10, false)
		numeric = true
	default:
		ok = false
	}
	if !ok {
		dst = append(dst[:start], '%', '!', verb)
		return append(dst, "(?)"...)
	}
	return sp.pad(dst, start, numeric)
}

func (sp directive) truncate(dst []byte, start int) []byte {
	if !sp.hasPrec || len(dst)-start <= sp.prec {
		return dst
	}
	return dst[:start+sp.prec]
}

// pad widens dst[start:] to sp.width runes. Zero padding goes after a sign.
func (sp directive) pad(dst []byte, start int, numeric bool) []byte {
	n := sp.width - utf8.RuneCount(dst[start:])
	if n <= 0 {
		return dst
	}
	if sp.left {
		for ; n > 0; n-- {
			dst = append(dst, ' ')
		}
		return dst
	}
	fill := byte(' ')
	if sp.zero && numeric {
		fill = '0'
		if dst[start] == '-' {
			start++
		}
	}
	end := len(dst)
	for i := 0; i < n; i++ {
		dst = append(dst, 0)
	}
	copy(dst[start+n:], dst[start:end])
	for i := start; i < start+n; i++ {
		dst[i] = fill
	}
	return dst
}

func appendText(dst []byte, a any) ([]byte, bool) {
	switch v := a.(type) {
	case string:
		return append(dst, v...), true
	case []byte:
		return append(dst, v...), true
	case error:
		return append(dst, v.Error()...), true
	case interface{ String() string }:
		return append(dst, v.String()...), true
	}
	return dst, false
}

// magnitude splits any integer kind, named types included, into sign and
// absolute value.
func magnitude(a any) (u uint64, neg, ok bool) {
	v := reflect.ValueOf(a)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		if n < 0 {
			return uint64(-n), true, true
		}
		return uint64(n), false, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), false, true
	}
	return 0, false, false
}

func appendInt(dst []byte, a any, base int, upper bool) ([]byte, bool) {
	u, neg, ok := magnitude(a)
	if !ok {
		return dst, false
	}
	if neg {
		dst = append(dst, '-')
	}
	start := len(dst)
	dst = strconv.AppendUint(dst, u, base)
	if upper {
		toUpper(dst[start:])
	}
	return dst, true
}

func appendHexBytes(dst []byte, a any, upper bool) ([]byte, bool) {
	var p []byte
	switch v := a.(type) {
	case []byte:
		p = v
	case string:
		p = []byte(v)
	default:
		return dst, false
	}
	const digits = "0123456789abcdef"
	start := len(dst)
	for _, b := range p {
		dst = append(dst, digits[b>>4], digits[b&0xF])
	}
	if upper {
		toUpper(dst[start:])
	}
	return dst, true
}

func asRune(a any) (int64, bool) {
	u, neg, ok := magnitude(a)
	if !ok || neg || u > utf8.MaxRune {
		return 0, false
	}
	return int64(u), true
}

func toUpper(p []byte) {
	for i, c := range p {
		if 'a' <= c && c <= 'f' {
			p[i] = c - ('a' - 'A')
		}
	}
}
