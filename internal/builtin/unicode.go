package builtin

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"

	"kestrel/internal/vm"
)

func (r *Registry) registerUnicode() {
	r.add("codePointsIterate", 2, codePointsIterate)
	r.add("graphemesIterate", 2, graphemesIterate)
	r.add("codePointToString", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		return rt.MakeString(encodeRune(rt, rt.UnboxInt(a[0])))
	})
	r.add("codePointsToString", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		arr := rt.UnboxArray(a[0])
		var sb strings.Builder
		sb.Grow(arr.Len())
		for _, cp := range arr.Elems() {
			sb.WriteString(encodeRune(rt, rt.UnboxInt(cp)))
		}
		return rt.MakeString(sb.String())
	})
	r.add("codePointsCount", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		s := validUTF8(rt, "codePointsCount", rt.UnboxString(a[0]))
		return rt.BoxInt(int64(utf8.RuneCountInString(s)))
	})
	r.add("graphemesCount", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		s := validUTF8(rt, "graphemesCount", rt.UnboxString(a[0]))
		return rt.BoxInt(int64(uniseg.GraphemeClusterCount(s)))
	})
	r.add("displayWidth", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		s := validUTF8(rt, "displayWidth", rt.UnboxString(a[0]))
		return rt.BoxInt(int64(runewidth.StringWidth(s)))
	})
	r.add("normalize", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		s := validUTF8(rt, "normalize", rt.UnboxString(a[0]))
		if norm.NFC.IsNormalString(s) {
			return a[0]
		}
		return rt.MakeString(norm.NFC.String(s))
	})
}

// validUTF8 fails with EncodingError at the first malformed byte.
func validUTF8(rt *vm.Runtime, op, s string) string {
	if utf8.ValidString(s) {
		return s
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			rt.Fail(vm.PanicEncodingError, op, "invalid UTF-8 near position %d", i)
		}
		i += size
	}
	return s
}

func encodeRune(rt *vm.Runtime, cp int64) string {
	if cp < 0 || cp > utf8.MaxRune || !utf8.ValidRune(rune(cp)) {
		rt.Fail(vm.PanicInvalidArgument, "codePointToString", "invalid code point %d", cp)
	}
	return string(rune(cp))
}

// codePointsIterate calls f with each code point of s until f returns false.
func codePointsIterate(rt *vm.Runtime, a []vm.Value) vm.Value {
	s := validUTF8(rt, "codePointsIterate", rt.UnboxString(a[0]))
	f := a[1]
	for _, cp := range s {
		if !rt.UnboxBool(rt.Apply(f, []vm.Value{rt.BoxInt(int64(cp))})) {
			break
		}
	}
	return rt.Unit()
}

// graphemesIterate calls f with each extended grapheme cluster of s, as a
// String, until f returns false.
func graphemesIterate(rt *vm.Runtime, a []vm.Value) vm.Value {
	s := validUTF8(rt, "graphemesIterate", rt.UnboxString(a[0]))
	f := a[1]
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		if !rt.UnboxBool(rt.Apply(f, []vm.Value{rt.MakeString(cluster)})) {
			break
		}
	}
	return rt.Unit()
}
