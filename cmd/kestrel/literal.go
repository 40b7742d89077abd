package main

import (
	"strconv"
	"strings"

	"kestrel/internal/vm"
)

// parseLiteral converts a command-line argument into a runtime value:
// "()" is unit, true/false are booleans, decimal or 0x integers are Int,
// other numbers are Float, double-quoted text is an unescaped String and
// anything else is taken verbatim as a String.
func parseLiteral(rt *vm.Runtime, s string) vm.Value {
	switch s {
	case "()":
		return rt.Unit()
	case "true":
		return rt.BoxBool(true)
	case "false":
		return rt.BoxBool(false)
	}
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return rt.BoxInt(n)
	}
	if looksNumeric(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return rt.BoxFloat64(f)
		}
	}
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		if u, err := strconv.Unquote(s); err == nil {
			return rt.MakeString(u)
		}
	}
	return rt.MakeString(s)
}

// looksNumeric keeps words such as "inf" or "NaN" as strings.
func looksNumeric(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return s != "" && (s[0] >= '0' && s[0] <= '9' || s[0] == '.')
}
