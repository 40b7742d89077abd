package builtin

import (
	"regexp"

	"kestrel/internal/types"
	"kestrel/internal/vm"
)

// PatternType tags compiled regular expressions.
var PatternType = types.New("Pattern")

func (r *Registry) registerRegex() {
	r.add("compileRegex", 1, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		src := rt.UnboxString(a[0])
		re, err := regexp.Compile(src)
		if err != nil {
			rt.Fail(vm.PanicInvalidPattern, "compileRegex", "%v", err)
		}
		return rt.NewForeign(PatternType, re)
	})
	r.add("matchRegex", 2, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		re := pattern(rt, a[0])
		return rt.BoxBool(re.MatchString(rt.UnboxString(a[1])))
	})
	r.add("regexReplace", 3, func(rt *vm.Runtime, a []vm.Value) vm.Value {
		re := pattern(rt, a[0])
		return rt.MakeString(re.ReplaceAllString(rt.UnboxString(a[1]), rt.UnboxString(a[2])))
	})
}

func pattern(rt *vm.Runtime, v vm.Value) *regexp.Regexp {
	return rt.UnboxForeign(PatternType, v).(*regexp.Regexp)
}
