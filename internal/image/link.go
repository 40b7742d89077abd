package image

import (
	"context"
	"fmt"
	"strconv"

	"kestrel/internal/trace"
	"kestrel/internal/types"
	"kestrel/internal/vm"
)

// Natives resolves native symbols. *builtin.Registry implements it.
type Natives interface {
	Lookup(symbol string) (vm.Function, bool)
}

// DataTypes converts the type declarations into registry entries.
func (img *Image) DataTypes() []*types.DataType {
	out := make([]*types.DataType, len(img.Types))
	for i, td := range img.Types {
		ctors := make([]types.Constructor, len(td.Constructors))
		for j, cd := range td.Constructors {
			ctors[j] = types.Constructor{Name: cd.Name, Fields: append([]string(nil), cd.Fields...)}
		}
		out[i] = &types.DataType{Type: types.New(td.Name), Constructors: ctors}
	}
	return out
}

// ResolveFunctions resolves every declared function against natives. A missing
// symbol or an arity that disagrees with the native is an error.
func (img *Image) ResolveFunctions(natives Natives) ([]vm.Function, error) {
	out := make([]vm.Function, len(img.Functions))
	for i, fd := range img.Functions {
		sym := fd.SymbolName()
		native, ok := natives.Lookup(sym)
		if !ok {
			return nil, fmt.Errorf("image %s: function %s: unknown native symbol %q", img.Name, fd.Name, sym)
		}
		if native.Arity != fd.Arity {
			return nil, fmt.Errorf("image %s: function %s: declared arity %d, native %s takes %d",
				img.Name, fd.Name, fd.Arity, sym, native.Arity)
		}
		out[i] = vm.Function{Name: fd.Name, Arity: fd.Arity, Entry: native.Entry}
	}
	return out, nil
}

// Link resolves img against natives and initializes a runtime for it. The
// tracer in ctx is used when opts carries none.
func Link(ctx context.Context, img *Image, natives Natives, opts vm.Options) (*vm.Runtime, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeImage, "image.link")
	defer span.End(img.Name)

	resolve := span.Child(trace.ScopeImage, "image.resolve")
	funcs, err := img.ResolveFunctions(natives)
	resolve.End("")
	if err != nil {
		return nil, err
	}
	if opts.Tracer == nil {
		opts.Tracer = tracer
	}
	rt, err := vm.New(funcs, img.DataTypes(), opts)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", img.Name, err)
	}
	span.WithExtra("functions", strconv.Itoa(len(funcs))).
		WithExtra("types", strconv.Itoa(rt.Types().Len()))
	return rt, nil
}
