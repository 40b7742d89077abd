package image

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"kestrel/internal/builtin"
	"kestrel/internal/trace"
	"kestrel/internal/vm"
)

func TestLoadTextFormatsAgree(t *testing.T) {
	ctx := context.Background()
	fromTOML, err := Load(ctx, filepath.Join("testdata", "shapes.toml"))
	require.NoError(t, err)
	fromYAML, err := Load(ctx, filepath.Join("testdata", "shapes.yaml"))
	require.NoError(t, err)

	require.Equal(t, fromTOML, fromYAML)
	require.Equal(t, "shapes", fromTOML.Name)
	require.Len(t, fromTOML.Functions, 3)
	require.Equal(t, 3, fromTOML.ConstructorCount())
	require.Equal(t, "toString", fromTOML.Functions[2].SymbolName())
}

func TestBinaryRoundTrip(t *testing.T) {
	img, err := Load(context.Background(), filepath.Join("testdata", "shapes.toml"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "shapes.kimg")
	require.NoError(t, WriteFile(path, img))
	back, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, img, back)
}

func TestDecodeRejects(t *testing.T) {
	cases := []struct {
		name   string
		format Format
		src    string
		want   string
	}{
		{"toml without name", FormatTOML, "entry = \"main\"\n", "missing name"},
		{"toml unknown key", FormatTOML, "name = \"x\"\nbogus = 1\n", "unknown key bogus"},
		{"yaml unknown key", FormatYAML, "name: x\nbogus: 1\n", "bogus"},
		{"empty type", FormatYAML, "name: x\ntypes:\n  - name: T\n", "no constructors"},
		{"negative arity", FormatYAML, "name: x\nfunctions:\n  - name: f\n    arity: -1\n", "negative arity"},
		{"duplicate function", FormatYAML, "name: x\nfunctions:\n  - {name: f, arity: 0}\n  - {name: f, arity: 0}\n", "declared at"},
		{"garbage binary", FormatBinary, "\xc1", "failed to decode"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.src), tc.format)
			require.ErrorContains(t, err, tc.want)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	for path, want := range map[string]Format{"a.toml": FormatTOML, "a.YML": FormatYAML, "a.kimg": FormatBinary} {
		got, err := DetectFormat(path)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := DetectFormat("a.json")
	require.Error(t, err)
}

func TestLinkBuildsRuntime(t *testing.T) {
	img, err := Load(context.Background(), filepath.Join("testdata", "shapes.yaml"))
	require.NoError(t, err)

	var out bytes.Buffer
	tr := trace.NewStreamTracer(&out, trace.LevelPhase, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tr)
	rt, err := Link(ctx, img, builtin.New(nil), vm.Options{Args: []string{"shapes"}})
	require.NoError(t, err)
	require.Contains(t, out.String(), "image.link")

	res, vmErr := rt.CallFunction(img.EntryName())
	require.Nil(t, vmErr)
	require.Equal(t, "[shapes]", rt.Show(res))

	res, vmErr = rt.CallFunction("add", rt.BoxInt(4), rt.BoxInt(1))
	require.Nil(t, vmErr)
	require.Equal(t, int64(5), rt.UnboxInt(res))

	shape := rt.Types().All()[1]
	rect := rt.MakeData(shape.Type, 1, rt.BoxInt(2), rt.BoxInt(3))
	res, vmErr = rt.CallFunction("toString", rect)
	require.Nil(t, vmErr)
	require.Equal(t, "Rect(2, 3)", rt.UnboxString(res))
}

func TestLinkErrors(t *testing.T) {
	natives := builtin.New(nil)
	img := &Image{Name: "bad", Functions: []FuncDecl{{Name: "f", Arity: 1, Symbol: "nope"}}}
	_, err := Link(context.Background(), img, natives, vm.Options{})
	require.ErrorContains(t, err, "unknown native symbol")

	img = &Image{Name: "bad", Functions: []FuncDecl{{Name: "f", Arity: 1, Symbol: "intOr"}}}
	_, err = Link(context.Background(), img, natives, vm.Options{})
	require.ErrorContains(t, err, "declared arity 1")

	img = &Image{Name: "bad", Types: []TypeDecl{{Name: "Int", Constructors: []ConstructorDecl{{Name: "I"}}}}}
	_, err = Link(context.Background(), img, natives, vm.Options{})
	require.Error(t, err)
}
