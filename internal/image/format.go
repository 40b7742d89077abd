package image

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"kestrel/internal/trace"
)

// Format is an image encoding.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
	FormatBinary
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatBinary:
		return "kimg"
	default:
		return "unknown"
	}
}

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".kimg", ".msgpack":
		return FormatBinary, nil
	default:
		return 0, fmt.Errorf("%s: unknown image format (expected .toml, .yaml, .yml or .kimg)", path)
	}
}

// binaryImage is the on-disk layout of a .kimg file.
type binaryImage struct {
	Schema uint16 `msgpack:"schema"`
	Image  Image  `msgpack:"image"`
}

// Load reads and validates the image at path.
func Load(ctx context.Context, path string) (*Image, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeImage, "image.load")
	defer span.End(path)

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image %s: %w", path, err)
	}
	img, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	span.WithExtra("format", format.String()).
		WithExtra("functions", strconv.Itoa(len(img.Functions)))
	return img, nil
}

// Decode reads an image in the given format and validates it.
func Decode(r io.Reader, format Format) (*Image, error) {
	var img Image
	switch format {
	case FormatTOML:
		meta, err := toml.NewDecoder(r).Decode(&img)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		if !meta.IsDefined("name") {
			return nil, fmt.Errorf("missing name")
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %s", undecoded[0])
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&img); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatBinary:
		var bin binaryImage
		if err := msgpack.NewDecoder(r).Decode(&bin); err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		if bin.Schema != schemaVersion {
			return nil, fmt.Errorf("image schema %d, expected %d", bin.Schema, schemaVersion)
		}
		img = bin.Image
	default:
		return nil, fmt.Errorf("unsupported image format %s", format)
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return &img, nil
}

// Encode writes img as a binary image.
func Encode(w io.Writer, img *Image) error {
	if err := img.Validate(); err != nil {
		return err
	}
	return msgpack.NewEncoder(w).Encode(&binaryImage{Schema: schemaVersion, Image: *img})
}

// WriteFile encodes img to path, replacing any existing file atomically.
func WriteFile(path string, img *Image) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".kimg-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if err = Encode(f, img); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
