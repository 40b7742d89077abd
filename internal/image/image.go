// Package image reads and writes program metadata images: the function
// table and data-type declarations a compiler emits for the runtime. Images
// come as TOML or YAML text or as msgpack-encoded .kimg files.
package image

import (
	"fmt"
	"strings"
)

// schemaVersion is written into binary images; bump it when the layout
// changes.
const schemaVersion uint16 = 1

// Image is the decoded metadata of one compiled program.
type Image struct {
	Name      string     `toml:"name" yaml:"name" msgpack:"name"`
	Entry     string     `toml:"entry" yaml:"entry,omitempty" msgpack:"entry"`
	Types     []TypeDecl `toml:"types" yaml:"types,omitempty" msgpack:"types"`
	Functions []FuncDecl `toml:"functions" yaml:"functions,omitempty" msgpack:"functions"`
}

// TypeDecl declares a user data type.
type TypeDecl struct {
	Name         string            `toml:"name" yaml:"name" msgpack:"name"`
	Constructors []ConstructorDecl `toml:"constructors" yaml:"constructors" msgpack:"constructors"`
}

// ConstructorDecl declares one constructor and its field names.
type ConstructorDecl struct {
	Name   string   `toml:"name" yaml:"name" msgpack:"name"`
	Fields []string `toml:"fields" yaml:"fields,omitempty" msgpack:"fields"`
}

// FuncDecl binds a function-table slot to a native symbol. An empty Symbol
// means the native of the same name.
type FuncDecl struct {
	Name   string `toml:"name" yaml:"name" msgpack:"name"`
	Arity  int    `toml:"arity" yaml:"arity" msgpack:"arity"`
	Symbol string `toml:"symbol" yaml:"symbol,omitempty" msgpack:"symbol"`
}

// SymbolName returns the native symbol the function links against.
func (f FuncDecl) SymbolName() string {
	if f.Symbol != "" {
		return f.Symbol
	}
	return f.Name
}

// EntryName returns the function called when none is named.
func (img *Image) EntryName() string {
	if img.Entry != "" {
		return img.Entry
	}
	return "main"
}

// Validate checks the declarations for structural errors. Registry-level
// checks (builtin redefinition, duplicate types) happen at link time.
func (img *Image) Validate() error {
	if strings.TrimSpace(img.Name) == "" {
		return fmt.Errorf("image: missing name")
	}
	for i, td := range img.Types {
		if strings.TrimSpace(td.Name) == "" {
			return fmt.Errorf("image %s: types[%d]: missing name", img.Name, i)
		}
		if len(td.Constructors) == 0 {
			return fmt.Errorf("image %s: type %s: no constructors", img.Name, td.Name)
		}
	}
	seen := make(map[string]int, len(img.Functions))
	for i, fd := range img.Functions {
		if strings.TrimSpace(fd.Name) == "" {
			return fmt.Errorf("image %s: functions[%d]: missing name", img.Name, i)
		}
		if fd.Arity < 0 {
			return fmt.Errorf("image %s: function %s: negative arity %d", img.Name, fd.Name, fd.Arity)
		}
		if prev, dup := seen[fd.Name]; dup {
			return fmt.Errorf("image %s: function %s declared at %d and %d", img.Name, fd.Name, prev, i)
		}
		seen[fd.Name] = i
	}
	return nil
}

// ConstructorCount returns the number of constructors across all types.
func (img *Image) ConstructorCount() int {
	n := 0
	for _, td := range img.Types {
		n += len(td.Constructors)
	}
	return n
}
