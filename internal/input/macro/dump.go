package macro

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// dumpedMacro is the YAML form of one compiled macro.
type dumpedMacro struct {
	Name         string   `yaml:"name"`
	Instructions []string `yaml:"instructions"`
}

// Dump writes every macro in reg as YAML, sorted by name. Each
// instruction is written in its source-like form, with hold already
// lowered.
func Dump(w io.Writer, reg *Registry) error {
	names := reg.Names()
	out := make([]dumpedMacro, 0, len(names))
	for _, name := range names {
		m, _ := reg.Lookup(name)
		d := dumpedMacro{Name: name, Instructions: make([]string, len(m.Instructions))}
		for i, in := range m.Instructions {
			d.Instructions[i] = in.String()
		}
		out = append(out, d)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode macros: %w", err)
	}
	return enc.Close()
}
