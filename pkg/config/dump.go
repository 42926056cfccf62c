package config

import (
	"fmt"
	"io"

	goyaml "github.com/goccy/go-yaml"
)

// Dump writes cfg as YAML, headed by a comment naming its sources.
func Dump(w io.Writer, eff EffectiveConfigResult) error {
	if eff.Config == nil {
		return fmt.Errorf("effective config is nil")
	}
	out, err := goyaml.MarshalWithOptions(eff.Config, goyaml.Indent(2))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if _, err := fmt.Fprintf(w, "# sources: %s\n", eff.Source); err != nil {
		return err
	}
	if eff.Path != "" {
		if _, err := fmt.Fprintf(w, "# file: %s\n", eff.Path); err != nil {
			return err
		}
	}
	_, err = w.Write(out)
	return err
}
