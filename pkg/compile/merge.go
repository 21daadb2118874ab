package compile

import (
	"fmt"

	cerr "github.com/cascade-ui/cascade/pkg/errors"
	"github.com/cascade-ui/cascade/pkg/props"
	"github.com/cascade-ui/cascade/pkg/registry"
)

// mergeInto copies src over dst key-by-key, src winning. The merge is
// shallow: a nested table in src replaces the whole table in dst, it is
// never deep-merged into it.
func mergeInto(dst, src registry.Config) registry.Config {
	if dst == nil {
		dst = make(registry.Config, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// resolveStyles flattens a node's style chain into a single property table.
// Merge order, each layer winning over the previous:
//
//	multistyle entries left to right, then style, then the node's own
//	inline properties.
func (c *Compiler) resolveStyles(node string, cfg registry.Config) (registry.Config, error) {
	out := make(registry.Config)

	if multi, ok := cfg["multistyle"]; ok {
		entries, ok := multi.([]any)
		if !ok {
			return nil, &cerr.ConfigError{Op: "compile.resolveStyles", Node: node, Key: "multistyle", Err: cerr.ErrInvalidShape}
		}
		for _, entry := range entries {
			layer, err := c.resolveStyleRef(node, entry)
			if err != nil {
				return nil, err
			}
			out = mergeInto(out, layer)
		}
	}

	if style, ok := cfg["style"]; ok {
		layer, err := c.resolveStyleRef(node, style)
		if err != nil {
			return nil, err
		}
		out = mergeInto(out, layer)
	}

	// Inline properties win last. Style-chain keys don't survive into the
	// flattened table.
	for k, v := range cfg {
		if k == "style" || k == "multistyle" {
			continue
		}
		out[k] = v
	}
	return out, nil
}

// styleRefNames collects every style name a node references: the plain
// style string, the name of a (name, overrides) tuple, and each multistyle
// entry in either form. Used for component fan-out registration.
func styleRefNames(cfg registry.Config) []string {
	var out []string
	add := func(ref any) {
		switch r := ref.(type) {
		case string:
			out = append(out, r)
		case []any:
			if len(r) == 2 {
				if name, ok := r[0].(string); ok {
					out = append(out, name)
				}
			}
		}
	}
	if multi, ok := cfg["multistyle"].([]any); ok {
		for _, entry := range multi {
			add(entry)
		}
	}
	if ref, ok := cfg["style"]; ok {
		add(ref)
	}
	return out
}

// resolveStyleRef resolves one style reference: a name string, or a
// two-element tuple of a name and an override table. Overrides shallow-merge
// on top of the named entry's stored properties.
func (c *Compiler) resolveStyleRef(node string, ref any) (registry.Config, error) {
	switch r := ref.(type) {
	case string:
		table, ok := c.reg.Style(r)
		if !ok {
			return nil, &cerr.ConfigError{Op: "compile.resolveStyleRef", Node: node, Key: r, Err: cerr.ErrUnknownStyle}
		}
		return table, nil
	case []any:
		if len(r) != 2 {
			return nil, &cerr.ConfigError{Op: "compile.resolveStyleRef", Node: node, Err: cerr.ErrInvalidShape}
		}
		name, ok := r[0].(string)
		if !ok {
			return nil, &cerr.ConfigError{Op: "compile.resolveStyleRef", Node: node, Err: cerr.ErrInvalidShape}
		}
		base, err := c.resolveStyleRef(node, name)
		if err != nil {
			return nil, err
		}
		overrides, ok := props.Table(r[1])
		if !ok {
			return nil, &cerr.ConfigError{Op: "compile.resolveStyleRef", Node: node, Key: name, Err: cerr.ErrInvalidShape}
		}
		return mergeInto(base, registry.Config(overrides)), nil
	}
	return nil, &cerr.ConfigError{Op: "compile.resolveStyleRef", Node: node, Err: fmt.Errorf("style reference must be a name or (name, overrides) pair, got %T", ref)}
}
