package hotkey

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidCombo = errors.New("invalid key combination")

var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
	"opt":     "alt",
	"cmd":     "cmd",
	"command": "cmd",
	"super":   "cmd",
	"meta":    "cmd",
}

// Display symbols in the order macOS shows them.
var modifierSymbols = []struct{ name, symbol string }{
	{"ctrl", "⌃"},
	{"alt", "⌥"},
	{"shift", "⇧"},
	{"cmd", "⌘"},
}

// Combo is one key plus zero or more modifiers.
type Combo struct {
	Key       string
	Modifiers []string
}

// ParseCombo parses strings like "ctrl+shift+v". Modifiers are normalised and
// de-duplicated; exactly one non-modifier key is required.
func ParseCombo(s string) (Combo, error) {
	var c Combo
	seen := map[string]bool{}
	for _, part := range strings.Split(strings.ToLower(strings.TrimSpace(s)), "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			return Combo{}, fmt.Errorf("%w: %q", ErrInvalidCombo, s)
		}
		if mod, ok := modifierAliases[part]; ok {
			if !seen[mod] {
				seen[mod] = true
				c.Modifiers = append(c.Modifiers, mod)
			}
			continue
		}
		if c.Key != "" {
			return Combo{}, fmt.Errorf("%w: %q has more than one key", ErrInvalidCombo, s)
		}
		c.Key = part
	}
	if c.Key == "" {
		return Combo{}, fmt.Errorf("%w: %q has no key", ErrInvalidCombo, s)
	}
	sort.Strings(c.Modifiers)
	return c, nil
}

// Keys returns the key list in the form the event tap expects: key first,
// then modifiers.
func (c Combo) Keys() []string {
	return append([]string{c.Key}, c.Modifiers...)
}

func (c Combo) String() string {
	return strings.Join(append(append([]string{}, c.Modifiers...), c.Key), "+")
}

// Symbols renders the combo as keycap labels, e.g. ["⌃", "⇧", "V"].
func (c Combo) Symbols() []string {
	var out []string
	for _, m := range modifierSymbols {
		for _, have := range c.Modifiers {
			if have == m.name {
				out = append(out, m.symbol)
			}
		}
	}
	return append(out, strings.ToUpper(c.Key))
}
