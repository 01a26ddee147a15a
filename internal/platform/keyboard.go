package platform

import (
	"fmt"
	"runtime"

	"github.com/go-vgo/robotgo"
)

// Keyboard posts synthetic key events through robotgo.
type Keyboard struct {
	modifier string
}

func NewKeyboard() *Keyboard {
	return &Keyboard{modifier: pasteModifier(runtime.GOOS)}
}

func pasteModifier(goos string) string {
	if goos == "darwin" {
		return "cmd"
	}
	return "ctrl"
}

// PasteShortcut sends modifier-down, V-down, V-up, modifier-up to the
// focused application.
func (k *Keyboard) PasteShortcut() error {
	steps := []struct {
		key  string
		args []interface{}
	}{
		{k.modifier, []interface{}{"down"}},
		{"v", []interface{}{"down", k.modifier}},
		{"v", []interface{}{"up", k.modifier}},
		{k.modifier, []interface{}{"up"}},
	}
	for _, s := range steps {
		if err := robotgo.KeyToggle(s.key, s.args...); err != nil {
			return fmt.Errorf("key %s %v: %w", s.key, s.args[0], err)
		}
	}
	return nil
}
