package natives

import (
	"time"

	"github.com/mna/hypl/lang/object"
)

func (l *Loader) timeModule() map[string]object.NativeFn {
	start := time.Now()
	return map[string]object.NativeFn{
		"now": func(args []object.Value) (object.Value, error) {
			if len(args) != 0 {
				return object.Nil, argError(0, len(args))
			}
			return object.Double(float64(time.Now().UnixNano()) / 1e9), nil
		},
		"clock": func(args []object.Value) (object.Value, error) {
			if len(args) != 0 {
				return object.Nil, argError(0, len(args))
			}
			return object.Double(time.Since(start).Seconds()), nil
		},
	}
}
