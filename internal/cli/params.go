package cli

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseParams converts key=value arguments into an operation parameter map.
// Values are decoded as JSON when possible, so numbers, booleans, arrays and
// objects come through typed; anything that does not parse is kept as a
// string.
func ParseParams(args []string) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(args))
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", arg)
		}

		var decoded interface{}
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			params[key] = value
			continue
		}
		params[key] = decoded
	}
	return params, nil
}
