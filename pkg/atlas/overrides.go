package atlas

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseOverrides parses a "name:value,name:value" override string into a
// map. Empty input yields an empty map. Values must be positive integers.
func ParseOverrides(s string) (map[string]int, error) {
	out := make(map[string]int)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("override %q is not name:value", pair)
		}
		name = strings.TrimSpace(name)
		v, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || v <= 0 || name == "" {
			return nil, fmt.Errorf("override %q has an invalid value", pair)
		}
		out[name] = v
	}
	return out, nil
}
