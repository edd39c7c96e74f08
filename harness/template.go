package harness

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var templatePattern = regexp.MustCompile(`%\{([^}]*)\}`)

// Substitute resolves %{port=NOMINAL} and %{env=NAME} placeholders in a test
// manifest against the started set. Unknown keys and unexposed ports are
// errors, and the manifest is returned unchanged.
func (s *Set) Substitute(manifest string) (string, error) {
	var substErr error
	out := templatePattern.ReplaceAllStringFunc(manifest, func(placeholder string) string {
		if substErr != nil {
			return placeholder
		}
		inner := strings.TrimSuffix(strings.TrimPrefix(placeholder, "%{"), "}")
		key, value, found := strings.Cut(inner, "=")
		if !found {
			substErr = fmt.Errorf("template '%s' has no value", placeholder)
			return placeholder
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "port":
			nominal, err := strconv.Atoi(value)
			if err != nil {
				substErr = fmt.Errorf("failed to parse '%s' as port", value)
				return placeholder
			}
			actual, err := s.Port(nominal)
			if err != nil {
				substErr = err
				return placeholder
			}
			return strconv.Itoa(actual)
		case "env":
			v, ok := os.LookupEnv(value)
			if !ok {
				substErr = fmt.Errorf("environment variable '%s' is not set", value)
				return placeholder
			}
			return v
		default:
			substErr = fmt.Errorf("unknown template key '%s'", key)
			return placeholder
		}
	})
	if substErr != nil {
		return manifest, substErr
	}
	return out, nil
}
