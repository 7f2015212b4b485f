package secret

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

// LookupFunc reports the value of an environment variable.
type LookupFunc func(key string) (string, bool)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnvStrict expands $VAR and ${VAR} in s using lookup, or the process
// environment when lookup is nil.
//
// A ${VAR} whose variable is unset is an error wrapping ErrMissingEnv; a
// bare $VAR expands to "". $$ emits a literal $.
func ExpandEnvStrict(s string, lookup LookupFunc) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	const dollarSentinel = "\x00SECRET_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	var missing []string
	for _, match := range envVarPattern.FindAllStringSubmatch(s, -1) {
		if _, ok := lookup(match[1]); !ok && !slices.Contains(missing, match[1]) {
			missing = append(missing, match[1])
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	s = os.Expand(s, func(key string) string {
		v, _ := lookup(key)
		return v
	})
	return strings.ReplaceAll(s, dollarSentinel, "$"), nil
}
