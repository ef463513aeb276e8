package tenant

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// identifierPattern restricts tenant names to characters that survive
// identifier quoting in every supported engine.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_-]*$`)

// maxIdentifierLen matches the tightest namespace length limit across
// supported engines (PostgreSQL truncates identifiers at 63 bytes).
const maxIdentifierLen = 63

// ValidateIdentifier checks that name is usable as a tenant identifier.
// The adapter applies it to the environment-qualified form, so the
// length cap holds for the name the engine actually receives.
func ValidateIdentifier(name string) error {
	if name == "" {
		return errors.Join(ErrInvalidIdentifier, errors.New("name is empty"))
	}
	if len(name) > maxIdentifierLen {
		return errors.Join(ErrInvalidIdentifier, fmt.Errorf("name %q is longer than %d characters", name, maxIdentifierLen))
	}
	if !identifierPattern.MatchString(name) {
		return errors.Join(ErrInvalidIdentifier, fmt.Errorf("name %q contains characters outside [A-Za-z0-9_-]", name))
	}
	return nil
}

// newQualifier builds the function that maps tenant names to the form
// used for databases and schemas. With an environment policy enabled the
// configured tag is prepended or appended; names that already contain
// the tag pass through unchanged, which keeps qualification idempotent
// and lets already-qualified names round-trip through switch and restore.
func newQualifier(cfg Config) func(string) string {
	tag := cfg.Environment
	if tag == "" || (!cfg.PrependEnvironment && !cfg.AppendEnvironment) {
		return func(name string) string { return name }
	}
	if cfg.PrependEnvironment {
		return func(name string) string {
			if name == "" || strings.Contains(name, tag) {
				return name
			}
			return tag + "_" + name
		}
	}
	return func(name string) string {
		if name == "" || strings.Contains(name, tag) {
			return name
		}
		return name + "_" + tag
	}
}
