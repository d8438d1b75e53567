package domain

import "regexp"

var variableNamePattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// ValidVariableName reports whether name matches the variable-name grammar
// required by the spec. Validation happens at configuration time, never at
// run time (spec §3 invariants).
func ValidVariableName(name string) bool {
	return variableNamePattern.MatchString(name)
}
