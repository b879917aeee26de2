// SPDX-License-Identifier: BSD-3-Clause

package store

import (
	"fmt"
	"strings"
)

const reservedActiveProfile = "active_profile"

// normalizeName rejects names that are empty, contain '/' or '.', or equal
// the reserved "active_profile", and otherwise returns the on-disk file
// name ("<name>.json").
func normalizeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if name == reservedActiveProfile {
		return "", fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	if strings.ContainsRune(name, '/') {
		return "", fmt.Errorf("%w: name %q must not contain '/'", ErrValidation, name)
	}
	if strings.ContainsRune(name, '.') {
		return "", fmt.Errorf("%w: name %q must not contain '.'", ErrValidation, name)
	}
	return name + ".json", nil
}

// stripJSONSuffix strips the ".json" suffix used to list stored names, or
// returns ok=false for any other file extension.
func stripJSONSuffix(fileName string) (name string, ok bool) {
	const suffix = ".json"
	if !strings.HasSuffix(fileName, suffix) {
		return "", false
	}
	return strings.TrimSuffix(fileName, suffix), true
}
