// Helpers to compare errors in table driven tests.
package errdiff

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// Substring returns an explanation of why got does not contain want, or an
// empty string if it does. An empty want means no error is expected.
func Substring(got error, want string) string {
	switch {
	case got == nil && want == "":
		return ""
	case got == nil:
		return fmt.Sprintf("got no error; want error containing %q", want)
	case want == "":
		return fmt.Sprintf("got error: '%v'; want no error", got)
	case strings.Contains(got.Error(), want):
		return ""
	}
	return fmt.Sprintf("got error: '%v'; want error containing substring: %q", got, want)
}

// Target returns an explanation of why got does not match want according to
// errors.Is, or an empty string if it does. A nil want means no error is expected.
func Target(got error, want error) string {
	switch {
	case got == nil && want == nil:
		return ""
	case got == nil:
		return fmt.Sprintf("got no error; want error matching '%v'", want)
	case want == nil:
		return fmt.Sprintf("got error: '%v'; want no error", got)
	case errors.Is(got, want):
		return ""
	}
	return fmt.Sprintf("got error: '%v'; want error matching '%v'", got, want)
}

// Check fails the test unless got contains the substring want.
// Empty `want` string means no error is expected.
func Check(t *testing.T, got error, want string) {
	t.Helper()
	if diff := Substring(got, want); diff != "" {
		t.Error(diff)
	}
}

// CheckIs fails the test unless errors.Is(got, want).
// A nil want means no error is expected.
func CheckIs(t *testing.T, got error, want error) {
	t.Helper()
	if diff := Target(got, want); diff != "" {
		t.Error(diff)
	}
}
