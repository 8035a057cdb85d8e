package errs

import (
	"fmt"
	"strings"

	cr "github.com/cockroachdb/errors"
)

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func New(msg string) error {
	return cr.New(msg)
}

// Mark is for 500-class wraps only: the mark is visible to cr.Is but NOT to
// stdlib errors.Is. Sentinels that handlers match must sit in the primary
// chain; use WithSecondary for those.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(err, markErr)
}

// WithSecondary returns the sentinel as the primary error, keeping cause for
// diagnostics. stdlib errors.Is(err, sentinel) holds on the result; cause
// appears only in verbose (%+v) output.
func WithSecondary(sentinel error, cause error) error {
	if cause == nil {
		return sentinel
	}
	return cr.WithSecondaryError(sentinel, cause)
}

func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	s := fmt.Sprintf("%+v", err)
	lines := strings.Split(s, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
