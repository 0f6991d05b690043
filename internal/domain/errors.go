package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration covers invalid strategy names, stock counts beyond the
	// name alphabet and missing fixture filenames.
	ErrConfiguration = errors.New("configuration error")

	// ErrOutOfRange is returned when a period beyond the generated history is queried
	ErrOutOfRange = errors.New("period out of range")

	// ErrFixture covers missing or malformed fixture files
	ErrFixture = errors.New("fixture error")

	// ErrEmptyPortfolio is returned when a sell is attempted with nothing held
	ErrEmptyPortfolio = errors.New("portfolio is empty")
)

// FixtureError records the file operation and path that failed
type FixtureError struct {
	Op   string
	Path string
	Err  error
}

func (e *FixtureError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FixtureError) Unwrap() error {
	return e.Err
}

// Is makes every FixtureError match ErrFixture
func (e *FixtureError) Is(target error) bool {
	return target == ErrFixture
}
