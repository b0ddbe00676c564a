package window

import (
	"errors"
	"fmt"
)

// ErrUnknownType is returned for window names or types that are not supported.
var ErrUnknownType = errors.New("window: unknown type")

var errEmptyCoeffs = errors.New("window coefficients must not be empty")

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window size must be > 0: %d", size)
	}
	return nil
}
