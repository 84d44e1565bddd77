package cloud

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig is the class of construction-time configuration errors.
	ErrInvalidConfig = errors.New("cloud: invalid configuration")
	// ErrInvalidArgument is the class of bad caller arguments.
	ErrInvalidArgument = errors.New("cloud: invalid argument")

	// ErrInvalidSteps is returned when the number of weight bands is not positive.
	ErrInvalidSteps = errors.Wrap(ErrInvalidConfig, "steps must be > 0")
	// ErrInvalidSortOrder is returned for a sort criterion outside the known set.
	ErrInvalidSortOrder = errors.Wrap(ErrInvalidArgument, "unknown sort order")
)
