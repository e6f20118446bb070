package backup

import "github.com/pkg/errors"

var (
	// ErrCannotFreeSpace means every archive group is down to its last copy
	// and the backup root is still short on space.
	ErrCannotFreeSpace = errors.New("cannot free enough disk space")

	ErrProducerNotStopped = errors.New("producer did not stop")
)

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	cause := errors.Cause(err)

	return cause == ErrCannotFreeSpace || cause == ErrProducerNotStopped
}
