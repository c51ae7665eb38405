package cudf

import "errors"

// Errors returned by Hash and HashPartition. Callers can match them with
// errors.Is; the wrapped message carries the offending column.
var (
	// ErrUnsupportedType is returned when a variable-width or nested column
	// is used where a fixed-width column is required.
	ErrUnsupportedType = errors.New("cudf: unsupported column type")

	// ErrSeedCount is returned by Hash when the seed vector length does not
	// match the table's column count.
	ErrSeedCount = errors.New("cudf: seed count does not match column count")

	// ErrNullMask is returned when a column bearing a null mask reaches the
	// scatter stage. Key columns may be null for hashing purposes, but output
	// columns never carry null masks, so nullable inputs cannot be scattered.
	ErrNullMask = errors.New("cudf: column with null mask cannot be scattered")

	// ErrColumnIndex is returned when a key column index is out of range.
	ErrColumnIndex = errors.New("cudf: column index out of range")
)
