package repository

import "errors"

// ErrNotFound is returned by a Cache when the key has never been written
// (or was deleted). It hides the driver's own "no rows" / redis.Nil errors.
var ErrNotFound = errors.New("repository: not found")
