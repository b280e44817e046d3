package domain

import "errors"

// ErrNotFound is returned by repositories when the requested record does
// not exist. Callers distinguish it from infrastructure failures so that
// "absent" and "broken" never collapse into the same outcome.
var ErrNotFound = errors.New("record not found")
