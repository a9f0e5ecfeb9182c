package share

import "errors"

// ErrNotFound means no share exists under the requested id.
var ErrNotFound = errors.New("share: not found")
