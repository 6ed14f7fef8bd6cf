package errors

import "errors"

// ErrNotFound is returned by repositories when a keyed lookup has no row.
// Listing queries never return it; an empty store yields an empty slice.
var ErrNotFound = errors.New("record not found")
