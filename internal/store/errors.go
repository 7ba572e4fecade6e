package store

import "errors"

// ErrDuplicateEmail is returned by user stores when the email is already
// registered.
var ErrDuplicateEmail = errors.New("store: email already registered")
