package domain

import "errors"

// ErrNotFound lo comparten los stores (archivo y postgres).
var ErrNotFound = errors.New("not found")
