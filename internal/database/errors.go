package database

import "errors"

// ErrShortCodeExists is returned when an insert or update would give two
// links the same short code. It is the conflict signal of the store.
var ErrShortCodeExists = errors.New("short code exists")
