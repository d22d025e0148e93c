package alloc

import "errors"

// ErrInvalidCapacity indicates a negative capacity or one above MaxCapacity.
var ErrInvalidCapacity = errors.New("alloc: invalid capacity")
