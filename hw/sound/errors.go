package sound

import "errors"

// ErrShortData is returned when decoding from a buffer smaller than the
// encoded size of the target.
var ErrShortData = errors.New("short data")
