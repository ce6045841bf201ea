package export

import "errors"

// ErrMalformedBundle is returned by [ParseBundle] for input that is not a
// bundle this codec produced: invalid JSON, a missing or unsupported
// version tag, or an item list of the wrong shape.
var ErrMalformedBundle = errors.New("malformed export bundle")
