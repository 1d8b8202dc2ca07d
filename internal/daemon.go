package internal

import "errors"

// detachUmask is applied in the detached process.
const detachUmask = 027

var ErrDetachUnsupported = errors.New("background mode is not supported on this platform")
