package resolve

import "errors"

var ErrMirrorRootRequired = errors.New("mirror root required")
