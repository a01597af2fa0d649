package notify

import "errors"

var (
	ErrUnsupported  = errors.New("notifications are not supported")
	ErrNotPermitted  = errors.New("notification permission not granted")
)
