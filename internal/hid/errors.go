package hid

import "errors"

// ErrLineClosed is returned when a line stops delivering edges.
var ErrLineClosed = errors.New("hid: line closed")
