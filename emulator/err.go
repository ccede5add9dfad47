package emulator

import (
	"errors"

	"github.com/ezrec/easycpu/translate"
)

var f = translate.From

var (
	ErrTimeout = errors.New(f("tick limit exceeded"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc  uint16
	Err error
}

func (err *ErrRuntime) Error() string {
	return f("pc %#04x %v", err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
