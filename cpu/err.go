package cpu

import (
	"errors"

	"github.com/ezrec/easycpu/translate"
)

var f = translate.From

var (
	// Codec errors
	ErrInvalidShift = errors.New(f("invalid shift"))
)

// ErrInstruction reports an instruction that cannot be encoded.
type ErrInstruction struct {
	Instruction Instruction
	Err         error
}

func (err *ErrInstruction) Error() string {
	return f("invalid instruction '%v': %v", err.Instruction.String(), err.Err)
}

func (err *ErrInstruction) Unwrap() error {
	return err.Err
}
