package asm

import (
	"errors"

	"github.com/ezrec/easycpu/translate"
)

var f = translate.From

var (
	// Parse errors
	ErrUnexpectedEndOfFile     = errors.New(f("unexpected end of file"))
	ErrUnmatchedClosingBracket = errors.New(f("unmatched closing bracket"))

	// Instruction errors
	ErrNotEnoughArguments = errors.New(f("not enough arguments"))
	ErrNoCommandSupplied  = errors.New(f("no command supplied"))

	// Resolver errors
	ErrTooManyAttempts = errors.New(f("too many attempts to resolve labels"))

	// Equate errors
	ErrEquateSyntax = errors.New(f("@EQU syntax"))
)

type ErrUnknownCommand string

func (err ErrUnknownCommand) Error() string {
	return f("unknown command '%v'", string(err))
}

type ErrUnknownRegister string

func (err ErrUnknownRegister) Error() string {
	return f("unknown register '%v'", string(err))
}

type ErrUnknownLabel string

func (err ErrUnknownLabel) Error() string {
	return f("unknown label '%v'", string(err))
}

type ErrLabelRedefined string

func (err ErrLabelRedefined) Error() string {
	return f("label '%v' redefined", string(err))
}

type ErrShiftIsTooBig int

func (err ErrShiftIsTooBig) Error() string {
	return f("shift %d is too big", int(err))
}

type ErrUnknownToken rune

func (err ErrUnknownToken) Error() string {
	return f("unknown token '%c'", rune(err))
}

type ErrInvalidNumber string

func (err ErrInvalidNumber) Error() string {
	return f("'%v' is not a valid number", string(err))
}

// ErrEquate is a failed @EQU evaluation.
type ErrEquate struct {
	Name string
	Err  error
}

func (err *ErrEquate) Error() string {
	return f("@EQU %v: %v", err.Name, err.Err)
}

func (err *ErrEquate) Unwrap() error {
	return err.Err
}

// ErrPos attaches a source position to an error.
type ErrPos struct {
	Pos Position
	Err error
}

func (err *ErrPos) Error() string {
	return f("Line %v: %v", err.Pos.String(), err.Err)
}

func (err *ErrPos) Unwrap() error {
	return err.Err
}

// atPos wraps err with a position, unless it already has one.
func atPos(pos Position, err error) error {
	if err == nil {
		return nil
	}
	var errPos *ErrPos
	if errors.As(err, &errPos) {
		return err
	}
	return &ErrPos{Pos: pos, Err: err}
}

// Errors flattens a (possibly joined) error into its parts.
func Errors(err error) (list []error) {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	for _, inner := range joined.Unwrap() {
		list = append(list, Errors(inner)...)
	}
	return
}
