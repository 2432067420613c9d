package marshal

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedKind   = errors.New("unsupported kind")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrSignatureMismatch = errors.New("signature mismatch")
)

type UnsupportedKindError struct {
	Kind  string
	Valid []Kind
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("conversion %q is not valid, use one of %v", e.Kind, e.Valid)
}

func (e *UnsupportedKindError) Unwrap() error { return ErrUnsupportedKind }

type TypeMismatchError struct {
	Kind     Kind
	Value    any
	Accepted []string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s <%T> is not valid for %q, use %v", describe(e.Value), e.Value, e.Kind, e.Accepted)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// SignatureError reports a flat argument list that does not match a kernel
// signature. Position is -1 when the lengths differ.
type SignatureError struct {
	Want     Signature
	Got      Signature
	Position int
}

func (e *SignatureError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("kernel expects %d args %s, got %d %s", len(e.Want), e.Want, len(e.Got), e.Got)
	}
	return fmt.Sprintf("kernel arg %d: expects %s, got %s", e.Position, e.Want[e.Position], e.Got[e.Position])
}

func (e *SignatureError) Unwrap() error { return ErrSignatureMismatch }
