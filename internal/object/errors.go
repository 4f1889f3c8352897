package object

import "fmt"

// ErrKind tags the closed set of runtime error variants.
type ErrKind string

const (
	UnexpectedType    ErrKind = "unexpected_type"
	MissingKey        ErrKind = "missing_key"
	UndefinedName     ErrKind = "undefined_name"
	DimensionMismatch ErrKind = "dimension_mismatch"
	NotInDomain       ErrKind = "not_in_domain"
	OtherError        ErrKind = "other"
)

// RuntimeError flows through the evaluator as an object; hosts also see it
// as a Go error. Only the fields for the tagged kind are populated.
type RuntimeError struct {
	Kind ErrKind

	Expected string // UnexpectedType
	Got      string // UnexpectedType

	Name string // MissingKey, UndefinedName

	Left  Dimension // DimensionMismatch
	Right Dimension // DimensionMismatch

	Value       Object // NotInDomain, OtherError
	Explanation string // NotInDomain
}

func (e *RuntimeError) Type() ObjectType { return ERROR_OBJ }

func (e *RuntimeError) Inspect() string { return e.Error() }

func (e *RuntimeError) Error() string {
	switch e.Kind {
	case UnexpectedType:
		return fmt.Sprintf("unexpected type: expected %s, got %s", e.Expected, e.Got)
	case MissingKey:
		return fmt.Sprintf("missing key: %s", e.Name)
	case UndefinedName:
		return fmt.Sprintf("undefined name: %s", e.Name)
	case DimensionMismatch:
		return fmt.Sprintf("dimension mismatch: %s vs %s", orDimensionless(e.Left), orDimensionless(e.Right))
	case NotInDomain:
		return fmt.Sprintf("not in domain: %s (%s)", e.Value.Inspect(), e.Explanation)
	case OtherError:
		return fmt.Sprintf("error: %s", e.Value.Inspect())
	}
	return "unknown runtime error"
}

func orDimensionless(d Dimension) string {
	if s := d.String(); s != "" {
		return s
	}
	return "dimensionless"
}

func NewTypeError(expected string, got Object) *RuntimeError {
	return &RuntimeError{Kind: UnexpectedType, Expected: expected, Got: string(got.Type())}
}

func NewMissingKey(key string) *RuntimeError {
	return &RuntimeError{Kind: MissingKey, Name: key}
}

func NewUndefinedName(name string) *RuntimeError {
	return &RuntimeError{Kind: UndefinedName, Name: name}
}

func NewDimensionMismatch(left, right Dimension) *RuntimeError {
	return &RuntimeError{Kind: DimensionMismatch, Left: left, Right: right}
}

func NewNotInDomain(value Object, explanation string) *RuntimeError {
	return &RuntimeError{Kind: NotInDomain, Value: value, Explanation: explanation}
}

func NewOther(payload Object) *RuntimeError {
	return &RuntimeError{Kind: OtherError, Value: payload}
}
