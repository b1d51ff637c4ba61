package booking

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindPermission
	KindNotFound
	KindConflict
	KindRejected
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRejected:
		return "rejected"
	case KindDependency:
		return "dependency"
	}
	return "unknown"
}

type Code string

const (
	CodeInvalidServiceType    Code = "InvalidServiceType"
	CodeInvalidDate           Code = "InvalidDate"
	CodeInvalidTimeFormat     Code = "InvalidTimeFormat"
	CodeEndBeforeOrEqualStart Code = "EndBeforeOrEqualStart"
	CodeInvalidDuration       Code = "InvalidDuration"
	CodeInvalidSessionType    Code = "InvalidSessionType"
	CodeInvalidStatus         Code = "InvalidStatus"
	CodeInvalidCancelReason   Code = "InvalidCancelReason"
	CodeInvalidNote           Code = "InvalidNote"
	CodeInvalidField          Code = "InvalidField"
	CodeIllegalTransition     Code = "IllegalTransition"
	CodeConcurrentUpdate      Code = "ConcurrentUpdate"
	CodeForbidden             Code = "Forbidden"
	CodeNotFound              Code = "NotFound"
	CodeNoCounselorAvailable  Code = "NoCounselorAvailable"
	CodeStorage               Code = "StorageUnavailable"
)

// Error is returned by every operation of the package. Callers switch on
// Kind; Code and Field identify the exact failure.
type Error struct {
	Kind    Kind
	Code    Code
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind and Code so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

var (
	ErrNoCounselorAvailable = &Error{Kind: KindRejected, Code: CodeNoCounselorAvailable,
		Message: "no counselors available at the moment, please try again later"}
	ErrIllegalTransition = &Error{Kind: KindConflict, Code: CodeIllegalTransition}
	ErrConcurrentUpdate  = &Error{Kind: KindConflict, Code: CodeConcurrentUpdate,
		Message: "appointment was modified by another request"}
	ErrForbidden = &Error{Kind: KindPermission, Code: CodeForbidden, Message: "access denied"}
	ErrNotFound  = &Error{Kind: KindNotFound, Code: CodeNotFound, Message: "appointment not found"}
)

func invalid(code Code, field, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Field: field, Message: msg}
}

func storageErr(op string, err error) *Error {
	return &Error{Kind: KindDependency, Code: CodeStorage, Message: op, Err: err}
}

// KindOf reports the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return 0
}
