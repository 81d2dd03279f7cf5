package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fatal run error.
type ErrorKind int

const (
	// KindInvalidInput is a demand line or setting the engine cannot accept.
	KindInvalidInput ErrorKind = iota
	// KindInvalidSheet is a stock template with no positive usable interior.
	KindInvalidSheet
	// KindUnplaceable is a part whose footprint fits no stock size.
	KindUnplaceable
	// KindInconsistent is a placement failing on a sheet opened for it.
	KindInconsistent
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindInvalidSheet:
		return "invalid sheet"
	case KindUnplaceable:
		return "unplaceable part"
	case KindInconsistent:
		return "internal inconsistency"
	default:
		return "unknown"
	}
}

// Error is the single fatal error a run can return. Code, Width and Height
// identify the offending part when there is one; Label names the sheet.
type Error struct {
	Kind   ErrorKind
	Code   string
	Width  int
	Height int
	Label  string
	Detail string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnplaceable:
		return fmt.Sprintf("no stock sheet fits part %s %dx%d", e.Code, e.Width, e.Height)
	case KindInconsistent:
		return fmt.Sprintf("placing part %s %dx%d on new sheet %q failed", e.Code, e.Width, e.Height, e.Label)
	case KindInvalidSheet:
		return fmt.Sprintf("invalid sheet %q: %s", e.Label, e.Detail)
	default:
		return e.Detail
	}
}

// KindOf returns the kind of an engine error and whether err is one.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
