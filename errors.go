package ntfs

import (
	"errors"
)

// ErrorKind classifies the failures this package's decoders can produce, per
// the error taxonomy this spec is built against. go-logging's Wrap/Errorf,
// used in the decoders' recover blocks, carries the stack context;
// ErrorKind, where a decoder attaches one with wrapKind, carries the
// caller-facing category.
type ErrorKind int

const (
	// KindInvalidArgument covers NULL-equivalent/out-of-range arguments: a nil
	// output pointer, an out-of-range index, a value already set.
	KindInvalidArgument ErrorKind = iota

	// KindValueMissing covers reading a field before its precursor has been
	// read (e.g. attributes before the entry header).
	KindValueMissing

	// KindValueAlreadySet covers decoding into state that would overwrite a
	// value that must only be set once (e.g. a second $STANDARD_INFORMATION).
	KindValueAlreadySet

	// KindValueOutOfBounds covers an on-disk offset/size exceeding its
	// container, an inverted VCN range, or a cluster size outside the allowed
	// set.
	KindValueOutOfBounds

	// KindUnsupportedValue covers a signature mismatch, an attribute type a
	// typed decoder doesn't handle, or a size outside the finite accepted set.
	KindUnsupportedValue

	// KindIoReadFailed covers a short or failed read from the volume source.
	KindIoReadFailed

	// KindGenericRuntime covers everything else (this also stands in for the
	// source taxonomy's CopyFailed/PrintFailed, which don't have a distinct
	// Go analog -- see SPEC_FULL.md §7).
	KindGenericRuntime
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindValueMissing:
		return "ValueMissing"
	case KindValueAlreadySet:
		return "ValueAlreadySet"
	case KindValueOutOfBounds:
		return "ValueOutOfBounds"
	case KindUnsupportedValue:
		return "UnsupportedValue"
	case KindIoReadFailed:
		return "IoReadFailed"
	default:
		return "GenericRuntime"
	}
}

// KindError pairs an ErrorKind with an underlying error so callers can branch
// on category with errors.As while still getting a normal wrapped message.
type KindError struct {
	Kind ErrorKind
	Err  error
}

func (ke *KindError) Error() string {
	return ke.Kind.String() + ": " + ke.Err.Error()
}

func (ke *KindError) Unwrap() error {
	return ke.Err
}

// wrapKind returns a *KindError that tags err with the given kind.
func wrapKind(kind ErrorKind, err error) error {
	return &KindError{Kind: kind, Err: err}
}

// ErrNotPresent is returned (or, for accessors that follow the source's
// tri-valued status convention, represented as a boolean "present" return) to
// mean "not present" / "not available", as distinct from a hard failure.
var ErrNotPresent = errors.New("ntfs: not present")

// ErrStaleFileReference indicates that a FileReference's sequence number does
// not match the sequence number currently recorded in the resolved MFT entry
// -- the slot has been reused since the reference was taken.
var ErrStaleFileReference = errors.New("ntfs: stale file reference")
