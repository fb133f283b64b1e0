package ntfs

import (
	"reflect"
	"sync"

	"github.com/dsoprea/go-logging"
)

// AttributeObject lazily decodes a typed value from an MftAttribute on
// first access, caching the result. This is this package's realization of
// a tagged union over the attribute's decoded value: Go has no
// void-pointer-plus-free-function idiom to borrow from the original design,
// so dispatch is by a type switch keyed on the attribute's AttributeType
// instead, and the decoded value is held as an `interface{}` behind a
// mutex-guarded once.
type AttributeObject struct {
	attribute *MftAttribute

	mu      sync.Mutex
	decoded bool
	value   interface{}
	err     error
}

// NewAttributeObject wraps attr for lazy typed decoding.
func NewAttributeObject(attr *MftAttribute) *AttributeObject {
	return &AttributeObject{attribute: attr}
}

// Attribute returns the underlying MftAttribute.
func (ao *AttributeObject) Attribute() *MftAttribute {
	return ao.attribute
}

// Value returns the attribute's typed decoded value, decoding it on first
// call and caching the result (including a decode failure) for subsequent
// calls. The concrete type depends on the attribute's type:
//
//	$STANDARD_INFORMATION  -> *StandardInformationValues
//	$VOLUME_NAME           -> *VolumeNameValues
//	$VOLUME_INFORMATION    -> *VolumeInformationValues
//	$OBJECT_ID             -> *ObjectIdentifierValues
//	$REPARSE_POINT         -> *ReparsePointValues
//	$LOGGED_UTILITY_STREAM -> *LoggedUtilityStreamValue (its TxfData field is
//	                          set when the attribute is named "$TXF_DATA")
//
// Any other attribute type returns an error.
func (ao *AttributeObject) Value() (interface{}, error) {
	ao.mu.Lock()
	defer ao.mu.Unlock()

	if ao.decoded == true {
		return ao.value, ao.err
	}

	ao.decoded = true
	ao.value, ao.err = decodeAttributeValue(ao.attribute)

	return ao.value, ao.err
}

// decodeAttributeValue dispatches to the typed decoder matching attr's
// type, per the uniform typed-decoder contract: validate type, require
// residency (except where a decoder is documented otherwise), decode the
// resident bytes.
func decodeAttributeValue(attr *MftAttribute) (value interface{}, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			var ok bool
			if err, ok = errRaw.(error); ok == true {
				err = log.Wrap(err)
			} else {
				err = log.Errorf("Error not an error: [%s] [%v]", reflect.TypeOf(errRaw).Name(), errRaw)
			}
		}
	}()

	switch attr.Type {
	case AttributeTypeStandardInformation:
		v, decodeErr := ReadStandardInformationValues(attr)
		log.PanicIf(decodeErr)

		return v, nil

	case AttributeTypeVolumeName:
		v, decodeErr := ReadVolumeNameValues(attr)
		log.PanicIf(decodeErr)

		return v, nil

	case AttributeTypeVolumeInformation:
		v, decodeErr := ReadVolumeInformationValues(attr)
		log.PanicIf(decodeErr)

		return v, nil

	case AttributeTypeObjectId:
		v, decodeErr := ReadObjectIdentifierValues(attr)
		log.PanicIf(decodeErr)

		return v, nil

	case AttributeTypeReparsePoint:
		v, decodeErr := ReadReparsePointValues(attr)
		log.PanicIf(decodeErr)

		return v, nil

	case AttributeTypeLoggedUtilityStream:
		v, decodeErr := ReadLoggedUtilityStreamValue(attr)
		log.PanicIf(decodeErr)

		return v, nil
	}

	log.Panicf("no typed decoder registered for attribute type: %s (0x%x)", attr.Type.Name(), uint32(attr.Type))

	return nil, nil
}
