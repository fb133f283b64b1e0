package ntfs

import (
	"github.com/dsoprea/go-logging"
)

// Guid is a raw 16-byte Windows GUID, left unparsed into its component
// fields since nothing in this package's scope interprets GUID structure
// beyond carrying it.
type Guid [16]byte

// ObjectIdentifierValues is the decoded $OBJECT_ID attribute. The three
// "birth droid" identifiers are only present in the 64-byte value form;
// in the 16-byte form they read back as the zero GUID.
type ObjectIdentifierValues struct {
	DroidFileIdentifier            Guid
	BirthDroidVolumeIdentifier     Guid
	BirthDroidFileIdentifier       Guid
	BirthDroidDomainIdentifier     Guid
}

// ReadObjectIdentifierValues decodes a $OBJECT_ID attribute. Its resident
// value must be exactly 16 bytes (droid file identifier only) or 64 bytes
// (all four GUIDs).
func ReadObjectIdentifierValues(attr *MftAttribute) (oiv *ObjectIdentifierValues, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			var ok bool
			if err, ok = errRaw.(error); ok == true {
				err = log.Wrap(err)
			} else {
				err = log.Errorf("Error not an error: [%v]", errRaw)
			}
		}
	}()

	if attr.Type != AttributeTypeObjectId {
		log.Panicf("attribute is not $OBJECT_ID: %s", attr.Type.Name())
	}

	if attr.NonResident == true {
		log.Panicf("$OBJECT_ID must be resident")
	}

	buf := attr.ResidentData
	if len(buf) != 16 && len(buf) != 64 {
		log.Panicf("$OBJECT_ID value has unsupported size: (%d) bytes, expected 16 or 64", len(buf))
	}

	oiv = &ObjectIdentifierValues{}
	copy(oiv.DroidFileIdentifier[:], buf[0:16])

	if len(buf) == 64 {
		copy(oiv.BirthDroidVolumeIdentifier[:], buf[16:32])
		copy(oiv.BirthDroidFileIdentifier[:], buf[32:48])
		copy(oiv.BirthDroidDomainIdentifier[:], buf[48:64])
	}

	return oiv, nil
}
