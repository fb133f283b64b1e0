package ntfs

import (
	"github.com/dsoprea/go-logging"
)

// VolumeNameValues is the decoded $VOLUME_NAME attribute: a single UTF-16LE
// string with no fixed header, occupying the whole resident value.
type VolumeNameValues struct {
	Name string
}

// ReadVolumeNameValues decodes a $VOLUME_NAME attribute.
func ReadVolumeNameValues(attr *MftAttribute) (vnv *VolumeNameValues, err error) {
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

	if attr.Type != AttributeTypeVolumeName {
		log.Panicf("attribute is not $VOLUME_NAME: %s", attr.Type.Name())
	}

	if attr.NonResident == true {
		log.Panicf("$VOLUME_NAME must be resident")
	}

	return &VolumeNameValues{Name: decodeUtf16String(attr.ResidentData)}, nil
}
