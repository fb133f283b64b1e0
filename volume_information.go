package ntfs

import (
	"github.com/dsoprea/go-logging"
	"github.com/go-restruct/restruct"
)

// VolumeInformationFlags mirrors the $VOLUME_INFORMATION flags bits.
type VolumeInformationFlags uint16

const (
	VolumeInformationFlagDirty                  VolumeInformationFlags = 0x0001
	VolumeInformationFlagResizeLogFile           VolumeInformationFlags = 0x0002
	VolumeInformationFlagUpgradeOnMount          VolumeInformationFlags = 0x0004
	VolumeInformationFlagMounted                 VolumeInformationFlags = 0x0008
	VolumeInformationFlagDeleteUsnUnderway       VolumeInformationFlags = 0x0010
	VolumeInformationFlagRepairObjectIds         VolumeInformationFlags = 0x0020
	VolumeInformationFlagChkdskUnderway          VolumeInformationFlags = 0x4000
	VolumeInformationFlagModifiedByChkdsk        VolumeInformationFlags = 0x8000
)

// VolumeInformationValues is the decoded $VOLUME_INFORMATION attribute: the
// NTFS version and volume dirty/repair flags.
type VolumeInformationValues struct {
	MajorVersion byte
	MinorVersion byte
	Flags        VolumeInformationFlags
}

// IsDirty reports whether the volume's dirty bit is set.
func (viv *VolumeInformationValues) IsDirty() bool {
	return viv.Flags&VolumeInformationFlagDirty != 0
}

// volumeInformationLayout mirrors the on-disk $VOLUME_INFORMATION structure
// field-for-field, so restruct.Unpack can decode it directly.
type volumeInformationLayout struct {
	Unknown      [8]byte
	MajorVersion uint8
	MinorVersion uint8
	Flags        uint16
}

// ReadVolumeInformationValues decodes a $VOLUME_INFORMATION attribute: an
// 8-byte unknown/reserved field, then major version, minor version, and a
// 16-bit flags word (12 bytes total).
func ReadVolumeInformationValues(attr *MftAttribute) (viv *VolumeInformationValues, err error) {
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

	if attr.Type != AttributeTypeVolumeInformation {
		log.Panicf("attribute is not $VOLUME_INFORMATION: %s", attr.Type.Name())
	}

	if attr.NonResident == true {
		log.Panicf("$VOLUME_INFORMATION must be resident")
	}

	buf := attr.ResidentData
	if len(buf) != 12 {
		log.Panicf("$VOLUME_INFORMATION value has unsupported size: (%d) bytes, expected 12", len(buf))
	}

	var layout volumeInformationLayout

	unpackErr := restruct.Unpack(buf[:12], defaultByteOrder, &layout)
	log.PanicIf(unpackErr)

	return &VolumeInformationValues{
		MajorVersion: layout.MajorVersion,
		MinorVersion: layout.MinorVersion,
		Flags:        VolumeInformationFlags(layout.Flags),
	}, nil
}
