package ntfs

import (
	"github.com/dsoprea/go-logging"
	"github.com/go-restruct/restruct"
)

// txfDataSize is the fixed size of the $TXF_DATA structure nested inside a
// $LOGGED_UTILITY_STREAM attribute.
const txfDataSize = 56

// txfDataLayout mirrors the on-disk $TXF_DATA structure field-for-field, so
// restruct.Unpack can decode it directly.
type txfDataLayout struct {
	Unknown1            [6]byte
	RmRootFileReference uint64
	UsnIndex            uint64
	FileIdentifier      uint64
	DataLsn             uint64
	MetadataLsn         uint64
	DirectoryIndexLsn   uint64
	Flags               uint16
}

// TxfDataValues is the decoded $TXF_DATA structure: Transactional NTFS
// bookkeeping carried in a $LOGGED_UTILITY_STREAM named "$TXF_DATA".
type TxfDataValues struct {
	RmRootFileReference FileReference
	UsnIndex            uint64
	FileIdentifier      uint64
	DataLsn             uint64
	MetadataLsn         uint64
	DirectoryIndexLsn   uint64
	Flags               uint16
}

// readTxfDataValues decodes the 56-byte $TXF_DATA structure from buf.
func readTxfDataValues(buf []byte) (tdv *TxfDataValues, err error) {
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

	if len(buf) < txfDataSize {
		log.Panicf("$TXF_DATA value too small: (%d) bytes, need (%d)", len(buf), txfDataSize)
	}

	var layout txfDataLayout

	unpackErr := restruct.Unpack(buf[:txfDataSize], defaultByteOrder, &layout)
	log.PanicIf(unpackErr)

	tdv = &TxfDataValues{
		RmRootFileReference: FileReference(layout.RmRootFileReference),
		UsnIndex:            layout.UsnIndex,
		FileIdentifier:      layout.FileIdentifier,
		DataLsn:             layout.DataLsn,
		MetadataLsn:         layout.MetadataLsn,
		DirectoryIndexLsn:   layout.DirectoryIndexLsn,
		Flags:               layout.Flags,
	}

	return tdv, nil
}
