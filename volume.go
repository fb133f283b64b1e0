package ntfs

import (
	"reflect"

	"github.com/dsoprea/go-logging"
)

// mftEntryIndexMft is the fixed MFT index of the $MFT record itself.
const mftEntryIndexMft = 0

// Volume ties together a VolumeHeader, the $MFT's own data stream, and an
// MftEntryVector into a single opened NTFS volume, bootstrapped from a
// VolumeSource the way OpenVolume describes.
type Volume struct {
	source VolumeSource
	header *VolumeHeader

	mftEntry  *MftEntry
	mftStream *ClusterRunReader

	Entries *MftEntryVector
}

// Header returns the volume's decoded boot sector.
func (v *Volume) Header() *VolumeHeader {
	return v.header
}

// RootDirectoryEntry resolves the MFT entry for the volume's root directory
// (always MFT index 5).
func (v *Volume) RootDirectoryEntry() (*MftEntry, error) {
	const mftEntryIndexRootDirectory = 5

	return v.Entries.EntryByIndex(mftEntryIndexRootDirectory)
}

// OpenVolume bootstraps a Volume from source: it reads and validates the
// boot sector, reads the $MFT's own record (index 0) directly from source
// at the header's declared mftOffset, builds a cluster-run stream over that
// record's $DATA attribute, and wraps the result in an MftEntryVector so
// every other MFT record -- including record 0 itself -- can subsequently
// be addressed uniformly by index.
func OpenVolume(source VolumeSource) (v *Volume, err error) {
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

	header, err := ReadVolumeHeader(source, 0)
	log.PanicIf(err)

	mftRaw := make([]byte, header.MftEntrySize())

	n, readErr := source.ReadAt(mftRaw, int64(header.MftOffset()))
	if n != len(mftRaw) {
		log.Panicf("short read of $MFT record 0: got (%d) bytes, wanted (%d)", n, len(mftRaw))
	} else if readErr != nil {
		log.PanicIf(readErr)
	}

	mftEntry, err := ParseMftEntry(source, header, mftRaw, mftEntryIndexMft, true)
	log.PanicIf(err)

	dataAttr, dataErr := mftEntry.DataAttribute()
	log.PanicIf(dataErr)

	if dataAttr.NonResident != true {
		log.Panicf("$MFT record 0's $DATA attribute must be non-resident")
	}

	mftStream := NewClusterRunReader(source, header.ClusterSize(), dataAttr.DataRuns)

	cache := NewMftEntryCache(DefaultMftEntryCacheCapacity)
	cache.Put(mftEntryIndexMft, mftEntry)

	entries := NewMftEntryVector(source, header, mftStream, cache)

	v = &Volume{
		source:    source,
		header:    header,
		mftEntry:  mftEntry,
		mftStream: mftStream,
		Entries:   entries,
	}

	return v, nil
}
