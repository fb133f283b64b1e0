package ntfs

import (
	"io"
	"reflect"

	"github.com/dsoprea/go-logging"
)

// clusterRunExtent is one data-run translated into an absolute byte range
// within the logical attribute stream.
type clusterRunExtent struct {
	// streamOffset is this extent's starting byte offset within the logical
	// attribute stream (not the volume).
	streamOffset int64
	length       int64

	// volumeOffset is the absolute byte offset on the volume this extent
	// reads from; meaningless (and unused) when sparse is true.
	volumeOffset int64
	sparse       bool
}

// ClusterRunReader exposes a non-resident attribute's data runs as a single
// linear, randomly-addressable byte stream, translating logical offsets
// within the attribute's content into reads against the underlying volume.
// Sparse runs read back as zeros without touching the volume source.
//
// It is this package's concrete realization of the cluster-run stream that
// the wider system treats as a second, attribute-scoped layer of
// read_at-style I/O on top of the volume source.
type ClusterRunReader struct {
	source      VolumeSource
	clusterSize int64
	extents     []clusterRunExtent
	length      int64
}

// NewClusterRunReader builds a ClusterRunReader over runs, which are
// expressed in clusters as decoded from a non-resident attribute (see
// parseDataRuns). clusterSize is the volume's cluster size in bytes.
func NewClusterRunReader(source VolumeSource, clusterSize uint32, runs []DataRun) *ClusterRunReader {
	extents := make([]clusterRunExtent, len(runs))

	var streamOffset int64

	for i, run := range runs {
		length := int64(run.Length) * int64(clusterSize)

		extents[i] = clusterRunExtent{
			streamOffset: streamOffset,
			length:       length,
			volumeOffset: run.Offset * int64(clusterSize),
			sparse:       run.IsSparse,
		}

		streamOffset += length
	}

	return &ClusterRunReader{
		source:      source,
		clusterSize: int64(clusterSize),
		extents:     extents,
		length:      streamOffset,
	}
}

// Len returns the total logical length, in bytes, of the attribute's
// content as covered by its data runs: whole clusters, so it can exceed the
// attribute's reported data size (by the allocated but unused tail).
func (crr *ClusterRunReader) Len() int64 {
	return crr.length
}

// ReadAt implements io.ReaderAt over the logical attribute stream. A read
// that runs past the end of the covered runs returns io.EOF along with
// whatever bytes were available, per the io.ReaderAt contract.
func (crr *ClusterRunReader) ReadAt(p []byte, off int64) (n int, err error) {
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

	if off < 0 {
		log.Panicf("ClusterRunReader.ReadAt: negative offset (%d)", off)
	}

	if off >= crr.length {
		return 0, io.EOF
	}

	extentIndex := crr.findExtent(off)

	for n < len(p) && extentIndex < len(crr.extents) {
		extent := crr.extents[extentIndex]

		extentRelativeOffset := off - extent.streamOffset
		if extentRelativeOffset < 0 || extentRelativeOffset >= extent.length {
			extentIndex++
			continue
		}

		wantLength := int64(len(p) - n)
		availableLength := extent.length - extentRelativeOffset
		if wantLength > availableLength {
			wantLength = availableLength
		}

		dest := p[n : n+int(wantLength)]

		if extent.sparse == true {
			for i := range dest {
				dest[i] = 0
			}
		} else {
			readCount, readErr := crr.source.ReadAt(dest, extent.volumeOffset+extentRelativeOffset)
			if readCount != len(dest) {
				log.Panicf(
					"ClusterRunReader.ReadAt: short read from volume source at (%d): got (%d), wanted (%d)",
					extent.volumeOffset+extentRelativeOffset, readCount, len(dest))
			}

			if readErr != nil && readErr != io.EOF {
				log.PanicIf(readErr)
			}
		}

		n += int(wantLength)
		off += wantLength

		if off >= extent.streamOffset+extent.length {
			extentIndex++
		}
	}

	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// findExtent returns the index of the extent containing streamOffset, or
// len(extents) if streamOffset is at or past the end of the covered runs.
func (crr *ClusterRunReader) findExtent(streamOffset int64) int {
	for i, extent := range crr.extents {
		if streamOffset >= extent.streamOffset && streamOffset < extent.streamOffset+extent.length {
			return i
		}
	}

	return len(crr.extents)
}
