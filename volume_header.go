package ntfs

import (
	"bytes"
	"reflect"

	"github.com/dsoprea/go-logging"
)

// volumeHeaderSize is the fixed size of the NTFS boot sector.
const volumeHeaderSize = 512

// memoryMaximumAllocationSize bounds mft_entry_size/index_entry_size against
// a runaway allocation from a corrupted or hostile volume header.
const memoryMaximumAllocationSize = 0x7fffffff

// volumeFileSystemSignature is the ASCII literal every NTFS boot sector
// carries at offset 3.
var volumeFileSystemSignature = []byte("NTFS    ")

// mftEntryHeaderSize is the smallest valid MftEntryHeader layout (the 42-byte
// NTFS-1.2 variant); mft_entry_size must be at least this large.
const mftEntryHeaderSize = 42

// allowedClusterSizes is the full set of cluster sizes the boot sector's
// sectors_per_cluster_block encoding can legally produce.
var allowedClusterSizes = map[uint32]bool{
	256: true, 512: true, 1024: true, 2048: true, 4096: true, 8192: true,
	16384: true, 32768: true, 65536: true, 131072: true, 262144: true,
	524288: true, 1048576: true, 2097152: true,
}

// allowedBytesPerSector is the set of sector sizes a boot sector may declare.
var allowedBytesPerSector = map[uint16]bool{
	256: true, 512: true, 1024: true, 2048: true, 4096: true,
}

// VolumeHeader is the decoded and validated NTFS boot sector. It is built
// once when a volume is opened and is read-only thereafter; every other
// component derives its geometry (cluster size, MFT record size, index
// record size, MFT location) from it.
type VolumeHeader struct {
	bytesPerSector         uint16
	clusterBlockSize       uint32
	totalSectors           uint64
	mftClusterBlockNumber  uint64
	mirrorMftClusterNumber uint64
	mftEntrySize           uint32
	indexEntrySize         uint32
	volumeSerialNumber     uint64
	volumeSize             uint64
	mftOffset              uint64
	mirrorMftOffset        uint64
}

// BytesPerSector returns the volume's sector size in bytes.
func (vh *VolumeHeader) BytesPerSector() uint16 {
	return vh.bytesPerSector
}

// ClusterSize returns the volume's cluster size in bytes.
func (vh *VolumeHeader) ClusterSize() uint32 {
	return vh.clusterBlockSize
}

// MftEntrySize returns the size, in bytes, of one MFT record on this volume.
func (vh *VolumeHeader) MftEntrySize() uint32 {
	return vh.mftEntrySize
}

// IndexEntrySize returns the size, in bytes, of one index record on this
// volume.
func (vh *VolumeHeader) IndexEntrySize() uint32 {
	return vh.indexEntrySize
}

// VolumeSerialNumber returns the volume's 64-bit serial number.
func (vh *VolumeHeader) VolumeSerialNumber() uint64 {
	return vh.volumeSerialNumber
}

// VolumeSize returns the total addressable size of the volume in bytes.
func (vh *VolumeHeader) VolumeSize() uint64 {
	return vh.volumeSize
}

// MftOffset returns the byte offset of the first MFT cluster.
func (vh *VolumeHeader) MftOffset() uint64 {
	return vh.mftOffset
}

// MirrorMftOffset returns the byte offset of the MFT mirror's first cluster.
func (vh *VolumeHeader) MirrorMftOffset() uint64 {
	return vh.mirrorMftOffset
}

// ReadVolumeHeader reads and validates one 512-byte boot sector from source
// at offset. It validates the "NTFS    " signature, the allowed set of
// bytes_per_sector and the derived cluster_size, and the mft_entry_size /
// index_entry_size encodings, failing with KindUnsupportedValue on any
// violation.
func ReadVolumeHeader(source VolumeSource, offset int64) (vh *VolumeHeader, err error) {
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

	raw := make([]byte, volumeHeaderSize)

	n, err := source.ReadAt(raw, offset)
	log.PanicIf(err)

	if n != volumeHeaderSize {
		log.Panicf("short read of volume header: got (%d) bytes, wanted (%d)", n, volumeHeaderSize)
	}

	vh, err = parseVolumeHeader(raw)
	if err != nil {
		return nil, wrapKind(KindUnsupportedValue, err)
	}

	return vh, nil
}

// parseVolumeHeader decodes and validates a 512-byte boot sector buffer.
func parseVolumeHeader(raw []byte) (vh *VolumeHeader, err error) {
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

	if len(raw) != volumeHeaderSize {
		log.Panicf("volume header buffer must be exactly (%d) bytes, got (%d)", volumeHeaderSize, len(raw))
	}

	r := newBinReader(raw)

	signature := r.Read(3, 8)
	if bytes.Equal(signature, volumeFileSystemSignature) != true {
		log.Panicf("invalid NTFS volume signature: %x", signature)
	}

	bytesPerSector := r.Uint16(11)
	if allowedBytesPerSector[bytesPerSector] != true {
		log.Panicf("unsupported bytes-per-sector value: (%d)", bytesPerSector)
	}

	rawClusterBlockCount := uint32(r.Byte(13))

	if rawClusterBlockCount > 128 {
		rawClusterBlockCount = 256 - rawClusterBlockCount

		if rawClusterBlockCount > 12 {
			log.Panicf("sectors-per-cluster-block exponent out of bounds: (%d)", rawClusterBlockCount)
		}

		rawClusterBlockCount = 1 << rawClusterBlockCount
	}

	clusterBlockSize := rawClusterBlockCount * uint32(bytesPerSector)
	if allowedClusterSizes[clusterBlockSize] != true {
		log.Panicf("unsupported cluster size derived from volume header: (%d)", clusterBlockSize)
	}

	totalSectors := r.Uint64(40)
	mftClusterBlockNumber := r.Uint64(48)
	mirrorMftClusterBlockNumber := r.Uint64(56)

	mftEntrySize, err := decodeSizeEncoding(r.Uint32(64), clusterBlockSize)
	log.PanicIf(err)

	if mftEntrySize < mftEntryHeaderSize || mftEntrySize >= memoryMaximumAllocationSize {
		log.Panicf("mft entry size out of bounds: (%d)", mftEntrySize)
	}

	indexEntrySize, err := decodeSizeEncoding(r.Uint32(68), clusterBlockSize)
	log.PanicIf(err)

	if indexEntrySize >= memoryMaximumAllocationSize {
		log.Panicf("index entry size out of bounds: (%d)", indexEntrySize)
	}

	volumeSerialNumber := r.Uint64(72)

	volumeSize := totalSectors*uint64(bytesPerSector) + uint64(bytesPerSector)

	vh = &VolumeHeader{
		bytesPerSector:         bytesPerSector,
		clusterBlockSize:       clusterBlockSize,
		totalSectors:           totalSectors,
		mftClusterBlockNumber:  mftClusterBlockNumber,
		mirrorMftClusterNumber: mirrorMftClusterBlockNumber,
		mftEntrySize:           mftEntrySize,
		indexEntrySize:         indexEntrySize,
		volumeSerialNumber:     volumeSerialNumber,
		volumeSize:             volumeSize,
		mftOffset:              mftClusterBlockNumber * uint64(clusterBlockSize),
		mirrorMftOffset:        mirrorMftClusterBlockNumber * uint64(clusterBlockSize),
	}

	return vh, nil
}

// decodeSizeEncoding decodes the shared mft_entry_size/index_entry_size
// encoding: a raw value under 128 is a count of clusters; 128 or above
// encodes a power-of-two byte count as 2^(256-raw).
func decodeSizeEncoding(raw uint32, clusterBlockSize uint32) (size uint32, err error) {
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

	if raw == 0 || raw > 255 {
		log.Panicf("size encoding byte out of bounds: (%d)", raw)
	}

	if raw < 128 {
		return raw * clusterBlockSize, nil
	}

	exponent := 256 - raw
	if exponent >= 32 {
		log.Panicf("size encoding exponent out of bounds: (%d)", exponent)
	}

	return uint32(1) << exponent, nil
}
