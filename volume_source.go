package ntfs

import (
	"io"
	"os"
	"reflect"
	"runtime"
	"unsafe"

	"github.com/dsoprea/go-logging"
	"golang.org/x/sys/unix"
)

// defaultSectorSize is used when a volume source cannot report its own
// sector size (a plain image file, or a non-Linux block device).
const defaultSectorSize = 512

// VolumeSource is the byte-range I/O abstraction the core decodes against:
// a raw volume image, which may be a regular file (a disk image) or a block
// device. The core needs only random-access reads and a total size.
type VolumeSource interface {
	ReadAt(p []byte, off int64) (n int, err error)
	Size() int64
}

// FileVolumeSource is a VolumeSource backed by an *os.File: either a disk
// image or, on Linux, a block device opened directly (e.g. /dev/sda1).
type FileVolumeSource struct {
	file       *os.File
	size       int64
	sectorSize int
}

// OpenFileVolumeSource opens path read-only and builds a FileVolumeSource
// over it. When path refers to a Linux block device, its size and sector
// size are queried via ioctl rather than os.Stat (which reports zero for
// block devices); anywhere else, the regular file size is used and the
// sector size defaults to 512.
func OpenFileVolumeSource(path string) (fvs *FileVolumeSource, err error) {
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

	f, err := os.Open(path)
	log.PanicIf(err)

	fvs = &FileVolumeSource{
		file:       f,
		sectorSize: defaultSectorSize,
	}

	fi, err := f.Stat()
	log.PanicIf(err)

	if fi.Mode()&os.ModeDevice != 0 && runtime.GOOS == "linux" {
		size, sectorSize, sizeErr := readLinuxBlockDeviceGeometry(f)
		if sizeErr == nil {
			fvs.size = size
			fvs.sectorSize = sectorSize

			return fvs, nil
		}
	}

	fvs.size = fi.Size()

	return fvs, nil
}

// ReadAt implements VolumeSource.
func (fvs *FileVolumeSource) ReadAt(p []byte, off int64) (n int, err error) {
	return fvs.file.ReadAt(p, off)
}

// Size implements VolumeSource.
func (fvs *FileVolumeSource) Size() int64 {
	return fvs.size
}

// SectorSize returns the device's reported logical sector size, or 512 when
// it could not be determined (regular files, non-Linux platforms).
func (fvs *FileVolumeSource) SectorSize() int {
	return fvs.sectorSize
}

// Close closes the underlying file.
func (fvs *FileVolumeSource) Close() error {
	return fvs.file.Close()
}

// readLinuxBlockDeviceGeometry queries a Linux block device's total size
// (BLKGETSIZE64) and logical sector size (BLKSSZGET) via ioctl.
func readLinuxBlockDeviceGeometry(f *os.File) (size int64, sectorSize int, err error) {
	sectorSize, err = unix.IoctlGetInt(int(f.Fd()), unix.BLKSSZGET)
	if err != nil {
		return 0, 0, err
	}

	var rawSize uint64

	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		f.Fd(),
		unix.BLKGETSIZE64,
		uintptr(unsafe.Pointer(&rawSize)))

	if errno != 0 {
		return 0, 0, errno
	}

	return int64(rawSize), sectorSize, nil
}

// MemoryVolumeSource is a VolumeSource backed by an in-memory byte slice,
// used by tests that exercise the decoders against literal fixture bytes
// without touching the filesystem.
type MemoryVolumeSource struct {
	data []byte
}

// NewMemoryVolumeSource wraps data as a VolumeSource. data is not copied.
func NewMemoryVolumeSource(data []byte) *MemoryVolumeSource {
	return &MemoryVolumeSource{data: data}
}

// ReadAt implements VolumeSource.
func (mvs *MemoryVolumeSource) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 || off > int64(len(mvs.data)) {
		return 0, wrapKind(KindValueOutOfBounds, io.ErrUnexpectedEOF)
	}

	n = copy(p, mvs.data[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// Size implements VolumeSource.
func (mvs *MemoryVolumeSource) Size() int64 {
	return int64(len(mvs.data))
}
