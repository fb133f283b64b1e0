package main

import (
	"fmt"
	"os"

	"github.com/dsoprea/go-logging"
	"github.com/jessevdk/go-flags"

	"github.com/dsoprea/go-ntfs"
)

type rootParameters struct {
	Filepath string `short:"f" long:"filepath" description:"File-path of NTFS filesystem or volume image" required:"true"`
}

var (
	rootArguments = new(rootParameters)
)

func main() {
	defer func() {
		if state := recover(); state != nil {
			err := log.Wrap(state.(error))
			log.PrintError(err)
			os.Exit(-1)
		}
	}()

	p := flags.NewParser(rootArguments, flags.Default)

	_, err := p.Parse()
	if err != nil {
		os.Exit(1)
	}

	source, err := ntfs.OpenFileVolumeSource(rootArguments.Filepath)
	log.PanicIf(err)

	defer source.Close()

	header, err := ntfs.ReadVolumeHeader(source, 0)
	log.PanicIf(err)

	fmt.Printf("Bytes Per Sector: (%d)\n", header.BytesPerSector())
	fmt.Printf("Cluster Size: (%d)\n", header.ClusterSize())
	fmt.Printf("MFT Entry Size: (%d)\n", header.MftEntrySize())
	fmt.Printf("Index Entry Size: (%d)\n", header.IndexEntrySize())
	fmt.Printf("Volume Serial Number: (0x%016x)\n", header.VolumeSerialNumber())
	fmt.Printf("Volume Size: (%d)\n", header.VolumeSize())
	fmt.Printf("MFT Offset: (%d)\n", header.MftOffset())
	fmt.Printf("Mirror MFT Offset: (%d)\n", header.MirrorMftOffset())
}
