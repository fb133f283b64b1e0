package main

import (
	"fmt"
	"os"

	"github.com/dsoprea/go-logging"
	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"

	"github.com/dsoprea/go-ntfs"
)

type rootParameters struct {
	Filepath   string `short:"f" long:"filepath" description:"File-path of NTFS filesystem or volume image" required:"true"`
	Index      uint64 `short:"i" long:"index" description:"MFT entry index to dump" required:"true"`
	ShowDetail bool   `short:"d" long:"detail" description:"Show resident attribute payload sizes"`
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

	volume, err := ntfs.OpenVolume(source)
	log.PanicIf(err)

	entry, err := volume.Entries.EntryByIndex(rootArguments.Index)
	log.PanicIf(err)

	if entry.IsEmpty {
		fmt.Printf("Entry (%d) is empty.\n", rootArguments.Index)
		return
	}

	fmt.Printf("Index: (%d)\n", entry.Index)
	fmt.Printf("Sequence: (%d)\n", entry.FileReference.Sequence())
	fmt.Printf("Allocated: (%v)\n", entry.IsAllocated())
	fmt.Printf("Directory: (%v)\n", entry.HasDirectoryEntriesIndex())
	fmt.Printf("Corrupted: (%v)\n", entry.IsCorrupted)
	fmt.Printf("Attributes: (%d)\n", entry.NumberOfAttributes())
	fmt.Printf("\n")

	for i := 0; i < entry.NumberOfAttributes(); i++ {
		attr, err := entry.AttributeByIndex(i)
		log.PanicIf(err)

		name := attr.Type.Name()
		if attr.Name != "" {
			name = fmt.Sprintf("%s:%s", name, attr.Name)
		}

		if attr.NonResident == true {
			fmt.Printf("%3d: %-30s non-resident (%s)\n", i, name, humanize.Bytes(attr.DataSize))
		} else if rootArguments.ShowDetail == true {
			fmt.Printf("%3d: %-30s resident (%s)\n", i, name, humanize.Bytes(uint64(len(attr.ResidentData))))
		} else {
			fmt.Printf("%3d: %-30s resident\n", i, name)
		}
	}
}
