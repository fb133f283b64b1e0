package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func defineEntryCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "entry <index>",
		Short:        "Dump one MFT entry's header and attributes",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runEntry,
	}
}

func runEntry(cmd *cobra.Command, args []string) error {
	index, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid mft index (%s): %w", args[0], err)
	}

	source, volume, err := openVolume()
	if err != nil {
		return err
	}
	defer source.Close()

	entry, err := volume.Entries.EntryByIndex(index)
	if err != nil {
		return err
	}

	if entry.IsEmpty {
		fmt.Printf("Entry (%d) is empty.\n", index)
		return nil
	}

	fmt.Printf("Index: (%d)\n", entry.Index)
	fmt.Printf("Sequence: (%d)\n", entry.FileReference.Sequence())
	fmt.Printf("Allocated: (%v)\n", entry.IsAllocated())
	fmt.Printf("Directory: (%v)\n", entry.HasDirectoryEntriesIndex())
	fmt.Printf("Corrupted: (%v)\n", entry.IsCorrupted)
	fmt.Printf("\n")

	for i := 0; i < entry.NumberOfAttributes(); i++ {
		attr, attrErr := entry.AttributeByIndex(i)
		if attrErr != nil {
			return attrErr
		}

		name := attr.Type.Name()
		if attr.Name != "" {
			name = fmt.Sprintf("%s:%s", name, attr.Name)
		}

		if attr.NonResident == true {
			fmt.Printf("%3d: %-30s non-resident (%s)\n", i, name, humanize.Bytes(attr.DataSize))
		} else {
			fmt.Printf("%3d: %-30s resident (%s)\n", i, name, humanize.Bytes(uint64(len(attr.ResidentData))))
		}
	}

	return nil
}
