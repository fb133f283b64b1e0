package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dsoprea/go-ntfs"
)

func defineExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "extract <index> <output>",
		Short:        "Extract the unnamed $DATA stream of an MFT entry to a file",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         runExtract,
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	index, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid mft index (%s): %w", args[0], err)
	}

	outputPath := args[1]

	source, volume, err := openVolume()
	if err != nil {
		return err
	}
	defer source.Close()

	entry, err := volume.Entries.EntryByIndex(index)
	if err != nil {
		return err
	}

	attr, err := entry.DataAttribute()
	if err != nil {
		return fmt.Errorf("entry (%d) has no unnamed $DATA attribute: %w", index, err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if attr.NonResident != true {
		n, writeErr := out.Write(attr.ResidentData)
		if writeErr != nil {
			return writeErr
		}

		fmt.Printf("Wrote (%d) bytes to (%s).\n", n, outputPath)
		return nil
	}

	crr := ntfs.NewClusterRunReader(source, volume.Header().ClusterSize(), attr.DataRuns)

	n, err := io.Copy(out, io.NewSectionReader(crr, 0, int64(attr.DataSize)))
	if err != nil {
		return err
	}

	fmt.Printf("Wrote (%d) bytes to (%s).\n", n, outputPath)
	return nil
}
