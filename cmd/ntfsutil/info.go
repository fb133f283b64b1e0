package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func defineInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "info",
		Short:        "Print the volume's boot-sector geometry",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runInfo,
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	source, volume, err := openVolume()
	if err != nil {
		return err
	}
	defer source.Close()

	header := volume.Header()

	fmt.Printf("Bytes Per Sector: (%d)\n", header.BytesPerSector())
	fmt.Printf("Cluster Size: (%d)\n", header.ClusterSize())
	fmt.Printf("MFT Entry Size: (%d)\n", header.MftEntrySize())
	fmt.Printf("Index Entry Size: (%d)\n", header.IndexEntrySize())
	fmt.Printf("Volume Serial Number: (0x%016x)\n", header.VolumeSerialNumber())
	fmt.Printf("Volume Size: (%d)\n", header.VolumeSize())
	fmt.Printf("MFT Offset: (%d)\n", header.MftOffset())
	fmt.Printf("Mirror MFT Offset: (%d)\n", header.MirrorMftOffset())

	return nil
}
