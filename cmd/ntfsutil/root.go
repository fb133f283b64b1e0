package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dsoprea/go-ntfs"
)

const appName = "ntfsutil"

var filepathFlag string

func main() {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: appName + " - inspect an NTFS volume image",
	}

	rootCmd.PersistentFlags().StringVarP(&filepathFlag, "filepath", "f", "", "File-path of NTFS filesystem or volume image")
	_ = rootCmd.MarkPersistentFlagRequired("filepath")

	rootCmd.AddCommand(defineInfoCommand())
	rootCmd.AddCommand(defineEntryCommand())
	rootCmd.AddCommand(defineExtractCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openVolume opens the volume named by the persistent --filepath flag. The
// caller is responsible for closing the returned source once done with the
// volume.
func openVolume() (*ntfs.FileVolumeSource, *ntfs.Volume, error) {
	source, err := ntfs.OpenFileVolumeSource(filepathFlag)
	if err != nil {
		return nil, nil, err
	}

	volume, err := ntfs.OpenVolume(source)
	if err != nil {
		source.Close()
		return nil, nil, err
	}

	return source, volume, nil
}
