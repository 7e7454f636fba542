package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/tikgrab/pkg/checksum"
)

// NewChecksumCmd creates the checksum command.
func NewChecksumCmd() *cobra.Command {
	var verify string

	cmd := &cobra.Command{
		Use:   "checksum FILE...",
		Short: "Compute or verify file checksums",
		Long:  "Compute the SHA-256 digest of downloaded files, or verify a file against an expected digest.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runChecksum(args, verify)
		},
	}

	cmd.Flags().StringVar(&verify, "verify", "", "expected hex digest; fails when the file does not match (single file only)")

	return cmd
}

func runChecksum(files []string, verify string) error {
	if verify != "" {
		if len(files) != 1 {
			return fmt.Errorf("--verify takes exactly one file, got %d", len(files))
		}
		if !checksum.IsDuplicate(files[0], verify) {
			return fmt.Errorf("%s: checksum mismatch", files[0])
		}
		fmt.Printf("%s: OK\n", files[0])
		return nil
	}

	for _, file := range files {
		digest, err := checksum.File(file)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", digest, file)
	}
	return nil
}
