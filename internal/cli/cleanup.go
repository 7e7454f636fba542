package cli

import (
	"github.com/spf13/cobra"

	"github.com/glorpus-work/tikgrab/internal/logger"
	"github.com/glorpus-work/tikgrab/pkg/fsutil"
)

// NewCleanupCmd creates the cleanup command.
func NewCleanupCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove leftover temporary files",
		Long:  "Remove .part and .tmp files left behind by interrupted downloads",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Settings.DownloadDir
			}
			removed, err := fsutil.CleanupTempFiles(dir)
			if err != nil {
				return err
			}
			logger.Success("Cleanup complete", logger.Fields{"dir": dir, "removed": removed})
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory to clean (default: configured download dir)")

	return cmd
}
