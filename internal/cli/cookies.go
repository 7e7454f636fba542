package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/tikgrab/internal/logger"
	"github.com/glorpus-work/tikgrab/pkg/cookies"
)

// NewCookiesCmd creates the cookies command with subcommands.
func NewCookiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookies",
		Short: "Manage cookie profiles",
		Long:  "Import, list, export and delete stored cookie profiles for authenticated downloads",
	}

	cmd.AddCommand(
		newCookiesListCmd(),
		newCookiesImportCmd(),
		newCookiesExportCmd(),
		newCookiesDeleteCmd(),
	)

	return cmd
}

func newCookiesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored cookie profiles",
		RunE: func(_ *cobra.Command, _ []string) error {
			mgr, err := cookieManager()
			if err != nil {
				return err
			}
			profiles, err := mgr.List()
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				fmt.Println("No cookie profiles stored")
				return nil
			}
			for _, profile := range profiles {
				fmt.Println(profile)
			}
			return nil
		},
	}
}

func newCookiesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import PROFILE FILE",
		Short: "Import a browser cookie export as a named profile",
		Long:  "Import a JSON cookie export (as produced by browser cookie extensions) and store it as a named profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			mgr, err := cookieManager()
			if err != nil {
				return err
			}
			if err := mgr.Import(args[0], args[1]); err != nil {
				return err
			}
			logger.Success("Cookie profile imported", logger.Fields{"profile": args[0]})
			return nil
		},
	}
}

func newCookiesExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export PROFILE",
		Short: "Export a profile in Netscape cookies.txt format",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			mgr, err := cookieManager()
			if err != nil {
				return err
			}
			stored, err := mgr.Load(args[0])
			if err != nil {
				return err
			}

			if out == "" {
				return cookies.WriteNetscape(os.Stdout, stored)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer func() { _ = f.Close() }()
			if err := cookies.WriteNetscape(f, stored); err != nil {
				return err
			}
			logger.Success("Cookie profile exported", logger.Fields{"profile": args[0], "file": out})
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")

	return cmd
}

func newCookiesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete PROFILE",
		Short: "Delete a stored cookie profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			mgr, err := cookieManager()
			if err != nil {
				return err
			}
			if err := mgr.Delete(args[0]); err != nil {
				return err
			}
			logger.Success("Cookie profile deleted", logger.Fields{"profile": args[0]})
			return nil
		},
	}
}

func cookieManager() (*cookies.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cookies.NewManager(cfg.Settings.CookieDir), nil
}
