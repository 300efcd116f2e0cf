package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docchat/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a docchat config file with an interactive wizard",
	Long:  `Runs an interactive wizard and writes the answers to the config file (.docchat.yml by default).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkConfigAbsent(cfgFile, initForce); err != nil {
			return err
		}
		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Next: `docchat server` to start the backend, then `docchat chat` (server at %s).\n", cfg.ServerURL)
		return nil
	},
}

// checkConfigAbsent refuses to overwrite an existing config unless force
// is set.
func checkConfigAbsent(path string, force bool) error {
	if force {
		return nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return fmt.Errorf("%s already exists; use --force to overwrite it", path)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("checking %s: %w", path, err)
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
