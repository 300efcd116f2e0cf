package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file|dir>...",
	Short: "Upload documents to the backend",
	Long: `Upload one or more documents. A directory is searched recursively
for files matching server.allowed_types; .gitignore entries are honoured.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sess, err := newSession(cfg, newTerminal(os.Stdout))
		if err != nil {
			return err
		}

		var paths []string
		for _, arg := range args {
			expanded, err := expandUploads(arg, cfg.Server.AllowedTypes, cfg.MaxUploadBytes)
			if err != nil {
				return err
			}
			paths = append(paths, expanded...)
		}

		var failed int
		for _, path := range paths {
			f, err := os.Open(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				failed++
				continue
			}
			info, err := f.Stat()
			if err == nil {
				err = sess.Upload(cmd.Context(), info.Name(), info.Size(), f)
			}
			f.Close()
			if err != nil {
				failed++
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d upload(s) failed", failed, len(paths))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
