package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docchat/internal/config"
	"github.com/ziadkadry99/docchat/internal/markdown"
)

var renderMode string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render markdown from stdin as HTML",
	Long:  `Reads a bot reply in markdown from stdin and writes the HTML the chat would display.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := markdown.Mode(renderMode)
		if mode == "" {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			mode = cfg.RenderMode
		}

		renderer, err := markdown.NewRenderer(mode)
		if err != nil {
			return err
		}
		input, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderer.Render(string(input)))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderMode, "mode", "", "render mode: simple or gfm (default from config)")
	renderCmd.SetIn(os.Stdin)
	rootCmd.AddCommand(renderCmd)
}
