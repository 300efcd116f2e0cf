package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docchat/internal/client"
	"github.com/ziadkadry99/docchat/internal/markdown"
)

var askHTML bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the backend a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		question := strings.TrimSpace(strings.Join(args, " "))
		if n := len([]rune(question)); n > cfg.MaxMessageChars {
			return fmt.Errorf("message exceeds %d character limit", cfg.MaxMessageChars)
		}

		reply, err := newRetry(cfg).Send(cmd.Context(), client.New(cfg.ServerURL), question)
		if err != nil {
			return fmt.Errorf("failed to get response: %w", err)
		}

		if askHTML {
			renderer, err := markdown.NewRenderer(cfg.RenderMode)
			if err != nil {
				return err
			}
			reply = renderer.Render(reply)
		}
		fmt.Println(reply)
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askHTML, "html", false, "print the reply rendered as HTML")
	rootCmd.AddCommand(askCmd)
}
