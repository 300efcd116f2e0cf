package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docchat/internal/client"
	"github.com/ziadkadry99/docchat/internal/profile"
)

var profileSync bool

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the saved user profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, closeDB, err := openProfileStore(cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		p, err := store.Load(cmd.Context())
		if err != nil {
			return err
		}
		printProfile(p)
		return nil
	},
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the user profile interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, closeDB, err := openProfileStore(cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		// A corrupt stored profile is replaced rather than blocking edits.
		current, err := store.Load(cmd.Context())
		if err != nil {
			fmt.Printf("Warning: %v; starting from an empty profile\n", err)
			current = profile.Profile{}
		}

		updated, err := profile.RunEditor(current)
		if err != nil {
			return err
		}
		if err := store.Save(cmd.Context(), updated); err != nil {
			return err
		}
		fmt.Println("Profile saved successfully!")

		if profileSync {
			if _, err := client.New(cfg.ServerURL).SyncProfile(cmd.Context(), updated); err != nil {
				return fmt.Errorf("syncing profile: %w", err)
			}
			fmt.Println("Profile synced to server.")
		}
		return nil
	},
}

func printProfile(p profile.Profile) {
	fmt.Printf("[%s] %s\n", profile.Initial(p), profile.DisplayName(p))
	for _, f := range []struct{ label, value string }{
		{"Name", p.Name},
		{"Email", p.Email},
		{"Phone", p.Phone},
		{"Bio", p.Bio},
	} {
		if f.value != "" {
			fmt.Printf("  %-6s %s\n", f.label+":", f.value)
		}
	}
}

func init() {
	profileEditCmd.Flags().BoolVar(&profileSync, "sync", false, "also send the profile to the server")
	profileCmd.AddCommand(profileEditCmd)
	rootCmd.AddCommand(profileCmd)
}
