package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	store, persist, err := initSessions(cfg, logger)
	if err != nil {
		return err
	}
	defer persist.Close()

	store.Restore(cmd.Context())
	if err := store.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	fmt.Println("Logged out.")
	return nil
}
