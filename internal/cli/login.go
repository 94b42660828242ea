package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohanapavani03/agriconnect/pkg/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with a registered phone number",
	Long: `Log in with a registered phone number and a one-time code. Without
flags the command prompts for the phone number and code in two steps, the
way the OTP flow works on the field devices.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().String("phone", "", "Registered phone number (e.g. +919876543210)")
	loginCmd.Flags().String("code", "", "One-time code")
}

func runLogin(cmd *cobra.Command, _ []string) error {
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

	phone, _ := cmd.Flags().GetString("phone")
	code, _ := cmd.Flags().GetString("code")

	flow := session.NewLoginFlow(store)
	reader := bufio.NewReader(os.Stdin)

	if phone == "" {
		fmt.Print("Phone number: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read phone number: %w", err)
		}
		phone = strings.TrimSpace(line)
	}

	if err := flow.SubmitPhone(phone); err != nil {
		return err
	}

	if code == "" {
		fmt.Print("One-time code: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read code: %w", err)
		}
		code = strings.TrimSpace(line)
	}

	farmer, err := flow.SubmitCode(cmd.Context(), code)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCode) || errors.Is(err, session.ErrUnknownPhone) {
			return fmt.Errorf("login failed: %w", err)
		}
		return err
	}

	fmt.Printf("Welcome, %s (%s district)\n", farmer.Name.In(farmer.Language), farmer.District.In(farmer.Language))
	return nil
}
