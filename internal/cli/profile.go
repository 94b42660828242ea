package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Mohanapavani03/agriconnect/pkg/model"
	"github.com/Mohanapavani03/agriconnect/pkg/session"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the logged-in farmer's profile",
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the logged-in farmer's profile",
	RunE:  runProfileUpdate,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileUpdateCmd)

	profileUpdateCmd.Flags().String("language", "", "Preferred language (en, te)")
	profileUpdateCmd.Flags().Bool("weather-alerts", false, "Receive weather alerts")
	profileUpdateCmd.Flags().Bool("irrigation-reminders", false, "Receive irrigation reminders")
}

func runProfileShow(cmd *cobra.Command, _ []string) error {
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
	farmer := store.Current()
	if farmer == nil {
		return fmt.Errorf("not logged in, run 'agriconnect login' first")
	}

	fmt.Printf("Name:     %s\n", farmer.Name.In(farmer.Language))
	fmt.Printf("Phone:    %s\n", farmer.Phone)
	fmt.Printf("District: %s\n", farmer.District.In(farmer.Language))
	fmt.Printf("Language: %s\n", farmer.Language)
	fmt.Printf("Weather alerts:       %v\n", farmer.Preferences.WeatherAlerts)
	fmt.Printf("Irrigation reminders: %v\n", farmer.Preferences.IrrigationReminders)

	if len(farmer.Fields) > 0 {
		fmt.Printf("\nFields:\n")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  CROP\tACRES\tSOIL\tNDVI\tLAST IRRIGATION\n")
		for _, f := range farmer.Fields {
			fmt.Fprintf(w, "  %s\t%.1f\t%s\t%.2f\t%s\n",
				f.CropType.In(farmer.Language),
				f.SizeAcres, f.SoilType, f.NDVI,
				f.LastIrrigation.Format("2006-01-02"),
			)
		}
		w.Flush()
	}

	return nil
}

func runProfileUpdate(cmd *cobra.Command, _ []string) error {
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
	farmer := store.Current()
	if farmer == nil {
		return fmt.Errorf("not logged in, run 'agriconnect login' first")
	}

	var update session.ProfileUpdate

	if cmd.Flags().Changed("language") {
		raw, _ := cmd.Flags().GetString("language")
		lang := model.Language(raw)
		if lang != model.LangEnglish && lang != model.LangTelugu {
			return fmt.Errorf("unsupported language %q", raw)
		}
		update.Language = &lang
	}

	if cmd.Flags().Changed("weather-alerts") || cmd.Flags().Changed("irrigation-reminders") {
		prefs := farmer.Preferences
		if cmd.Flags().Changed("weather-alerts") {
			prefs.WeatherAlerts, _ = cmd.Flags().GetBool("weather-alerts")
		}
		if cmd.Flags().Changed("irrigation-reminders") {
			prefs.IrrigationReminders, _ = cmd.Flags().GetBool("irrigation-reminders")
		}
		update.Preferences = &prefs
	}

	if update.Language == nil && update.Preferences == nil {
		return fmt.Errorf("nothing to update, pass at least one flag")
	}

	if err := store.UpdateProfile(cmd.Context(), update); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	fmt.Println("Profile updated.")
	return nil
}
