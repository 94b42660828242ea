package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Mohanapavani03/agriconnect/internal/observability"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Generate and broadcast farm alerts",
}

var alertsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Evaluate current conditions and print the resulting alerts",
	RunE:  runAlertsGenerate,
}

var alertsBroadcastCmd = &cobra.Command{
	Use:   "broadcast",
	Short: "Evaluate current conditions and send alerts to all registered farmers",
	RunE:  runAlertsBroadcast,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsGenerateCmd)
	alertsCmd.AddCommand(alertsBroadcastCmd)

	for _, c := range []*cobra.Command{alertsGenerateCmd, alertsBroadcastCmd} {
		c.Flags().StringP("district", "d", "", "District to evaluate (default from config)")
		c.Flags().String("crop", "", "Crop type for disease risk evaluation")
	}
}

func runAlertsGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	metrics := observability.NewMetrics()

	district, _ := cmd.Flags().GetString("district")
	if district == "" {
		district = cfg.Alerts.DefaultDistrict
	}
	crop, _ := cmd.Flags().GetString("crop")

	data := initData(cfg, metrics)
	conditions, err := data.Conditions(cmd.Context(), district, crop)
	if err != nil {
		return fmt.Errorf("assemble conditions: %w", err)
	}

	dist := initDistributor(cfg, logger, metrics)
	alerts := dist.Generate(conditions)

	if len(alerts) == 0 {
		fmt.Println("No alerts for current conditions.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tCATEGORY\tSEVERITY\tDISTRICT\tEXPIRES\tMESSAGE\n")
	for _, a := range alerts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Category, a.Severity, a.District,
			a.ExpiresAt.Format("2006-01-02 15:04"),
			a.Message.En,
		)
	}
	w.Flush()

	return nil
}

func runAlertsBroadcast(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	metrics := observability.NewMetrics()

	district, _ := cmd.Flags().GetString("district")
	if district == "" {
		district = cfg.Alerts.DefaultDistrict
	}
	crop, _ := cmd.Flags().GetString("crop")

	dir, err := initDirectory(cfg)
	if err != nil {
		return err
	}

	data := initData(cfg, metrics)
	conditions, err := data.Conditions(cmd.Context(), district, crop)
	if err != nil {
		return fmt.Errorf("assemble conditions: %w", err)
	}

	dist := initDistributor(cfg, logger, metrics)
	alerts := dist.Generate(conditions)

	if len(alerts) == 0 {
		fmt.Println("No alerts for current conditions, nothing to broadcast.")
		return nil
	}

	dist.Broadcast(cmd.Context(), alerts, dir.All())
	fmt.Printf("Broadcast %d alert(s) to %d farmer(s).\n", len(alerts), dir.Len())

	return nil
}
