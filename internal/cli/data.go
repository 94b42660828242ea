package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Mohanapavani03/agriconnect/internal/observability"
	"github.com/Mohanapavani03/agriconnect/pkg/model"
	"github.com/Mohanapavani03/agriconnect/pkg/satdata"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Query satellite and weather data",
}

var dataNDVICmd = &cobra.Command{
	Use:   "ndvi",
	Short: "Show vegetation health readings",
	RunE:  runDataNDVI,
}

var dataRainfallCmd = &cobra.Command{
	Use:   "rainfall",
	Short: "Show the rainfall forecast for a location",
	RunE:  runDataRainfall,
}

var dataCyclonesCmd = &cobra.Command{
	Use:   "cyclones",
	Short: "Show active cyclones in the Bay of Bengal",
	RunE:  runDataCyclones,
}

var dataTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show historical crop health trends for a district",
	RunE:  runDataTrends,
}

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataNDVICmd)
	dataCmd.AddCommand(dataRainfallCmd)
	dataCmd.AddCommand(dataCyclonesCmd)
	dataCmd.AddCommand(dataTrendsCmd)

	dataNDVICmd.Flags().StringP("district", "d", "", "Filter by district")

	dataRainfallCmd.Flags().Float64("lat", 0, "Latitude")
	dataRainfallCmd.Flags().Float64("lon", 0, "Longitude")
	dataRainfallCmd.Flags().Int("hours", 48, "Forecast window in hours")
	_ = dataRainfallCmd.MarkFlagRequired("lat")
	_ = dataRainfallCmd.MarkFlagRequired("lon")

	dataTrendsCmd.Flags().StringP("district", "d", "", "District (default from config)")
	dataTrendsCmd.Flags().Int("months", 6, "History window in months")
}

func newDataService() (*satdata.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return initData(cfg, observability.NewMetrics()), nil
}

func runDataNDVI(cmd *cobra.Command, _ []string) error {
	data, err := newDataService()
	if err != nil {
		return err
	}

	district, _ := cmd.Flags().GetString("district")
	readings, err := data.NDVI(cmd.Context(), district)
	if err != nil {
		return fmt.Errorf("fetch ndvi: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "DISTRICT\tNDVI\tSTATUS\n")
	for _, r := range readings {
		fmt.Fprintf(w, "%s\t%.2f\t%s\n", r.District, r.NDVI, r.Status)
	}
	w.Flush()

	return nil
}

func runDataRainfall(cmd *cobra.Command, _ []string) error {
	data, err := newDataService()
	if err != nil {
		return err
	}

	lat, _ := cmd.Flags().GetFloat64("lat")
	lon, _ := cmd.Flags().GetFloat64("lon")
	hours, _ := cmd.Flags().GetInt("hours")

	points, err := data.Rainfall(cmd.Context(), model.Coordinates{Lat: lat, Lon: lon}, hours)
	if err != nil {
		return fmt.Errorf("fetch rainfall: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TIME\tRAINFALL (MM)\n")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%.1f\n", p.Time.Format("2006-01-02 15:04"), p.RainfallMM)
	}
	w.Flush()

	return nil
}

func runDataCyclones(cmd *cobra.Command, _ []string) error {
	data, err := newDataService()
	if err != nil {
		return err
	}

	cyclones, err := data.Cyclones(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch cyclones: %w", err)
	}

	if len(cyclones) == 0 {
		fmt.Println("No active cyclones.")
		return nil
	}

	for _, c := range cyclones {
		fmt.Printf("Cyclone %s (category %d)\n", c.Name, c.Category)
		fmt.Printf("  Wind:     %.0f km/h\n", c.WindSpeed)
		fmt.Printf("  Pressure: %.0f hPa\n", c.Pressure)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  TIME\tLAT\tLON\tWIND\n")
		for _, p := range c.Path {
			fmt.Fprintf(w, "  %s\t%.2f\t%.2f\t%.0f\n",
				p.Time.Format("2006-01-02 15:04"),
				p.Coordinates.Lat, p.Coordinates.Lon, p.WindSpeed,
			)
		}
		w.Flush()
	}

	return nil
}

func runDataTrends(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	data := initData(cfg, metrics)

	district, _ := cmd.Flags().GetString("district")
	if district == "" {
		district = cfg.Alerts.DefaultDistrict
	}
	months, _ := cmd.Flags().GetInt("months")

	points, err := data.Trends(cmd.Context(), district, months)
	if err != nil {
		return fmt.Errorf("fetch trends: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "MONTH\tNDVI\tRAINFALL (MM)\tTEMP (C)\n")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%.2f\t%.0f\t%.1f\n", p.Month.Format("2006-01"), p.NDVI, p.RainfallMM, p.Temperature)
	}
	w.Flush()

	return nil
}
