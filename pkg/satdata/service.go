// Package satdata supplies environmental readings: vegetation indices,
// rainfall forecasts, cyclone tracks, and historical trends. The bundled
// implementation serves fixed mock data shaped like MODIS/GPM products; a
// real satellite client can replace it behind the Source interface.
package satdata

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Mohanapavani03/agriconnect/internal/observability"
	"github.com/Mohanapavani03/agriconnect/pkg/model"
)

// Source is the environmental data contract. Every call returns within
// bounded time or with the context's error; callers own loading-state display.
type Source interface {
	NDVI(ctx context.Context, district string) ([]model.NDVIReading, error)
	Rainfall(ctx context.Context, coords model.Coordinates, hours int) ([]model.RainfallPoint, error)
	Cyclones(ctx context.Context) ([]model.Cyclone, error)
	Trends(ctx context.Context, district string, months int) ([]model.TrendPoint, error)
}

// Service is the mock Source implementation. Latency simulates a remote API;
// set it to zero in tests.
type Service struct {
	clock   clockwork.Clock
	metrics *observability.Metrics
	latency time.Duration
}

// NewService creates a mock data source.
func NewService(clock clockwork.Clock, metrics *observability.Metrics, latency time.Duration) *Service {
	return &Service{clock: clock, metrics: metrics, latency: latency}
}

var errNoReadings = fmt.Errorf("no readings for district")

type ndviFixture struct {
	district string
	ndvi     float64
	status   string
	color    string
	coords   model.Coordinates
}

var ndviFixtures = []ndviFixture{
	{"Krishna", 0.75, "Excellent", "#22C55E", model.Coordinates{Lat: 16.2160, Lon: 81.1496}},
	{"Guntur", 0.68, "Good", "#65A30D", model.Coordinates{Lat: 16.3067, Lon: 80.4365}},
	{"Warangal", 0.82, "Excellent", "#16A34A", model.Coordinates{Lat: 17.9689, Lon: 79.5941}},
}

// NDVI returns per-district vegetation readings. An empty district returns
// every known district; a non-empty one filters to that district.
func (s *Service) NDVI(ctx context.Context, district string) ([]model.NDVIReading, error) {
	start := time.Now()
	if err := s.wait(ctx); err != nil {
		s.fetchError("ndvi")
		return nil, err
	}

	now := s.clock.Now().UTC()
	var readings []model.NDVIReading
	for _, f := range ndviFixtures {
		if district != "" && f.district != district {
			continue
		}
		readings = append(readings, model.NDVIReading{
			District:    f.district,
			NDVI:        f.ndvi,
			Status:      f.status,
			Color:       f.color,
			Coordinates: f.coords,
			Timestamp:   now,
		})
	}
	if district != "" && len(readings) == 0 {
		s.fetchError("ndvi")
		return nil, fmt.Errorf("%w: %s", errNoReadings, district)
	}

	s.fetchDone("ndvi", start)
	return readings, nil
}

// Rainfall returns one forecast point per six-hour window covering the given
// horizon. Values are deterministic for a (coordinates, window) pair.
func (s *Service) Rainfall(ctx context.Context, coords model.Coordinates, hours int) ([]model.RainfallPoint, error) {
	start := time.Now()
	if err := s.wait(ctx); err != nil {
		s.fetchError("rainfall")
		return nil, err
	}
	if hours <= 0 {
		hours = 48
	}

	now := s.clock.Now().UTC()
	windows := hours / 6
	points := make([]model.RainfallPoint, 0, windows)
	for i := 0; i < windows; i++ {
		points = append(points, model.RainfallPoint{
			Time:        now.Add(time.Duration(i) * 6 * time.Hour),
			RainfallMM:  mockValue(coords, i, 50),
			Intensity:   mockValue(coords, i+windows, 100),
			Coordinates: coords,
		})
	}

	s.fetchDone("rainfall", start)
	return points, nil
}

// Cyclones returns the currently tracked storm systems.
func (s *Service) Cyclones(ctx context.Context) ([]model.Cyclone, error) {
	start := time.Now()
	if err := s.wait(ctx); err != nil {
		s.fetchError("cyclones")
		return nil, err
	}

	now := s.clock.Now().UTC()
	path := make([]model.CyclonePathPoint, 0, 8)
	for i := 0; i < 8; i++ {
		path = append(path, model.CyclonePathPoint{
			Time: now.Add(time.Duration(i) * 6 * time.Hour),
			Coordinates: model.Coordinates{
				Lat: 13.0827 + float64(i)*0.5,
				Lon: 80.2707 + float64(i)*0.3,
			},
			WindSpeed: 85 - float64(i)*5,
		})
	}

	cyclones := []model.Cyclone{
		{
			ID:          "CYCLONE_2024_001",
			Name:        "Vardah",
			Coordinates: model.Coordinates{Lat: 13.0827, Lon: 80.2707},
			WindSpeed:   85,
			Pressure:    980,
			Category:    2,
			Path:        path,
		},
	}

	s.fetchDone("cyclones", start)
	return cyclones, nil
}

// Trends returns a monthly historical series ending at the current month.
func (s *Service) Trends(ctx context.Context, district string, months int) ([]model.TrendPoint, error) {
	start := time.Now()
	if err := s.wait(ctx); err != nil {
		s.fetchError("trends")
		return nil, err
	}
	if months <= 0 {
		months = 12
	}

	now := s.clock.Now().UTC()
	seed := model.Coordinates{Lat: float64(len(district)), Lon: 1}
	points := make([]model.TrendPoint, 0, months)
	for i := 0; i < months; i++ {
		points = append(points, model.TrendPoint{
			Month:       now.AddDate(0, -(months - i), 0),
			NDVI:        0.4 + mockValue(seed, i, 0.4),
			RainfallMM:  mockValue(seed, i+months, 200),
			Temperature: 25 + mockValue(seed, i+2*months, 15),
		})
	}

	s.fetchDone("trends", start)
	return points, nil
}

// Conditions assembles a snapshot for the alert distributor from the current
// cyclone track and a per-district disease risk estimate.
func (s *Service) Conditions(ctx context.Context, district, cropType string) (model.Conditions, error) {
	cyclones, err := s.Cyclones(ctx)
	if err != nil {
		return model.Conditions{}, fmt.Errorf("fetch cyclones: %w", err)
	}

	conditions := model.Conditions{
		District:    district,
		CropType:    cropType,
		DiseaseRisk: mockValue(model.Coordinates{Lat: float64(len(district)), Lon: float64(len(cropType))}, 0, 100),
	}
	if len(cyclones) > 0 {
		c := cyclones[0]
		conditions.Cyclone = &model.CycloneConditions{
			Name:      c.Name,
			WindSpeed: c.WindSpeed,
			Pressure:  c.Pressure,
			Category:  c.Category,
		}
	}
	return conditions, nil
}

// wait simulates remote API latency while honouring cancellation.
func (s *Service) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) fetchDone(dataset string, start time.Time) {
	if s.metrics != nil {
		s.metrics.DataFetchDuration.WithLabelValues(dataset).Observe(time.Since(start).Seconds())
	}
}

func (s *Service) fetchError(dataset string) {
	if s.metrics != nil {
		s.metrics.DataFetchErrors.WithLabelValues(dataset).Inc()
	}
}

// mockValue produces a stable pseudo-random value in [0, scale) from the
// coordinate pair and index, so repeated fetches return identical series.
func mockValue(coords model.Coordinates, i int, scale float64) float64 {
	x := math.Sin(coords.Lat*12.9898+coords.Lon*78.233+float64(i)*37.719) * 43758.5453
	frac := x - math.Floor(x)
	return frac * scale
}
