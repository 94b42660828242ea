// Package alert turns environmental conditions snapshots into advisories and
// fans them out to registered farmers through notification gateways.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Mohanapavani03/agriconnect/internal/observability"
	"github.com/Mohanapavani03/agriconnect/pkg/model"
)

// Generation thresholds. Wind speeds are km/h, disease risk is a percentage.
const (
	cycloneWindThreshold  = 60
	criticalWindThreshold = 100
	diseaseRiskThreshold  = 70
)

// Alert lifetimes by rule.
const (
	cycloneAlertTTL    = 24 * time.Hour
	diseaseAlertTTL    = 48 * time.Hour
	irrigationAlertTTL = 12 * time.Hour
)

// Distributor evaluates conditions against fixed thresholds, decides per
// recipient whether each resulting alert should be delivered, and invokes the
// configured gateways. Delivery is fire-and-log: no retries, no queuing.
type Distributor struct {
	notifiers       []Notifier
	clock           clockwork.Clock
	logger          *slog.Logger
	metrics         *observability.Metrics
	defaultDistrict string
}

// NewDistributor creates a distributor with the given gateways and observability.
func NewDistributor(notifiers []Notifier, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, defaultDistrict string) *Distributor {
	if defaultDistrict == "" {
		defaultDistrict = "Krishna"
	}
	return &Distributor{
		notifiers:       notifiers,
		clock:           clock,
		logger:          logger,
		metrics:         metrics,
		defaultDistrict: defaultDistrict,
	}
}

// Generate produces alerts from a conditions snapshot. Every applicable rule
// fires independently and results are concatenated in rule order. The clock is
// used only for IDs and timestamps, never for branching.
func (d *Distributor) Generate(conditions model.Conditions) []model.Alert {
	now := d.clock.Now().UTC()
	var alerts []model.Alert

	if c := conditions.Cyclone; c != nil && c.WindSpeed > cycloneWindThreshold {
		severity := model.SeverityHigh
		if c.WindSpeed > criticalWindThreshold {
			severity = model.SeverityCritical
		}
		alerts = append(alerts, model.Alert{
			ID:       fmt.Sprintf("CYCLONE_%d", now.UnixMilli()),
			Category: model.AlertCyclone,
			Severity: severity,
			Message: model.Text{
				En: fmt.Sprintf("Cyclone %s approaching. Wind speed: %.0f km/h. Take shelter immediately.", c.Name, c.WindSpeed),
				Te: fmt.Sprintf("తుఫాను %s సమీపిస్తోంది. గాలి వేగం: %.0f కి.మీ/గం. వెంటనే ఆశ్రయం తీసుకోండి.", c.Name, c.WindSpeed),
			},
			District:  model.DistrictAll,
			IssuedAt:  now,
			ExpiresAt: now.Add(cycloneAlertTTL),
		})
	}

	if conditions.DiseaseRisk > diseaseRiskThreshold {
		alerts = append(alerts, model.Alert{
			ID:       fmt.Sprintf("DISEASE_%d", now.UnixMilli()),
			Category: model.AlertDisease,
			Severity: model.SeverityHigh,
			Message: model.Text{
				En: fmt.Sprintf("High disease risk detected for %s. Apply preventive measures immediately.", conditions.CropType),
				Te: fmt.Sprintf("%s పంటకు వ్యాధి ప్రమాదం అధికంగా ఉంది. వెంటనే నివారణ చర్యలు తీసుకోండి.", conditions.CropType),
			},
			District:  conditions.District,
			IssuedAt:  now,
			ExpiresAt: now.Add(diseaseAlertTTL),
		})
	}

	// The irrigation-window advisory always fires.
	alerts = append(alerts, model.Alert{
		ID:       fmt.Sprintf("IRRIGATION_%d", now.UnixMilli()),
		Category: model.AlertRainfall,
		Severity: model.SeverityMedium,
		Message: model.Text{
			En: "Optimal irrigation window: 6:00 AM - 10:00 AM. No rain expected for next 24 hours.",
			Te: "అనుకూల నీటిపారుదల సమయం: ఉదయం 6:00 - 10:00. రాబోయే 24 గంటలలో వర్షం లేదు.",
		},
		District:  d.defaultDistrict,
		IssuedAt:  now,
		ExpiresAt: now.Add(irrigationAlertTTL),
	})

	if d.metrics != nil {
		for _, a := range alerts {
			d.metrics.AlertsGenerated.WithLabelValues(string(a.Category), string(a.Severity)).Inc()
		}
	}
	return alerts
}

// ShouldDeliver decides whether an alert reaches a recipient. Rules are
// evaluated in precedence order and the first match decides; in particular the
// category toggles are checked before the critical-severity override, so a
// recipient who disabled weather alerts never receives a cyclone alert even at
// critical severity.
func (d *Distributor) ShouldDeliver(farmer model.Farmer, a model.Alert) bool {
	if a.Category == model.AlertCyclone && !farmer.Preferences.WeatherAlerts {
		return false
	}
	if a.Category == model.AlertRainfall && !farmer.Preferences.IrrigationReminders {
		return false
	}
	if a.Severity == model.SeverityCritical {
		return true
	}
	if a.Severity == model.SeverityHigh && farmer.Preferences.Subscribed(model.SeverityHigh) {
		return true
	}
	return farmer.Preferences.Subscribed(a.Severity)
}

// Active filters alerts down to those not yet expired.
func (d *Distributor) Active(alerts []model.Alert) []model.Alert {
	now := d.clock.Now()
	active := make([]model.Alert, 0, len(alerts))
	for _, a := range alerts {
		if a.ActiveAt(now) {
			active = append(active, a)
		}
	}
	return active
}

// Broadcast sends each alert to every matching recipient, strictly
// sequentially: recipients within an alert, alerts within the list. Expired
// alerts are skipped entirely. A failed send is logged and the loop continues.
func (d *Distributor) Broadcast(ctx context.Context, alerts []model.Alert, farmers []model.Farmer) {
	for _, a := range alerts {
		if !a.ActiveAt(d.clock.Now()) {
			d.logger.Warn("skipping expired alert", "alert_id", a.ID, "expired_at", a.ExpiresAt)
			continue
		}
		for _, f := range farmers {
			if a.District != model.DistrictAll && f.District.En != a.District {
				continue
			}
			if !d.ShouldDeliver(f, a) {
				if d.metrics != nil {
					d.metrics.BroadcastSkipped.Inc()
				}
				continue
			}
			d.Send(ctx, f, a)
		}
	}
}

// Send renders the alert in the recipient's language and pushes it through
// every configured gateway. It reports whether all gateways accepted the
// notification; failures are logged, never raised.
func (d *Distributor) Send(ctx context.Context, farmer model.Farmer, a model.Alert) bool {
	n := Notification{
		DeliveryID: uuid.New().String(),
		AlertID:    a.ID,
		Phone:      farmer.Phone,
		Message:    a.Message.In(farmer.Language),
		Severity:   string(a.Severity),
		District:   a.District,
	}

	ok := true
	for _, notifier := range d.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			ok = false
			d.logger.Error("send notification failed",
				"gateway", notifier.Name(),
				"alert_id", a.ID,
				"to", farmer.Phone,
				"error", err,
			)
			if d.metrics != nil {
				d.metrics.NotificationsSent.WithLabelValues(notifier.Name(), "error").Inc()
			}
			continue
		}
		if d.metrics != nil {
			d.metrics.NotificationsSent.WithLabelValues(notifier.Name(), "success").Inc()
		}
	}
	return ok
}
