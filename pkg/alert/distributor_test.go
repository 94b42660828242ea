package alert_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/Mohanapavani03/agriconnect/internal/observability"
	"github.com/Mohanapavani03/agriconnect/pkg/alert"
	"github.com/Mohanapavani03/agriconnect/pkg/model"
)

// recordingNotifier captures every notification it is asked to send and can
// fail on demand.
type recordingNotifier struct {
	sent    []alert.Notification
	failOn  map[string]bool // phone -> fail
	nameStr string
}

func (r *recordingNotifier) Name() string {
	if r.nameStr != "" {
		return r.nameStr
	}
	return "recording"
}

func (r *recordingNotifier) Send(_ context.Context, n alert.Notification) error {
	if r.failOn[n.Phone] {
		return errors.New("gateway unavailable")
	}
	r.sent = append(r.sent, n)
	return nil
}

var testTime = time.Date(2024, time.June, 1, 6, 0, 0, 0, time.UTC)

func newTestDistributor(t *testing.T, notifiers ...alert.Notifier) (*alert.Distributor, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testTime)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	d := alert.NewDistributor(notifiers, clock, logger, observability.NewMetricsForTesting(), "Krishna")
	return d, clock
}

func farmerWithPrefs(district string, prefs model.Preferences) model.Farmer {
	return model.Farmer{
		ID:          "1",
		Name:        model.Text{En: "Ramesh Kumar"},
		Phone:       "+919876543210",
		District:    model.Text{En: district},
		Language:    model.LangEnglish,
		Preferences: prefs,
	}
}

func allOnPrefs(severities ...model.Severity) model.Preferences {
	return model.Preferences{
		Severities:          severities,
		IrrigationReminders: true,
		WeatherAlerts:       true,
	}
}

func TestGenerate_CycloneCritical(t *testing.T) {
	d, _ := newTestDistributor(t)

	alerts := d.Generate(model.Conditions{
		Cyclone: &model.CycloneConditions{Name: "X", WindSpeed: 120},
	})

	require.Len(t, alerts, 2) // cyclone + always-present irrigation advisory
	cyclone := alerts[0]
	assert.Equal(t, model.AlertCyclone, cyclone.Category)
	assert.Equal(t, model.SeverityCritical, cyclone.Severity)
	assert.Equal(t, model.DistrictAll, cyclone.District)
	assert.Equal(t, testTime.Add(24*time.Hour), cyclone.ExpiresAt)
	assert.Contains(t, cyclone.Message.En, "Cyclone X")
}

func TestGenerate_CycloneHighBelowCriticalThreshold(t *testing.T) {
	d, _ := newTestDistributor(t)

	alerts := d.Generate(model.Conditions{
		Cyclone: &model.CycloneConditions{Name: "Vardah", WindSpeed: 85},
	})

	require.Len(t, alerts, 2)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
}

func TestGenerate_CycloneBelowWindThresholdDoesNotFire(t *testing.T) {
	d, _ := newTestDistributor(t)

	alerts := d.Generate(model.Conditions{
		Cyclone: &model.CycloneConditions{Name: "Weak", WindSpeed: 55},
	})

	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertRainfall, alerts[0].Category)
}

func TestGenerate_DiseaseRisk(t *testing.T) {
	d, _ := newTestDistributor(t)

	alerts := d.Generate(model.Conditions{
		DiseaseRisk: 75,
		CropType:    "Cotton",
		District:    "Guntur",
	})

	require.Len(t, alerts, 2)
	disease := alerts[0]
	assert.Equal(t, model.AlertDisease, disease.Category)
	assert.Equal(t, model.SeverityHigh, disease.Severity)
	assert.Equal(t, "Guntur", disease.District)
	assert.Equal(t, testTime.Add(48*time.Hour), disease.ExpiresAt)
	assert.Contains(t, disease.Message.En, "Cotton")
}

func TestGenerate_IrrigationAdvisoryAlwaysPresent(t *testing.T) {
	d, _ := newTestDistributor(t)

	alerts := d.Generate(model.Conditions{})

	require.Len(t, alerts, 1)
	advisory := alerts[0]
	assert.Equal(t, model.AlertRainfall, advisory.Category)
	assert.Equal(t, model.SeverityMedium, advisory.Severity)
	assert.Equal(t, "Krishna", advisory.District)
	assert.Equal(t, testTime.Add(12*time.Hour), advisory.ExpiresAt)
}

func TestGenerate_AllRulesFireIndependently(t *testing.T) {
	d, _ := newTestDistributor(t)

	alerts := d.Generate(model.Conditions{
		Cyclone:     &model.CycloneConditions{Name: "X", WindSpeed: 70},
		DiseaseRisk: 80,
		CropType:    "Rice",
		District:    "Guntur",
	})

	require.Len(t, alerts, 3)
	assert.Equal(t, model.AlertCyclone, alerts[0].Category)
	assert.Equal(t, model.AlertDisease, alerts[1].Category)
	assert.Equal(t, model.AlertRainfall, alerts[2].Category)
}

func TestShouldDeliver_WeatherToggleBeatsCriticalSeverity(t *testing.T) {
	d, _ := newTestDistributor(t)

	farmer := farmerWithPrefs("Krishna", model.Preferences{
		Severities:          []model.Severity{model.SeverityHigh, model.SeverityCritical},
		IrrigationReminders: true,
		WeatherAlerts:       false,
	})

	cyclone := model.Alert{Category: model.AlertCyclone, Severity: model.SeverityHigh}
	assert.False(t, d.ShouldDeliver(farmer, cyclone))

	// The toggle wins even over critical severity.
	cyclone.Severity = model.SeverityCritical
	assert.False(t, d.ShouldDeliver(farmer, cyclone))
}

func TestShouldDeliver_IrrigationToggle(t *testing.T) {
	d, _ := newTestDistributor(t)

	farmer := farmerWithPrefs("Krishna", model.Preferences{
		Severities:          []model.Severity{model.SeverityMedium},
		IrrigationReminders: false,
		WeatherAlerts:       true,
	})

	rainfall := model.Alert{Category: model.AlertRainfall, Severity: model.SeverityMedium}
	assert.False(t, d.ShouldDeliver(farmer, rainfall))
}

func TestShouldDeliver_CriticalOverridesSubscriptions(t *testing.T) {
	d, _ := newTestDistributor(t)

	// Subscribed to nothing at all.
	farmer := farmerWithPrefs("Krishna", allOnPrefs())

	critical := model.Alert{Category: model.AlertDisease, Severity: model.SeverityCritical}
	assert.True(t, d.ShouldDeliver(farmer, critical))
}

func TestShouldDeliver_SeveritySubscription(t *testing.T) {
	d, _ := newTestDistributor(t)

	tests := []struct {
		name       string
		subscribed []model.Severity
		severity   model.Severity
		want       bool
	}{
		{"high subscribed", []model.Severity{model.SeverityHigh}, model.SeverityHigh, true},
		{"high not subscribed", []model.Severity{model.SeverityLow}, model.SeverityHigh, false},
		{"medium subscribed", []model.Severity{model.SeverityMedium}, model.SeverityMedium, true},
		{"medium not subscribed", []model.Severity{model.SeverityHigh}, model.SeverityMedium, false},
		{"low subscribed", []model.Severity{model.SeverityLow}, model.SeverityLow, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			farmer := farmerWithPrefs("Krishna", allOnPrefs(tt.subscribed...))
			a := model.Alert{Category: model.AlertDisease, Severity: tt.severity}
			assert.Equal(t, tt.want, d.ShouldDeliver(farmer, a))
		})
	}
}

func TestBroadcast_DistrictScoping(t *testing.T) {
	rec := &recordingNotifier{}
	d, _ := newTestDistributor(t, rec)

	krishna := farmerWithPrefs("Krishna", allOnPrefs(model.SeverityHigh))
	guntur := farmerWithPrefs("Guntur", allOnPrefs(model.SeverityHigh))
	guntur.Phone = "+919876543211"

	a := model.Alert{
		ID:        "DISEASE_1",
		Category:  model.AlertDisease,
		Severity:  model.SeverityHigh,
		District:  "Guntur",
		IssuedAt:  testTime,
		ExpiresAt: testTime.Add(time.Hour),
	}

	d.Broadcast(context.Background(), []model.Alert{a}, []model.Farmer{krishna, guntur})

	require.Len(t, rec.sent, 1)
	assert.Equal(t, "+919876543211", rec.sent[0].Phone)
}

func TestBroadcast_AllDistrictReachesEveryone(t *testing.T) {
	rec := &recordingNotifier{}
	d, _ := newTestDistributor(t, rec)

	krishna := farmerWithPrefs("Krishna", allOnPrefs(model.SeverityHigh))
	guntur := farmerWithPrefs("Guntur", allOnPrefs(model.SeverityHigh))
	guntur.Phone = "+919876543211"

	a := model.Alert{
		ID:        "CYCLONE_1",
		Category:  model.AlertCyclone,
		Severity:  model.SeverityCritical,
		District:  model.DistrictAll,
		IssuedAt:  testTime,
		ExpiresAt: testTime.Add(time.Hour),
	}

	d.Broadcast(context.Background(), []model.Alert{a}, []model.Farmer{krishna, guntur})
	assert.Len(t, rec.sent, 2)
}

func TestBroadcast_OrderIsRecipientsWithinAlert(t *testing.T) {
	rec := &recordingNotifier{}
	d, _ := newTestDistributor(t, rec)

	first := farmerWithPrefs("Krishna", allOnPrefs(model.SeverityMedium, model.SeverityHigh))
	second := farmerWithPrefs("Krishna", allOnPrefs(model.SeverityMedium, model.SeverityHigh))
	second.Phone = "+919876543211"

	alerts := []model.Alert{
		{ID: "A1", Category: model.AlertDisease, Severity: model.SeverityHigh, District: "Krishna", ExpiresAt: testTime.Add(time.Hour)},
		{ID: "A2", Category: model.AlertDisease, Severity: model.SeverityMedium, District: "Krishna", ExpiresAt: testTime.Add(time.Hour)},
	}

	d.Broadcast(context.Background(), alerts, []model.Farmer{first, second})

	require.Len(t, rec.sent, 4)
	assert.Equal(t, "A1", rec.sent[0].AlertID)
	assert.Equal(t, "+919876543210", rec.sent[0].Phone)
	assert.Equal(t, "A1", rec.sent[1].AlertID)
	assert.Equal(t, "+919876543211", rec.sent[1].Phone)
	assert.Equal(t, "A2", rec.sent[2].AlertID)
	assert.Equal(t, "A2", rec.sent[3].AlertID)
}

func TestBroadcast_SkipsExpiredAlerts(t *testing.T) {
	rec := &recordingNotifier{}
	d, clock := newTestDistributor(t, rec)

	farmer := farmerWithPrefs("Krishna", allOnPrefs(model.SeverityHigh))
	a := model.Alert{
		ID:        "DISEASE_1",
		Category:  model.AlertDisease,
		Severity:  model.SeverityHigh,
		District:  "Krishna",
		IssuedAt:  testTime.Add(-2 * time.Hour),
		ExpiresAt: clock.Now(), // expires exactly now: already inactive
	}

	d.Broadcast(context.Background(), []model.Alert{a}, []model.Farmer{farmer})
	assert.Empty(t, rec.sent)
}

func TestActive_FiltersExpired(t *testing.T) {
	d, clock := newTestDistributor(t)

	live := model.Alert{
		ID:        "DISEASE_1",
		IssuedAt:  testTime.Add(-time.Hour),
		ExpiresAt: clock.Now().Add(time.Hour),
	}
	expired := model.Alert{
		ID:        "DISEASE_2",
		IssuedAt:  testTime.Add(-2 * time.Hour),
		ExpiresAt: clock.Now(),
	}

	active := d.Active([]model.Alert{live, expired})
	require.Len(t, active, 1)
	assert.Equal(t, "DISEASE_1", active[0].ID)
}

func TestBroadcast_SendFailureDoesNotAbortRemaining(t *testing.T) {
	rec := &recordingNotifier{failOn: map[string]bool{"+919876543210": true}}
	d, _ := newTestDistributor(t, rec)

	failing := farmerWithPrefs("Krishna", allOnPrefs(model.SeverityHigh))
	healthy := farmerWithPrefs("Krishna", allOnPrefs(model.SeverityHigh))
	healthy.Phone = "+919876543211"

	a := model.Alert{
		ID:        "DISEASE_1",
		Category:  model.AlertDisease,
		Severity:  model.SeverityHigh,
		District:  "Krishna",
		ExpiresAt: testTime.Add(time.Hour),
	}

	d.Broadcast(context.Background(), []model.Alert{a}, []model.Farmer{failing, healthy})

	require.Len(t, rec.sent, 1)
	assert.Equal(t, "+919876543211", rec.sent[0].Phone)
}

func TestSend_SelectsRecipientLanguage(t *testing.T) {
	rec := &recordingNotifier{}
	d, _ := newTestDistributor(t, rec)

	farmer := farmerWithPrefs("Guntur", allOnPrefs(model.SeverityHigh))
	farmer.Language = model.LangTelugu

	a := model.Alert{
		ID:       "DISEASE_1",
		Category: model.AlertDisease,
		Severity: model.SeverityHigh,
		Message:  model.Text{En: "High disease risk", Te: "వ్యాధి ప్రమాదం"},
		District: "Guntur",
	}

	ok := d.Send(context.Background(), farmer, a)
	assert.True(t, ok)
	require.Len(t, rec.sent, 1)
	assert.Equal(t, "వ్యాధి ప్రమాదం", rec.sent[0].Message)
	assert.NotEmpty(t, rec.sent[0].DeliveryID)
}

func TestSend_GatewayFailureReturnsFalse(t *testing.T) {
	rec := &recordingNotifier{failOn: map[string]bool{"+919876543210": true}}
	d, _ := newTestDistributor(t, rec)

	farmer := farmerWithPrefs("Krishna", allOnPrefs(model.SeverityHigh))
	a := model.Alert{ID: "A1", Category: model.AlertDisease, Severity: model.SeverityHigh}

	assert.False(t, d.Send(context.Background(), farmer, a))
}
