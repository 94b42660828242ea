package model

import "time"

// Language selects which side of a bilingual Text is shown or sent.
type Language string

const (
	LangEnglish Language = "en"
	LangTelugu  Language = "te"
)

// Text is a bilingual string pair. Every user-facing message carries both
// languages; the recipient's Language preference picks one at delivery time.
type Text struct {
	En string `json:"en"`
	Te string `json:"te"`
}

// In returns the string for the given language, falling back to English.
func (t Text) In(lang Language) string {
	if lang == LangTelugu && t.Te != "" {
		return t.Te
	}
	return t.En
}

// Severity is the alert severity scale, totally ordered low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the position of s in the severity order, or -1 for unknown values.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}

// AlertCategory classifies what an alert is about.
type AlertCategory string

const (
	AlertCyclone  AlertCategory = "cyclone"
	AlertRainfall AlertCategory = "rainfall"
	AlertDrought  AlertCategory = "drought"
	AlertDisease  AlertCategory = "disease"
)

// DistrictAll is the sentinel district targeting every recipient.
const DistrictAll = "All"

// Alert is a single advisory produced from a conditions snapshot. Alerts are
// immutable once created and transient: each generation pass builds a fresh
// list, delivery consumes it, nothing is persisted.
type Alert struct {
	ID        string        `json:"id"`
	Category  AlertCategory `json:"category"`
	Severity  Severity      `json:"severity"`
	Message   Text          `json:"message"`
	District  string        `json:"district"` // literal district name or DistrictAll
	IssuedAt  time.Time     `json:"issued_at"`
	ExpiresAt time.Time     `json:"expires_at"` // strictly after IssuedAt
}

// ActiveAt reports whether the alert is still deliverable at the given time.
// Expiry is strict: an alert whose ExpiresAt equals now is already inactive.
func (a Alert) ActiveAt(now time.Time) bool {
	return now.Before(a.ExpiresAt)
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Field is one cultivated plot belonging to a farmer.
type Field struct {
	ID             string      `json:"id"`
	CropType       Text        `json:"crop_type"`
	SizeAcres      float64     `json:"size_acres"`
	SoilType       string      `json:"soil_type"`
	LastIrrigation time.Time   `json:"last_irrigation"`
	NDVI           float64     `json:"ndvi"` // vegetation index in [0,1]
	Coordinates    Coordinates `json:"coordinates"`
}

// Preferences controls which alerts a farmer wants delivered.
type Preferences struct {
	// Severities the farmer subscribed to. Critical alerts override this set
	// (subject to the category toggles below).
	Severities []Severity `json:"severities"`

	IrrigationReminders bool `json:"irrigation_reminders"`
	WeatherAlerts       bool `json:"weather_alerts"`
}

// Subscribed reports whether the given severity is in the subscription set.
func (p Preferences) Subscribed(s Severity) bool {
	for _, sub := range p.Severities {
		if sub == s {
			return true
		}
	}
	return false
}

// Farmer is the profile of one registered recipient. The phone number doubles
// as the login key. Authenticated is true only on profiles returned by a
// successful login.
type Farmer struct {
	ID            string      `json:"id"`
	Name          Text        `json:"name"`
	Phone         string      `json:"phone"`
	District      Text        `json:"district"`
	Language      Language    `json:"language"`
	Authenticated bool        `json:"authenticated"`
	Fields        []Field     `json:"fields"`
	Preferences   Preferences `json:"preferences"`
}

// Clone returns a deep copy so callers can hand out profiles without sharing
// the Fields slice.
func (f Farmer) Clone() Farmer {
	out := f
	out.Fields = make([]Field, len(f.Fields))
	copy(out.Fields, f.Fields)
	out.Preferences.Severities = make([]Severity, len(f.Preferences.Severities))
	copy(out.Preferences.Severities, f.Preferences.Severities)
	return out
}

// CycloneConditions describes an approaching cyclone within a conditions snapshot.
type CycloneConditions struct {
	Name      string  `json:"name"`
	WindSpeed float64 `json:"wind_speed"` // km/h
	Pressure  float64 `json:"pressure,omitempty"`
	Category  int     `json:"category,omitempty"`
}

// Conditions is a snapshot of the environmental inputs the distributor
// evaluates. Zero values mean "not present": a nil Cyclone and a DiseaseRisk
// of 0 trigger none of the conditional rules.
type Conditions struct {
	Cyclone     *CycloneConditions `json:"cyclone,omitempty"`
	DiseaseRisk float64            `json:"disease_risk,omitempty"` // percentage 0-100
	CropType    string             `json:"crop_type,omitempty"`
	District    string             `json:"district,omitempty"`
}

// NDVIReading is one district's vegetation index sample.
type NDVIReading struct {
	District    string      `json:"district"`
	NDVI        float64     `json:"ndvi"`
	Status      string      `json:"status"`
	Color       string      `json:"color"`
	Coordinates Coordinates `json:"coordinates"`
	Timestamp   time.Time   `json:"timestamp"`
}

// RainfallPoint is one forecast window in a rainfall series.
type RainfallPoint struct {
	Time        time.Time   `json:"time"`
	RainfallMM  float64     `json:"rainfall_mm"`
	Intensity   float64     `json:"intensity"`
	Coordinates Coordinates `json:"coordinates"`
}

// CyclonePathPoint is one forecast position along a cyclone track.
type CyclonePathPoint struct {
	Time        time.Time   `json:"time"`
	Coordinates Coordinates `json:"coordinates"`
	WindSpeed   float64     `json:"wind_speed"`
}

// Cyclone is a tracked storm system with its forecast path.
type Cyclone struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Coordinates Coordinates        `json:"coordinates"`
	WindSpeed   float64            `json:"wind_speed"`
	Pressure    float64            `json:"pressure"`
	Category    int                `json:"category"`
	Path        []CyclonePathPoint `json:"path"`
}

// TrendPoint is one month of historical vegetation and climate data.
type TrendPoint struct {
	Month       time.Time `json:"month"`
	NDVI        float64   `json:"ndvi"`
	RainfallMM  float64   `json:"rainfall_mm"`
	Temperature float64   `json:"temperature_c"`
}
