// Package directory holds the set of registered farmers: the recipients of
// alert broadcasts and the identities the login flow matches phone numbers
// against. The built-in demo set stands in for a real identity backend.
package directory

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Mohanapavani03/agriconnect/pkg/model"
)

// Directory is a read-only lookup of registered farmers.
type Directory struct {
	farmers []model.Farmer
	byPhone map[string]int
}

// New creates a directory from the given farmers. Later entries with a
// duplicate phone number are dropped.
func New(farmers []model.Farmer) *Directory {
	d := &Directory{byPhone: make(map[string]int, len(farmers))}
	for _, f := range farmers {
		if _, ok := d.byPhone[f.Phone]; ok {
			continue
		}
		d.byPhone[f.Phone] = len(d.farmers)
		d.farmers = append(d.farmers, f)
	}
	return d
}

// Demo returns a directory preloaded with the built-in demo farmers.
func Demo() *Directory {
	return New(demoFarmers())
}

// ByPhone returns a copy of the farmer registered under the given phone
// number, or nil if none is.
func (d *Directory) ByPhone(phone string) *model.Farmer {
	i, ok := d.byPhone[phone]
	if !ok {
		return nil
	}
	f := d.farmers[i].Clone()
	return &f
}

// All returns copies of every registered farmer.
func (d *Directory) All() []model.Farmer {
	out := make([]model.Farmer, len(d.farmers))
	for i, f := range d.farmers {
		out[i] = f.Clone()
	}
	return out
}

// Len returns the number of registered farmers.
func (d *Directory) Len() int {
	return len(d.farmers)
}

// fileFarmer is the YAML representation of a farmer record.
type fileFarmer struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	NameTelugu string `yaml:"name_telugu"`
	Phone      string `yaml:"phone"`
	District   string `yaml:"district"`
	DistrictTe string `yaml:"district_telugu"`
	Language   string `yaml:"language"`
	Fields     []struct {
		ID             string    `yaml:"id"`
		CropType       string    `yaml:"crop_type"`
		CropTypeTelugu string    `yaml:"crop_type_telugu"`
		SizeAcres      float64   `yaml:"size_acres"`
		SoilType       string    `yaml:"soil_type"`
		LastIrrigation time.Time `yaml:"last_irrigation"`
		NDVI           float64   `yaml:"ndvi"`
		Lat            float64   `yaml:"lat"`
		Lon            float64   `yaml:"lon"`
	} `yaml:"fields"`
	Preferences struct {
		Severities          []string `yaml:"severities"`
		IrrigationReminders bool     `yaml:"irrigation_reminders"`
		WeatherAlerts       bool     `yaml:"weather_alerts"`
	} `yaml:"preferences"`
}

type fileRoot struct {
	Farmers []fileFarmer `yaml:"farmers"`
}

// Load reads farmer records from a YAML file and returns a directory holding
// the built-in demo farmers plus the file's entries.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory file: %w", err)
	}

	var root fileRoot
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse directory file: %w", err)
	}

	farmers := demoFarmers()
	for i, ff := range root.Farmers {
		f, err := ff.toModel()
		if err != nil {
			return nil, fmt.Errorf("directory entry %d: %w", i, err)
		}
		farmers = append(farmers, f)
	}
	return New(farmers), nil
}

func (ff fileFarmer) toModel() (model.Farmer, error) {
	if ff.Phone == "" {
		return model.Farmer{}, fmt.Errorf("missing phone")
	}
	if ff.Name == "" {
		return model.Farmer{}, fmt.Errorf("missing name")
	}

	lang := model.Language(ff.Language)
	if lang != model.LangEnglish && lang != model.LangTelugu {
		lang = model.LangEnglish
	}

	id := ff.ID
	if id == "" {
		id = uuid.New().String()
	}

	f := model.Farmer{
		ID:       id,
		Name:     model.Text{En: ff.Name, Te: ff.NameTelugu},
		Phone:    ff.Phone,
		District: model.Text{En: ff.District, Te: ff.DistrictTe},
		Language: lang,
		Preferences: model.Preferences{
			IrrigationReminders: ff.Preferences.IrrigationReminders,
			WeatherAlerts:       ff.Preferences.WeatherAlerts,
		},
	}

	for _, s := range ff.Preferences.Severities {
		sev := model.Severity(s)
		if sev.Rank() < 0 {
			return model.Farmer{}, fmt.Errorf("unknown severity %q", s)
		}
		f.Preferences.Severities = append(f.Preferences.Severities, sev)
	}

	for _, fld := range ff.Fields {
		if fld.SizeAcres <= 0 {
			return model.Farmer{}, fmt.Errorf("field %q: size must be positive", fld.ID)
		}
		fieldID := fld.ID
		if fieldID == "" {
			fieldID = uuid.New().String()
		}
		f.Fields = append(f.Fields, model.Field{
			ID:             fieldID,
			CropType:       model.Text{En: fld.CropType, Te: fld.CropTypeTelugu},
			SizeAcres:      fld.SizeAcres,
			SoilType:       fld.SoilType,
			LastIrrigation: fld.LastIrrigation,
			NDVI:           fld.NDVI,
			Coordinates:    model.Coordinates{Lat: fld.Lat, Lon: fld.Lon},
		})
	}

	return f, nil
}

// demoFarmers is the built-in recipient set, a placeholder for a real
// identity backend.
func demoFarmers() []model.Farmer {
	now := time.Now().UTC()
	return []model.Farmer{
		{
			ID:       "1",
			Name:     model.Text{En: "Ramesh Kumar", Te: "రమేష్ కుమార్"},
			Phone:    "+919876543210",
			District: model.Text{En: "Krishna", Te: "కృష్ణా"},
			Language: model.LangEnglish,
			Fields: []model.Field{
				{
					ID:             "field_1",
					CropType:       model.Text{En: "Cotton", Te: "పత్తి"},
					SizeAcres:      5.2,
					SoilType:       "Black Cotton",
					LastIrrigation: now.Add(-2 * 24 * time.Hour),
					NDVI:           0.75,
					Coordinates:    model.Coordinates{Lat: 16.2160, Lon: 81.1496},
				},
				{
					ID:             "field_2",
					CropType:       model.Text{En: "Chili", Te: "మిర్చి"},
					SizeAcres:      2.8,
					SoilType:       "Red Sandy",
					LastIrrigation: now.Add(-24 * time.Hour),
					NDVI:           0.68,
					Coordinates:    model.Coordinates{Lat: 16.2200, Lon: 81.1500},
				},
			},
			Preferences: model.Preferences{
				Severities:          []model.Severity{model.SeverityHigh, model.SeverityCritical},
				IrrigationReminders: true,
				WeatherAlerts:       true,
			},
		},
		{
			ID:       "2",
			Name:     model.Text{En: "Lakshmi Devi", Te: "లక్ష్మీ దేవి"},
			Phone:    "+919876543211",
			District: model.Text{En: "Guntur", Te: "గుంటూరు"},
			Language: model.LangTelugu,
			Fields: []model.Field{
				{
					ID:             "field_3",
					CropType:       model.Text{En: "Rice", Te: "వరి"},
					SizeAcres:      3.5,
					SoilType:       "Alluvial",
					LastIrrigation: now.Add(-3 * 24 * time.Hour),
					NDVI:           0.82,
					Coordinates:    model.Coordinates{Lat: 16.3067, Lon: 80.4365},
				},
			},
			Preferences: model.Preferences{
				Severities:          []model.Severity{model.SeverityMedium, model.SeverityHigh, model.SeverityCritical},
				IrrigationReminders: true,
				WeatherAlerts:       true,
			},
		},
	}
}
