package directory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/Mohanapavani03/agriconnect/pkg/directory"
	"github.com/Mohanapavani03/agriconnect/pkg/model"
)

func TestDemo_KnownFarmers(t *testing.T) {
	d := directory.Demo()
	assert.Equal(t, 2, d.Len())

	ramesh := d.ByPhone("+919876543210")
	require.NotNil(t, ramesh)
	assert.Equal(t, "Ramesh Kumar", ramesh.Name.En)
	assert.Equal(t, "Krishna", ramesh.District.En)
	assert.False(t, ramesh.Authenticated)
	assert.Len(t, ramesh.Fields, 2)

	lakshmi := d.ByPhone("+919876543211")
	require.NotNil(t, lakshmi)
	assert.Equal(t, "Guntur", lakshmi.District.En)
	assert.Equal(t, model.LangTelugu, lakshmi.Language)
}

func TestByPhone_UnknownReturnsNil(t *testing.T) {
	d := directory.Demo()
	assert.Nil(t, d.ByPhone("+910000000000"))
}

func TestByPhone_ReturnsCopy(t *testing.T) {
	d := directory.Demo()

	first := d.ByPhone("+919876543210")
	require.NotNil(t, first)
	first.Fields[0].NDVI = 0.01

	second := d.ByPhone("+919876543210")
	require.NotNil(t, second)
	assert.Equal(t, 0.75, second.Fields[0].NDVI)
}

func TestNew_DropsDuplicatePhones(t *testing.T) {
	d := directory.New([]model.Farmer{
		{ID: "a", Name: model.Text{En: "A"}, Phone: "+911"},
		{ID: "b", Name: model.Text{En: "B"}, Phone: "+911"},
	})

	assert.Equal(t, 1, d.Len())
	got := d.ByPhone("+911")
	require.NotNil(t, got)
	assert.Equal(t, "a", got.ID)
}

func TestLoad_AppendsFileEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farmers.yaml")
	data := []byte(`
farmers:
  - name: Venkata Rao
    name_telugu: వెంకట రావు
    phone: "+919876543212"
    district: Warangal
    language: te
    fields:
      - crop_type: Maize
        size_acres: 4.0
        soil_type: Red Loam
        ndvi: 0.71
        lat: 17.9689
        lon: 79.5941
    preferences:
      severities: [medium, high, critical]
      irrigation_reminders: true
      weather_alerts: false
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	d, err := directory.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())

	venkata := d.ByPhone("+919876543212")
	require.NotNil(t, venkata)
	assert.Equal(t, "Warangal", venkata.District.En)
	assert.NotEmpty(t, venkata.ID)
	assert.NotEmpty(t, venkata.Fields[0].ID)
	assert.False(t, venkata.Preferences.WeatherAlerts)
}

func TestLoad_RejectsUnknownSeverity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farmers.yaml")
	data := []byte(`
farmers:
  - name: Broken
    phone: "+919999999999"
    preferences:
      severities: [urgent]
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err := directory.Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown severity")
}

func TestLoad_RejectsNonPositiveFieldSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farmers.yaml")
	data := []byte(`
farmers:
  - name: Broken
    phone: "+919999999998"
    fields:
      - id: f1
        crop_type: Rice
        size_acres: 0
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err := directory.Load(path)
	assert.Error(t, err)
}
