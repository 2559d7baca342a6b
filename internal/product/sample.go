package product

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/obrakomarvelouss/gpower/internal/gateway"
)

// SampleCatalog returns rows for seeding the in-memory backend in local runs
// and tests. Later entries are newer.
func SampleCatalog() []gateway.Row {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	items := []struct {
		slug, name, desc, category string
		price                      string
		stock                      int
		featured                   bool
		specs                      map[string]string
	}{
		{"sunmax-400w-panel", "SunMax 400W Monocrystalline Panel", "High-efficiency rooftop panel", "solar-panels", "249.99", 40, true,
			map[string]string{"Output": "400W", "Efficiency": "21.5%", "Warranty": "25 years"}},
		{"flexi-100w-panel", "Flexi 100W Portable Panel", "Foldable panel for camping and RVs", "solar-panels", "129.00", 25, false,
			map[string]string{"Output": "100W", "Weight": "2.1 kg"}},
		{"pathglow-garden-lights", "PathGlow Garden Lights (8 pack)", "Dusk-to-dawn pathway lighting", "solar-lighting", "39.95", 120, true,
			map[string]string{"Runtime": "10 h", "Pack": "8"}},
		{"brightguard-flood-light", "BrightGuard Motion Flood Light", "Motion-activated security light", "solar-lighting", "54.50", 0, false,
			map[string]string{"Lumens": "1500", "Sensor": "PIR"}},
		{"powerhub-1500-generator", "PowerHub 1500 Generator", "Portable power station with pure sine inverter", "solar-generators", "1199.00", 8, true,
			map[string]string{"Capacity": "1512Wh", "Output": "1800W"}},
		{"powerhub-500-generator", "PowerHub 500 Generator", "Compact power station for weekend trips", "solar-generators", "449.00", 15, false,
			map[string]string{"Capacity": "518Wh", "Output": "500W"}},
		{"mppt-40a-controller", "MPPT 40A Charge Controller", "Maximum power point tracking controller", "solar-accessories", "89.99", 60, true,
			map[string]string{"Current": "40A", "Voltage": "12/24V"}},
		{"mc4-extension-cable", "MC4 Extension Cable 10m", "UV-resistant panel extension cable", "solar-accessories", "24.00", 200, false,
			map[string]string{"Length": "10 m", "Gauge": "10 AWG"}},
	}

	rows := make([]gateway.Row, 0, len(items))
	for i, it := range items {
		ts := base.Add(time.Duration(i) * time.Hour)
		rows = append(rows, gateway.Row{
			"slug":             it.slug,
			"name":             it.name,
			"description":      it.desc,
			"full_description": it.desc + ".",
			"price":            decimal.RequireFromString(it.price),
			"category":         it.category,
			"image_url":        "/images/products/" + it.slug + ".jpg",
			"specifications":   it.specs,
			"stock":            it.stock,
			"featured":         it.featured,
			"created_at":       ts,
			"updated_at":       ts,
		})
	}
	return rows
}
