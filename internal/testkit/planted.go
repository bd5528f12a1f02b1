// Package testkit builds synthetic tables with a known exceptional subgroup
// and an in-memory run store for exercising the service and API layers.
package testkit

import (
	"math/rand"

	"gosubgroup/adapters/excel"
	"gosubgroup/domain/dataset"
)

// PlantedConfig configures the planted-subgroup generator. Rows inside the
// planted region (region == PlantedRegion and age > PlantedAge) are positive
// with probability InsideRate, all others with BaseRate.
type PlantedConfig struct {
	Rows          int     `json:"rows"`
	BaseRate      float64 `json:"base_rate"`
	InsideRate    float64 `json:"inside_rate"`
	PlantedRegion string  `json:"planted_region"`
	PlantedAge    float64 `json:"planted_age"`
	MissingRate   float64 `json:"missing_rate"`
	Seed          int64   `json:"seed"`
}

// Regions are the categorical values of the region column
var Regions = []string{"north", "south", "east", "west"}

// TargetColumn names the generated binary target
const TargetColumn = "churn"

// DefaultPlantedConfig returns a configuration whose planted subgroup is
// clearly the best WRAcc subgroup
func DefaultPlantedConfig() PlantedConfig {
	return PlantedConfig{
		Rows:          400,
		BaseRate:      0.05,
		InsideRate:    0.9,
		PlantedRegion: "south",
		PlantedAge:    50,
		Seed:          42,
	}
}

// Planted generates the table: age (float), income (int), region
// (categorical), member (bool) and churn (yes/no).
func Planted(cfg PlantedConfig) (*dataset.Table, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))

	age := make([]float64, cfg.Rows)
	income := make([]int64, cfg.Rows)
	region := make([]string, cfg.Rows)
	member := make([]bool, cfg.Rows)
	churn := make([]string, cfg.Rows)
	var missing []int

	for i := 0; i < cfg.Rows; i++ {
		age[i] = float64(20 + rng.Intn(51))
		income[i] = int64(20000 + rng.Intn(80000))
		region[i] = Regions[rng.Intn(len(Regions))]
		member[i] = rng.Float64() < 0.5

		rate := cfg.BaseRate
		if region[i] == cfg.PlantedRegion && age[i] > cfg.PlantedAge {
			rate = cfg.InsideRate
		}
		churn[i] = "no"
		if rng.Float64() < rate {
			churn[i] = "yes"
		}
		if cfg.MissingRate > 0 && rng.Float64() < cfg.MissingRate {
			missing = append(missing, i)
		}
	}

	return dataset.NewTable("planted",
		dataset.NewFloatColumn("age", age),
		dataset.NewIntColumn("income", income).WithMissing(missing...),
		dataset.NewCategoricalColumn("region", region),
		dataset.NewBoolColumn("member", member),
		dataset.NewCategoricalColumn(TargetColumn, churn),
	)
}

// WriteCSV writes the table with a header row. Missing cells are empty.
func WriteCSV(path string, table *dataset.Table) error {
	return excel.WriteTable(path, table)
}
