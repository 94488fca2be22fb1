package classification

import (
	"github.com/shopspring/decimal"

	"seafood-backend/internal/models"
)

type ItemSummary struct {
	ID                    uint            `json:"id"`
	SpeciesID             *uint           `json:"species_id"`
	SpeciesName           string          `json:"species_name"`
	Weight                decimal.Decimal `json:"weight"`
	PlateCount            int             `json:"plate_count"`
	AverageWeightPerPlate decimal.Decimal `json:"average_weight_per_plate"`
}

// Summary is the read model with the derived figures.
type Summary struct {
	Classification *models.Classification `json:"classification"`
	TotalWeight    decimal.Decimal        `json:"total_weight"`
	TotalPlates    int                    `json:"total_plates"`
	Duration       *string                `json:"duration"`
	TunnelDuration *string                `json:"tunnel_duration"`
	Items          []ItemSummary          `json:"items"`
}

func Summarize(c *models.Classification) Summary {
	sum := Summary{
		Classification: c,
		TotalWeight:    c.TotalWeight().Round(2),
		TotalPlates:    c.TotalPlates(),
		Duration:       models.FormatDuration(c.Duration()),
		TunnelDuration: models.FormatDuration(c.TunnelDuration()),
		Items:          make([]ItemSummary, 0, len(c.Items)),
	}
	for i := range c.Items {
		it := &c.Items[i]
		name := it.SpeciesTag
		if it.Species != nil {
			name = it.Species.Name
		}
		sum.Items = append(sum.Items, ItemSummary{
			ID:                    it.ID,
			SpeciesID:             it.SpeciesID,
			SpeciesName:           name,
			Weight:                it.Weight,
			PlateCount:            it.PlateCount,
			AverageWeightPerPlate: it.AverageWeightPerPlate(),
		})
	}
	return sum
}
