package analytics

import (
	"fmt"
	"sort"

	"lpr-service/internal/model"
)

// ComputeFacets builds per-field value counts for the categorical fields
// and min/max histograms for the numeric ones, over the given result
// set. Bucket boundaries depend only on the observed min and max, so the
// output is reproducible for a given input.
func ComputeFacets(records []model.PlateRecord) map[string]model.Facet {
	facets := make(map[string]model.Facet, len(model.CategoricalFields)+len(model.NumericFields))

	for _, field := range model.CategoricalFields {
		facets[field] = categoricalFacet(records, field)
	}
	for _, field := range model.NumericFields {
		facets[field] = numericFacet(records, field)
	}

	return facets
}

func categoricalFacet(records []model.PlateRecord, field string) model.Facet {
	counts := make(map[string]int)
	for i := range records {
		value := records[i].StringField(field)
		if value == "" {
			// Records without a value still count toward the page
			// total, they just contribute no facet row.
			continue
		}
		counts[value]++
	}

	rows := make([]model.FacetRow, 0, len(counts))
	for value, total := range counts {
		rows = append(rows, model.FacetRow{Value: value, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Value < rows[j].Value
	})

	return model.Facet{Rows: rows}
}

func numericFacet(records []model.PlateRecord, field string) model.Facet {
	var values []int
	for i := range records {
		if v, ok := records[i].NumericField(field); ok {
			values = append(values, v)
		}
	}

	if len(values) == 0 {
		defMin, defMax := 0, 100
		return model.Facet{Min: &defMin, Max: &defMax, Rows: []model.FacetRow{}}
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	// At most 10 equal-width buckets, never narrower than 1.
	width := (max - min + 9) / 10
	if width < 1 {
		width = 1
	}

	counts := make(map[int]int)
	for _, v := range values {
		counts[(v/width)*width]++
	}

	floors := make([]int, 0, len(counts))
	for floor := range counts {
		floors = append(floors, floor)
	}
	sort.Ints(floors)

	rows := make([]model.FacetRow, 0, len(floors))
	for _, floor := range floors {
		rows = append(rows, model.FacetRow{
			Value: fmt.Sprintf("%d-%d", floor, floor+width-1),
			Total: counts[floor],
		})
	}

	return model.Facet{Min: &min, Max: &max, Rows: rows}
}
