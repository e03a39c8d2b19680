package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpr-service/internal/model"
)

func TestComputeFacets(t *testing.T) {
	t.Parallel()

	jan15 := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	t.Run("categorical counts exclude empty values", func(t *testing.T) {
		records := []model.PlateRecord{
			{Date: jan15, Confidence: 95, ProvinceCode: "30"},
			{Date: jan15, Confidence: 80, ProvinceCode: "30"},
			{Date: jan15, Confidence: 50, ProvinceCode: "43"},
			{Date: jan15, Confidence: 60},
		}

		facet := ComputeFacets(records)[model.FieldProvinceCode]

		require.Len(t, facet.Rows, 2)
		assert.Equal(t, model.FacetRow{Value: "30", Total: 2}, facet.Rows[0])
		assert.Equal(t, model.FacetRow{Value: "43", Total: 1}, facet.Rows[1])
	})

	t.Run("row totals sum to records carrying a value", func(t *testing.T) {
		records := []model.PlateRecord{
			{Date: jan15, Confidence: 95, VehicleType: "car"},
			{Date: jan15, Confidence: 80, VehicleType: "truck"},
			{Date: jan15, Confidence: 50},
		}

		facet := ComputeFacets(records)[model.FieldVehicleType]

		sum := 0
		for _, row := range facet.Rows {
			sum += row.Total
		}
		assert.Equal(t, 2, sum)
	})

	t.Run("numeric facet buckets by observed range", func(t *testing.T) {
		records := []model.PlateRecord{
			{Date: jan15, Confidence: 50},
			{Date: jan15, Confidence: 80},
			{Date: jan15, Confidence: 95},
		}

		facet := ComputeFacets(records)[model.FieldConfidence]

		require.NotNil(t, facet.Min)
		require.NotNil(t, facet.Max)
		assert.Equal(t, 50, *facet.Min)
		assert.Equal(t, 95, *facet.Max)

		// width = ceil((95-50)/10) = 5
		require.Len(t, facet.Rows, 3)
		assert.Equal(t, model.FacetRow{Value: "50-54", Total: 1}, facet.Rows[0])
		assert.Equal(t, model.FacetRow{Value: "80-84", Total: 1}, facet.Rows[1])
		assert.Equal(t, model.FacetRow{Value: "95-99", Total: 1}, facet.Rows[2])
	})

	t.Run("identical values collapse to one bucket of width one", func(t *testing.T) {
		records := []model.PlateRecord{
			{Date: jan15, Confidence: 70},
			{Date: jan15, Confidence: 70},
		}

		facet := ComputeFacets(records)[model.FieldConfidence]

		require.Len(t, facet.Rows, 1)
		assert.Equal(t, model.FacetRow{Value: "70-70", Total: 2}, facet.Rows[0])
	})

	t.Run("empty input yields default numeric bounds", func(t *testing.T) {
		facets := ComputeFacets(nil)

		confidence := facets[model.FieldConfidence]
		require.NotNil(t, confidence.Min)
		require.NotNil(t, confidence.Max)
		assert.Equal(t, 0, *confidence.Min)
		assert.Equal(t, 100, *confidence.Max)
		assert.Empty(t, confidence.Rows)

		province := facets[model.FieldProvinceCode]
		assert.Empty(t, province.Rows)
	})
}
