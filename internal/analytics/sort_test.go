package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lpr-service/internal/model"
)

func TestSortRecords(t *testing.T) {
	t.Parallel()

	day := func(d int) time.Time {
		return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
	}

	build := func() []model.PlateRecord {
		return []model.PlateRecord{
			{PlateNumber: "43B-11111", Date: day(2), Confidence: 80},
			{PlateNumber: "30A-22222", Date: day(1), Confidence: 95},
			{PlateNumber: "51C-33333", Date: day(3), Confidence: 50},
		}
	}

	t.Run("date descending", func(t *testing.T) {
		records := build()
		SortRecords(records, model.SortSpec{Key: model.FieldDate, Desc: true})

		assert.Equal(t, day(3), records[0].Date)
		assert.Equal(t, day(1), records[2].Date)
	})

	t.Run("confidence ascending", func(t *testing.T) {
		records := build()
		SortRecords(records, model.SortSpec{Key: model.FieldConfidence})

		assert.Equal(t, []int{50, 80, 95}, []int{
			records[0].Confidence, records[1].Confidence, records[2].Confidence,
		})
	})

	t.Run("missing processing time sorts as zero", func(t *testing.T) {
		ms := 120
		records := []model.PlateRecord{
			{PlateNumber: "a", ProcessingTime: &ms},
			{PlateNumber: "b"},
		}
		SortRecords(records, model.SortSpec{Key: model.FieldProcessingTime})

		assert.Equal(t, "b", records[0].PlateNumber)
	})

	t.Run("string key compares case insensitively", func(t *testing.T) {
		records := []model.PlateRecord{
			{PlateNumber: "b-1"},
			{PlateNumber: "A-2"},
		}
		SortRecords(records, model.SortSpec{Key: model.FieldPlateNumber})

		assert.Equal(t, "A-2", records[0].PlateNumber)
	})

	t.Run("accented province names collate correctly", func(t *testing.T) {
		records := []model.PlateRecord{
			{ProvinceName: "Hà Nội"},
			{ProvinceName: "Đà Nẵng"},
		}

		// Repeated sorts exercise collator reuse.
		for i := 0; i < 3; i++ {
			SortRecords(records, model.SortSpec{Key: model.FieldProvinceName})
			assert.Equal(t, "Đà Nẵng", records[0].ProvinceName)
			assert.Equal(t, "Hà Nội", records[1].ProvinceName)
		}
	})

	t.Run("unknown key preserves input order", func(t *testing.T) {
		records := build()
		SortRecords(records, model.SortSpec{Key: "bogus"})

		assert.Equal(t, "43B-11111", records[0].PlateNumber)
		assert.Equal(t, "30A-22222", records[1].PlateNumber)
		assert.Equal(t, "51C-33333", records[2].PlateNumber)
	})

	t.Run("empty spec preserves input order", func(t *testing.T) {
		records := build()
		SortRecords(records, model.SortSpec{})

		assert.Equal(t, "43B-11111", records[0].PlateNumber)
	})
}

func TestCompare(t *testing.T) {
	t.Parallel()

	a := model.PlateRecord{Confidence: 50}
	b := model.PlateRecord{Confidence: 80}

	assert.Equal(t, -1, Compare(&a, &b, model.FieldConfidence))
	assert.Equal(t, 1, Compare(&b, &a, model.FieldConfidence))
	assert.Equal(t, 0, Compare(&a, &b, "bogus"))
}
