package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpr-service/internal/model"
)

func TestGroupByDay(t *testing.T) {
	t.Parallel()

	day := func(d int) time.Time {
		return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
	}
	at := func(d, hour int) time.Time {
		return time.Date(2026, 1, d, hour, 0, 0, 0, time.UTC)
	}

	t.Run("empty input yields no buckets", func(t *testing.T) {
		buckets := GroupByDay(nil, nil)
		assert.Empty(t, buckets)

		buckets = GroupByDay(nil, &model.DateRange{From: day(1), To: day(3)})
		assert.Empty(t, buckets)
	})

	t.Run("three days three levels", func(t *testing.T) {
		records := []model.PlateRecord{
			{Date: at(1, 10), Confidence: 95},
			{Date: at(2, 10), Confidence: 80},
			{Date: at(3, 10), Confidence: 50},
		}

		buckets := GroupByDay(records, &model.DateRange{From: day(1), To: day(3)})

		require.Len(t, buckets, 3)
		for i, bucket := range buckets {
			assert.Equal(t, day(i+1).UnixMilli(), bucket.Timestamp)
			assert.Equal(t, 1, bucket.Count)
		}
		assert.Equal(t, 1, buckets[0].Success)
		assert.Equal(t, 1, buckets[1].Warning)
		assert.Equal(t, 1, buckets[2].Error)
		assert.Equal(t, 95, buckets[0].AvgConfidence)
	})

	t.Run("every day in range gets a bucket", func(t *testing.T) {
		records := []model.PlateRecord{
			{Date: at(1, 8), Confidence: 90},
		}

		buckets := GroupByDay(records, &model.DateRange{From: day(1), To: day(5)})

		require.Len(t, buckets, 5)
		for i := 1; i < len(buckets); i++ {
			assert.Greater(t, buckets[i].Timestamp, buckets[i-1].Timestamp)
			assert.Equal(t, 0, buckets[i].Count)
		}
		assert.Equal(t, 1, buckets[0].Count)
	})

	t.Run("range derived from records when absent", func(t *testing.T) {
		records := []model.PlateRecord{
			{Date: at(3, 9), Confidence: 90},
			{Date: at(1, 9), Confidence: 90},
		}

		buckets := GroupByDay(records, nil)

		require.Len(t, buckets, 3)
		assert.Equal(t, day(1).UnixMilli(), buckets[0].Timestamp)
		assert.Equal(t, day(3).UnixMilli(), buckets[2].Timestamp)
	})

	t.Run("record outside the range is dropped", func(t *testing.T) {
		records := []model.PlateRecord{
			{Date: at(1, 9), Confidence: 90},
			{Date: at(10, 9), Confidence: 90},
		}

		buckets := GroupByDay(records, &model.DateRange{From: day(1), To: day(2)})

		require.Len(t, buckets, 2)
		assert.Equal(t, 1, buckets[0].Count)
		assert.Equal(t, 0, buckets[1].Count)
	})

	t.Run("averages round to nearest integer", func(t *testing.T) {
		ms1, ms2 := 100, 151
		records := []model.PlateRecord{
			{Date: at(1, 9), Confidence: 90, ProcessingTime: &ms1},
			{Date: at(1, 10), Confidence: 91, ProcessingTime: &ms2},
		}

		buckets := GroupByDay(records, &model.DateRange{From: day(1), To: day(1)})

		require.Len(t, buckets, 1)
		assert.Equal(t, 91, buckets[0].AvgConfidence)
		assert.Equal(t, 126, buckets[0].AvgProcessingTime)
	})

	t.Run("record in another zone keys by the range location", func(t *testing.T) {
		// 00:30 Jan 2 at +07:00 is 23:30 Jan 1 in UTC.
		ict := time.FixedZone("ICT", 7*3600)
		records := []model.PlateRecord{
			{Date: time.Date(2026, 1, 2, 0, 30, 0, 0, ict), Confidence: 90},
		}

		buckets := GroupByDay(records, &model.DateRange{From: day(1), To: day(1)})

		require.Len(t, buckets, 1)
		assert.Equal(t, 1, buckets[0].Count)
	})

	t.Run("single day range yields one bucket", func(t *testing.T) {
		records := []model.PlateRecord{{Date: at(1, 9), Confidence: 90}}

		buckets := GroupByDay(records, &model.DateRange{From: day(1), To: day(1)})

		require.Len(t, buckets, 1)
		assert.Equal(t, day(1).UnixMilli(), buckets[0].Timestamp)
	})
}
