package analytics

import (
	"math"
	"sort"
	"time"

	"lpr-service/internal/model"
)

// GroupByDay buckets records into one ChartBucket per calendar day of
// the inclusive date range. When no range is given it spans the earliest
// to latest record date. Every day in range gets a bucket even when
// empty, so the chart series has no gaps. A record whose day falls
// outside the pre-seeded range is dropped silently.
func GroupByDay(records []model.PlateRecord, dateRange *model.DateRange) []model.ChartBucket {
	if len(records) == 0 {
		return []model.ChartBucket{}
	}

	var start, end time.Time
	if dateRange != nil && !dateRange.From.IsZero() && !dateRange.To.IsZero() {
		start, end = dateRange.From, dateRange.To
	} else {
		start, end = records[0].Date, records[0].Date
		for i := range records[1:] {
			d := records[i+1].Date
			if d.Before(start) {
				start = d
			}
			if d.After(end) {
				end = d
			}
		}
	}

	dayDiff := int(math.Ceil(float64(end.Sub(start)) / float64(24*time.Hour)))
	if dayDiff < 0 {
		dayDiff = 0
	}

	// One location for seed keys and record keys, otherwise a record
	// carrying a different zone can normalize to a neighbouring day and
	// fall out of the chart.
	loc := start.Location()

	groups := make(map[int64][]*model.PlateRecord, dayDiff+1)
	for i := 0; i <= dayDiff; i++ {
		groups[startOfDay(start.AddDate(0, 0, i)).UnixMilli()] = nil
	}

	// Records are keyed by their own day, not by the range index.
	for i := range records {
		key := startOfDay(records[i].Date.In(loc)).UnixMilli()
		if _, ok := groups[key]; ok {
			groups[key] = append(groups[key], &records[i])
		}
	}

	buckets := make([]model.ChartBucket, 0, len(groups))
	for ts, items := range groups {
		buckets = append(buckets, buildBucket(ts, items))
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Timestamp < buckets[j].Timestamp })

	return buckets
}

func buildBucket(ts int64, items []*model.PlateRecord) model.ChartBucket {
	bucket := model.ChartBucket{Timestamp: ts, Count: len(items)}
	if len(items) == 0 {
		return bucket
	}

	var confidenceSum, processingSum int
	for _, item := range items {
		switch model.LevelForConfidence(item.Confidence) {
		case model.LevelSuccess:
			bucket.Success++
		case model.LevelWarning:
			bucket.Warning++
		default:
			bucket.Error++
		}

		confidenceSum += item.Confidence
		if v, ok := item.ProcessingTimeValue(); ok {
			processingSum += v
		}
	}

	bucket.AvgConfidence = int(math.Round(float64(confidenceSum) / float64(len(items))))
	bucket.AvgProcessingTime = int(math.Round(float64(processingSum) / float64(len(items))))
	return bucket
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
