package analytics

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"lpr-service/internal/model"
)

// A collator carries internal iteration state, so instances cannot be
// shared between goroutines without locking. Pooled to avoid rebuilding
// the collation tables on every comparison.
var collators = sync.Pool{
	New: func() interface{} {
		return collate.New(language.Vietnamese, collate.IgnoreCase)
	},
}

func compareStrings(a, b string) int {
	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	return c.CompareString(a, b)
}

// Compare orders two records by the given key, ascending. Numeric keys
// compare with missing values as zero, the date key by epoch
// millisecond, string keys case-insensitively with Vietnamese collation.
// An unknown key compares everything equal.
func Compare(a, b *model.PlateRecord, key string) int {
	switch key {
	case model.FieldDate:
		return compareInt64(a.Date.UnixMilli(), b.Date.UnixMilli())
	case model.FieldConfidence, model.FieldProcessingTime:
		av, _ := a.NumericField(key)
		bv, _ := b.NumericField(key)
		return compareInt64(int64(av), int64(bv))
	case model.FieldPlateNumber, model.FieldProvinceCode, model.FieldProvinceName,
		model.FieldVehicleType, model.FieldPlateType:
		return compareStrings(a.StringField(key), b.StringField(key))
	default:
		return 0
	}
}

// SortRecords sorts in place. The sort is stable, so an unknown key or
// an empty spec leaves the input order unchanged.
func SortRecords(records []model.PlateRecord, spec model.SortSpec) {
	if spec.Key == "" {
		return
	}

	var cmp func(a, b *model.PlateRecord) int
	switch spec.Key {
	case model.FieldDate:
		cmp = func(a, b *model.PlateRecord) int {
			return compareInt64(a.Date.UnixMilli(), b.Date.UnixMilli())
		}
	case model.FieldConfidence, model.FieldProcessingTime:
		key := spec.Key
		cmp = func(a, b *model.PlateRecord) int {
			av, _ := a.NumericField(key)
			bv, _ := b.NumericField(key)
			return compareInt64(int64(av), int64(bv))
		}
	case model.FieldPlateNumber, model.FieldProvinceCode, model.FieldProvinceName,
		model.FieldVehicleType, model.FieldPlateType:
		key := spec.Key
		c := collators.Get().(*collate.Collator)
		defer collators.Put(c)
		cmp = func(a, b *model.PlateRecord) int {
			return c.CompareString(a.StringField(key), b.StringField(key))
		}
	default:
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		v := cmp(&records[i], &records[j])
		if spec.Desc {
			return v > 0
		}
		return v < 0
	})
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
