package analytics

import (
	"slices"
	"strings"

	"lpr-service/internal/model"
)

// Matches reports whether a record satisfies every present constraint of
// the filter. Absent constraints impose no restriction, so an empty
// filter admits everything. The predicate is pure and never fails:
// malformed constraints degrade to "no constraint".
func Matches(rec *model.PlateRecord, f model.RecordFilter) bool {
	if f.Date != nil && !f.Date.Contains(rec.Date) {
		return false
	}

	if len(f.Levels) > 0 && !slices.Contains(f.Levels, model.LevelForConfidence(rec.Confidence)) {
		return false
	}

	if f.Confidence != nil && !matchNumeric(rec, model.FieldConfidence, *f.Confidence) {
		return false
	}
	if f.ProcessingTime != nil && !matchNumeric(rec, model.FieldProcessingTime, *f.ProcessingTime) {
		return false
	}

	if !matchText(rec.StringField(model.FieldPlateNumber), f.PlateNumber) {
		return false
	}
	if !matchText(rec.StringField(model.FieldProvinceCode), f.ProvinceCode) {
		return false
	}
	if !matchText(rec.StringField(model.FieldProvinceName), f.ProvinceName) {
		return false
	}
	if !matchText(rec.StringField(model.FieldVehicleType), f.VehicleType) {
		return false
	}
	if !matchText(rec.StringField(model.FieldPlateType), f.PlateType) {
		return false
	}

	return true
}

// FilterRecords returns the records matching the filter, preserving
// input order.
func FilterRecords(records []model.PlateRecord, f model.RecordFilter) []model.PlateRecord {
	if f.IsZero() {
		return records
	}
	out := make([]model.PlateRecord, 0, len(records))
	for i := range records {
		if Matches(&records[i], f) {
			out = append(out, records[i])
		}
	}
	return out
}

// Missing numeric values compare as zero, matching how the table treats
// records without a processing time.
func matchNumeric(rec *model.PlateRecord, field string, rng model.NumberRange) bool {
	v, _ := rec.NumericField(field)
	return rng.Contains(v)
}

func matchText(value string, c model.TextConstraint) bool {
	if c.IsZero() {
		return true
	}

	if len(c.Any) > 0 {
		return slices.Contains(c.Any, value)
	}

	needle := strings.TrimSpace(strings.ToLower(c.Contains))
	if needle == "" {
		return true
	}

	hay := strings.TrimSpace(strings.ToLower(value))
	if strings.Contains(hay, needle) {
		return true
	}

	// Accented stored value, unaccented query (or vice versa).
	return strings.Contains(NormalizeText(value), NormalizeText(c.Contains))
}
