package model

import "time"

// DateRange is an inclusive [From, To] window. A zero boundary leaves
// that side open.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls inside the range, honouring open
// boundaries.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// NumberRange is an inclusive numeric [Min, Max] constraint. A nil
// boundary leaves that side open.
type NumberRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

func (r NumberRange) Contains(v int) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// TextConstraint restricts a string field either to an exact set of
// values (facet selection) or to an accent-insensitive substring
// (search box). When Any is non-empty it wins; otherwise Contains is a
// substring query. An empty constraint matches everything.
type TextConstraint struct {
	Any      []string `json:"any,omitempty"`
	Contains string   `json:"contains,omitempty"`
}

func (c TextConstraint) IsZero() bool {
	return len(c.Any) == 0 && c.Contains == ""
}

// RecordFilter is a conjunction of optional per-field constraints. A nil
// or zero constraint imposes no restriction on its field.
type RecordFilter struct {
	Date           *DateRange   `json:"date,omitempty"`
	Levels         []Level      `json:"levels,omitempty"`
	Confidence     *NumberRange `json:"confidence,omitempty"`
	ProcessingTime *NumberRange `json:"processingTime,omitempty"`

	PlateNumber  TextConstraint `json:"plateNumber,omitempty"`
	ProvinceCode TextConstraint `json:"provinceCode,omitempty"`
	ProvinceName TextConstraint `json:"provinceName,omitempty"`
	VehicleType  TextConstraint `json:"vehicleType,omitempty"`
	PlateType    TextConstraint `json:"plateType,omitempty"`
}

func (f RecordFilter) IsZero() bool {
	return f.Date == nil &&
		len(f.Levels) == 0 &&
		f.Confidence == nil &&
		f.ProcessingTime == nil &&
		f.PlateNumber.IsZero() &&
		f.ProvinceCode.IsZero() &&
		f.ProvinceName.IsZero() &&
		f.VehicleType.IsZero() &&
		f.PlateType.IsZero()
}

// SortSpec names the sort column and direction. An empty Key leaves the
// input order untouched.
type SortSpec struct {
	Key  string `json:"id"`
	Desc bool   `json:"desc"`
}

// DefaultSort is newest-first by capture date, used whenever the client
// supplies no sort or an unparseable one.
var DefaultSort = SortSpec{Key: FieldDate, Desc: true}
