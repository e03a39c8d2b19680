package model

import (
	"time"

	"gorm.io/datatypes"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

const (
	SuccessThreshold = 90
	WarningThreshold = 75
)

// LevelForConfidence derives the severity level from a 0-100 confidence
// value. The level is never stored, it is always recomputed from the
// confidence so the two cannot drift apart.
func LevelForConfidence(confidence int) Level {
	switch {
	case confidence >= SuccessThreshold:
		return LevelSuccess
	case confidence >= WarningThreshold:
		return LevelWarning
	default:
		return LevelError
	}
}

// PlateRecord is one persisted recognition event as exposed over the API
// and consumed by the analytics core.
type PlateRecord struct {
	UUID  string `json:"uuid"`
	Level Level  `json:"level"`

	Date        time.Time `json:"date"`
	PlateNumber string    `json:"plateNumber"`
	Confidence  int       `json:"confidence"`

	ConfidenceOCR  *int `json:"confidenceOcr,omitempty"`
	ProcessingTime *int `json:"processingTime,omitempty"`

	ProvinceCode       string `json:"provinceCode,omitempty"`
	ProvinceName       string `json:"provinceName,omitempty"`
	VehicleType        string `json:"vehicleType,omitempty"`
	PlateType          string `json:"plateType,omitempty"`
	PlateFormat        string `json:"plateFormat,omitempty"`
	PlateSerial        string `json:"plateSerial,omitempty"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`

	NormalizedPlate string `json:"normalizedPlate,omitempty"`
	OriginalPlate   string `json:"originalPlate,omitempty"`
	DetectedColor   string `json:"detectedColor,omitempty"`
	OCREngine       string `json:"ocrEngine,omitempty"`

	ImageURL          string `json:"imageUrl,omitempty"`
	ProcessedImageURL string `json:"processedImageUrl,omitempty"`
	ImageSource       string `json:"imageSource,omitempty"`

	BoundingBox   datatypes.JSON `json:"boundingBox,omitempty"`
	PlateTypeInfo datatypes.JSON `json:"plateTypeInfo,omitempty"`

	IsValidFormat     *bool  `json:"isValidFormat,omitempty"`
	FormatDescription string `json:"formatDescription,omitempty"`

	HasViolation         bool       `json:"hasViolation"`
	ViolationTypes       []string   `json:"violationTypes,omitempty"`
	ViolationDescription string     `json:"violationDescription,omitempty"`
	IsVerified           bool       `json:"isVerified"`
	VerifiedBy           string     `json:"verifiedBy,omitempty"`
	VerifiedAt           *time.Time `json:"verifiedAt,omitempty"`
}

// ConfidenceValue reports the record's confidence. Confidence is required
// on every persisted record, so the value is always present.
func (r *PlateRecord) ConfidenceValue() (int, bool) {
	return r.Confidence, true
}

// ProcessingTimeValue reports the processing time in milliseconds, when
// the recognition backend provided one.
func (r *PlateRecord) ProcessingTimeValue() (int, bool) {
	if r.ProcessingTime == nil {
		return 0, false
	}
	return *r.ProcessingTime, true
}

// NumericField returns the named numeric field value, missing values
// report ok=false.
func (r *PlateRecord) NumericField(name string) (int, bool) {
	switch name {
	case FieldConfidence:
		return r.ConfidenceValue()
	case FieldProcessingTime:
		return r.ProcessingTimeValue()
	default:
		return 0, false
	}
}

// StringField returns the named categorical or text field as a string,
// empty when the record has no value for it.
func (r *PlateRecord) StringField(name string) string {
	switch name {
	case FieldLevel:
		return string(LevelForConfidence(r.Confidence))
	case FieldPlateNumber:
		return r.PlateNumber
	case FieldProvinceCode:
		return r.ProvinceCode
	case FieldProvinceName:
		return r.ProvinceName
	case FieldVehicleType:
		return r.VehicleType
	case FieldPlateType:
		return r.PlateType
	case FieldPlateFormat:
		return r.PlateFormat
	case FieldImageSource:
		return r.ImageSource
	default:
		return ""
	}
}

// Field names shared by the filter evaluator, sort comparator and facet
// aggregator.
const (
	FieldDate           = "date"
	FieldLevel          = "level"
	FieldPlateNumber    = "plateNumber"
	FieldConfidence     = "confidence"
	FieldProcessingTime = "processingTime"
	FieldProvinceCode   = "provinceCode"
	FieldProvinceName   = "provinceName"
	FieldVehicleType    = "vehicleType"
	FieldPlateType      = "plateType"
	FieldPlateFormat    = "plateFormat"
	FieldImageSource    = "imageSource"
)

// CategoricalFields are the fields facetted by distinct-value counts.
var CategoricalFields = []string{
	FieldLevel,
	FieldProvinceCode,
	FieldProvinceName,
	FieldVehicleType,
	FieldPlateType,
	FieldPlateFormat,
	FieldImageSource,
}

// NumericFields are the fields facetted by min/max histograms.
var NumericFields = []string{
	FieldConfidence,
	FieldProcessingTime,
}
