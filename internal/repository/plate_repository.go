package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lpr-service/internal/model"
)

type PlateRepository struct {
	db *gorm.DB
}

func NewPlateRepository(db *gorm.DB) *PlateRepository {
	return &PlateRepository{db: db}
}

// LicensePlate is the persisted row. The derived severity level is not a
// column, it is recomputed from confidence on read.
type LicensePlate struct {
	ID            int64  `gorm:"primaryKey"`
	PlateNumber   string `gorm:"not null"`
	Confidence    int    `gorm:"not null"`
	ConfidenceOCR *int   `gorm:"column:confidence_ocr"`

	ImageURL          string `gorm:"not null"`
	ProcessedImageURL *string

	ProvinceCode       *string
	ProvinceName       *string
	VehicleType        *string
	PlateType          *string
	PlateFormat        *string
	PlateSerial        *string
	RegistrationNumber *string

	BoundingBox     datatypes.JSON
	NormalizedPlate *string
	OriginalPlate   *string
	DetectedColor   *string
	OCREngine       *string `gorm:"column:ocr_engine"`

	IsValidFormat     *bool
	FormatDescription *string
	VehicleCategory   *string
	PlateTypeInfo     datatypes.JSON

	ImageSource      *string
	ProcessingTimeMs *int `gorm:"column:processing_time_ms"`

	HasViolation         bool `gorm:"not null;default:false"`
	ViolationTypes       datatypes.JSON
	ViolationDescription *string

	IsVerified bool `gorm:"not null;default:false"`
	VerifiedBy *string
	VerifiedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LicensePlate) TableName() string { return "license_plates" }

// Insert persists a new record and fills in the generated identifier and
// capture timestamp.
func (r *PlateRepository) Insert(ctx context.Context, rec *model.PlateRecord) error {
	row := rowFromRecord(rec)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	rec.UUID = strconv.FormatInt(row.ID, 10)
	rec.Date = row.CreatedAt
	return nil
}

// Page fetches one filtered, sorted page of records.
func (r *PlateRepository) Page(ctx context.Context, filter model.RecordFilter, sort model.SortSpec, start, size int) ([]model.PlateRecord, error) {
	query := applyFilter(r.db.WithContext(ctx).Model(&LicensePlate{}), filter)
	query = applySort(query, sort)

	if size > 0 {
		query = query.Limit(size)
	}
	if start > 0 {
		query = query.Offset(start)
	}

	var rows []LicensePlate
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return recordsFromRows(rows), nil
}

// List returns records newest-first without filtering, for the plain
// CRUD listing.
func (r *PlateRepository) List(ctx context.Context, limit, offset int) ([]model.PlateRecord, error) {
	var rows []LicensePlate
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return recordsFromRows(rows), nil
}

func (r *PlateRepository) GetByID(ctx context.Context, id int64) (*model.PlateRecord, error) {
	var row LicensePlate
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, err
	}
	rec := recordFromRow(&row)
	return &rec, nil
}

func (r *PlateRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&LicensePlate{}).Count(&total).Error
	return total, err
}

func (r *PlateRepository) CountFiltered(ctx context.Context, filter model.RecordFilter) (int64, error) {
	var total int64
	err := applyFilter(r.db.WithContext(ctx).Model(&LicensePlate{}), filter).Count(&total).Error
	return total, err
}

func (r *PlateRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&LicensePlate{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkVerified sets the verification sub-state. Records are otherwise
// immutable after insert.
func (r *PlateRepository) MarkVerified(ctx context.Context, id int64, verifiedBy string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&LicensePlate{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_verified": true,
		"verified_by": verifiedBy,
		"verified_at": now,
		"updated_at":  now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetViolation attaches violation annotations to a record.
func (r *PlateRepository) SetViolation(ctx context.Context, id int64, types []string, description string) error {
	encoded, err := json.Marshal(types)
	if err != nil {
		return fmt.Errorf("encode violation types: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&LicensePlate{}).Where("id = ?", id).Updates(map[string]interface{}{
		"has_violation":         len(types) > 0,
		"violation_types":       datatypes.JSON(encoded),
		"violation_description": description,
		"updated_at":            time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// applyFilter translates the filter into WHERE clauses. The derived
// level constraint becomes a confidence range so it never needs a stored
// column. Substring matching here is case-insensitive only; the
// accent-insensitive pass runs in the analytics evaluator over the
// fetched page.
func applyFilter(query *gorm.DB, f model.RecordFilter) *gorm.DB {
	if f.Date != nil {
		if !f.Date.From.IsZero() {
			query = query.Where("created_at >= ?", f.Date.From)
		}
		if !f.Date.To.IsZero() {
			query = query.Where("created_at <= ?", f.Date.To)
		}
	}

	if len(f.Levels) > 0 {
		query = query.Where(levelCondition(f.Levels))
	}

	if f.Confidence != nil {
		if f.Confidence.Min != nil {
			query = query.Where("confidence >= ?", *f.Confidence.Min)
		}
		if f.Confidence.Max != nil {
			query = query.Where("confidence <= ?", *f.Confidence.Max)
		}
	}
	if f.ProcessingTime != nil {
		if f.ProcessingTime.Min != nil {
			query = query.Where("COALESCE(processing_time_ms, 0) >= ?", *f.ProcessingTime.Min)
		}
		if f.ProcessingTime.Max != nil {
			query = query.Where("COALESCE(processing_time_ms, 0) <= ?", *f.ProcessingTime.Max)
		}
	}

	query = applyTextFilter(query, "plate_number", f.PlateNumber)
	query = applyTextFilter(query, "province_code", f.ProvinceCode)
	query = applyTextFilter(query, "province_name", f.ProvinceName)
	query = applyTextFilter(query, "vehicle_type", f.VehicleType)
	query = applyTextFilter(query, "plate_type", f.PlateType)

	return query
}

func applyTextFilter(query *gorm.DB, column string, c model.TextConstraint) *gorm.DB {
	if len(c.Any) > 0 {
		return query.Where(fmt.Sprintf("COALESCE(%s, '') IN ?", column), c.Any)
	}
	needle := strings.TrimSpace(strings.ToLower(c.Contains))
	if needle == "" {
		return query
	}
	pattern := "%" + needle + "%"
	if column == "plate_number" {
		return query.Where(
			"LOWER(plate_number) LIKE ? OR LOWER(COALESCE(normalized_plate, '')) LIKE ?",
			pattern, pattern,
		)
	}
	return query.Where(fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE ?", column), pattern)
}

func levelCondition(levels []model.Level) string {
	var clauses []string
	for _, level := range levels {
		switch level {
		case model.LevelSuccess:
			clauses = append(clauses, fmt.Sprintf("confidence >= %d", model.SuccessThreshold))
		case model.LevelWarning:
			clauses = append(clauses, fmt.Sprintf("confidence >= %d AND confidence < %d", model.WarningThreshold, model.SuccessThreshold))
		case model.LevelError:
			clauses = append(clauses, fmt.Sprintf("confidence < %d", model.WarningThreshold))
		}
	}
	if len(clauses) == 0 {
		return "1=1"
	}
	return "(" + strings.Join(clauses, ") OR (") + ")"
}

var sortColumns = map[string]string{
	model.FieldDate:           "created_at",
	model.FieldConfidence:     "confidence",
	model.FieldProcessingTime: "processing_time_ms",
	model.FieldPlateNumber:    "LOWER(plate_number)",
	model.FieldProvinceCode:   "LOWER(COALESCE(province_code, ''))",
	model.FieldProvinceName:   "LOWER(COALESCE(province_name, ''))",
	model.FieldVehicleType:    "LOWER(COALESCE(vehicle_type, ''))",
	model.FieldPlateType:      "LOWER(COALESCE(plate_type, ''))",
}

// Unknown sort keys fall back to newest-first.
func applySort(query *gorm.DB, sort model.SortSpec) *gorm.DB {
	column, ok := sortColumns[sort.Key]
	if !ok {
		return query.Order("created_at DESC")
	}
	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}
	return query.Order(fmt.Sprintf("%s %s, id ASC", column, direction))
}

func rowFromRecord(rec *model.PlateRecord) *LicensePlate {
	row := &LicensePlate{
		PlateNumber:      rec.PlateNumber,
		Confidence:       rec.Confidence,
		ConfidenceOCR:    rec.ConfidenceOCR,
		ImageURL:         rec.ImageURL,
		BoundingBox:      rec.BoundingBox,
		PlateTypeInfo:    rec.PlateTypeInfo,
		IsValidFormat:    rec.IsValidFormat,
		ProcessingTimeMs: rec.ProcessingTime,
	}

	row.ProcessedImageURL = optional(rec.ProcessedImageURL)
	row.ProvinceCode = optional(rec.ProvinceCode)
	row.ProvinceName = optional(rec.ProvinceName)
	row.VehicleType = optional(rec.VehicleType)
	row.PlateType = optional(rec.PlateType)
	row.PlateFormat = optional(rec.PlateFormat)
	row.PlateSerial = optional(rec.PlateSerial)
	row.RegistrationNumber = optional(rec.RegistrationNumber)
	row.NormalizedPlate = optional(rec.NormalizedPlate)
	row.OriginalPlate = optional(rec.OriginalPlate)
	row.DetectedColor = optional(rec.DetectedColor)
	row.OCREngine = optional(rec.OCREngine)
	row.FormatDescription = optional(rec.FormatDescription)
	row.ImageSource = optional(rec.ImageSource)

	return row
}

func recordsFromRows(rows []LicensePlate) []model.PlateRecord {
	records := make([]model.PlateRecord, 0, len(rows))
	for i := range rows {
		records = append(records, recordFromRow(&rows[i]))
	}
	return records
}

func recordFromRow(row *LicensePlate) model.PlateRecord {
	rec := model.PlateRecord{
		UUID:        strconv.FormatInt(row.ID, 10),
		Level:       model.LevelForConfidence(row.Confidence),
		Date:        row.CreatedAt,
		PlateNumber: row.PlateNumber,
		Confidence:  row.Confidence,

		ConfidenceOCR:  row.ConfidenceOCR,
		ProcessingTime: row.ProcessingTimeMs,

		ImageURL:      row.ImageURL,
		BoundingBox:   row.BoundingBox,
		PlateTypeInfo: row.PlateTypeInfo,
		IsValidFormat: row.IsValidFormat,

		HasViolation: row.HasViolation,
		IsVerified:   row.IsVerified,
		VerifiedAt:   row.VerifiedAt,
	}

	rec.ProcessedImageURL = deref(row.ProcessedImageURL)
	rec.ProvinceCode = deref(row.ProvinceCode)
	rec.ProvinceName = deref(row.ProvinceName)
	rec.VehicleType = deref(row.VehicleType)
	rec.PlateType = deref(row.PlateType)
	rec.PlateFormat = deref(row.PlateFormat)
	rec.PlateSerial = deref(row.PlateSerial)
	rec.RegistrationNumber = deref(row.RegistrationNumber)
	rec.NormalizedPlate = deref(row.NormalizedPlate)
	rec.OriginalPlate = deref(row.OriginalPlate)
	rec.DetectedColor = deref(row.DetectedColor)
	rec.OCREngine = deref(row.OCREngine)
	rec.FormatDescription = deref(row.FormatDescription)
	rec.ImageSource = deref(row.ImageSource)
	rec.ViolationDescription = deref(row.ViolationDescription)
	rec.VerifiedBy = deref(row.VerifiedBy)

	if len(row.ViolationTypes) > 0 {
		var types []string
		if err := json.Unmarshal(row.ViolationTypes, &types); err == nil {
			rec.ViolationTypes = types
		}
	}

	return rec
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
