package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lpr-service/internal/analytics"
	"lpr-service/internal/metrics"
	"lpr-service/internal/model"
	"lpr-service/internal/recognizer"
	"lpr-service/internal/repository"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("record not found")
	ErrPermissionDenied = errors.New("permission denied")
)

// Recognizer is the subset of the recognition backend the service needs.
type Recognizer interface {
	ProcessImage(ctx context.Context, filename string, file io.Reader) (*recognizer.Response, error)
	ProcessImageURL(ctx context.Context, imageURL string) (*recognizer.Response, error)
}

type PlateService struct {
	repo            *repository.PlateRepository
	recognizer      Recognizer
	metaCache       *gocache.Cache
	metrics         *metrics.Metrics
	log             zerolog.Logger
	defaultPageSize int
	maxPageSize     int
}

func NewPlateService(
	repo *repository.PlateRepository,
	rec Recognizer,
	m *metrics.Metrics,
	log zerolog.Logger,
	defaultPageSize, maxPageSize int,
	metaCacheTTL time.Duration,
) *PlateService {
	return &PlateService{
		repo:            repo,
		recognizer:      rec,
		metaCache:       gocache.New(metaCacheTTL, 2*metaCacheTTL),
		metrics:         m,
		log:             log,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// HistoryPage returns one page of records together with facets, chart
// buckets and percentiles computed over that page.
func (s *PlateService) HistoryPage(ctx context.Context, filter model.RecordFilter, sort model.SortSpec, start, size int) (*model.HistoryPage, error) {
	if start < 0 {
		start = 0
	}
	if size <= 0 {
		size = s.defaultPageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}

	s.metrics.HistoryQueries.Inc()

	records, err := s.repo.Page(ctx, filter, sort, start, size)
	if err != nil {
		return nil, fmt.Errorf("loading history page: %w", err)
	}

	meta, err := s.historyMeta(ctx, filter, records)
	if err != nil {
		return nil, err
	}

	return &model.HistoryPage{Data: records, Meta: *meta}, nil
}

func (s *PlateService) historyMeta(ctx context.Context, filter model.RecordFilter, page []model.PlateRecord) (*model.HistoryMeta, error) {
	total, filtered, err := s.rowCounts(ctx, filter)
	if err != nil {
		return nil, err
	}

	meta := &model.HistoryMeta{
		TotalRowCount:  total,
		FilterRowCount: filtered,
		ChartData:      analytics.GroupByDay(page, filter.Date),
		Facets:         analytics.ComputeFacets(page),
		Percentiles:    analytics.ConfidenceSample(page).Summary(),
		Metadata: map[string]any{
			"pageRowCount": len(page),
			"filtered":     !filter.IsZero(),
		},
	}
	return meta, nil
}

type rowCounts struct {
	total    int64
	filtered int64
}

// rowCounts runs the two COUNT queries behind a short-lived cache so
// that rapid filter tweaks in the dashboard do not hammer the database.
func (s *PlateService) rowCounts(ctx context.Context, filter model.RecordFilter) (int64, int64, error) {
	key := countCacheKey(filter)
	if cached, ok := s.metaCache.Get(key); ok {
		counts := cached.(rowCounts)
		return counts.total, counts.filtered, nil
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("counting records: %w", err)
	}
	filtered := total
	if !filter.IsZero() {
		filtered, err = s.repo.CountFiltered(ctx, filter)
		if err != nil {
			return 0, 0, fmt.Errorf("counting filtered records: %w", err)
		}
	}

	s.metaCache.SetDefault(key, rowCounts{total: total, filtered: filtered})
	return total, filtered, nil
}

func parseRecordID(id string) (int64, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("%w: invalid record id %q", ErrValidation, id)
	}
	return parsed, nil
}

func countCacheKey(filter model.RecordFilter) string {
	raw, err := json.Marshal(filter)
	if err != nil {
		return "unfilterable"
	}
	return string(raw)
}

type RecognitionResult struct {
	Response *recognizer.Response
	Record   *model.PlateRecord
}

// RecognizeImage forwards an uploaded image to the recognition backend and
// stores the first detection as a new record. A storage failure does not
// fail the recognition: the caller still gets the backend result.
func (s *PlateService) RecognizeImage(ctx context.Context, filename string, file io.Reader) (*RecognitionResult, error) {
	started := time.Now()
	resp, err := s.recognizer.ProcessImage(ctx, filename, file)
	return s.finishRecognition(ctx, "upload", started, resp, err)
}

// RecognizeImageURL recognizes an image fetched by the backend from a URL.
func (s *PlateService) RecognizeImageURL(ctx context.Context, imageURL string) (*RecognitionResult, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, fmt.Errorf("%w: url is required", ErrValidation)
	}
	started := time.Now()
	resp, err := s.recognizer.ProcessImageURL(ctx, imageURL)
	return s.finishRecognition(ctx, "url", started, resp, err)
}

func (s *PlateService) finishRecognition(ctx context.Context, source string, started time.Time, resp *recognizer.Response, err error) (*RecognitionResult, error) {
	elapsed := time.Since(started)
	s.metrics.RecognitionDuration.Observe(elapsed.Seconds())

	if err != nil {
		s.metrics.RecognitionsTotal.WithLabelValues(source, "error").Inc()
		return nil, err
	}

	result := &RecognitionResult{Response: resp}
	if len(resp.Detections) == 0 {
		s.metrics.RecognitionsTotal.WithLabelValues(source, "no_detection").Inc()
		return result, nil
	}
	s.metrics.RecognitionsTotal.WithLabelValues(source, "detected").Inc()

	rec := recordFromDetection(&resp.Detections[0], resp, source, int(elapsed.Milliseconds()))
	if saveErr := s.repo.Insert(ctx, rec); saveErr != nil {
		// Recognition succeeded; losing the history entry is not fatal.
		s.metrics.SaveFailures.Inc()
		s.log.Error().Err(saveErr).
			Str("plate_number", rec.PlateNumber).
			Msg("failed to save recognized plate")
		return result, nil
	}
	s.metrics.RecordsSaved.Inc()
	result.Record = rec
	return result, nil
}

func recordFromDetection(det *recognizer.Detection, resp *recognizer.Response, source string, processingMs int) *model.PlateRecord {
	rec := &model.PlateRecord{
		PlateNumber:       det.PlateNumber,
		Confidence:        det.ConfidencePercent(),
		ProcessingTime:    &processingMs,
		ImageURL:          resp.ProcessedImageURL,
		ProcessedImageURL: resp.ProcessedImageURL,
		ImageSource:       source,
		OCREngine:         det.OCREngineUsed,
		BoundingBox:       datatypes.JSON(det.BoundingBox),
		NormalizedPlate:   analytics.NormalizeText(det.PlateNumber),
		OriginalPlate:     det.PlateNumber,
	}
	if det.OCREngineUsed != "" {
		conf := det.ConfidencePercent()
		rec.ConfidenceOCR = &conf
	}
	if a := det.PlateAnalysis; a != nil {
		rec.ProvinceCode = a.ProvinceCode
		rec.ProvinceName = a.ProvinceName
		rec.PlateType = a.PlateType
		rec.PlateSerial = a.Serial
		rec.RegistrationNumber = a.Number
		rec.DetectedColor = a.DetectedColor
		rec.FormatDescription = a.FormatDescription
		valid := a.IsValidFormat
		rec.IsValidFormat = &valid
		if valid {
			rec.PlateFormat = "valid"
		} else {
			rec.PlateFormat = "invalid"
		}
		if a.Normalized != "" {
			rec.NormalizedPlate = a.Normalized
		}
		if a.Original != "" {
			rec.OriginalPlate = a.Original
		}
		if info := a.PlateTypeInfo; info != nil {
			rec.VehicleType = info.Name
			if raw, err := json.Marshal(info); err == nil {
				rec.PlateTypeInfo = raw
			}
		}
	}
	return rec
}

// CreateRecord stores a record supplied by the client, for example a manual
// correction entered in the dashboard.
func (s *PlateService) CreateRecord(ctx context.Context, rec *model.PlateRecord) (*model.PlateRecord, error) {
	if strings.TrimSpace(rec.PlateNumber) == "" {
		return nil, fmt.Errorf("%w: plateNumber is required", ErrValidation)
	}
	if rec.Confidence < 0 || rec.Confidence > 100 {
		return nil, fmt.Errorf("%w: confidence must be between 0 and 100", ErrValidation)
	}
	if strings.TrimSpace(rec.ImageURL) == "" {
		return nil, fmt.Errorf("%w: imageUrl is required", ErrValidation)
	}
	if rec.NormalizedPlate == "" {
		rec.NormalizedPlate = analytics.NormalizeText(rec.PlateNumber)
	}
	if rec.ImageSource == "" {
		rec.ImageSource = "manual"
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving record: %w", err)
	}
	s.metrics.RecordsSaved.Inc()
	return rec, nil
}

func (s *PlateService) ListRecords(ctx context.Context, limit, offset int) ([]model.PlateRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	records, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return records, nil
}

func (s *PlateService) GetRecord(ctx context.Context, id string) (*model.PlateRecord, error) {
	recordID, err := parseRecordID(id)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading record: %w", err)
	}
	return rec, nil
}

func (s *PlateService) DeleteRecord(ctx context.Context, principal model.Principal, id string) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	recordID, err := parseRecordID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, recordID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

func (s *PlateService) VerifyRecord(ctx context.Context, principal model.Principal, id string) error {
	if !principal.CanModerate() {
		return ErrPermissionDenied
	}
	recordID, err := parseRecordID(id)
	if err != nil {
		return err
	}
	if err := s.repo.MarkVerified(ctx, recordID, principal.Name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("verifying record: %w", err)
	}
	return nil
}

func (s *PlateService) SetViolation(ctx context.Context, principal model.Principal, id string, types []string, description string) error {
	if !principal.CanModerate() {
		return ErrPermissionDenied
	}
	recordID, err := parseRecordID(id)
	if err != nil {
		return err
	}
	if err := s.repo.SetViolation(ctx, recordID, types, description); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("updating violation: %w", err)
	}
	return nil
}
