package http

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lpr-service/internal/model"
)

// HistoryQuery is a fully parsed history request. Parsing never fails:
// any clause that cannot be understood is dropped and the query falls
// back to safe defaults.
type HistoryQuery struct {
	Filter model.RecordFilter
	Sort   model.SortSpec
	Start  int
	Size   int
}

func parseHistoryQuery(c *gin.Context) HistoryQuery {
	query := HistoryQuery{
		Sort:  parseSort(c.Query("sort")),
		Start: intQuery(c, "start", 0),
		Size:  intQuery(c, "size", 0),
	}

	query.Filter.Date = parseDateRange(c.Query("date"))
	query.Filter.Levels = parseLevels(c.Query("level"))
	query.Filter.Confidence = parseNumberRange(c.Query("confidence"))
	query.Filter.ProcessingTime = parseNumberRange(c.Query("processingTime"))

	query.Filter.PlateNumber = containsConstraint(c.Query("plateNumber"))
	query.Filter.ProvinceName = containsConstraint(c.Query("provinceName"))
	query.Filter.ProvinceCode = textConstraint(c.Query("provinceCode"))
	query.Filter.VehicleType = textConstraint(c.Query("vehicleType"))
	query.Filter.PlateType = textConstraint(c.Query("plateType"))

	return query
}

// parseSort understands the wire form {"colId":"date","sort":"desc"}.
// Anything else falls back to newest-first by date.
func parseSort(raw string) model.SortSpec {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.DefaultSort
	}

	var wire struct {
		ColID string `json:"colId"`
		Sort  string `json:"sort"`
	}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil || wire.ColID == "" {
		return model.DefaultSort
	}

	return model.SortSpec{Key: wire.ColID, Desc: strings.EqualFold(wire.Sort, "desc")}
}

// parseDateRange understands "from-to" in epoch milliseconds. A single
// timestamp means a one-day window starting at that instant's day.
func parseDateRange(raw string) *model.DateRange {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.SplitN(raw, "-", 2)
	from, okFrom := parseEpochMillis(parts[0])
	if !okFrom {
		return nil
	}

	if len(parts) == 1 || strings.TrimSpace(parts[1]) == "" {
		return &model.DateRange{
			From: from,
			To:   from.Add(24*time.Hour - time.Millisecond),
		}
	}

	to, okTo := parseEpochMillis(parts[1])
	if !okTo {
		return nil
	}
	return &model.DateRange{From: from, To: to}
}

func parseEpochMillis(raw string) (time.Time, bool) {
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ms < 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

func parseLevels(raw string) []model.Level {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var levels []model.Level
	for _, part := range strings.Split(raw, ",") {
		switch model.Level(strings.ToLower(strings.TrimSpace(part))) {
		case model.LevelSuccess:
			levels = append(levels, model.LevelSuccess)
		case model.LevelWarning:
			levels = append(levels, model.LevelWarning)
		case model.LevelError:
			levels = append(levels, model.LevelError)
		}
	}
	return levels
}

// parseNumberRange understands "min-max" slider values.
func parseNumberRange(raw string) *model.NumberRange {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return nil
	}

	min, errMin := strconv.Atoi(strings.TrimSpace(parts[0]))
	max, errMax := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errMin != nil || errMax != nil {
		return nil
	}
	return &model.NumberRange{Min: &min, Max: &max}
}

func containsConstraint(raw string) model.TextConstraint {
	return model.TextConstraint{Contains: strings.TrimSpace(raw)}
}

// textConstraint keeps a plain value a substring search, so typed text
// gets the same accent-insensitive matching as the other text fields. A
// comma list is a multi-select and becomes an exact-membership set.
func textConstraint(raw string) model.TextConstraint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.TextConstraint{}
	}

	if !strings.Contains(raw, ",") {
		return model.TextConstraint{Contains: raw}
	}

	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 1 {
		return model.TextConstraint{Contains: values[0]}
	}
	return model.TextConstraint{Any: values}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
