package model

// FacetRow is one value/count pair of a facet.
type FacetRow struct {
	Value string `json:"value"`
	Total int    `json:"total"`
}

// Facet summarises one field over a result set. Numeric fields carry
// min/max and histogram rows, categorical fields carry distinct-value
// rows only.
type Facet struct {
	Min  *int       `json:"min,omitempty"`
	Max  *int       `json:"max,omitempty"`
	Rows []FacetRow `json:"rows"`
}

// ChartBucket is one day of the history chart. Timestamp is the
// start-of-day instant in epoch milliseconds, matching the chart
// component's expectations.
type ChartBucket struct {
	Timestamp         int64 `json:"timestamp"`
	Count             int   `json:"count"`
	Success           int   `json:"success"`
	Warning           int   `json:"warning"`
	Error             int   `json:"error"`
	AvgConfidence     int   `json:"avg_confidence"`
	AvgProcessingTime int   `json:"avg_processing_time"`
}

// PercentileSummary carries the standard percentile cuts of the
// confidence distribution over a result set.
type PercentileSummary struct {
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// HistoryMeta is the response metadata attached to a history page.
type HistoryMeta struct {
	TotalRowCount  int64              `json:"totalRowCount"`
	FilterRowCount int64              `json:"filterRowCount"`
	ChartData      []ChartBucket      `json:"chartData"`
	Facets         map[string]Facet   `json:"facets"`
	Percentiles    *PercentileSummary `json:"percentiles,omitempty"`
	Metadata       map[string]any     `json:"metadata"`
}

// HistoryPage is one page of records plus its metadata.
type HistoryPage struct {
	Data []PlateRecord `json:"data"`
	Meta HistoryMeta   `json:"meta"`
}
