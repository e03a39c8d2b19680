package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrTimeout means the recognition backend did not answer within the
	// configured deadline.
	ErrTimeout = errors.New("recognition request timed out")
	// ErrUnavailable means the backend could not be reached at all.
	ErrUnavailable = errors.New("cannot connect to recognition backend")
	// ErrBackend means the backend answered with a non-2xx status.
	ErrBackend = errors.New("recognition backend error")
)

// PlateTypeInfo describes the classified plate category.
type PlateTypeInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// PlateAnalysis is the per-plate breakdown returned by the backend.
type PlateAnalysis struct {
	Original          string         `json:"original"`
	Normalized        string         `json:"normalized"`
	ProvinceCode      string         `json:"province_code"`
	ProvinceName      string         `json:"province_name"`
	Serial            string         `json:"serial"`
	Number            string         `json:"number"`
	PlateType         string         `json:"plate_type"`
	PlateTypeInfo     *PlateTypeInfo `json:"plate_type_info,omitempty"`
	DetectedColor     string         `json:"detected_color"`
	IsValidFormat     bool           `json:"is_valid_format"`
	FormatDescription string         `json:"format_description"`
}

// Detection is one recognized plate in an image.
type Detection struct {
	PlateNumber         string          `json:"plate_number"`
	ConfidenceDetection float64         `json:"confidence_detection"`
	BoundingBox         json.RawMessage `json:"bounding_box,omitempty"`
	PlateAnalysis       *PlateAnalysis  `json:"plate_analysis,omitempty"`
	OCREngineUsed       string          `json:"ocr_engine_used"`
}

// Response is the full recognition backend answer.
type Response struct {
	Detections        []Detection `json:"detections"`
	ProcessedImageURL string      `json:"processed_image_url"`
	Error             string      `json:"error,omitempty"`
}

// ConfidencePercent converts the backend's 0-1 detection confidence to
// the 0-100 integer scale used everywhere else.
func (d *Detection) ConfidencePercent() int {
	percent := int(d.ConfidenceDetection*100 + 0.5)
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	return percent
}

type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// ProcessImage sends image bytes as a multipart upload to the backend's
// /process-image endpoint.
func (c *Client) ProcessImage(ctx context.Context, filename string, image io.Reader) (*Response, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("copy image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process-image", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

// ProcessImageURL asks the backend to fetch and recognize a remote
// image.
func (c *Client) ProcessImageURL(ctx context.Context, imageURL string) (*Response, error) {
	payload, err := json.Marshal(map[string]string{"url": imageURL})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process-image-url", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Response, error) {
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn().Int("status", resp.StatusCode).Str("url", req.URL.Path).Msg("recognition backend returned error status")
		return nil, fmt.Errorf("%w: status %d", ErrBackend, resp.StatusCode)
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrBackend, err)
	}

	c.log.Debug().
		Dur("elapsed", time.Since(started)).
		Int("detections", len(result.Detections)).
		Msg("recognition completed")

	return &result, nil
}

// classify separates a timeout from a plain connectivity failure so the
// caller can surface distinct messages.
func (c *Client) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
