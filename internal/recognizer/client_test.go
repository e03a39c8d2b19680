package recognizer

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client := NewClient("http://recognizer.test", 5*time.Second, zerolog.Nop())
	httpmock.ActivateNonDefault(client.http)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestProcessImage(t *testing.T) {
	t.Run("decodes detections", func(t *testing.T) {
		client := newTestClient(t)

		httpmock.RegisterResponder(http.MethodPost, "http://recognizer.test/process-image",
			httpmock.NewStringResponder(http.StatusOK, `{
				"detections": [{
					"plate_number": "30A-12345",
					"confidence_detection": 0.95,
					"ocr_engine_used": "easyocr",
					"plate_analysis": {
						"province_code": "30",
						"province_name": "Hà Nội",
						"is_valid_format": true
					}
				}],
				"processed_image_url": "/uploads/processed.jpg"
			}`))

		resp, err := client.ProcessImage(context.Background(), "car.jpg", bytes.NewReader([]byte("fake-image")))

		require.NoError(t, err)
		require.Len(t, resp.Detections, 1)
		det := resp.Detections[0]
		assert.Equal(t, "30A-12345", det.PlateNumber)
		assert.Equal(t, 95, det.ConfidencePercent())
		require.NotNil(t, det.PlateAnalysis)
		assert.Equal(t, "Hà Nội", det.PlateAnalysis.ProvinceName)
		assert.Equal(t, "/uploads/processed.jpg", resp.ProcessedImageURL)
	})

	t.Run("non-2xx status maps to backend error", func(t *testing.T) {
		client := newTestClient(t)

		httpmock.RegisterResponder(http.MethodPost, "http://recognizer.test/process-image",
			httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

		_, err := client.ProcessImage(context.Background(), "car.jpg", bytes.NewReader(nil))

		assert.ErrorIs(t, err, ErrBackend)
	})

	t.Run("connection failure maps to unavailable", func(t *testing.T) {
		client := newTestClient(t)

		httpmock.RegisterResponder(http.MethodPost, "http://recognizer.test/process-image",
			httpmock.NewErrorResponder(errors.New("connection refused")))

		_, err := client.ProcessImage(context.Background(), "car.jpg", bytes.NewReader(nil))

		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("deadline maps to timeout", func(t *testing.T) {
		client := newTestClient(t)

		httpmock.RegisterResponder(http.MethodPost, "http://recognizer.test/process-image",
			httpmock.NewErrorResponder(context.DeadlineExceeded))

		_, err := client.ProcessImage(context.Background(), "car.jpg", bytes.NewReader(nil))

		assert.ErrorIs(t, err, ErrTimeout)
	})
}

func TestProcessImageURL(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, "http://recognizer.test/process-image-url",
		httpmock.NewStringResponder(http.StatusOK, `{"detections": [], "processed_image_url": ""}`))

	resp, err := client.ProcessImageURL(context.Background(), "http://example.com/car.jpg")

	require.NoError(t, err)
	assert.Empty(t, resp.Detections)
}

func TestConfidencePercent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  float64
		want int
	}{
		{0.954, 95},
		{0.956, 96},
		{1.2, 100},
		{-0.1, 0},
		{0, 0},
	}

	for _, tc := range cases {
		det := Detection{ConfidenceDetection: tc.raw}
		assert.Equal(t, tc.want, det.ConfidencePercent(), "raw %v", tc.raw)
	}
}
