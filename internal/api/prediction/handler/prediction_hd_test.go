package predictionHandler_test

import (
	"SmartShopping/internal/api/prediction"
	predictionHandler "SmartShopping/internal/api/prediction/handler"
	"SmartShopping/internal/entity"
	"SmartShopping/internal/middleware"
	"SmartShopping/pkg/log"
	"SmartShopping/pkg/utils"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPredictionService struct {
	PredictFromPayloadFunc func(ctx context.Context, payload string) (*entity.PredictionResponse, error)
	PredictFromBytesFunc   func(ctx context.Context, data []byte) (*entity.PredictionResponse, error)
	payloadCalls           int
	bytesCalls             int
}

func (m *mockPredictionService) PredictFromPayload(ctx context.Context, payload string) (*entity.PredictionResponse, error) {
	m.payloadCalls++
	return m.PredictFromPayloadFunc(ctx, payload)
}

func (m *mockPredictionService) PredictFromBytes(ctx context.Context, data []byte) (*entity.PredictionResponse, error) {
	m.bytesCalls++
	return m.PredictFromBytesFunc(ctx, data)
}

var itemPrices = []entity.PriceCatalogEntry{
	{Name: "Apple", Price: 0.5},
	{Name: "Banana", Price: 0.3},
}

func newApp(svc *mockPredictionService) *fiber.App {
	logger := log.NewDiscardLogger()
	mw := middleware.New(logger, middleware.Options{})

	app := fiber.New(fiber.Config{StrictRouting: true, CaseSensitive: true})
	app.Use(mw.NewRequestIDMiddleware())

	h := predictionHandler.New(logger, validator.New(), mw, svc, utils.New())
	h.Start(app)
	return app
}

func jsonRequest(method, body string) *http.Request {
	req := httptest.NewRequest(method, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func assertCORS(t *testing.T, resp *http.Response) {
	t.Helper()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"))
}

func TestPredictionHandler_Predict(t *testing.T) {
	tests := []struct {
		name           string
		request        func() *http.Request
		mockFunc       func(ctx context.Context, payload string) (*entity.PredictionResponse, error)
		expectedStatus int
		expectedBody   string
		expectedCalls  int
	}{
		{
			name:    "success",
			request: func() *http.Request { return jsonRequest(http.MethodPost, `{"image":"data:image/jpeg;base64,AAAA"}`) },
			mockFunc: func(ctx context.Context, payload string) (*entity.PredictionResponse, error) {
				return &entity.PredictionResponse{
					Detections: []entity.Detection{
						{CenterX: 100, CenterY: 120, Width: 40, Height: 44, Confidence: 0.92, ClassName: "apple", Price: 0.5},
					},
					ItemPrices: itemPrices,
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"detections":[{"center_x":100,"center_y":120,"width":40,"height":44,"confidence":0.92,"class":"apple","price":0.5}],` +
				`"item_prices":[{"Name":"Apple","Price":0.5},{"Name":"Banana","Price":0.3}]}`,
			expectedCalls: 1,
		},
		{
			name:    "no detections",
			request: func() *http.Request { return jsonRequest(http.MethodPost, `{"image":"AAAA"}`) },
			mockFunc: func(ctx context.Context, payload string) (*entity.PredictionResponse, error) {
				return &entity.PredictionResponse{Detections: []entity.Detection{}, ItemPrices: itemPrices}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"detections":[],"item_prices":[{"Name":"Apple","Price":0.5},{"Name":"Banana","Price":0.3}]}`,
			expectedCalls:  1,
		},
		{
			name:           "empty object",
			request:        func() *http.Request { return jsonRequest(http.MethodPost, `{}`) },
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"No image data found"}`,
		},
		{
			name:           "empty image",
			request:        func() *http.Request { return jsonRequest(http.MethodPost, `{"image":""}`) },
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"No image data found"}`,
		},
		{
			name:           "null image",
			request:        func() *http.Request { return jsonRequest(http.MethodPost, `{"image":null}`) },
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"No image data found"}`,
		},
		{
			name:           "empty body",
			request:        func() *http.Request { return jsonRequest(http.MethodPost, ``) },
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"No image data found"}`,
		},
		{
			name:           "malformed json",
			request:        func() *http.Request { return jsonRequest(http.MethodPost, `{"image":`) },
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid request body"}`,
		},
		{
			name:    "decode failure",
			request: func() *http.Request { return jsonRequest(http.MethodPost, `{"image":"@@@"}`) },
			mockFunc: func(ctx context.Context, payload string) (*entity.PredictionResponse, error) {
				return nil, fmt.Errorf("%w: %w", prediction.ErrInvalidImage, errors.New("illegal base64 data"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid image data"}`,
			expectedCalls:  1,
		},
		{
			name:    "detector failure",
			request: func() *http.Request { return jsonRequest(http.MethodPost, `{"image":"AAAA"}`) },
			mockFunc: func(ctx context.Context, payload string) (*entity.PredictionResponse, error) {
				return nil, fmt.Errorf("%w: %w", prediction.ErrDetectorFailed, errors.New("connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Detection failed"}`,
			expectedCalls:  1,
		},
		{
			name:    "unknown class",
			request: func() *http.Request { return jsonRequest(http.MethodPost, `{"image":"AAAA"}`) },
			mockFunc: func(ctx context.Context, payload string) (*entity.PredictionResponse, error) {
				return nil, fmt.Errorf("%w: %w", prediction.ErrUnknownClass, &entity.UnknownClassError{ClassID: 12, Size: 12})
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Detector returned an unknown class"}`,
			expectedCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPredictionService{PredictFromPayloadFunc: tt.mockFunc}
			app := newApp(svc)

			resp, err := app.Test(tt.request())
			require.NoError(t, err)
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.JSONEq(t, tt.expectedBody, string(body))
			assert.Equal(t, tt.expectedCalls, svc.payloadCalls)
			assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}

func TestPredictionHandler_PassesPayloadThrough(t *testing.T) {
	var got string
	svc := &mockPredictionService{PredictFromPayloadFunc: func(ctx context.Context, payload string) (*entity.PredictionResponse, error) {
		got = payload
		return &entity.PredictionResponse{Detections: []entity.Detection{}, ItemPrices: itemPrices}, nil
	}}

	resp, err := newApp(svc).Test(jsonRequest(http.MethodPost, `{"image":"data:image/png;base64,iVBORw0KGgo="}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", got)
}

func multipartRequest(t *testing.T, contentType string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="frame.jpg"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/predict", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestPredictionHandler_Upload(t *testing.T) {
	t.Run("image upload", func(t *testing.T) {
		var got []byte
		svc := &mockPredictionService{PredictFromBytesFunc: func(ctx context.Context, data []byte) (*entity.PredictionResponse, error) {
			got = data
			return &entity.PredictionResponse{Detections: []entity.Detection{}, ItemPrices: itemPrices}, nil
		}}

		resp, err := newApp(svc).Test(multipartRequest(t, "image/jpeg", []byte("jpeg-bytes")))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []byte("jpeg-bytes"), got)
		assert.Equal(t, 1, svc.bytesCalls)
		assert.Equal(t, 0, svc.payloadCalls)
	})

	t.Run("not an image", func(t *testing.T) {
		svc := &mockPredictionService{}

		resp, err := newApp(svc).Test(multipartRequest(t, "application/pdf", []byte("%PDF")))
		require.NoError(t, err)
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Invalid image file"}`, string(body))
		assert.Equal(t, 0, svc.bytesCalls)
	})
}

func TestPredictionHandler_Preflight(t *testing.T) {
	svc := &mockPredictionService{}

	resp, err := newApp(svc).Test(httptest.NewRequest(http.MethodOptions, "/predict", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"CORS is working!"}`, string(body))
	assertCORS(t, resp)
	assert.Equal(t, 0, svc.payloadCalls)
	assert.Equal(t, 0, svc.bytesCalls)
}

func TestPredictionHandler_MethodNotAllowed(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			svc := &mockPredictionService{}

			resp, err := newApp(svc).Test(httptest.NewRequest(method, "/predict", nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
			assert.Equal(t, "POST, OPTIONS", resp.Header.Get("Allow"))
			assertCORS(t, resp)
			assert.Equal(t, 0, svc.payloadCalls)
		})
	}
}

func TestPredictionHandler_StreamRequiresUpgrade(t *testing.T) {
	resp, err := newApp(&mockPredictionService{}).Test(httptest.NewRequest(http.MethodGet, "/predict/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}
