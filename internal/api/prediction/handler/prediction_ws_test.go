package predictionHandler_test

import (
	"SmartShopping/internal/api/prediction"
	"SmartShopping/internal/entity"
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialStream(t *testing.T, svc *mockPredictionService) *websocket.Conn {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	app := newApp(svc)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(fmt.Sprintf("ws://%s/predict/ws", ln.Addr().String()), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestPredictionHandler_Stream(t *testing.T) {
	result := &entity.PredictionResponse{
		Detections: []entity.Detection{{CenterX: 10, CenterY: 20, Width: 5, Height: 6, Confidence: 0.8, ClassName: "milk", Price: 2.95}},
		ItemPrices: itemPrices,
	}

	payloads := make(chan string, 8)
	frames := make(chan []byte, 8)
	svc := &mockPredictionService{
		PredictFromPayloadFunc: func(ctx context.Context, payload string) (*entity.PredictionResponse, error) {
			payloads <- payload
			if payload == "" {
				return nil, prediction.ErrNoImageData
			}
			return result, nil
		},
		PredictFromBytesFunc: func(ctx context.Context, data []byte) (*entity.PredictionResponse, error) {
			frames <- data
			return result, nil
		},
	}
	conn := dialStream(t, svc)

	tests := []struct {
		name        string
		messageType int
		message     string
		expected    string
	}{
		{
			name:        "data url text frame",
			messageType: websocket.TextMessage,
			message:     "data:image/jpeg;base64,AAAA",
			expected: `{"detections":[{"center_x":10,"center_y":20,"width":5,"height":6,"confidence":0.8,"class":"milk","price":2.95}],` +
				`"item_prices":[{"Name":"Apple","Price":0.5},{"Name":"Banana","Price":0.3}]}`,
		},
		{
			name:        "json text frame",
			messageType: websocket.TextMessage,
			message:     `{"image":"AAAA"}`,
			expected: `{"detections":[{"center_x":10,"center_y":20,"width":5,"height":6,"confidence":0.8,"class":"milk","price":2.95}],` +
				`"item_prices":[{"Name":"Apple","Price":0.5},{"Name":"Banana","Price":0.3}]}`,
		},
		{
			name:        "empty frame keeps the stream open",
			messageType: websocket.TextMessage,
			message:     `{"image":""}`,
			expected:    `{"error":"No image data found"}`,
		},
		{
			name:        "binary frame",
			messageType: websocket.BinaryMessage,
			message:     "jpeg-bytes",
			expected: `{"detections":[{"center_x":10,"center_y":20,"width":5,"height":6,"confidence":0.8,"class":"milk","price":2.95}],` +
				`"item_prices":[{"Name":"Apple","Price":0.5},{"Name":"Banana","Price":0.3}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(tt.messageType, []byte(tt.message)))

			require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
			_, reply, err := conn.ReadMessage()
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(reply))
		})
	}

	close(payloads)
	close(frames)

	var gotPayloads []string
	for p := range payloads {
		gotPayloads = append(gotPayloads, p)
	}
	assert.Equal(t, []string{"data:image/jpeg;base64,AAAA", "AAAA", ""}, gotPayloads)
	assert.Equal(t, []byte("jpeg-bytes"), <-frames)
}
