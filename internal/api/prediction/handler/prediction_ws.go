package predictionHandler

import (
	"SmartShopping/internal/api/prediction"
	"SmartShopping/internal/entity"
	"SmartShopping/internal/middleware"
	contextPkg "SmartShopping/pkg/context"
	"SmartShopping/pkg/log"
	"SmartShopping/pkg/response"
	"bytes"
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
)

const (
	streamReadTimeout  = 60 * time.Second
	streamWriteTimeout = 10 * time.Second
)

// handleStream serves one prediction per frame. Text frames carry a data URL,
// bare base64 or {"image": ...}; binary frames carry the encoded image bytes.
func (h *PredictionHandler) handleStream(c *websocket.Conn) {
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	fields := log.Fields{"request_id": requestID}

	h.log.WithFields(fields).Info("Prediction stream client connected")
	defer h.log.WithFields(fields).Info("Prediction stream client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.WithFields(fields).Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	ctx := contextPkg.WithRequestID(context.Background(), requestID)

	for {
		if err := c.SetReadDeadline(time.Now().Add(streamReadTimeout)); err != nil {
			h.log.WithFields(fields).Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithFields(fields).Errorf("Prediction stream error: %v", err)
			}
			break
		}

		var result *entity.PredictionResponse
		switch messageType {
		case websocket.TextMessage:
			result, err = h.predictionService.PredictFromPayload(ctx, framePayload(message))
		case websocket.BinaryMessage:
			result, err = h.predictionService.PredictFromBytes(ctx, message)
		default:
			h.log.WithFields(fields).Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		var reply interface{} = result
		if err != nil {
			h.log.WithFields(log.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Error processing stream frame")
			reply = prediction.StreamError{Error: publicMessage(err)}
		}

		if err := c.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
			h.log.WithFields(fields).Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(reply); err != nil {
			h.log.WithFields(fields).Errorf("Error writing JSON response: %v", err)
			break
		}
	}
}

func framePayload(message []byte) string {
	trimmed := bytes.TrimSpace(message)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var req prediction.PredictRequest
		if err := jsoniter.Unmarshal(trimmed, &req); err == nil {
			return req.Image
		}
	}
	return string(trimmed)
}

func publicMessage(err error) string {
	_, msg := response.Public(err)
	return msg
}
