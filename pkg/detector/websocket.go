package detector

import (
	"SmartShopping/internal/entity"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrDetectorClosed = errors.New("detector is closed")

type WebSocketConfig struct {
	URL         string
	PoolSize    int
	DialTimeout time.Duration
	JPEGQuality int
}

type inferenceRequest struct {
	Op         string  `json:"op"`
	Image      string  `json:"image,omitempty"`
	Confidence float64 `json:"conf,omitempty"`
	IoU        float64 `json:"iou,omitempty"`
	InputSize  int     `json:"imgsz,omitempty"`
}

type inferenceBox struct {
	Class      int       `json:"cls"`
	Confidence float64   `json:"conf"`
	XYWH       []float64 `json:"xywh"`
}

type inferenceResponse struct {
	Boxes   []inferenceBox `json:"boxes"`
	Classes int            `json:"classes"`
	Error   string         `json:"error"`
}

// webSocketDetector sends frames to an inference service over websocket.
// Each connection carries one request at a time; up to PoolSize requests run
// in parallel on separate connections.
type webSocketDetector struct {
	cfg    WebSocketConfig
	dialer *websocket.Dialer
	log    *logrus.Logger

	slots chan struct{}
	idle  chan *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func NewWebSocketDetector(cfg WebSocketConfig, log *logrus.Logger) IDetector {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 4
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 95
	}

	return &webSocketDetector{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.DialTimeout,
			Proxy:            websocket.DefaultDialer.Proxy,
		},
		log:   log,
		slots: make(chan struct{}, cfg.PoolSize),
		idle:  make(chan *websocket.Conn, cfg.PoolSize),
	}
}

func (d *webSocketDetector) Detect(ctx context.Context, img image.Image, th entity.Thresholds) (*entity.DetectorResult, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: d.cfg.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	resp, err := d.roundTrip(ctx, inferenceRequest{
		Op:         "detect",
		Image:      base64.StdEncoding.EncodeToString(buf.Bytes()),
		Confidence: th.Confidence,
		IoU:        th.IoU,
		InputSize:  th.InputSize,
	})
	if err != nil {
		return nil, err
	}

	if resp.Boxes == nil {
		return &entity.DetectorResult{}, nil
	}

	boxes := make([]entity.RawDetection, 0, len(resp.Boxes))
	for i, b := range resp.Boxes {
		if len(b.XYWH) != 4 {
			return nil, fmt.Errorf("box %d: expected 4 xywh values, got %d", i, len(b.XYWH))
		}
		boxes = append(boxes, entity.RawDetection{
			ClassID:    b.Class,
			Confidence: b.Confidence,
			CenterX:    b.XYWH[0],
			CenterY:    b.XYWH[1],
			Width:      b.XYWH[2],
			Height:     b.XYWH[3],
		})
	}

	return &entity.DetectorResult{Boxes: boxes}, nil
}

func (d *webSocketDetector) ClassCount(ctx context.Context) (int, error) {
	resp, err := d.roundTrip(ctx, inferenceRequest{Op: "info"})
	if err != nil {
		return 0, err
	}
	if resp.Classes <= 0 {
		return 0, fmt.Errorf("inference service reported %d classes", resp.Classes)
	}
	return resp.Classes, nil
}

func (d *webSocketDetector) roundTrip(ctx context.Context, req inferenceRequest) (*inferenceResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", req.Op, err)
	}

	conn, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}

	deadline, _ := ctx.Deadline()
	if err := conn.SetWriteDeadline(deadline); err != nil {
		d.discard(conn)
		return nil, fmt.Errorf("set write deadline: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		d.discard(conn)
		return nil, fmt.Errorf("send %s request: %w", req.Op, err)
	}

	if err := conn.SetReadDeadline(deadline); err != nil {
		d.discard(conn)
		return nil, fmt.Errorf("set read deadline: %w", err)
	}
	_, message, err := conn.ReadMessage()
	if err != nil {
		d.discard(conn)
		return nil, fmt.Errorf("read %s response: %w", req.Op, err)
	}

	d.release(conn)

	var resp inferenceResponse
	if err := json.Unmarshal(message, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal %s response: %w", req.Op, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("inference service: %s", resp.Error)
	}

	return &resp, nil
}

func (d *webSocketDetector) acquire(ctx context.Context) (*websocket.Conn, error) {
	select {
	case d.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		<-d.slots
		return nil, ErrDetectorClosed
	}

	select {
	case conn := <-d.idle:
		return conn, nil
	default:
	}

	d.log.WithFields(logrus.Fields{
		"url": d.cfg.URL,
	}).Debug("Dialing inference service")

	conn, _, err := d.dialer.DialContext(ctx, d.cfg.URL, nil)
	if err != nil {
		<-d.slots
		return nil, fmt.Errorf("failed to connect to %s: %w", d.cfg.URL, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
		if err != nil {
			d.log.Warnf("Error sending pong: %v", err)
		}
		return nil
	})

	return conn, nil
}

func (d *webSocketDetector) release(conn *websocket.Conn) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()

	if closed {
		conn.Close()
	} else {
		d.idle <- conn
	}
	<-d.slots
}

func (d *webSocketDetector) discard(conn *websocket.Conn) {
	conn.Close()
	<-d.slots
}

func (d *webSocketDetector) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	for {
		select {
		case conn := <-d.idle:
			conn.Close()
		default:
			return nil
		}
	}
}
