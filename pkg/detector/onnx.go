//go:build gocv
// +build gocv

package detector

import (
	"SmartShopping/internal/entity"
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

type ONNXConfig struct {
	ModelPath string
}

// onnxDetector runs a YOLO-style ONNX export in-process through OpenCV's dnn
// module. The model output is expected as [1, 4+classes, candidates] with
// (cx, cy, w, h) in input pixels followed by one score per class.
type onnxDetector struct {
	mu  sync.Mutex
	net gocv.Net

	classes int
}

func NewONNXDetector(cfg ONNXConfig) (IDetector, error) {
	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &onnxDetector{net: net}, nil
}

func (d *onnxDetector) Detect(ctx context.Context, img image.Image, th entity.Thresholds) (*entity.DetectorResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, errors.New("empty image")
	}

	size := th.InputSize
	if size <= 0 {
		size = 640
	}

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	d.mu.Unlock()
	defer out.Close()

	dims := out.Size()
	if len(dims) != 3 || dims[1] <= 4 {
		return nil, fmt.Errorf("unexpected model output shape %v", dims)
	}
	rows, candidates := dims[1], dims[2]
	classes := rows - 4

	d.mu.Lock()
	d.classes = classes
	d.mu.Unlock()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read model output: %w", err)
	}

	sx := float64(mat.Cols()) / float64(size)
	sy := float64(mat.Rows()) / float64(size)

	at := func(row, col int) float64 {
		return float64(data[row*candidates+col])
	}

	var (
		boxes  []entity.RawDetection
		rects  []image.Rectangle
		scores []float32
	)

	for i := 0; i < candidates; i++ {
		best, bestScore := 0, 0.0
		for c := 0; c < classes; c++ {
			if s := at(4+c, i); s > bestScore {
				best, bestScore = c, s
			}
		}
		if bestScore < th.Confidence {
			continue
		}

		cx, cy := at(0, i)*sx, at(1, i)*sy
		w, h := at(2, i)*sx, at(3, i)*sy

		boxes = append(boxes, entity.RawDetection{
			ClassID:    best,
			Confidence: bestScore,
			CenterX:    cx,
			CenterY:    cy,
			Width:      w,
			Height:     h,
		})

		// Offset each class into its own region so NMS never suppresses
		// overlapping boxes of different classes.
		offset := best * 4 * (mat.Cols() + mat.Rows())
		x0 := int(cx-w/2) + offset
		y0 := int(cy-h/2) + offset
		rects = append(rects, image.Rect(x0, y0, x0+int(w), y0+int(h)))
		scores = append(scores, float32(bestScore))
	}

	if len(boxes) == 0 {
		return &entity.DetectorResult{Boxes: []entity.RawDetection{}}, nil
	}

	keep := gocv.NMSBoxes(rects, scores, float32(th.Confidence), float32(th.IoU))

	result := make([]entity.RawDetection, 0, len(keep))
	for _, idx := range keep {
		result = append(result, boxes[idx])
	}

	return &entity.DetectorResult{Boxes: result}, nil
}

// ClassCount needs one forward pass to learn the output shape.
func (d *onnxDetector) ClassCount(ctx context.Context) (int, error) {
	d.mu.Lock()
	classes := d.classes
	d.mu.Unlock()
	if classes > 0 {
		return classes, nil
	}

	blank := image.NewRGBA(image.Rect(0, 0, 32, 32))
	if _, err := d.Detect(ctx, blank, entity.Thresholds{Confidence: 1, IoU: 1, InputSize: 640}); err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classes, nil
}

func (d *onnxDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
