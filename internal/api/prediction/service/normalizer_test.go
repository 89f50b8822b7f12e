package predictionService_test

import (
	predictionService "SmartShopping/internal/api/prediction/service"
	"SmartShopping/internal/entity"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	classes := testClasses(t)
	cat := testCatalog(t)

	tests := []struct {
		name      string
		raw       entity.RawDetection
		wantClass string
		wantPrice float64
	}{
		{name: "catalog hit", raw: entity.RawDetection{ClassID: 0, Confidence: 0.9}, wantClass: "apple", wantPrice: 0.5},
		{name: "case differs from catalog", raw: entity.RawDetection{ClassID: 7, Confidence: 0.9}, wantClass: "milk", wantPrice: 2.95},
		{name: "catalog miss", raw: entity.RawDetection{ClassID: 11, Confidence: 0.9}, wantClass: "yogurt", wantPrice: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := predictionService.Normalize(tt.raw, classes, cat)
			require.NoError(t, err)
			assert.Equal(t, tt.wantClass, d.ClassName)
			assert.Equal(t, tt.wantPrice, d.Price)
			assert.Equal(t, tt.raw.Confidence, d.Confidence)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	classes := testClasses(t)
	cat := testCatalog(t)
	raw := entity.RawDetection{ClassID: 1, Confidence: 0.71, CenterX: 320, CenterY: 240, Width: 64, Height: 48}

	first, err := predictionService.Normalize(raw, classes, cat)
	require.NoError(t, err)
	second, err := predictionService.Normalize(raw, classes, cat)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalize_UnknownClass(t *testing.T) {
	for _, id := range []int{-1, 12, 100} {
		_, err := predictionService.Normalize(entity.RawDetection{ClassID: id}, testClasses(t), testCatalog(t))

		var unknown *entity.UnknownClassError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, id, unknown.ClassID)
	}
}
