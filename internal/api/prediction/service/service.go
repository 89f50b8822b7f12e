package predictionService

import (
	"SmartShopping/internal/entity"
	"SmartShopping/pkg/catalog"
	"SmartShopping/pkg/detector"
	"SmartShopping/pkg/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IPredictionService interface {
	PredictFromPayload(ctx context.Context, payload string) (*entity.PredictionResponse, error)
	PredictFromBytes(ctx context.Context, data []byte) (*entity.PredictionResponse, error)
}

type predictionService struct {
	log        *logrus.Logger
	detector   detector.IDetector
	classes    *entity.ClassTable
	catalog    catalog.ICatalog
	utils      utils.IUtils
	thresholds entity.Thresholds
}

func New(
	log *logrus.Logger,
	detector detector.IDetector,
	classes *entity.ClassTable,
	catalog catalog.ICatalog,
	utils utils.IUtils,
	thresholds entity.Thresholds,
) IPredictionService {
	return &predictionService{
		log:        log,
		detector:   detector,
		classes:    classes,
		catalog:    catalog,
		utils:      utils,
		thresholds: thresholds,
	}
}
