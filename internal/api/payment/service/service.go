package paymentService

import (
	"SmartShopping/internal/api/payment"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IPaymentService interface {
	BuildPaymentURL(amount float64) string
	GenerateQR(ctx context.Context, amount float64) *payment.QRCodeResponse
}

type paymentService struct {
	log *logrus.Logger
	cfg payment.PaymentConfig
}

func New(log *logrus.Logger, cfg payment.PaymentConfig) IPaymentService {
	return &paymentService{
		log: log,
		cfg: cfg,
	}
}
