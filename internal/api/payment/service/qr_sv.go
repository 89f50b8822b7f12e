package paymentService

import (
	"SmartShopping/internal/api/payment"
	contextPkg "SmartShopping/pkg/context"
	"SmartShopping/pkg/log"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/context"
)

// BuildPaymentURL renders the QR link for amount. Parameter order is fixed
// and spaces are encoded as %20, which the QR service expects.
func (s *paymentService) BuildPaymentURL(amount float64) string {
	params := []struct {
		key   string
		value string
	}{
		{"mobile", s.cfg.Mobile},
		{"uen", s.cfg.UEN},
		{"editable", s.cfg.Editable},
		{"amount", strconv.FormatFloat(amount, 'f', -1, 64)},
		{"expiry", s.cfg.Expiry},
		{"ref_id", s.cfg.RefID},
		{"company", s.cfg.Company},
	}

	var b strings.Builder
	b.WriteString(s.cfg.BaseURL)
	for i, p := range params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(escape(p.value))
	}

	return b.String()
}

func (s *paymentService) GenerateQR(ctx context.Context, amount float64) *payment.QRCodeResponse {
	qrURL := s.BuildPaymentURL(amount)

	s.log.WithFields(log.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"amount":     amount,
	}).Info("Payment QR generated")

	return &payment.QRCodeResponse{QRCodeURL: qrURL}
}

func escape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}
