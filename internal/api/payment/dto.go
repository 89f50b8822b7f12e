package payment

// PaymentConfig holds the fixed parts of the payment QR template. Only the
// amount varies per request.
type PaymentConfig struct {
	BaseURL  string `env:"PAYMENT_BASE_URL" validate:"required,url"`
	Mobile   string `env:"PAYMENT_MOBILE"`
	UEN      string `env:"PAYMENT_UEN"`
	Editable string `env:"PAYMENT_EDITABLE" validate:"omitempty,oneof=0 1"`
	Expiry   string `env:"PAYMENT_EXPIRY"`
	RefID    string `env:"PAYMENT_REF_ID"`
	Company  string `env:"PAYMENT_COMPANY"`
}

func DefaultPaymentConfig() PaymentConfig {
	return PaymentConfig{
		BaseURL:  "https://www.sgqrcode.com/paynow",
		Mobile:   "97656051",
		UEN:      "",
		Editable: "1",
		Expiry:   "2025/03/05 22:00",
		RefID:    "paymenttest",
		Company:  "",
	}
}

type QRCodeResponse struct {
	QRCodeURL string `json:"qr_code_url"`
}
