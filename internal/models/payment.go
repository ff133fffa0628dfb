package models

import "gorm.io/gorm"

// Payment methods accepted by the mock gateway.
const (
	PayCard         = "card"
	PayPaypal       = "paypal"
	PayBankTransfer = "bank_transfer"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	return m == PayCard || m == PayPaypal || m == PayBankTransfer
}

// Payment records a processed (mock) payment for an appointment.
type Payment struct {
	gorm.Model

	ClientID      string      `gorm:"not null;index" json:"client_id"`
	CounselorID   string      `gorm:"not null;index" json:"counselor_id"`
	AppointmentID string      `gorm:"type:uuid;not null;index" json:"appointment_id"`
	Appointment   Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`

	Amount        float64 `gorm:"not null" json:"amount"`
	Currency      string  `gorm:"default:USD" json:"currency"`
	PaymentMethod string  `gorm:"not null" json:"payment_method"`
	Status        string  `gorm:"default:pending" json:"status"`
	TransactionID string  `gorm:"uniqueIndex" json:"transaction_id"`

	RefundAmount float64 `gorm:"default:0" json:"refund_amount"`
	RefundReason string  `json:"refund_reason,omitempty"`
}
