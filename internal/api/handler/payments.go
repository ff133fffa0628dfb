package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Suryathangaraj2003/consulting/internal/apperr"
	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type processPaymentRequest struct {
	AppointmentID string `json:"appointment_id"`
	PaymentMethod string `json:"payment_method"`
}

// ProcessPayment records a payment for an appointment and marks it paid.
// The gateway is mocked: every payment completes immediately.
func (h *Handler) ProcessPayment(c *gin.Context) {
	userID, _ := identity(c)

	var req processPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed",
			"errors": gin.H{"payment_method": "must be card, paypal or bank_transfer"}})
		return
	}

	appt, err := h.Storage.GetAppointmentByID(req.AppointmentID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Appointment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if appt.ClientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
		return
	}

	payment := models.Payment{
		ClientID:      userID,
		CounselorID:   appt.CounselorID,
		AppointmentID: appt.ID,
		Amount:        appt.Amount,
		PaymentMethod: req.PaymentMethod,
		Status:        "completed",
		TransactionID: fmt.Sprintf("txn_%d_%s", time.Now().UnixMilli(), uuid.New().String()[:8]),
	}
	if err := h.Storage.SavePayment(&payment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Payment processing failed"})
		return
	}

	appt.PaymentStatus = models.PaymentPaid
	if err := h.Storage.SaveAppointment(appt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Payment processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Payment processed successfully",
		"payment":        payment,
		"transaction_id": payment.TransactionID,
	})
}

// ListPayments returns the caller's payment history, newest first.
func (h *Handler) ListPayments(c *gin.Context) {
	userID, userType := identity(c)
	payments, err := h.Storage.GetPaymentsForUser(userID, userType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, payments)
}
