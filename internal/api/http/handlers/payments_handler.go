package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stringdesk/stringing-service/internal/api/dto"
	"github.com/stringdesk/stringing-service/internal/ledger"
	"github.com/stringdesk/stringing-service/internal/service"
)

// PaymentsHandler records payments against a job.
type PaymentsHandler struct {
	payments *service.PaymentService
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(payments *service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{payments: payments}
}

// RecordPayment handles POST /staff/jobs/:id/payments.
func (h *PaymentsHandler) RecordPayment(c *fiber.Ctx) error {
	var req dto.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	result, err := h.payments.RecordPayment(c.UserContext(), c.Params("id"), req.AmountCents,
		actingStaff(c, req.StaffName), req.PaymentMethod)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, paymentResponse(result), result.Warnings)
}

// PayFullBalance handles POST /staff/jobs/:id/payments/full.
func (h *PaymentsHandler) PayFullBalance(c *fiber.Ctx) error {
	var req dto.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	result, err := h.payments.PayFullBalance(c.UserContext(), c.Params("id"),
		actingStaff(c, req.StaffName), req.PaymentMethod)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, paymentResponse(result), result.Warnings)
}

func paymentResponse(result *service.PaymentResult) dto.PaymentResponse {
	return dto.PaymentResponse{
		Payment:         dto.NewPaymentEventResponse(result.Event),
		AmountDueCents:  result.Job.AmountDue,
		AmountPaidCents: result.Job.AmountPaid,
		BalanceDueCents: ledger.BalanceDue(result.Job),
		PaymentStatus:   string(result.Job.PaymentStatus),
	}
}
