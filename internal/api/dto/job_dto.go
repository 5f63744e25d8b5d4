package dto

import (
	"time"

	"github.com/stringdesk/stringing-service/internal/domain"
)

// CreateJobRequest is the public intake form.
type CreateJobRequest struct {
	MemberName       string  `json:"member_name"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email"`
	RacquetType      string  `json:"racquet_type"`
	StringID         string  `json:"string_id"`
	RequestedTension *int    `json:"requested_tension"`
	Notes            string  `json:"notes"`
	TermsAccepted    bool    `json:"terms_accepted"`
	DropInDate       *string `json:"drop_in_date"`
	PickupDeadline   *string `json:"pickup_deadline"`
	RushService      string  `json:"rush_service"`
	ServiceTier      string  `json:"service_tier"`
	GrommetRepair    bool    `json:"grommet_repair"`
	StencilRequest   string  `json:"stencil_request"`
	GripAddOn        bool    `json:"grip_add_on"`
}

// QuoteRequest prices an intake selection.
type QuoteRequest struct {
	StringID      string `json:"string_id"`
	RushService   string `json:"rush_service"`
	ServiceTier   string `json:"service_tier"`
	GrommetRepair bool   `json:"grommet_repair"`
	GripAddOn     bool   `json:"grip_add_on"`
}

// StaffActionRequest carries the acting staff name for simple transitions.
type StaffActionRequest struct {
	StaffName string `json:"staff_name"`
}

// StatusChangeRequest payload.
type StatusChangeRequest struct {
	Status    string `json:"status"`
	StaffName string `json:"staff_name"`
}

// PickupRequest payload.
type PickupRequest struct {
	StaffName string `json:"staff_name"`
	Signature string `json:"signature"`
	Notes     string `json:"notes"`
}

// PaymentRequest payload. AmountCents is ignored by the full-balance route.
type PaymentRequest struct {
	AmountCents   int64  `json:"amount_cents"`
	StaffName     string `json:"staff_name"`
	PaymentMethod string `json:"payment_method"`
}

// TensionOverrideRequest payload.
type TensionOverrideRequest struct {
	OverrideLbs int    `json:"override_lbs"`
	StaffName   string `json:"staff_name"`
	Reason      string `json:"reason"`
}

// TensionNoticeRequest payload.
type TensionNoticeRequest struct {
	StaffName string `json:"staff_name"`
	Message   string `json:"message"`
}

// MaxTensionRequest payload. A null value clears the limit.
type MaxTensionRequest struct {
	MaxTension *int `json:"max_tension"`
}

// AssignStringerRequest payload.
type AssignStringerRequest struct {
	Stringer string `json:"stringer"`
}

// ReminderRequest payload.
type ReminderRequest struct {
	TemplateKey string `json:"template_key"`
	StaffName   string `json:"staff_name"`
	Channel     string `json:"channel"`
	Message     string `json:"message"`
}

// AttachmentRequest registers an uploaded photo.
type AttachmentRequest struct {
	Stage      string `json:"stage"`
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
	UploadedBy string `json:"uploaded_by"`
}

// StringRequest payload for catalog writes.
type StringRequest struct {
	Name       string `json:"name"`
	Brand      string `json:"brand"`
	Gauge      string `json:"gauge"`
	Active     *bool  `json:"active"`
	PriceCents int64  `json:"price_cents"`
}

// TensionOverrideResponse is present only when all three values are set.
type TensionOverrideResponse struct {
	Lbs    int    `json:"lbs"`
	Staff  string `json:"staff"`
	Reason string `json:"reason"`
}

// AddOnsResponse mirrors the intake selections.
type AddOnsResponse struct {
	RushService    string `json:"rush_service"`
	ServiceTier    string `json:"service_tier"`
	GrommetRepair  bool   `json:"grommet_repair"`
	StencilRequest string `json:"stencil_request,omitempty"`
	GripAddOn      bool   `json:"grip_add_on"`
}

// StringResponse is a catalog entry.
type StringResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Gauge       string `json:"gauge"`
	DisplayName string `json:"display_name"`
	Active      bool   `json:"active"`
	PriceCents  int64  `json:"price_cents"`
}

// JobSummary is a list row.
type JobSummary struct {
	ID               string     `json:"id"`
	TicketNumber     string     `json:"ticket_number"`
	MemberName       string     `json:"member_name"`
	Phone            string     `json:"phone"`
	RacquetType      string     `json:"racquet_type"`
	Status           string     `json:"status"`
	StatusLabel      string     `json:"status_label"`
	PaymentStatus    string     `json:"payment_status"`
	AmountDueCents   int64      `json:"amount_due_cents"`
	AmountPaidCents  int64      `json:"amount_paid_cents"`
	DropInDate       time.Time  `json:"drop_in_date"`
	PickupDeadline   *time.Time `json:"pickup_deadline"`
	ReadyForPickupAt *time.Time `json:"ready_for_pickup_at"`
	AssignedStringer *string    `json:"assigned_stringer"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// JobResponse is the full job record.
type JobResponse struct {
	JobSummary
	Email            *string                  `json:"email"`
	StringID         string                   `json:"string_id"`
	String           *StringResponse          `json:"string,omitempty"`
	RequestedTension *int                     `json:"requested_tension"`
	FinalTension     *int                     `json:"final_tension"`
	MaxTension       *int                     `json:"max_tension"`
	TensionOverride  *TensionOverrideResponse `json:"tension_override"`
	Notes            string                   `json:"notes"`
	TermsAcceptedAt  *time.Time               `json:"terms_accepted_at"`
	AddOns           AddOnsResponse           `json:"add_ons"`
	PaidAt           *time.Time               `json:"paid_at"`
	PaidByStaff      *string                  `json:"paid_by_staff"`
	PickedUpAt       *time.Time               `json:"picked_up_at"`
	PickedUpBy       *string                  `json:"picked_up_by"`
	PickupNotes      string                   `json:"pickup_notes,omitempty"`
	Day8ReminderAt   *time.Time               `json:"day8_reminder_sent_at"`
	Day10ReminderAt  *time.Time               `json:"day10_reminder_sent_at"`
}

// BadgeResponse is a due or countdown badge.
type BadgeResponse struct {
	Level string `json:"level"`
	Label string `json:"label,omitempty"`
	Days  int    `json:"days"`
}

// JobDetailResponse adds ledger and urgency data to the job.
type JobDetailResponse struct {
	Job              JobResponse    `json:"job"`
	BalanceDueCents  int64          `json:"balance_due_cents"`
	FullyPaid        bool           `json:"fully_paid"`
	Due              BadgeResponse  `json:"due"`
	Countdown        BadgeResponse  `json:"pickup_countdown"`
	AttachmentCounts map[string]int `json:"attachment_counts"`
}

// PaymentEventResponse is one ledger row.
type PaymentEventResponse struct {
	ID            string    `json:"id"`
	AmountCents   int64     `json:"amount_cents"`
	PaymentMethod *string   `json:"payment_method"`
	StaffName     string    `json:"staff_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// PaymentResponse reports the recorded event and the updated totals.
type PaymentResponse struct {
	Payment         PaymentEventResponse `json:"payment"`
	AmountDueCents  int64                `json:"amount_due_cents"`
	AmountPaidCents int64                `json:"amount_paid_cents"`
	BalanceDueCents int64                `json:"balance_due_cents"`
	PaymentStatus   string               `json:"payment_status"`
}

// AttachmentResponse is photo metadata.
type AttachmentResponse struct {
	ID             string    `json:"id"`
	Stage          string    `json:"stage"`
	StorageKey     string    `json:"storage_key"`
	FileName       string    `json:"file_name"`
	MimeType       string    `json:"mime_type"`
	SizeBytes      int64     `json:"size_bytes"`
	UploadedByName *string   `json:"uploaded_by_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReminderResponse reports a delivered message.
type ReminderResponse struct {
	ReceiptID string `json:"receipt_id"`
	Body      string `json:"body"`
}

// NewJobSummary maps a job to its list row.
func NewJobSummary(job *domain.Job) JobSummary {
	return JobSummary{
		ID:               job.ID,
		TicketNumber:     job.TicketNumber,
		MemberName:       job.MemberName,
		Phone:            job.Phone,
		RacquetType:      job.RacquetType,
		Status:           string(job.Status),
		StatusLabel:      job.Status.Label(),
		PaymentStatus:    string(job.PaymentStatus),
		AmountDueCents:   job.AmountDue,
		AmountPaidCents:  job.AmountPaid,
		DropInDate:       job.DropInDate,
		PickupDeadline:   job.PickupDeadline,
		ReadyForPickupAt: job.ReadyForPickupAt,
		AssignedStringer: job.AssignedStringer,
		CreatedAt:        job.CreatedAt,
		UpdatedAt:        job.UpdatedAt,
	}
}

// NewJobResponse maps a job to the full record.
func NewJobResponse(job *domain.Job) JobResponse {
	resp := JobResponse{
		JobSummary:       NewJobSummary(job),
		Email:            job.Email,
		StringID:         job.StringID,
		RequestedTension: job.RequestedTension,
		FinalTension:     job.FinalTension(),
		MaxTension:       job.MaxTension,
		Notes:            job.Notes,
		TermsAcceptedAt:  job.TermsAcceptedAt,
		AddOns: AddOnsResponse{
			RushService:    string(job.AddOns.Rush),
			ServiceTier:    string(job.AddOns.Tier),
			GrommetRepair:  job.AddOns.GrommetRepair,
			StencilRequest: job.AddOns.StencilRequest,
			GripAddOn:      job.AddOns.GripAddOn,
		},
		PaidAt:          job.PaidAt,
		PaidByStaff:     job.PaidByStaff,
		PickedUpAt:      job.PickedUpAt,
		PickedUpBy:      job.PickedUpBy,
		PickupNotes:     job.PickupNotes,
		Day8ReminderAt:  job.Day8ReminderAt,
		Day10ReminderAt: job.Day10ReminderAt,
	}
	if job.String != nil {
		str := NewStringResponse(job.String)
		resp.String = &str
	}
	if job.TensionOverride != nil {
		resp.TensionOverride = &TensionOverrideResponse{
			Lbs:    job.TensionOverride.Lbs,
			Staff:  job.TensionOverride.Staff,
			Reason: job.TensionOverride.Reason,
		}
	}
	return resp
}

// NewStringResponse maps a catalog entry.
func NewStringResponse(option *domain.StringOption) StringResponse {
	return StringResponse{
		ID:          option.ID,
		Name:        option.Name,
		Brand:       option.Brand,
		Gauge:       option.Gauge,
		DisplayName: option.DisplayName(),
		Active:      option.Active,
		PriceCents:  option.PriceCents,
	}
}

func NewPaymentEventResponse(event domain.PaymentEvent) PaymentEventResponse {
	return PaymentEventResponse{
		ID:            event.ID,
		AmountCents:   event.Amount,
		PaymentMethod: event.PaymentMethod,
		StaffName:     event.StaffName,
		CreatedAt:     event.CreatedAt,
	}
}

func NewAttachmentResponse(att *domain.JobAttachment) AttachmentResponse {
	return AttachmentResponse{
		ID:             att.ID,
		Stage:          string(att.Stage),
		StorageKey:     att.StorageKey,
		FileName:       att.FileName,
		MimeType:       att.MimeType,
		SizeBytes:      att.SizeBytes,
		UploadedByName: att.UploadedByName,
		CreatedAt:      att.CreatedAt,
	}
}
