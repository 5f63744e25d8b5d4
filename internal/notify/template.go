package notify

import (
	"strconv"
	"strings"
	"time"

	"github.com/stringdesk/stringing-service/internal/domain"
)

// Template keys.
const (
	TemplateDay8Reminder  = "day8_reminder"
	TemplateDay10Notice   = "day10_notice"
	TemplateTensionNotice = "tension_notice"
	TemplateJobReceived   = "job_received"
)

// DefaultTemplates are used when the store has no override.
var DefaultTemplates = map[string]string{
	TemplateDay8Reminder: "Hi {{member_name}}, your racquet (ticket {{ticket_number}}) has been ready since " +
		"{{ready_date}}. Please pick it up by {{pickup_deadline}}. - {{shop_name}}",
	TemplateDay10Notice: "Hi {{member_name}}, final notice: your racquet (ticket {{ticket_number}}) has been " +
		"waiting since {{ready_date}}. Please collect it as soon as possible. - {{shop_name}}",
	TemplateTensionNotice: "Hi {{member_name}}, your racquet (ticket {{ticket_number}}) was strung at " +
		"{{final_tension}} lbs instead of the requested {{requested_tension}} lbs. - {{shop_name}}",
	TemplateJobReceived: "Hi {{member_name}}, we received your racquet. Your ticket number is {{ticket_number}}. " +
		"Estimated pickup: {{pickup_deadline}}. - {{shop_name}}",
}

// IsReminderTemplate reports whether key names a pickup reminder.
func IsReminderTemplate(key string) bool {
	return key == TemplateDay8Reminder || key == TemplateDay10Notice
}

// Vars builds the placeholder values for a job.
func Vars(job *domain.Job, shopName string, loc *time.Location) map[string]string {
	vars := map[string]string{
		"member_name":       "Customer",
		"ticket_number":     "N/A",
		"ready_date":        "N/A",
		"pickup_deadline":   "N/A",
		"shop_name":         shopName,
		"requested_tension": "N/A",
		"final_tension":     "N/A",
	}
	if job == nil {
		return vars
	}
	if job.MemberName != "" {
		vars["member_name"] = job.MemberName
	}
	if job.TicketNumber != "" {
		vars["ticket_number"] = job.TicketNumber
	}
	if job.ReadyForPickupAt != nil {
		vars["ready_date"] = formatDate(job.ReadyForPickupAt.In(orUTC(loc)))
	}
	if job.PickupDeadline != nil {
		vars["pickup_deadline"] = formatDate(*job.PickupDeadline)
	}
	if job.RequestedTension != nil {
		vars["requested_tension"] = strconv.Itoa(*job.RequestedTension)
	}
	if t := job.FinalTension(); t != nil {
		vars["final_tension"] = strconv.Itoa(*t)
	}
	return vars
}

// Render replaces every {{name}} placeholder with its value. Unknown
// placeholders are left as they are.
func Render(body string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(body)
}

func formatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
