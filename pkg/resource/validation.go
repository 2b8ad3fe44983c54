package resource

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
)

var validate = validator.New()

// Channels a message, log or campaign can travel on
var Channels = []string{"sms", "whatsapp", "voice", "email", "rcs"}

// WebhookEvents a webhook may subscribe to
var WebhookEvents = []string{"message.sent", "message.delivered", "message.failed", "campaign.completed", "user.created"}

// UserBody is the writable shape of a user
type UserBody struct {
	Name      string `json:"name" validate:"required,max=120"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,oneof=admin developer viewer"`
	Status    string `json:"status" validate:"omitempty,oneof=active suspended invited"`
	ProjectID string `json:"project_id" validate:"omitempty"`
	Phone     string `json:"phone" validate:"omitempty,e164"`
}

// ProjectBody is the writable shape of a project
type ProjectBody struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
	Status      string `json:"status" validate:"omitempty,oneof=active archived"`
	OwnerID     string `json:"owner_id"`
	Environment string `json:"environment" validate:"omitempty,oneof=production staging development"`
}

// CampaignBody is the writable shape of a campaign
type CampaignBody struct {
	Name         string `json:"name" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=2000"`
	Channel      string `json:"channel" validate:"required,oneof=sms whatsapp voice email rcs"`
	Status       string `json:"status" validate:"omitempty,oneof=draft scheduled running paused completed"`
	ProjectID    string `json:"project_id"`
	AudienceSize int    `json:"audience_size" validate:"min=0"`
	ScheduledAt  string `json:"scheduled_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// WebhookBody is the writable shape of a webhook subscription
type WebhookBody struct {
	URL         string   `json:"url" validate:"required,url"`
	Description string   `json:"description" validate:"max=500"`
	Events      []string `json:"events" validate:"required,min=1,dive,oneof=message.sent message.delivered message.failed campaign.completed user.created"`
	Status      string   `json:"status" validate:"omitempty,oneof=active disabled"`
	ProjectID   string   `json:"project_id"`
}

// ValidateRecord checks rec against the resource's writable shape. Fields the
// shape does not declare pass through untouched.
func (s Spec) ValidateRecord(rec domain.Record) error {
	if s.NewBody == nil {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return domain.WrapError(domain.KindInvalidInput, err, "%s record is not serialisable", s.Name)
	}
	body := s.NewBody()
	if err := json.Unmarshal(raw, body); err != nil {
		return domain.WrapError(domain.KindInvalidInput, err, "invalid %s record", s.Name)
	}
	if err := validate.Struct(body); err != nil {
		return domain.WrapError(domain.KindInvalidInput, formatValidationError(err), "invalid %s record", s.Name)
	}
	return nil
}

func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, formatFieldError(e))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return err
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "e164":
		return fmt.Sprintf("%s must be an E.164 phone number", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "datetime":
		return fmt.Sprintf("%s must be an RFC3339 timestamp", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
