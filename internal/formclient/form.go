package formclient

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/nirvista/leadcapture/internal/leads"
)

// FallbackErrorMessage is shown when the server gives no message.
const FallbackErrorMessage = "Something went wrong. Please try again."

// Field names accepted by Form.Set.
const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldPhone = "phone"
)

var (
	// ErrIncompleteForm is returned by Submit when a field is empty; no request is sent.
	ErrIncompleteForm = errors.New("formclient: name, email and phone are required")

	// ErrSubmitInProgress is returned while a previous Submit is still loading.
	ErrSubmitInProgress = errors.New("formclient: submission already in progress")
)

// LeadCreator is the transport used by Form.
type LeadCreator interface {
	CreateLead(ctx context.Context, v Values) (*leads.Lead, error)
}

// Status is the form's submission state. The zero value is idle.
type Status struct {
	Loading bool
	Success bool
	Error   string
}

// Form is a controlled lead form. It is safe for concurrent use.
type Form struct {
	client LeadCreator

	mu     sync.Mutex
	values Values
	status Status
}

// NewForm returns an idle, empty form.
func NewForm(client LeadCreator) *Form {
	if client == nil {
		panic("formclient: lead creator required")
	}
	return &Form{client: client}
}

// Set updates one field. Unknown field names are ignored.
func (f *Form) Set(field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch field {
	case FieldName:
		f.values.Name = value
	case FieldEmail:
		f.values.Email = value
	case FieldPhone:
		f.values.Phone = value
	}
}

// Values returns the current field values.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Status returns the current submission state.
func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Submit sends the current values. On success the fields are cleared and the
// created lead is returned; on failure Status().Error holds the message to
// display.
func (f *Form) Submit(ctx context.Context) (*leads.Lead, error) {
	f.mu.Lock()
	if f.status.Loading {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	v := f.values
	if strings.TrimSpace(v.Name) == "" || strings.TrimSpace(v.Email) == "" || strings.TrimSpace(v.Phone) == "" {
		f.mu.Unlock()
		return nil, ErrIncompleteForm
	}
	f.status = Status{Loading: true}
	f.mu.Unlock()

	lead, err := f.client.CreateLead(ctx, v)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.status = Status{Error: errorMessage(err)}
		return nil, err
	}
	f.status = Status{Success: true}
	f.values = Values{}
	return lead, nil
}

// Reset leaves the confirmation state so another person can be registered.
// Field values are untouched.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status.Success = false
}

func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return FallbackErrorMessage
}
