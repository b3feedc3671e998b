package leads

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Lead represents a contact submission from the landing page form.
// The JSON shape keeps the document-database field names the form expects.
type Lead struct {
	ID        string    `json:"_id" dynamodbav:"id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Email     string    `json:"email" dynamodbav:"email"`
	Phone     string    `json:"phone" dynamodbav:"phone"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
}

// CreateLeadRequest holds the three submitted fields
type CreateLeadRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Validate trims the fields and checks that none is empty.
func (r *CreateLeadRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Name == "" || r.Email == "" || r.Phone == "" {
		return ErrMissingFields
	}
	return nil
}

func newLead(id string, req *CreateLeadRequest, createdAt time.Time) *Lead {
	return &Lead{
		ID:        id,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// textField accepts any JSON scalar and keeps its textual form, so
// {"phone": 15551234567} is stored as "15551234567". null, false and zero
// read as empty and so count as missing.
type textField string

func (f *textField) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = textField(s)
	case '{', '[':
		return ErrInvalidField
	default:
		if bytes.Equal(trimmed, []byte("false")) {
			*f = ""
			return nil
		}
		if n, err := strconv.ParseFloat(string(trimmed), 64); err == nil && n == 0 {
			*f = ""
			return nil
		}
		*f = textField(trimmed)
	}
	return nil
}

// createLeadPayload is the wire form of POST /api/leads.
type createLeadPayload struct {
	Name  textField `json:"name"`
	Email textField `json:"email"`
	Phone textField `json:"phone"`
}

func (p createLeadPayload) request() CreateLeadRequest {
	return CreateLeadRequest{
		Name:  string(p.Name),
		Email: string(p.Email),
		Phone: string(p.Phone),
	}
}
