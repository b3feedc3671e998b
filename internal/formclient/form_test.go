package formclient

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nirvista/leadcapture/internal/leads"
)

type fakeCreator struct {
	mu      sync.Mutex
	calls   []Values
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeCreator) CreateLead(ctx context.Context, v Values) (*leads.Lead, error) {
	f.mu.Lock()
	f.calls = append(f.calls, v)
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return &leads.Lead{ID: "lead-1", Name: v.Name, Email: v.Email, Phone: v.Phone}, nil
}

func filledForm(c LeadCreator) *Form {
	f := NewForm(c)
	f.Set(FieldName, "Sarah Johnson")
	f.Set(FieldEmail, "sarah@company.com")
	f.Set(FieldPhone, "+15551234567")
	return f
}

func TestForm_SetIgnoresUnknownFields(t *testing.T) {
	f := NewForm(&fakeCreator{})
	f.Set(FieldName, "Ann")
	f.Set("company", "Acme")

	assert.Equal(t, Values{Name: "Ann"}, f.Values())
	assert.Equal(t, Status{}, f.Status())
}

func TestForm_SubmitSuccessClearsFields(t *testing.T) {
	creator := &fakeCreator{}
	f := filledForm(creator)

	lead, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sarah Johnson", lead.Name)

	assert.Equal(t, Status{Success: true}, f.Status())
	assert.Equal(t, Values{}, f.Values())
	require.Len(t, creator.calls, 1)
	assert.Equal(t, "+15551234567", creator.calls[0].Phone)
}

func TestForm_SubmitRequiresAllFields(t *testing.T) {
	creator := &fakeCreator{}
	f := NewForm(creator)
	f.Set(FieldName, "Ann")
	f.Set(FieldEmail, "ann@example.com")

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrIncompleteForm)
	assert.Empty(t, creator.calls)
	assert.Equal(t, Status{}, f.Status())
}

func TestForm_SubmitShowsServerMessage(t *testing.T) {
	f := filledForm(&fakeCreator{err: &APIError{StatusCode: 503, Message: "Database not connected. Please check server logs."}})

	_, err := f.Submit(context.Background())
	require.Error(t, err)

	st := f.Status()
	assert.False(t, st.Loading)
	assert.False(t, st.Success)
	assert.Equal(t, "Database not connected. Please check server logs.", st.Error)
	assert.Equal(t, "Sarah Johnson", f.Values().Name, "fields are kept after a failure")
}

func TestForm_SubmitFallsBackWithoutMessage(t *testing.T) {
	for name, err := range map[string]error{
		"network":       errors.New("dial tcp: connection refused"),
		"empty message": &APIError{StatusCode: 502},
		"blank message": &APIError{StatusCode: 500, Message: "  "},
	} {
		t.Run(name, func(t *testing.T) {
			f := filledForm(&fakeCreator{err: err})
			_, _ = f.Submit(context.Background())
			assert.Equal(t, FallbackErrorMessage, f.Status().Error)
		})
	}
}

func TestForm_SubmitClearsPreviousError(t *testing.T) {
	creator := &fakeCreator{err: errors.New("boom")}
	f := filledForm(creator)
	_, _ = f.Submit(context.Background())
	require.NotEmpty(t, f.Status().Error)

	creator.err = nil
	_, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.Status().Error)
}

func TestForm_LoadingBlocksSecondSubmit(t *testing.T) {
	creator := &fakeCreator{block: make(chan struct{}), started: make(chan struct{})}
	f := filledForm(creator)

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()

	<-creator.started
	assert.True(t, f.Status().Loading)

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(creator.block)
	require.NoError(t, <-done)
	assert.Len(t, creator.calls, 1)
}

func TestForm_ResetReturnsToForm(t *testing.T) {
	f := filledForm(&fakeCreator{})
	_, err := f.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, f.Status().Success)

	f.Reset()
	assert.Equal(t, Status{}, f.Status())
}

func TestNewForm_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() { NewForm(nil) })
}
