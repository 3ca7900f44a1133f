package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecowatch/emission-monitor/internal/domain"
	"github.com/ecowatch/emission-monitor/internal/repository"
	"github.com/ecowatch/emission-monitor/internal/store"
)

var deadline = time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

func createCompany(t *testing.T, svcs *Services, current, max float64) *domain.Company {
	t.Helper()
	in := validCompany()
	in.CurrentAmount = current
	in.MaxAllowed = max
	c, err := svcs.Companies.Create(context.Background(), in)
	require.NoError(t, err)
	return c
}

func TestPenaltyCreateValidation(t *testing.T) {
	svcs, _ := newTestServices()
	ctx := context.Background()

	var vErr *ValidationError
	_, err := svcs.Penalties.Create(ctx, 0, deadline)
	require.ErrorAs(t, err, &vErr)

	_, err = svcs.Penalties.Create(ctx, 1, time.Time{})
	require.ErrorAs(t, err, &vErr)
}

func TestPenaltyCreateUnknownCompany(t *testing.T) {
	svcs, _ := newTestServices()
	_, err := svcs.Penalties.Create(context.Background(), 404, deadline)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPenaltyCreateCompliantCompany(t *testing.T) {
	svcs, _ := newTestServices()
	ctx := context.Background()

	c := createCompany(t, svcs, 80, 100)
	require.Equal(t, domain.StatusGood, c.Status)

	p, err := svcs.Penalties.Create(ctx, c.ID, deadline)
	require.NoError(t, err)
	assert.Equal(t, "0.000", p.ExcessAmount.StringFixed(3))
	assert.Equal(t, 0, p.TreesRequired)
	assert.Equal(t, domain.PenaltyActive, p.Status)
	assert.Regexp(t, `^PEN-[0-9A-F]{8}$`, p.Number)
}

func TestPenaltyCreateOverThreshold(t *testing.T) {
	svcs, _ := newTestServices()
	ctx := context.Background()

	c := createCompany(t, svcs, 150, 100)
	require.Equal(t, domain.StatusBad, c.Status)

	p, err := svcs.Penalties.Create(ctx, c.ID, deadline)
	require.NoError(t, err)
	assert.Equal(t, "50.000", p.ExcessAmount.StringFixed(3))
	assert.Equal(t, 500, p.TreesRequired)
}

func TestPenaltySnapshotIsolation(t *testing.T) {
	svcs, _ := newTestServices()
	ctx := context.Background()

	c := createCompany(t, svcs, 150, 100)
	p, err := svcs.Penalties.Create(ctx, c.ID, deadline)
	require.NoError(t, err)
	require.Equal(t, "50.000", p.ExcessAmount.StringFixed(3))

	// Later company mutations must not bleed into the stored penalty.
	_, err = svcs.Companies.UpdateReading(ctx, c.ID, 300)
	require.NoError(t, err)

	stored, err := svcs.Penalties.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.000", stored.ExcessAmount.StringFixed(3))
	assert.Equal(t, 500, stored.TreesRequired)
}

func TestPenaltyOperatorTransitions(t *testing.T) {
	svcs, _ := newTestServices()
	ctx := context.Background()
	c := createCompany(t, svcs, 150, 100)

	p, err := svcs.Penalties.Create(ctx, c.ID, deadline)
	require.NoError(t, err)

	done, err := svcs.Penalties.Complete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PenaltyCompleted, done.Status)

	// Terminal state: every further transition is rejected and nothing moves.
	_, err = svcs.Penalties.Cancel(ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrIllegalTransition)
	stored, err := svcs.Penalties.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PenaltyCompleted, stored.Status)

	p2, err := svcs.Penalties.Create(ctx, c.ID, deadline)
	require.NoError(t, err)
	cancelled, err := svcs.Penalties.Cancel(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PenaltyCancelled, cancelled.Status)
	_, err = svcs.Penalties.Complete(ctx, p2.ID)
	require.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestSubmitResponseCompletesAndRecords(t *testing.T) {
	mem := repository.NewMemory()
	notifier := &recordingNotifier{}
	svcs := NewWithRepos(Repos{
		Companies:     mem.Companies(),
		Penalties:     mem.Penalties(),
		SensorData:    mem.SensorData(),
		Notifications: mem.Notifications(),
		Responses:     mem.Responses(),
		Regions:       mem.Regions(),
	}, store.NewMemoryKV(), notifier, nil)
	ctx := context.Background()

	c := createCompany(t, svcs, 150, 100)
	p, err := svcs.Penalties.Create(ctx, c.ID, deadline)
	require.NoError(t, err)

	done, err := svcs.Penalties.SubmitResponse(ctx, p.ID, c.ID, "planted 500 saplings", []string{"proof.pdf"})
	require.NoError(t, err)
	assert.Equal(t, domain.PenaltyCompleted, done.Status)

	responses, err := svcs.Penalties.Responses(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "planted 500 saplings", responses[0].Comment)
	assert.Equal(t, []string{"proof.pdf"}, responses[0].FilePaths)

	notifications, err := mem.Notifications().ListByCompany(ctx, c.ID, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Message, p.Number)

	assert.Equal(t, []string{p.Number}, notifier.responses)
}

func TestSubmitResponseRejectsEmptyComment(t *testing.T) {
	svcs, _ := newTestServices()
	ctx := context.Background()

	c := createCompany(t, svcs, 150, 100)
	p, err := svcs.Penalties.Create(ctx, c.ID, deadline)
	require.NoError(t, err)

	var vErr *ValidationError
	_, err = svcs.Penalties.SubmitResponse(ctx, p.ID, c.ID, "   ", nil)
	require.ErrorAs(t, err, &vErr)

	// Nothing was written.
	stored, err := svcs.Penalties.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PenaltyActive, stored.Status)
	responses, err := svcs.Penalties.Responses(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, responses)
}

// failingResponses rejects every write, for exercising mid-sequence failures.
type failingResponses struct {
	repository.ResponseRepository
}

func (failingResponses) Create(context.Context, *domain.PenaltyResponse) error {
	return errors.New("response store down")
}

func TestSubmitResponseStatusWriteLeads(t *testing.T) {
	mem := repository.NewMemory()
	svcs := NewWithRepos(Repos{
		Companies:     mem.Companies(),
		Penalties:     mem.Penalties(),
		SensorData:    mem.SensorData(),
		Notifications: mem.Notifications(),
		Responses:     failingResponses{mem.Responses()},
		Regions:       mem.Regions(),
	}, store.NewMemoryKV(), nil, nil)
	ctx := context.Background()

	c := createCompany(t, svcs, 150, 100)
	p, err := svcs.Penalties.Create(ctx, c.ID, deadline)
	require.NoError(t, err)

	_, err = svcs.Penalties.SubmitResponse(ctx, p.ID, c.ID, "remediation done", nil)
	require.Error(t, err)

	// The status transition is already durable; no response row, no
	// notification.
	stored, err := svcs.Penalties.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PenaltyCompleted, stored.Status)
	responses, err := mem.Responses().ListByPenalty(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, responses)
	notifications, err := mem.Notifications().ListByCompany(ctx, c.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestSubmitResponseScopedToOwningCompany(t *testing.T) {
	svcs, _ := newTestServices()
	ctx := context.Background()

	owner := createCompany(t, svcs, 150, 100)
	in := validCompany()
	in.Registration = "555555555"
	other, err := svcs.Companies.Create(ctx, in)
	require.NoError(t, err)

	p, err := svcs.Penalties.Create(ctx, owner.ID, deadline)
	require.NoError(t, err)

	_, err = svcs.Penalties.SubmitResponse(ctx, p.ID, other.ID, "not ours", nil)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSubmitResponseOnTerminalPenalty(t *testing.T) {
	svcs, _ := newTestServices()
	ctx := context.Background()

	c := createCompany(t, svcs, 150, 100)
	p, err := svcs.Penalties.Create(ctx, c.ID, deadline)
	require.NoError(t, err)
	_, err = svcs.Penalties.Cancel(ctx, p.ID)
	require.NoError(t, err)

	_, err = svcs.Penalties.SubmitResponse(ctx, p.ID, c.ID, "too late", nil)
	require.ErrorIs(t, err, domain.ErrIllegalTransition)
}
