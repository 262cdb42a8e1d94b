// Package session owns the working scenario, its computed series and the
// active-case state, and coordinates them with the case store.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/iwvelando/outright-forecast/internal/cases"
	"github.com/iwvelando/outright-forecast/internal/compare"
	"github.com/iwvelando/outright-forecast/internal/metrics"
	"github.com/iwvelando/outright-forecast/internal/scenario"
	"go.uber.org/zap"
)

var (
	// ErrNameRequired is returned by Create for a blank name.
	ErrNameRequired = errors.New("please enter a case name")

	// ErrNoActiveCase is returned by Update when no case is loaded.
	ErrNoActiveCase = errors.New("no case loaded: load a case before updating")

	// ErrBusy is returned when the same operation is already in flight.
	ErrBusy = errors.New("operation already in progress")
)

// Guarded operation names.
const (
	opCompute = "compute"
	opCreate  = "create"
	opLoad    = "load"
	opUpdate  = "update"
	opDelete  = "delete"
	opRefresh = "refresh"
	opCompare = "compare"
)

// CaseStore is the remote case store.
type CaseStore interface {
	List(ctx context.Context) ([]cases.Summary, error)
	Create(ctx context.Context, name string, inputs scenario.Input) (*cases.Case, error)
	Get(ctx context.Context, id string) (*cases.Case, error)
	Update(ctx context.Context, id string, inputs scenario.Input) (*cases.Case, error)
	Delete(ctx context.Context, id string) error
}

// ComputeService turns a scenario into a raw monthly series.
type ComputeService interface {
	Compute(ctx context.Context, in scenario.Input) ([]metrics.RawRow, error)
}

// Manager is one session. All methods are safe for concurrent use.
type Manager struct {
	store    CaseStore
	compute  ComputeService
	notifier Notifier
	logger   *zap.Logger
	schedule []string

	mu      sync.RWMutex
	state   State
	inputs  scenario.Input
	results []metrics.ResultRow
	cases   []cases.Summary

	guardMu  sync.Mutex
	inFlight map[string]bool
}

// Options configures a Manager.
type Options struct {
	Store    CaseStore
	Compute  ComputeService
	Notifier Notifier
	Logger   *zap.Logger
	// Schedule lists the meeting dates every working scenario carries.
	Schedule []string
}

// New creates a session in NoActiveCase with default inputs.
func New(opts Options) *Manager {
	m := &Manager{
		store:    opts.Store,
		compute:  opts.Compute,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		schedule: append([]string(nil), opts.Schedule...),
		inFlight: make(map[string]bool),
	}
	if m.notifier == nil {
		m.notifier = nopNotifier{}
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	m.inputs = scenario.Default(m.schedule)
	return m
}

// acquire marks op in flight. The returned release must be deferred.
func (m *Manager) acquire(op string) (func(), error) {
	m.guardMu.Lock()
	defer m.guardMu.Unlock()
	if m.inFlight[op] {
		return nil, fmt.Errorf("%s: %w", op, ErrBusy)
	}
	m.inFlight[op] = true
	return func() {
		m.guardMu.Lock()
		delete(m.inFlight, op)
		m.guardMu.Unlock()
	}, nil
}

func (m *Manager) notify(kind EventKind, format string, args ...interface{}) {
	m.notifier.Notify(Event{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func (m *Manager) warn(err error) error {
	m.notify(Warning, "%s", err.Error())
	return err
}

// State returns the active-case state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Inputs returns a copy of the working scenario.
func (m *Manager) Inputs() scenario.Input {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputs.Clone()
}

// Results returns the current display series.
func (m *Manager) Results() []metrics.ResultRow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]metrics.ResultRow(nil), m.results...)
}

// Cases returns the cached case listing, oldest first.
func (m *Manager) Cases() []cases.Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]cases.Summary(nil), m.cases...)
}

// Schedule returns the configured meeting dates.
func (m *Manager) Schedule() []string {
	return append([]string(nil), m.schedule...)
}

// Set stores a raw value into a field of the working scenario.
func (m *Manager) Set(field, value string) error {
	m.mu.Lock()
	err := m.inputs.Set(field, value)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.notify(InputsChanged, "%s = %s", field, value)
	return nil
}

// SetMeeting stores the rate-path value for one meeting date.
func (m *Manager) SetMeeting(date, value string) error {
	return m.Set(scenario.MeetingField(date), value)
}

// Adjust steps a field up or down and returns its new value.
func (m *Manager) Adjust(field string, up bool) (string, error) {
	m.mu.Lock()
	next, err := m.inputs.Adjust(field, up)
	m.mu.Unlock()
	if err != nil {
		return "", err
	}
	m.notify(InputsChanged, "%s = %s", field, next)
	return next, nil
}

// Compute submits the working scenario and publishes the derived series.
func (m *Manager) Compute(ctx context.Context) ([]metrics.ResultRow, error) {
	release, err := m.acquire(opCompute)
	if err != nil {
		return nil, err
	}
	defer release()

	raw, err := m.compute.Compute(ctx, m.Inputs())
	if err != nil {
		m.logger.Warn("compute failed",
			zap.String("op", "session.Compute"),
			zap.Error(err),
		)
		return nil, err
	}

	rows := metrics.DeriveSeries(raw)
	m.mu.Lock()
	m.results = rows
	m.mu.Unlock()

	m.notify(ResultsChanged, "computed %d months", len(rows))
	return append([]metrics.ResultRow(nil), rows...), nil
}

// Create saves the working scenario as a new case. The active-case state is
// left unchanged.
func (m *Manager) Create(ctx context.Context, name string) (*cases.Case, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, m.warn(ErrNameRequired)
	}

	release, err := m.acquire(opCreate)
	if err != nil {
		return nil, err
	}
	defer release()

	c, err := m.store.Create(ctx, name, m.Inputs())
	if err != nil {
		m.logger.Warn("save failed",
			zap.String("op", "session.Create"),
			zap.String("name", name),
			zap.Error(err),
		)
		return nil, err
	}

	m.logger.Info("case saved",
		zap.String("op", "session.Create"),
		zap.String("id", c.ID),
		zap.String("name", c.Name),
	)
	if err := m.refresh(ctx); err != nil {
		return c, fmt.Errorf("case saved but refresh failed: %w", err)
	}
	return c, nil
}

// Load makes the case with id active and replaces the working scenario and
// series with the stored ones.
func (m *Manager) Load(ctx context.Context, id string) (*cases.Case, error) {
	release, err := m.acquire(opLoad)
	if err != nil {
		return nil, err
	}
	defer release()

	c, err := m.store.Get(ctx, id)
	if err != nil {
		m.logger.Warn("load failed",
			zap.String("op", "session.Load"),
			zap.String("id", id),
			zap.Error(err),
		)
		return nil, err
	}

	m.mu.Lock()
	m.state = ActiveCase(c.ID)
	m.inputs = c.Inputs.WithDefaults(m.schedule)
	m.results = c.Series()
	m.mu.Unlock()

	m.logger.Info("case loaded",
		zap.String("op", "session.Load"),
		zap.String("id", c.ID),
	)
	m.notify(StateChanged, "loaded case %q", c.Name)
	m.notify(InputsChanged, "inputs restored from %q", c.Name)
	m.notify(ResultsChanged, "%d stored months", len(c.Results))
	return c, nil
}

// Update saves the working scenario over the active case. With no active case
// it is a no-op returning ErrNoActiveCase.
func (m *Manager) Update(ctx context.Context) (*cases.Case, error) {
	id, ok := m.State().Active()
	if !ok {
		return nil, m.warn(ErrNoActiveCase)
	}

	release, err := m.acquire(opUpdate)
	if err != nil {
		return nil, err
	}
	defer release()

	c, err := m.store.Update(ctx, id, m.Inputs())
	if err != nil {
		m.logger.Warn("update failed",
			zap.String("op", "session.Update"),
			zap.String("id", id),
			zap.Error(err),
		)
		return nil, err
	}

	m.mu.Lock()
	// The case may have been deleted or replaced while the request ran.
	stillActive := m.state.IsActive(id)
	if stillActive {
		m.results = c.Series()
	}
	m.mu.Unlock()
	if stillActive {
		m.notify(ResultsChanged, "%d months after update", len(c.Results))
	}

	m.logger.Info("case updated",
		zap.String("op", "session.Update"),
		zap.String("id", id),
	)
	if err := m.refresh(ctx); err != nil {
		return c, fmt.Errorf("case updated but refresh failed: %w", err)
	}
	return c, nil
}

// Delete removes a case. Deleting the active case clears the active state.
func (m *Manager) Delete(ctx context.Context, id string) error {
	release, err := m.acquire(opDelete)
	if err != nil {
		return err
	}
	defer release()

	if err := m.store.Delete(ctx, id); err != nil {
		m.logger.Warn("delete failed",
			zap.String("op", "session.Delete"),
			zap.String("id", id),
			zap.Error(err),
		)
		return err
	}

	m.mu.Lock()
	wasActive := m.state.IsActive(id)
	if wasActive {
		m.state = NoActiveCase
	}
	m.mu.Unlock()

	m.logger.Info("case deleted",
		zap.String("op", "session.Delete"),
		zap.String("id", id),
		zap.Bool("wasActive", wasActive),
	)
	if wasActive {
		m.notify(StateChanged, "active case deleted")
	}
	if err := m.refresh(ctx); err != nil {
		return fmt.Errorf("case deleted but refresh failed: %w", err)
	}
	return nil
}

// Reset restores default inputs, clears the series and leaves no case active.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.state = NoActiveCase
	m.inputs = scenario.Default(m.schedule)
	m.results = nil
	m.mu.Unlock()

	m.notify(StateChanged, "inputs reset")
	m.notify(InputsChanged, "inputs reset to defaults")
	m.notify(ResultsChanged, "results cleared")
}

// Refresh replaces the cached case listing with the store's.
func (m *Manager) Refresh(ctx context.Context) error {
	release, err := m.acquire(opRefresh)
	if err != nil {
		return err
	}
	defer release()
	return m.refresh(ctx)
}

func (m *Manager) refresh(ctx context.Context) error {
	listing, err := m.store.List(ctx)
	if err != nil {
		m.logger.Warn("refresh failed",
			zap.String("op", "session.refresh"),
			zap.Error(err),
		)
		return err
	}

	m.mu.Lock()
	m.cases = listing
	m.mu.Unlock()

	m.notify(CasesRefreshed, "%d saved cases", len(listing))
	return nil
}

// Start refreshes the listing and loads the most recent case, if any.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.Refresh(ctx); err != nil {
		return err
	}

	listing := m.Cases()
	if len(listing) == 0 {
		return nil
	}
	_, err := m.Load(ctx, listing[len(listing)-1].ID)
	return err
}

// Compare aligns the stored results of the selected cases. Ids that no longer
// resolve are dropped.
func (m *Manager) Compare(ctx context.Context, ids []string) (*compare.Comparison, error) {
	if len(ids) < compare.MinCases {
		return nil, m.warn(compare.ErrTooFewCases)
	}

	release, err := m.acquire(opCompare)
	if err != nil {
		return nil, err
	}
	defer release()

	cmp, err := compare.Build(ctx, m.store, ids)
	if err != nil {
		m.logger.Warn("compare failed",
			zap.String("op", "session.Compare"),
			zap.Strings("ids", ids),
			zap.Error(err),
		)
		return nil, err
	}
	if dropped := len(ids) - len(cmp.Columns); dropped > 0 {
		m.notify(Warning, "%d selected cases are no longer available", dropped)
	}
	return cmp, nil
}
