// Package deletemodal is the two-phase delete dialog: confirm with cascade
// warnings, then show the server's report.
package deletemodal

import (
	"context"
	"sort"

	"github.com/emanuel-malungo/jomorais/internal/client"
	"github.com/emanuel-malungo/jomorais/internal/model"
)

// Phase of the dialog.
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseConfirm
	PhaseResult
)

// Deleter removes an entity; satisfied by hook.Resource and client.Resource.
type Deleter interface {
	Delete(ctx context.Context, id int64) (*client.DeleteResult, error)
}

// Count is one line of the result table.
type Count struct {
	Label string
	N     int64
}

// Modal is reused across rows; Open starts a fresh confirmation.
type Modal[E model.Entity] struct {
	// Warnings lists the dependent record types the backend removes or unlinks.
	Warnings []string

	// Labels maps report count keys to display names; unknown keys show as-is.
	Labels map[string]string

	Summary   func(E) string
	OnSuccess func(*client.DeleteResult)

	Entity *E
	Result *client.DeleteResult
	Err    string

	deleter Deleter
	phase   Phase
}

// New creates a closed modal.
func New[E model.Entity](deleter Deleter, summary func(E) string, warnings ...string) *Modal[E] {
	return &Modal[E]{deleter: deleter, Summary: summary, Warnings: warnings}
}

// Open shows the confirmation for entity.
func (m *Modal[E]) Open(entity E) {
	m.Entity = &entity
	m.Result = nil
	m.Err = ""
	m.phase = PhaseConfirm
}

// Phase reports the current phase.
func (m *Modal[E]) Phase() Phase { return m.phase }

// Title summarises the entity being deleted.
func (m *Modal[E]) Title() string {
	if m.Entity == nil || m.Summary == nil {
		return ""
	}
	return m.Summary(*m.Entity)
}

// Confirm deletes the entity. It only acts in the confirm phase; a failure
// stays there with the message so the user can try again.
func (m *Modal[E]) Confirm(ctx context.Context) (*client.DeleteResult, error) {
	if m.phase != PhaseConfirm || m.Entity == nil {
		return m.Result, nil
	}

	res, err := m.deleter.Delete(ctx, (*m.Entity).GetID())
	if err != nil {
		m.Err = client.Message(err)
		return nil, err
	}

	m.Err = ""
	m.Result = res
	m.phase = PhaseResult
	if m.OnSuccess != nil {
		m.OnSuccess(res)
	}
	return res, nil
}

// Cancel closes the dialog without side effects.
func (m *Modal[E]) Cancel() {
	m.phase = PhaseClosed
	m.Entity = nil
	m.Result = nil
	m.Err = ""
}

// Counts returns the report's counts sorted by label, zero counts dropped.
func (m *Modal[E]) Counts() []Count {
	if m.Result == nil {
		return nil
	}
	out := make([]Count, 0, len(m.Result.Counts))
	for k, n := range m.Result.Counts {
		if n == 0 {
			continue
		}
		label := k
		if l, ok := m.Labels[k]; ok {
			label = l
		}
		out = append(out, Count{Label: label, N: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
