package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/teamc/account-console/internal/core/domain"
	"github.com/teamc/account-console/internal/pkg/metrics"
)

// Committer writes a field value to the backend of record.
type Committer func(ctx context.Context, value string) error

// ConfirmHook runs after the backend confirmed a value, before the editor
// returns to Viewing. Self-edits use it to patch the session identity.
type ConfirmHook func(ctx context.Context, value string) error

// EditorConfig describes one editable field of one entity.
type EditorConfig struct {
	Field    string
	TargetID string
	// Confirmed is the last value accepted by the backend.
	Confirmed string
	// Created is false when the field was never set; Viewing then shows the
	// uncreated variant rather than an empty value.
	Created     bool
	Commit      Committer
	OnConfirmed ConfirmHook
}

// EditorSnapshot is a read-only view of an editor's state.
type EditorSnapshot struct {
	Field     string          `json:"field"`
	TargetID  string          `json:"targetId"`
	Mode      domain.EditMode `json:"mode"`
	Confirmed string          `json:"confirmed"`
	Created   bool            `json:"created"`
	Draft     string          `json:"draft,omitempty"`
	CanSubmit bool            `json:"canSubmit"`
	LastError string          `json:"lastError,omitempty"`
}

// FieldEditor is the Viewing → Editing → Submitting state machine for one
// remote field. The confirmed value only changes after the backend accepts a
// write.
type FieldEditor struct {
	field       string
	targetID    string
	commit      Committer
	onConfirmed ConfirmHook
	log         zerolog.Logger

	mu        sync.Mutex
	mode      domain.EditMode
	confirmed string
	created   bool
	draft     string
	lastErr   error
}

func NewFieldEditor(cfg EditorConfig, log zerolog.Logger) *FieldEditor {
	confirmed := cfg.Confirmed
	if !cfg.Created {
		confirmed = ""
	}
	return &FieldEditor{
		field:       cfg.Field,
		targetID:    cfg.TargetID,
		commit:      cfg.Commit,
		onConfirmed: cfg.OnConfirmed,
		log:         log.With().Str("field", cfg.Field).Str("target_id", cfg.TargetID).Logger(),
		mode:        domain.ModeViewing,
		confirmed:   confirmed,
		created:     cfg.Created,
	}
}

// Begin enters Editing with the draft initialised from the confirmed value.
// Calling it while already editing keeps the current draft.
func (e *FieldEditor) Begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.mode {
	case domain.ModeEditing:
		return nil
	case domain.ModeSubmitting:
		return errInFlight(e.field)
	}
	e.mode = domain.ModeEditing
	e.draft = e.confirmed
	e.lastErr = nil
	return nil
}

// SetDraft stages a local edit.
func (e *FieldEditor) SetDraft(value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != domain.ModeEditing {
		return fmt.Errorf("set draft %s in %s: %w", e.field, e.mode, domain.ErrInvalidTransition)
	}
	e.draft = value
	return nil
}

// CanSubmit reports whether the submit action is enabled.
func (e *FieldEditor) CanSubmit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canSubmitLocked()
}

func (e *FieldEditor) canSubmitLocked() bool {
	return e.mode == domain.ModeEditing && strings.TrimSpace(e.draft) != ""
}

// Submit sends the draft to the backend. On success the editor returns to
// Viewing(draft); on failure it returns to Editing with the draft kept and
// the confirmed value untouched.
func (e *FieldEditor) Submit(ctx context.Context) error {
	e.mu.Lock()
	switch {
	case e.mode == domain.ModeSubmitting:
		e.mu.Unlock()
		return errInFlight(e.field)
	case e.mode != domain.ModeEditing:
		mode := e.mode
		e.mu.Unlock()
		return fmt.Errorf("submit %s in %s: %w", e.field, mode, domain.ErrInvalidTransition)
	case !e.canSubmitLocked():
		e.mu.Unlock()
		return fmt.Errorf("submit %s: %w", e.field, domain.ErrEmptyDraft)
	}
	e.mode = domain.ModeSubmitting
	value := e.draft
	e.mu.Unlock()

	err := e.commit(ctx, value)
	var confirmErr error
	if err == nil {
		confirmErr = e.confirm(ctx, value)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.mode = domain.ModeEditing
		e.lastErr = err
		metrics.EditorSubmitsTotal.WithLabelValues(e.field, "failed").Inc()
		e.log.Warn().Err(err).Msg("field submit failed")
		return fmt.Errorf("submit %s: %w", e.field, err)
	}
	e.mode = domain.ModeViewing
	e.confirmed = value
	e.created = true
	e.draft = ""
	e.lastErr = confirmErr
	metrics.EditorSubmitsTotal.WithLabelValues(e.field, "confirmed").Inc()
	return nil
}

// Cancel discards the draft and returns to Viewing(confirmed).
func (e *FieldEditor) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == domain.ModeSubmitting {
		return errInFlight(e.field)
	}
	e.mode = domain.ModeViewing
	e.draft = ""
	e.lastErr = nil
	return nil
}

// Clear removes the field's value on the backend and, once confirmed, moves
// to the uncreated Viewing variant.
func (e *FieldEditor) Clear(ctx context.Context) error {
	e.mu.Lock()
	switch {
	case e.mode == domain.ModeSubmitting:
		e.mu.Unlock()
		return errInFlight(e.field)
	case e.mode != domain.ModeViewing || !e.created:
		e.mu.Unlock()
		return fmt.Errorf("clear %s: %w", e.field, domain.ErrInvalidTransition)
	}
	e.mode = domain.ModeSubmitting
	e.mu.Unlock()

	err := e.commit(ctx, "")
	var confirmErr error
	if err == nil {
		confirmErr = e.confirm(ctx, "")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = domain.ModeViewing
	if err != nil {
		e.lastErr = err
		metrics.EditorSubmitsTotal.WithLabelValues(e.field, "failed").Inc()
		e.log.Warn().Err(err).Msg("field clear failed")
		return fmt.Errorf("clear %s: %w", e.field, err)
	}
	e.confirmed = ""
	e.created = false
	e.lastErr = confirmErr
	metrics.EditorSubmitsTotal.WithLabelValues(e.field, "confirmed").Inc()
	return nil
}

// confirm runs the hook. The backend already accepted the value, so a hook
// failure does not roll the editor back; it is returned for LastError.
func (e *FieldEditor) confirm(ctx context.Context, value string) error {
	if e.onConfirmed == nil {
		return nil
	}
	if err := e.onConfirmed(ctx, value); err != nil {
		e.log.Warn().Err(err).Msg("confirmed value not propagated")
		return fmt.Errorf("%s saved but session not updated: %w", e.field, err)
	}
	return nil
}

// Snapshot returns the current state.
func (e *FieldEditor) Snapshot() EditorSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := EditorSnapshot{
		Field:     e.field,
		TargetID:  e.targetID,
		Mode:      e.mode,
		Confirmed: e.confirmed,
		Created:   e.created,
		CanSubmit: e.canSubmitLocked(),
	}
	if e.mode != domain.ModeViewing {
		s.Draft = e.draft
	}
	if e.lastErr != nil {
		s.LastError = e.lastErr.Error()
	}
	return s
}

// errInFlight wraps domain.ErrSubmitInFlight with the field name.
func errInFlight(field string) error {
	return fmt.Errorf("%s: %w", field, domain.ErrSubmitInFlight)
}
