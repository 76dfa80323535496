package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionSubmitted is returned when a submitted session is modified.
	ErrSessionSubmitted = errors.New("booking session already submitted")

	// ErrNotSubmittable is returned when submission is attempted before the
	// assignment has been validated.
	ErrNotSubmittable = errors.New("booking is not ready for submission")
)

// ApplyDraft loads draft data into the session and advances the flow as far
// as the data allows: pets selected, then service selected. Re-applying a
// draft after a validation verdict returns the flow to the service-selected
// state so the next validation starts clean.
func (f *FSM) ApplyDraft(s *Session, d Draft) error {
	if len(d.Pets) == 0 {
		return fmt.Errorf("at least one pet must be selected")
	}
	if !d.ServiceCategory.Valid() {
		return fmt.Errorf("unknown service category %q", d.ServiceCategory)
	}
	if d.Assignments == nil {
		d.Assignments = make(map[string]string)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State == StateSubmitted {
		return ErrSessionSubmitted
	}

	s.Draft = d
	if s.State == StateEmpty {
		s.setState(StatePetsSelected)
	}
	if s.State == StatePetsSelected {
		s.setState(StateServiceSelected)
	}
	if s.State == StateAssignmentIncomplete || s.State == StateAssignmentValid {
		s.setState(StateServiceSelected)
	}

	return nil
}

// RecordVerdict transitions the session according to a validation result.
func (f *FSM) RecordVerdict(s *Session, valid bool) {
	to := StateAssignmentIncomplete
	if valid {
		to = StateAssignmentValid
	}
	f.Transition(s, to)
}

// Submit moves a validated session to the submitted state. Persistence
// happens only after this succeeds.
func (f *FSM) Submit(s *Session) error {
	if !f.Transition(s, StateSubmitted) {
		return ErrNotSubmittable
	}
	return nil
}
