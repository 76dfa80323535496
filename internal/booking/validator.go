package booking

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"pawresort/internal/availability"
	"pawresort/internal/model"
)

// FindingKind classifies a validation failure.
type FindingKind string

const (
	FindingIncompleteAssignment FindingKind = "incomplete_assignment"
	FindingDuplicateResource    FindingKind = "duplicate_resource_assignment"
	FindingResourceUnavailable  FindingKind = "resource_unavailable"
)

// Finding is one field-attributed validation failure. It names the exact
// pets and resource at fault so the caller can highlight the right selector
// instead of showing a generic "form invalid".
type Finding struct {
	Kind       FindingKind               `json:"kind"`
	ResourceID string                    `json:"resourceId,omitempty"`
	PetNames   []string                  `json:"petNames,omitempty"`
	Conflict   *model.ReservationSummary `json:"conflict,omitempty"`
}

// ValidationResult is the verdict on a booking draft. Degraded is set when
// the availability cross-check ran against a degraded batch result: the
// verdict stands but availability was not verified, and the write path will
// re-check at commit time.
type ValidationResult struct {
	Valid    bool      `json:"valid"`
	Findings []Finding `json:"findings"`
	Degraded bool      `json:"degraded,omitempty"`
}

// Validator applies the multi-pet kennel-assignment rules:
// every pet assigned or explicitly auto-assigned for housing services,
// no resource chosen twice within one booking, and every explicit choice
// backed by an availability check with edit-mode self-exclusion.
// It never mutates persisted state.
type Validator struct {
	engine *availability.Engine
	logger zerolog.Logger
}

// NewValidator creates an assignment validator backed by the availability engine.
func NewValidator(engine *availability.Engine, logger zerolog.Logger) *Validator {
	return &Validator{engine: engine, logger: logger}
}

// Validate checks a booking draft on submit attempt. All rule categories are
// evaluated so one round trip reports every broken selector at once.
func (v *Validator) Validate(ctx context.Context, tenantID string, draft *Draft) (*ValidationResult, error) {
	result := &ValidationResult{Findings: []Finding{}}

	// Grooming and training bookings skip assignment entirely.
	if !draft.ServiceCategory.RequiresAssignment() {
		result.Valid = true
		return result, nil
	}

	var unassigned []string
	explicit := make(map[string][]string) // resource id -> pet names, selection order
	var explicitOrder []string

	for _, pet := range draft.Pets {
		slot := draft.Assignments[pet.ID]
		switch slot {
		case "":
			unassigned = append(unassigned, pet.Name)
		case AutoAssign:
			// Valid: the system picks a kennel later.
		default:
			if _, seen := explicit[slot]; !seen {
				explicitOrder = append(explicitOrder, slot)
			}
			explicit[slot] = append(explicit[slot], pet.Name)
		}
	}

	if len(unassigned) > 0 {
		result.Findings = append(result.Findings, Finding{
			Kind:     FindingIncompleteAssignment,
			PetNames: unassigned,
		})
	}

	duplicated := make(map[string]bool)
	for _, resourceID := range explicitOrder {
		pets := explicit[resourceID]
		if len(pets) > 1 {
			duplicated[resourceID] = true
			result.Findings = append(result.Findings, Finding{
				Kind:       FindingDuplicateResource,
				ResourceID: resourceID,
				PetNames:   pets,
			})
		}
	}

	if len(explicitOrder) > 0 {
		findings, degraded, err := v.crossCheck(ctx, tenantID, draft, explicitOrder, explicit, duplicated)
		if err != nil {
			return nil, err
		}
		result.Findings = append(result.Findings, findings...)
		result.Degraded = degraded
	}

	result.Valid = len(result.Findings) == 0
	return result, nil
}

// crossCheck verifies every explicitly chosen resource against the batch
// availability engine in one round trip. Resources already flagged as
// duplicates are skipped; they are rejected regardless of availability.
func (v *Validator) crossCheck(
	ctx context.Context,
	tenantID string,
	draft *Draft,
	resourceIDs []string,
	petsByResource map[string][]string,
	duplicated map[string]bool,
) ([]Finding, bool, error) {
	toCheck := make([]string, 0, len(resourceIDs))
	for _, id := range resourceIDs {
		if !duplicated[id] {
			toCheck = append(toCheck, id)
		}
	}
	if len(toCheck) == 0 {
		return nil, false, nil
	}

	batch, err := v.engine.CheckResources(ctx, tenantID, availability.BatchRequest{
		ResourceIDs:          toCheck,
		StartDate:            draft.StartDate,
		EndDate:              draft.EndDate,
		ExcludeReservationID: draft.EditReservationID,
	})
	if err != nil {
		return nil, false, err
	}

	if batch.Degraded {
		v.logger.Warn().
			Str("tenant_id", tenantID).
			Strs("resource_ids", toCheck).
			Msg("assignment availability cross-check ran degraded")
	}

	var findings []Finding
	for _, res := range batch.Resources {
		if res.IsAvailable {
			continue
		}
		finding := Finding{
			Kind:       FindingResourceUnavailable,
			ResourceID: res.ResourceID,
			PetNames:   petsByResource[res.ResourceID],
		}
		if len(res.OccupyingReservations) > 0 {
			conflict := res.OccupyingReservations[0]
			finding.Conflict = &conflict
		}
		findings = append(findings, finding)
	}

	// Stable ordering for assertable output.
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].ResourceID < findings[j].ResourceID
	})

	return findings, batch.Degraded, nil
}
