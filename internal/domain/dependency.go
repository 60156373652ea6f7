package domain

import (
	"strings"
	"time"
)

// DependencyType is one of the four classic scheduling relations between a
// predecessor anchor point and a successor anchor point.
type DependencyType string

// DependencyType values.
const (
	FinishToStart  DependencyType = "FS"
	StartToStart   DependencyType = "SS"
	FinishToFinish DependencyType = "FF"
	StartToFinish  DependencyType = "SF"
)

// IsValid reports whether the dependency type is one of the closed set.
func (t DependencyType) IsValid() bool {
	switch t {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	}
	return false
}

// DisplayName returns the long-form relation name.
func (t DependencyType) DisplayName() string {
	switch t {
	case FinishToStart:
		return "Finish-to-Start"
	case StartToStart:
		return "Start-to-Start"
	case FinishToFinish:
		return "Finish-to-Finish"
	case StartToFinish:
		return "Start-to-Finish"
	default:
		return string(t)
	}
}

// Lag bounds applied to form input. Stored edges outside this range are still
// honored; only new input is clamped.
const (
	MinLagDays = -365
	MaxLagDays = 365
)

// Dependency is one directed scheduling edge: the successor is constrained by
// the predecessor according to Type, offset by LagDays (negative = lead).
type Dependency struct {
	ID            string
	ProjectID     string
	PredecessorID string
	SuccessorID   string
	Type          DependencyType
	LagDays       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DependencyInput carries constructor arguments for NewDependency.
type DependencyInput struct {
	ID            string
	ProjectID     string
	PredecessorID string
	SuccessorID   string
	Type          DependencyType
	LagDays       int
}

// NewDependency validates and constructs a dependency edge. Lag is clamped to
// the supported range rather than rejected.
func NewDependency(in DependencyInput, now time.Time) (Dependency, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.PredecessorID = strings.TrimSpace(in.PredecessorID)
	in.SuccessorID = strings.TrimSpace(in.SuccessorID)

	if in.ID == "" || in.ProjectID == "" {
		return Dependency{}, ErrInvalidID
	}
	if in.PredecessorID == "" || in.SuccessorID == "" {
		return Dependency{}, ErrInvalidID
	}
	if in.PredecessorID == in.SuccessorID {
		return Dependency{}, ErrSelfDependency
	}
	if in.Type == "" {
		in.Type = FinishToStart
	}
	if !in.Type.IsValid() {
		return Dependency{}, ErrInvalidDependencyType
	}

	return Dependency{
		ID:            in.ID,
		ProjectID:     in.ProjectID,
		PredecessorID: in.PredecessorID,
		SuccessorID:   in.SuccessorID,
		Type:          in.Type,
		LagDays:       ClampLag(in.LagDays),
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}, nil
}

// ClampLag forces a lag into the supported [-365, 365] day range.
func ClampLag(days int) int {
	if days < MinLagDays {
		return MinLagDays
	}
	if days > MaxLagDays {
		return MaxLagDays
	}
	return days
}
