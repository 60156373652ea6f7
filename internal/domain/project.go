package domain

import (
	"strings"
	"time"
)

// Project groups activities under one declared start date. The start date is
// the floor for every dependency-derived start suggestion in the project.
type Project struct {
	ID          string
	Name        string
	Description string
	StartDate   Date
	// Locked freezes the schedule: activity date writes are refused while set.
	Locked    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProject validates and constructs a project. A zero start date defaults
// to the creation day.
func NewProject(id, name, description string, startDate Date, now time.Time) (Project, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Project{}, ErrInvalidID
	}
	if name == "" {
		return Project{}, ErrInvalidName
	}
	if startDate.IsZero() {
		startDate = DateOf(now)
	}
	return Project{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(description),
		StartDate:   startDate,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// UpdateDetails rewrites name, description, and start date.
func (p *Project) UpdateDetails(name, description string, startDate Date, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	p.Name = name
	p.Description = strings.TrimSpace(description)
	if !startDate.IsZero() {
		p.StartDate = startDate
	}
	p.UpdatedAt = now.UTC()
	return nil
}

// SetLocked toggles the schedule freeze.
func (p *Project) SetLocked(locked bool, now time.Time) {
	p.Locked = locked
	p.UpdatedAt = now.UTC()
}
