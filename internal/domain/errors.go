package domain

import "errors"

var (
	ErrInvalidID             = errors.New("invalid id")
	ErrInvalidName           = errors.New("invalid name")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrInvalidDependencyType = errors.New("invalid dependency type")
	ErrSelfDependency        = errors.New("activity cannot depend on itself")
)
