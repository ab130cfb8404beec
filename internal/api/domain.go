package api

import (
	"github.com/cerviguard/console/internal/cases"
	"github.com/cerviguard/console/internal/users"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Cases cases.System
	Users users.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	usersSystem := users.New(
		runtime.Database.Connection(),
		runtime.Logger,
	)

	casesSystem := cases.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Analyzers,
		runtime.Options,
		runtime.Logger,
	)

	return &Domain{
		Cases: casesSystem,
		Users: usersSystem,
	}
}
