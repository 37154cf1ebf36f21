// Package scope provides call options that restrict a gateway call to a remote container (a Drive folder).
package scope

import (
	"github.com/c2fo/drivefm/options"
)

const optionNameContainer = "container"

// WithContainer returns Container implementation of CallOption
func WithContainer(id string) options.CallOption {
	c := Container(id)
	return &c
}

// Container represents the CallOption that scopes a listing, or the destination of an upload, to a container id.
type Container string

// CallOptionName returns the name of Container option
func (c *Container) CallOptionName() string {
	return optionNameContainer
}

// From returns the container id carried by the last Container option in opts, or "" when none is present.
func From(opts []options.CallOption) string {
	var id string
	for _, o := range opts {
		if c, ok := o.(*Container); ok && c != nil {
			id = string(*c)
		}
	}
	return id
}
