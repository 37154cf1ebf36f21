// Package upload provides call options for gateway uploads.
package upload

import "github.com/c2fo/drivefm/options"

const optionNameContentLength = "uploadContentLength"

// WithContentLength returns ContentLength implementation of CallOption
func WithContentLength(n int64) options.CallOption {
	cl := ContentLength(n)
	return &cl
}

// ContentLength represents the CallOption that declares the payload size of an upload ahead of the transfer.
// Without it the payload is streamed with an unknown length.
type ContentLength int64

// CallOptionName returns the name of ContentLength option
func (cl *ContentLength) CallOptionName() string {
	return optionNameContentLength
}

// LengthFrom returns the last declared content length in opts, or -1 when none was declared.
func LengthFrom(opts []options.CallOption) int64 {
	n := int64(-1)
	for _, o := range opts {
		if cl, ok := o.(*ContentLength); ok && cl != nil && *cl >= 0 {
			n = int64(*cl)
		}
	}
	return n
}
