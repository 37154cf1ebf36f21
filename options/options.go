// Package options holds the option interfaces shared by the gateway and its callers.
package options

// NewGatewayOption is the interface implemented by options passed to a gateway constructor. T is the gateway type
// the option configures.
// Example:
// ```
//
//	type pageSizeOpt struct{ size int }
//	func (o *pageSizeOpt) Apply(g *gdrive.Gateway) {
//		g.options.PageSize = o.size
//	}
//	func (o *pageSizeOpt) NewGatewayOptionName() string {
//		return "pageSize"
//	}
//
// ```
type NewGatewayOption[T any] interface {
	Apply(*T)
	NewGatewayOptionName() string
}

// ApplyOptions applies each non-nil option to t, in order.
func ApplyOptions[T any](t *T, opts ...NewGatewayOption[T]) {
	for _, o := range opts {
		if o == nil {
			continue
		}
		o.Apply(t)
	}
}

// CallOption is the interface implemented by options that modify a single gateway call, such as the container a
// listing is scoped to.
type CallOption interface {
	CallOptionName() string
}
