package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware so the first argument is outermost:
// Chain(a, b)(h) is a(b(h)).
func Chain(mws ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}

// Wrap applies mws to a single handler func. Handy when one route needs
// extra middleware on top of the global chain.
func Wrap(h http.HandlerFunc, mws ...Middleware) http.Handler {
	return Chain(mws...)(h)
}
