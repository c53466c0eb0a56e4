package http

import (
	"net/http"

	"bangcheong/internal/platform/net/http/bind"
)

// JSONHandler binds the request body into T before calling fn. Bind
// failures short-circuit into the error envelope
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		return respond(fn(r, in))
	})
}

// JSONHandlerNoBody is JSONHandler for handlers that take no body
func JSONHandlerNoBody(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		return respond(fn(r))
	})
}

func respond(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	return OK(out)
}
