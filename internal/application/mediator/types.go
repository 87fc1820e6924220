package mediator

import "context"

// Request is a command or query value; its dynamic type selects the handler
type Request interface{}

// Response is whatever the selected handler returns
type Response interface{}

type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc is the innermost step of a middleware chain
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Middleware runs around every request. It must call next at most once and
// return its response unchanged unless it is replacing the outcome.
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)
