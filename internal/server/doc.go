// Package server provides the JSON HTTP API over the recipe services.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so path parameters are read
// with [http.Request.PathValue] and wrong methods on known paths get 405 from the mux.
//
// # Middleware Stack
//
// Every route runs through, outermost first:
//   - [Recoverer]: panics become 500 responses
//   - [RequestLogger]: method, path, status and duration
//   - [Instrument]: Prometheus request counters and latency, labelled by route pattern
//   - [RateLimiter]: per-client token bucket, 429 when exhausted
//   - [Identity]: bearer token verification; the actor is read back with [ActorFrom]
//
// CORS wraps the whole router so preflight requests are answered before routing.
//
// # Identity
//
// Tokens are HS256 JWTs issued by an external identity provider. The subject is the user id and the
// optional "staff" claim grants edit rights on every recipe. Requests without a token are anonymous and
// may only read.
//
// # Errors
//
// Service errors map onto status codes: validation 400, unauthorized 401, forbidden 403, not found 404,
// conflict 409. Anything else is logged and answered with a generic 500. The body is always
//
//	{"error": {"code": "VALIDATION_ERROR", "field": "cooking_time", "message": "..."}}
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
