// Package requestcontext provides HTTP-independent accessors for
// request-scoped values.
//
// Middleware sets the values; handlers read them and pass what services need
// explicitly (services take a domain.Actor argument rather than reading the
// principal from context). Request time is the exception: services read it
// through Now so a whole request shares one timestamp.
//
//	ctx = requestcontext.WithActor(ctx, domain.Actor{UserID: uid, Role: domain.RoleStaff})
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"bloodlink/pkg/domain"
)

type (
	actorKey       struct{}
	clientIPKey    struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Actor returns the authenticated principal, or the zero Actor.
func Actor(ctx context.Context) domain.Actor {
	if a, ok := ctx.Value(actorKey{}).(domain.Actor); ok {
		return a
	}
	return domain.Actor{}
}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// UserID is shorthand for Actor(ctx).UserID.
func UserID(ctx context.Context) domain.UserID {
	return Actor(ctx).UserID
}

func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() outside HTTP requests (cron jobs, CLI).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the time returned by Now. Tests and batch jobs use it to
// get one consistent "now".
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Today returns Now truncated to a calendar date in UTC.
func Today(ctx context.Context) time.Time {
	y, m, d := Now(ctx).UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
