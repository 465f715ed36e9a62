package testutil

import (
	"net/http"

	"bloodlink/pkg/domain"
	"bloodlink/pkg/requestcontext"
)

// WithActor adds an authenticated principal to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithActor(req *http.Request, actor domain.Actor) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// AsDonor authenticates the request as a donor.
func AsDonor(req *http.Request, userID domain.UserID) *http.Request {
	return WithActor(req, domain.Actor{UserID: userID, Role: domain.RoleDonor})
}

// AsStaff authenticates the request as staff.
func AsStaff(req *http.Request, userID domain.UserID) *http.Request {
	return WithActor(req, domain.Actor{UserID: userID, Role: domain.RoleStaff})
}

// AsAdmin authenticates the request as an admin.
func AsAdmin(req *http.Request, userID domain.UserID) *http.Request {
	return WithActor(req, domain.Actor{UserID: userID, Role: domain.RoleAdmin})
}
