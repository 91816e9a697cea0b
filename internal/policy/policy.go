// Package policy holds the access predicates evaluated on every request.
//
// Checks run in two phases: HasPermission runs before any resource is
// fetched and answers "may this caller hit this endpoint at all";
// HasObjectPermission runs after the target is loaded and answers the
// ownership question. The split keeps unauthorized callers from costing
// a database fetch, and lets anonymous callers through on safe verbs.
package policy

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rateworks/critica/internal/models"
)

// SafeMethod reports whether the HTTP method is read-only.
func SafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Policy decides whether a caller may perform an action. user is nil for
// anonymous callers.
type Policy interface {
	HasPermission(user *models.User, method string) bool
	HasObjectPermission(user *models.User, method string, authorID uuid.UUID) bool
}

// AdminOnly grants admins and nobody else, reads included.
type AdminOnly struct{}

func (AdminOnly) HasPermission(user *models.User, method string) bool {
	return user != nil && user.IsAdmin()
}

func (AdminOnly) HasObjectPermission(user *models.User, method string, authorID uuid.UUID) bool {
	return user != nil && user.IsAdmin()
}

// AdminOrReadOnly grants admins everything and everyone safe verbs.
type AdminOrReadOnly struct{}

func (AdminOrReadOnly) HasPermission(user *models.User, method string) bool {
	return SafeMethod(method) || (user != nil && user.IsAdmin())
}

func (AdminOrReadOnly) HasObjectPermission(user *models.User, method string, authorID uuid.UUID) bool {
	return SafeMethod(method) || (user != nil && user.IsAdmin())
}

// AuthorModeratorAdminOrReadOnly guards owned resources: anyone may read,
// any authenticated caller passes the coarse phase, and mutation requires
// admin, moderator, or authorship of the target.
type AuthorModeratorAdminOrReadOnly struct{}

func (AuthorModeratorAdminOrReadOnly) HasPermission(user *models.User, method string) bool {
	return SafeMethod(method) || user != nil
}

func (AuthorModeratorAdminOrReadOnly) HasObjectPermission(user *models.User, method string, authorID uuid.UUID) bool {
	if SafeMethod(method) {
		return true
	}
	if user == nil {
		return false
	}
	return user.IsAdmin() || user.IsModerator() || user.ID == authorID
}

// AllowAny grants everything; signup and token exchange use it.
type AllowAny struct{}

func (AllowAny) HasPermission(user *models.User, method string) bool {
	return true
}

func (AllowAny) HasObjectPermission(user *models.User, method string, authorID uuid.UUID) bool {
	return true
}
