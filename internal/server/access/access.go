// Package access is the cross-cutting authorization predicate library.
// Every mutating or content-revealing operation starts here. The functions
// have no side effects; they only return errors.
package access

import (
	"notemint/internal/common"
	"notemint/internal/server/models"
)

// AssertNotAnonymous rejects the reserved anonymous identity.
func AssertNotAnonymous(p models.Principal) error {
	if p.IsAnonymous() {
		return common.ErrorAnonymous
	}
	return nil
}

// RequireOwner fails with ErrorForbidden unless caller owns the resource.
func RequireOwner(owner, caller models.Principal) error {
	if owner != caller {
		return common.ErrorForbidden
	}
	return nil
}

// RequireRead fails with ErrorForbidden unless caller may read the note.
func RequireRead(n *models.Note, caller models.Principal) error {
	if !n.CanRead(caller) {
		return common.ErrorForbidden
	}
	return nil
}

// RequireEdit fails with ErrorForbidden unless caller may edit the note.
func RequireEdit(n *models.Note, caller models.Principal) error {
	if !n.CanEdit(caller) {
		return common.ErrorForbidden
	}
	return nil
}

// IsAdmin reports whether caller is in the configured administrator list.
func IsAdmin(caller models.Principal, admins []string) bool {
	for _, a := range admins {
		if models.Principal(a) == caller {
			return true
		}
	}
	return false
}
