package models

// Principal is the opaque, comparable identity of a caller. The textual form
// is whatever the identity provider issued; the server never interprets it
// beyond equality checks.
type Principal string

// Anonymous is the reserved principal of unauthenticated callers.
const Anonymous Principal = "2vxsx-fae"

func (p Principal) IsAnonymous() bool {
	return p == Anonymous || p == ""
}

func (p Principal) String() string { return string(p) }
