package models

// Note is a client-encrypted note. The server stores the ciphertext opaquely
// and only manages ownership and sharing grants.
//
// Edit permission implies read permission; that superset relation is enforced
// by the predicates below, not duplicated in storage.
type Note struct {
	ID         uint64
	Owner      Principal
	Encrypted  string
	SharedRead []Principal
	SharedEdit []Principal
}

// ShareLevel distinguishes the two grant kinds on a note.
type ShareLevel string

const (
	ShareRead ShareLevel = "read"
	ShareEdit ShareLevel = "edit"
)

func (l ShareLevel) Valid() bool {
	return l == ShareRead || l == ShareEdit
}

// CanRead reports whether p may see the note's ciphertext.
func (n *Note) CanRead(p Principal) bool {
	if n.Owner == p {
		return true
	}
	for _, s := range n.SharedRead {
		if s == p {
			return true
		}
	}
	for _, s := range n.SharedEdit {
		if s == p {
			return true
		}
	}
	return false
}

// CanEdit reports whether p may replace the note's ciphertext.
func (n *Note) CanEdit(p Principal) bool {
	if n.Owner == p {
		return true
	}
	for _, s := range n.SharedEdit {
		if s == p {
			return true
		}
	}
	return false
}
