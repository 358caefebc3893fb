package domain

import "strings"

// Visibility scopes a read to what one viewer may see. The zero value is the
// anonymous viewer.
type Visibility struct {
	ViewerID string
	all      bool
}

// VisibleTo scopes reads to viewerID; an empty id is anonymous.
func VisibleTo(viewerID string) Visibility {
	return Visibility{ViewerID: strings.TrimSpace(viewerID)}
}

// Unrestricted sees every document. Only internal cascade and authorization
// reads use it; API read paths never do.
var Unrestricted = Visibility{all: true}

// Unrestricted reports whether the scope bypasses privacy.
func (v Visibility) Unrestricted() bool { return v.all }

// Anonymous reports whether there is no viewer identity.
func (v Visibility) Anonymous() bool { return !v.all && v.ViewerID == "" }

// Allows applies the visibility rule: public entities are visible to everyone,
// private ones only to their owner.
func (v Visibility) Allows(ownerID string, isPrivate bool) bool {
	if v.all || !isPrivate {
		return true
	}
	return v.ViewerID != "" && SameID(v.ViewerID, ownerID)
}

// SameID compares two identifiers after normalization.
func SameID(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}
