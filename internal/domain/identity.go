package domain

// Identity is the source an author name is derived from: either the locally
// stored name or the external provider identifier.
type Identity interface {
	AuthorName() string
	identity()
}

// LocalIdentity is a user known by the name stored on the account.
type LocalIdentity struct {
	Name string
}

func (i LocalIdentity) AuthorName() string { return i.Name }
func (LocalIdentity) identity()            {}

// ExternalIdentity is a user known only by the provider-issued identifier.
type ExternalIdentity struct {
	ProviderID string
}

func (i ExternalIdentity) AuthorName() string { return i.ProviderID }
func (ExternalIdentity) identity()            {}

// Identity returns the local identity when a name is set and the external
// one otherwise.
func (u *User) Identity() Identity {
	if u.Name != "" {
		return LocalIdentity{Name: u.Name}
	}
	return ExternalIdentity{ProviderID: u.GoogleID}
}

// ResolveAuthorName returns the key used to stamp authorship and to look up
// a user's own posts. It is not the user ID.
func ResolveAuthorName(u *User) string {
	if u == nil {
		return ""
	}
	return u.Identity().AuthorName()
}
