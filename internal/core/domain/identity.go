package domain

import "strings"

// Identity is a signed-in user as reported by the identity provider.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoUrl"`
}

// AdminCapability proves its holder passed the admin allow-list. The zero value
// grants nothing; only AdminPolicy.Authorize produces a valid one.
type AdminCapability struct {
	holder Identity
}

func (c AdminCapability) Valid() bool {
	return c.holder.UID != ""
}

func (c AdminCapability) Holder() Identity {
	return c.holder
}

// AdminPolicy is the allow-list of administrator emails and user ids.
type AdminPolicy struct {
	allowed map[string]bool
}

// NewAdminPolicy builds a policy from emails and/or uids. Emails compare
// case-insensitively.
func NewAdminPolicy(entries []string) AdminPolicy {
	allowed := make(map[string]bool, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		allowed[normalize(e)] = true
	}
	return AdminPolicy{allowed: allowed}
}

func (p AdminPolicy) Authorize(id Identity) (AdminCapability, error) {
	if id.UID == "" {
		return AdminCapability{}, ErrNotAuthorized
	}
	if p.allowed[normalize(id.UID)] || (id.Email != "" && p.allowed[normalize(id.Email)]) {
		return AdminCapability{holder: id}, nil
	}
	return AdminCapability{}, ErrNotAuthorized
}

func (p AdminPolicy) IsAdmin(id Identity) bool {
	_, err := p.Authorize(id)
	return err == nil
}

func normalize(s string) string {
	if strings.Contains(s, "@") {
		return strings.ToLower(s)
	}
	return s
}
