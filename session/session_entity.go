package session

import (
	"context"
	"time"

	"demandflow/authority"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`
	Active   bool     `json:"active"`

	Perms authority.Permissions     `json:"perms"`
	Roles authority.RoleAssignments `json:"roles"`

	SigningTime time.Time `json:"-"`

	Context context.Context `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

func (i Identity) DisplayName() string {
	if i.Nickname != "" {
		return i.Nickname
	}
	return i.Name
}

func (s *Session) Clone() Session {
	c := *s
	perms := make(authority.Permissions, len(s.Perms))
	copy(perms, s.Perms)
	c.Perms = perms
	roles := make(authority.RoleAssignments, len(s.Roles))
	copy(roles, s.Roles)
	c.Roles = roles
	return c
}

// VisibleSetores lists the setor ids of sector-scoped assignments. Callers
// holding an all-visibility capability should not filter at all.
func (s *Session) VisibleSetores() []types.ID {
	var setorIds []types.ID
	for _, r := range s.Roles {
		if r.SetorID != 0 {
			setorIds = append(setorIds, r.SetorID)
		}
	}
	if setorIds == nil {
		return []types.ID{}
	}
	return setorIds
}
