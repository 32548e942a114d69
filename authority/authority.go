package authority

import (
	"strings"

	"github.com/fundwit/go-commons/types"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleGestor Role = "gestor"
	RoleEquipe Role = "equipe"
)

type Capability string

const (
	CapApproveTriagem     Capability = "demandas:approve_triagem"
	CapApproveHomologacao Capability = "demandas:approve_homologacao"
	CapAdvanceStatus      Capability = "demandas:advance_status"
	CapAssignTechnical    Capability = "demandas:assign_technical"
	CapEditSetor          Capability = "demandas:edit_setor"
	CapViewAll            Capability = "demandas:view_all"
	CapManageUsers        Capability = "users:manage"
	CapManageSetores      Capability = "setores:manage"
)

// RoleCapabilities is resolved at compile time so that adding a role without
// deciding its capabilities is impossible to miss.
func RoleCapabilities(role Role) []Capability {
	switch role {
	case RoleAdmin:
		return []Capability{
			CapApproveTriagem, CapApproveHomologacao, CapAdvanceStatus, CapAssignTechnical,
			CapEditSetor, CapViewAll, CapManageUsers, CapManageSetores,
		}
	case RoleGestor:
		return []Capability{
			CapApproveTriagem, CapApproveHomologacao, CapAdvanceStatus, CapAssignTechnical,
			CapEditSetor,
		}
	case RoleEquipe:
		return []Capability{}
	}
	return []Capability{}
}

func (r Role) Grants(c Capability) bool {
	for _, cap := range RoleCapabilities(r) {
		if cap == c {
			return true
		}
	}
	return false
}

// RoleAssignment binds a role to a principal, optionally scoped to one setor.
// SetorID zero means the assignment is not sector-scoped.
type RoleAssignment struct {
	Role      Role     `json:"role"`
	SetorID   types.ID `json:"setorId"`
	SetorNome string   `json:"setorNome"`
}

type RoleAssignments []RoleAssignment

func (a RoleAssignments) HasRole(role Role) bool {
	for _, assignment := range a {
		if assignment.Role == role {
			return true
		}
	}
	return false
}

// Grants reports whether any assignment grants the capability, regardless of
// sector scope.
func (a RoleAssignments) Grants(c Capability) bool {
	for _, assignment := range a {
		if assignment.Role.Grants(c) {
			return true
		}
	}
	return false
}

// GrantsInSetor reports whether the capability is granted for the given
// setor. Admin assignments and unscoped assignments cover every setor.
func (a RoleAssignments) GrantsInSetor(c Capability, setorID types.ID) bool {
	for _, assignment := range a {
		if !assignment.Role.Grants(c) {
			continue
		}
		if assignment.Role == RoleAdmin || assignment.SetorID == 0 || assignment.SetorID == setorID {
			return true
		}
	}
	return false
}

// Permissions is the flat "role_setorId" form kept for querying visibility.
type Permissions []string

func (p Permissions) HasRole(role string) bool {
	for _, v := range p {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (p Permissions) HasRolePrefix(prefix string) bool {
	for _, v := range p {
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}
