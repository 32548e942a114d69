package account

import (
	"crypto/sha256"
	"encoding/hex"

	"demandflow/authority"

	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Name   string   `json:"name" gorm:"unique"`
	Secret string   `json:"-"`

	Nickname string `json:"nickname"`
	Ativo    bool   `json:"ativo"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	Ativo    bool     `json:"ativo"`
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

type Setor struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	Nome      string   `json:"nome" gorm:"unique"`
	Descricao string   `json:"descricao"`
	Ativo     bool     `json:"ativo"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// UserRoleBinding: at most one binding per (user, role, setor).
type UserRoleBinding struct {
	ID      types.ID       `json:"id" gorm:"primary_key"`
	UserID  types.ID       `json:"userId" gorm:"unique_index:uni_user_role_setor"`
	Role    authority.Role `json:"role" gorm:"unique_index:uni_user_role_setor"`
	SetorID types.ID       `json:"setorId" gorm:"unique_index:uni_user_role_setor"`
}

type UserCreation struct {
	Name     string `json:"name" validate:"required"`
	Secret   string `json:"secret" validate:"required,gte=6"`
	Nickname string `json:"nickname"`
}

type SetorCreation struct {
	Nome      string `json:"nome" validate:"required"`
	Descricao string `json:"descricao"`
}

type RoleBindingCreation struct {
	UserID  types.ID       `json:"userId" validate:"required"`
	Role    authority.Role `json:"role" validate:"required,oneof=admin gestor equipe"`
	SetorID types.ID       `json:"setorId"`
}

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}
