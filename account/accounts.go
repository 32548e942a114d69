package account

import (
	"errors"
	"fmt"
	"os"

	"demandflow/authority"
	"demandflow/bizerror"
	"demandflow/idgen"
	"demandflow/persistence"
	"demandflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	LoadPermFunc = loadPerms

	CreateUserFunc        = CreateUser
	QueryUsersFunc        = QueryUsers
	ToggleUserActiveFunc  = ToggleUserActive
	CreateRoleBindingFunc = CreateRoleBinding
	CreateSetorFunc       = CreateSetor
	QuerySetoresFunc      = QuerySetores
)

func LoadPermFuncReset() {
	LoadPermFunc = loadPerms
}

// DefaultSecurityConfiguration guarantees a usable admin account exists.
func DefaultSecurityConfiguration() error {
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	return db.Transaction(func(tx *gorm.DB) error {
		admin := User{}
		err := tx.Model(&User{}).Where(&User{ID: 1}).First(&admin).Error
		if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
			initialAdminPassword := os.Getenv("INITIAL_ADMIN_PASSWORD")
			if initialAdminPassword == "" {
				initialAdminPassword = "admin123"
			}
			if err := tx.Save(&User{ID: 1, Name: "admin", Secret: HashSha256(initialAdminPassword),
				Ativo: true, CreateTime: types.CurrentTimestamp()}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		return tx.Save(&UserRoleBinding{ID: 1, UserID: 1, Role: authority.RoleAdmin}).Error
	})
}

// loadPerms resolves a principal's role bindings into the session. The third
// result reports whether the account is active; inactive principals keep an
// empty permission set.
func loadPerms(uid types.ID) (authority.Permissions, authority.RoleAssignments, bool) {
	db := persistence.ActiveDataSourceManager.GormDB(nil)

	user := User{}
	if err := db.Model(&User{}).Where(&User{ID: uid}).First(&user).Error; err != nil {
		panic(err)
	}
	if !user.Ativo {
		return authority.Permissions{}, authority.RoleAssignments{}, false
	}

	var bindings []UserRoleBinding
	if err := db.Model(&UserRoleBinding{}).Where(&UserRoleBinding{UserID: uid}).Find(&bindings).Error; err != nil {
		panic(err)
	}

	perms := authority.Permissions{}
	assignments := authority.RoleAssignments{}

	var setorIds []types.ID
	for _, b := range bindings {
		if b.SetorID != 0 {
			setorIds = append(setorIds, b.SetorID)
		}
	}
	setores := map[types.ID]Setor{}
	if len(setorIds) > 0 {
		var found []Setor
		if err := db.Model(&Setor{}).Where("id in (?)", setorIds).Find(&found).Error; err != nil {
			panic(err)
		}
		for _, s := range found {
			setores[s.ID] = s
		}
	}

	for _, b := range bindings {
		if b.SetorID != 0 {
			perms = append(perms, fmt.Sprintf("%s_%d", b.Role, b.SetorID))
		} else {
			perms = append(perms, string(b.Role))
		}
		assignments = append(assignments, authority.RoleAssignment{
			Role: b.Role, SetorID: b.SetorID, SetorNome: setores[b.SetorID].Nome,
		})
	}
	return perms, assignments, true
}

func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if s == nil || !s.Active || !s.Roles.Grants(authority.CapManageUsers) {
		return nil, bizerror.ErrForbidden
	}
	user := User{ID: idgen.NextID(idWorker), Name: c.Name, Secret: HashSha256(c.Secret),
		Nickname: c.Nickname, Ativo: true, CreateTime: types.CurrentTimestamp()}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Create(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Ativo: user.Ativo}, nil
}

func QueryUsers(s *session.Session) (*[]UserInfo, error) {
	if s == nil || !s.Active || !s.Roles.Grants(authority.CapManageUsers) {
		return nil, bizerror.ErrForbidden
	}
	var users []UserInfo
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

// ToggleUserActive flips the ativo flag. Deactivated users are denied every
// action on the next permission resolution.
func ToggleUserActive(uid types.ID, s *session.Session) error {
	if s == nil || !s.Active || !s.Roles.Grants(authority.CapManageUsers) {
		return bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	user := User{}
	if err := db.Model(&User{}).Where(&User{ID: uid}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrNotFound
		}
		return err
	}
	return db.Model(&User{}).Where("id = ?", uid).Update("ativo", !user.Ativo).Error
}

func CreateRoleBinding(c *RoleBindingCreation, s *session.Session) (*UserRoleBinding, error) {
	if s == nil || !s.Active || !s.Roles.Grants(authority.CapManageUsers) {
		return nil, bizerror.ErrForbidden
	}
	binding := UserRoleBinding{ID: idgen.NextID(idWorker), UserID: c.UserID, Role: c.Role, SetorID: c.SetorID}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Create(&binding).Error; err != nil {
		return nil, err
	}
	return &binding, nil
}

func CreateSetor(c *SetorCreation, s *session.Session) (*Setor, error) {
	if s == nil || !s.Active || !s.Roles.Grants(authority.CapManageSetores) {
		return nil, bizerror.ErrForbidden
	}
	setor := Setor{ID: idgen.NextID(idWorker), Nome: c.Nome, Descricao: c.Descricao,
		Ativo: true, CreateTime: types.CurrentTimestamp()}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Create(&setor).Error; err != nil {
		return nil, err
	}
	return &setor, nil
}

func QuerySetores(s *session.Session) (*[]Setor, error) {
	if s == nil || !s.Active {
		return nil, bizerror.ErrForbidden
	}
	var setores []Setor
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Find(&setores).Error; err != nil {
		return nil, err
	}
	return &setores, nil
}
