package account

import (
	"errors"
	"net/http"

	"demandflow/misc"
	"demandflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	PathUsers        = "/v1/users"
	PathSetores      = "/v1/setores"
	PathRoleBindings = "/v1/role-bindings"

	accountValidator = validator.New()
)

func RegisterUsersHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathUsers, middleWares...)
	g.GET("", handleQueryUsers)
	g.POST("", handleCreateUser)
	g.PUT(":id/active", handleToggleUserActive)

	b := r.Group(PathRoleBindings, middleWares...)
	b.POST("", handleCreateRoleBinding)
}

func RegisterSetoresHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathSetores, middleWares...)
	g.GET("", handleQuerySetores)
	g.POST("", handleCreateSetor)
}

func handleQueryUsers(c *gin.Context) {
	users, err := QueryUsersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, users)
}

func handleCreateUser(c *gin.Context) {
	creation := UserCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}
	if err := accountValidator.Struct(creation); err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}

	user, err := CreateUserFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, user)
}

func handleToggleUserActive(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&misc.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	if err := ToggleUserActiveFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleCreateRoleBinding(c *gin.Context) {
	creation := RoleBindingCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}
	if err := accountValidator.Struct(creation); err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}

	bindingRecord, err := CreateRoleBindingFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, bindingRecord)
}

func handleQuerySetores(c *gin.Context) {
	setores, err := QuerySetoresFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, setores)
}

func handleCreateSetor(c *gin.Context) {
	creation := SetorCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}
	if err := accountValidator.Struct(creation); err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}

	setor, err := CreateSetorFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, setor)
}
