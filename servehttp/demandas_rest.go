package servehttp

import (
	"errors"
	"net/http"

	"demandflow/demanda"
	"demandflow/domain"
	"demandflow/misc"
	"demandflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	PathDemandas = "/v1/demandas"

	demandaValidator = validator.New()
)

func RegisterDemandasRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathDemandas, middleWares...)
	g.GET("", handleQueryDemandas)
	g.POST("", handleCreateDemanda)
	g.GET(":id", handleDetailDemanda)
	g.PUT(":id", handleUpdateDemanda)
	g.DELETE(":id", handleDeleteDemanda)
}

func handleQueryDemandas(c *gin.Context) {
	query := domain.DemandaQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	demandas, err := demanda.QueryDemandasFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: demandas, Total: uint64(len(*demandas))})
}

func handleCreateDemanda(c *gin.Context) {
	creation := domain.DemandaCreation{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}
	if err = demandaValidator.Struct(creation); err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}

	detail, err := demanda.CreateDemandaFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, detail)
}

func handleDetailDemanda(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&misc.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	detail, err := demanda.DetailDemandaFunc(parsedId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}

func handleUpdateDemanda(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&misc.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	updating := domain.DemandaUpdating{}
	err = c.ShouldBindBodyWith(&updating, binding.JSON)
	if err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}

	updated, err := demanda.UpdateDemandaFunc(parsedId, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, updated)
}

func handleDeleteDemanda(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&misc.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	err = demanda.DeleteDemandaFunc(parsedId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
