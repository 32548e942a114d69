package servehttp

import (
	"errors"
	"net/http"

	"demandflow/historico"
	"demandflow/misc"
	"demandflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

func RegisterHistoricoRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathDemandas, middleWares...)
	g.GET(":id/historico", handleListHistorico)
}

func handleListHistorico(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&misc.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	records, err := historico.ListForDemandaFunc(parsedId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(*records))})
}
