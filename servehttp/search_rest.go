package servehttp

import (
	"net/http"

	"demandflow/indices/search"
	"demandflow/misc"
	"demandflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathDemandaSearch = "/v1/demanda-search"

func RegisterDemandaSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathDemandaSearch, middleWares...)
	g.GET("", handleSearchSimilarDemandas)
}

func handleSearchSimilarDemandas(c *gin.Context) {
	query := search.SimilarDemandaQuery{}
	if err := c.ShouldBindWith(&query, binding.Query); err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}

	found, err := search.SearchSimilarDemandasFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: found, Total: uint64(len(found))})
}
