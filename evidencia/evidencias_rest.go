package evidencia

import (
	"errors"
	"net/http"

	"demandflow/misc"
	"demandflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var PathDemandaEvidences = "/v1/demanda-evidences"

func RegisterEvidenceRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathDemandaEvidences, middleWares...)
	g.GET(":id", handleGetEvidence)
	g.POST(":id", handleCreateEvidence)
}

func handleGetEvidence(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&misc.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	bytes, err := DetailEvidenceFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.Data(http.StatusOK, "video/webm", bytes)
}

func handleCreateEvidence(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&misc.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	file, err := c.FormFile("file")
	if err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}
	src, err := file.Open()
	if err != nil {
		panic(err)
	}
	defer src.Close()

	if err := CreateEvidenceFunc(id, src, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{})
}
