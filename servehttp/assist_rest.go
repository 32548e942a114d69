package servehttp

import (
	"net/http"

	"demandflow/assist"
	"demandflow/misc"
	"demandflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathAssist = "/v1/assist"

func RegisterAssistRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAssist, middleWares...)
	g.POST("", handleAssist)
}

func handleAssist(c *gin.Context) {
	req := assist.AssistRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}
	if err := demandaValidator.Struct(req); err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}

	result, err := assist.GenerateFunc(&req, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
