package servehttp

import (
	"net/http"

	"demandflow/indices"
	"demandflow/session"

	"github.com/gin-gonic/gin"
)

var PathIndexSync = "/v1/index-sync"

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexSync, middleWares...)
	g.POST("", handleScheduleIndexSync)
}

func handleScheduleIndexSync(c *gin.Context) {
	scheduled, err := indices.ScheduleNewSyncRunFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	if !scheduled {
		c.JSON(http.StatusOK, gin.H{"scheduled": false})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"scheduled": true})
}
