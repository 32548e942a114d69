package servehttp

import (
	"errors"
	"net/http"

	"demandflow/demanda"
	"demandflow/misc"
	"demandflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type StageReviewRequest struct {
	Justificativa string `json:"justificativa" binding:"required" validate:"required"`
}

type AssigneeRequest struct {
	ResponsavelID   types.ID `json:"responsavelId" binding:"required" validate:"required"`
	ResponsavelNome string   `json:"responsavelNome" binding:"required" validate:"required"`
}

func RegisterDemandaTransitionsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathDemandas, middleWares...)
	g.POST(":id/approval", handleApproveStage)
	g.POST(":id/rejection", handleRejectStage)
	g.POST(":id/completion", handleMarkComplete)
	g.POST(":id/assignee", handleAssignTechnical)
}

func handleApproveStage(c *gin.Context) {
	id, review := bindStageReview(c)

	updated, err := demanda.ApproveStageFunc(id, review.Justificativa, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, updated)
}

func handleRejectStage(c *gin.Context) {
	id, review := bindStageReview(c)

	updated, err := demanda.RejectStageFunc(id, review.Justificativa, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, updated)
}

func handleMarkComplete(c *gin.Context) {
	id, review := bindStageReview(c)

	updated, err := demanda.MarkCompleteFunc(id, review.Justificativa, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, updated)
}

func handleAssignTechnical(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&misc.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	req := AssigneeRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}
	if err := demandaValidator.Struct(req); err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}

	updated, err := demanda.AssignTechnicalFunc(id, req.ResponsavelID, req.ResponsavelNome,
		session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, updated)
}

func bindStageReview(c *gin.Context) (types.ID, StageReviewRequest) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&misc.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	review := StageReviewRequest{}
	if err := c.ShouldBindBodyWith(&review, binding.JSON); err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}
	if err := demandaValidator.Struct(review); err != nil {
		panic(&misc.ErrBadParam{Cause: err})
	}
	return id, review
}
