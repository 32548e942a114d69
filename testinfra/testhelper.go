package testinfra

import (
	"net/http"
	"net/http/httptest"

	"demandflow/authority"
	"demandflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSession builds an active session holding the given role assignments.
func BuildSession(uid types.ID, roles ...authority.RoleAssignment) *session.Session {
	perms := authority.Permissions{}
	assignments := authority.RoleAssignments{}
	for _, r := range roles {
		if r.SetorID != 0 {
			perms = append(perms, string(r.Role)+"_"+r.SetorID.String())
		} else {
			perms = append(perms, string(r.Role))
		}
		assignments = append(assignments, r)
	}
	return &session.Session{
		Identity: session.Identity{ID: uid, Name: "user" + uid.String()},
		Active:   true,
		Perms:    perms,
		Roles:    assignments,
	}
}

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code, w.Body.String(), w
}
