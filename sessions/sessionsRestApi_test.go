package sessions_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"demandflow/account"
	"demandflow/authority"
	"demandflow/bizerror"
	"demandflow/persistence"
	"demandflow/session"
	"demandflow/sessions"
	"demandflow/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestSimpleLoginHandler(t *testing.T) {
	RegisterTestingT(t)

	var (
		router       *gin.Engine
		testDatabase *testinfra.TestDatabase
	)

	setup := func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		sessions.RegisterSessionsHandler(router)

		testDatabase = testinfra.StartMysqlTestDatabase("demandflow")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB(nil).AutoMigrate(&account.User{}, &account.Setor{},
			&account.UserRoleBinding{}).Error).To(BeNil())
	}
	teardown := func() {
		if testDatabase != nil {
			testinfra.StopMysqlTestDatabase(testDatabase)
		}
		account.LoadPermFuncReset()
	}

	t.Run("should be able to login with correct credentials", func(t *testing.T) {
		defer teardown()
		setup()

		db := testDatabase.DS.GormDB(nil)
		Expect(db.Create(&account.User{ID: 10, Name: "ana", Secret: account.HashSha256("senha123"),
			Ativo: true, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&account.Setor{ID: 1, Nome: "fiscal", Ativo: true,
			CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&account.UserRoleBinding{ID: 100, UserID: 10,
			Role: authority.RoleGestor, SetorID: 1}).Error).To(BeNil())

		req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader([]byte(
			`{"name":"ana","password":"senha123"}`)))
		status, body, resp := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"name":"ana"`))
		Expect(body).To(ContainSubstring(`"gestor_1"`))

		cookie := resp.Result().Cookies()
		Expect(len(cookie)).To(Equal(1))
		Expect(cookie[0].Name).To(Equal(session.KeySecToken))

		value, found := session.TokenCache.Get(cookie[0].Value)
		Expect(found).To(BeTrue())
		s := value.(*session.Session)
		Expect(s.Active).To(BeTrue())
		Expect(s.Roles[0].SetorNome).To(Equal("fiscal"))
	})

	t.Run("should reject a wrong password", func(t *testing.T) {
		defer teardown()
		setup()

		db := testDatabase.DS.GormDB(nil)
		Expect(db.Create(&account.User{ID: 10, Name: "ana", Secret: account.HashSha256("senha123"),
			Ativo: true, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())

		req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader([]byte(
			`{"name":"ana","password":"errada"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(`{"code":"security.invalid_password","message":"invalid password","data":null}`))
	})

	t.Run("should reject an unknown account", func(t *testing.T) {
		defer teardown()
		setup()

		req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader([]byte(
			`{"name":"ninguem","password":"senha123"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(`{"code":"common.unauthenticated","message":"unauthenticated","data":null}`))
	})

	t.Run("inactive user should login into an inactive session", func(t *testing.T) {
		defer teardown()
		setup()

		db := testDatabase.DS.GormDB(nil)
		Expect(db.Create(&account.User{ID: 10, Name: "ana", Secret: account.HashSha256("senha123"),
			Ativo: false, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())

		req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader([]byte(
			`{"name":"ana","password":"senha123"}`)))
		status, _, resp := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))

		value, found := session.TokenCache.Get(resp.Result().Cookies()[0].Value)
		Expect(found).To(BeTrue())
		Expect(value.(*session.Session).Active).To(BeFalse())
		Expect(len(value.(*session.Session).Perms)).To(BeZero())
	})
}

func TestSimpleLogoutHandler(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should drop cached session on logout", func(t *testing.T) {
		router := gin.Default()
		router.Use(bizerror.ErrorHandling())
		sessions.RegisterSessionsHandler(router)

		session.TokenCache.Set("token-1", &session.Session{Token: "token-1"}, 0)

		req := httptest.NewRequest(http.MethodDelete, "/v1/sessions", nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: "token-1"})
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNoContent))

		_, found := session.TokenCache.Get("token-1")
		Expect(found).To(BeFalse())
	})
}
