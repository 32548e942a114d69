package main

import (
	"log"
	"net/http"

	"demandflow/account"
	"demandflow/assist"
	"demandflow/bizerror"
	"demandflow/client/es"
	"demandflow/client/s3"
	"demandflow/demanda"
	"demandflow/domain"
	"demandflow/event"
	"demandflow/evidencia"
	"demandflow/historico"
	"demandflow/indices"
	"demandflow/infra/tracing"
	"demandflow/persistence"
	"demandflow/servehttp"
	"demandflow/session"
	"demandflow/sessions"

	"github.com/gin-gonic/gin"
)

const serviceName = "demandflow"

func main() {
	log.Println("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database conneciton failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(nil).AutoMigrate(
		&domain.Demanda{},
		&historico.HistoricoRecord{},
		&event.EventRecord{},
		&account.User{},
		&account.Setor{},
		&account.UserRoleBinding{},
	).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	if err := account.DefaultSecurityConfiguration(); err != nil {
		log.Fatalf("security bootstrap failed %v\n", err)
	}

	if closer := tracing.Bootstrap(serviceName); closer != nil {
		defer closer.Close()
	}

	es.CreateClientFromEnv()
	s3.Bootstrap()
	assist.Bootstrap()

	event.EventHandlers = append(event.EventHandlers,
		demanda.CacheEvictEventHandle,
		indices.IndexDemandaEventHandle,
	)

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, serviceName)
	})

	sessions.RegisterSessionsHandler(engine)
	sessions.RegisterSessionHandler(engine, session.SimpleAuthFilter())

	authed := session.SimpleAuthFilter()
	account.RegisterUsersHandler(engine, authed)
	account.RegisterSetoresHandler(engine, authed)
	servehttp.RegisterDemandasRestAPI(engine, authed)
	servehttp.RegisterDemandaTransitionsRestAPI(engine, authed)
	servehttp.RegisterHistoricoRestAPI(engine, authed)
	servehttp.RegisterDemandaSearchRestAPI(engine, authed)
	servehttp.RegisterAssistRestAPI(engine, authed)
	servehttp.RegisterIndicesRestAPI(engine, authed)
	evidencia.RegisterEvidenceRestAPI(engine, authed)

	err = engine.Run(":80")
	if err != nil {
		panic(err)
	}
}
