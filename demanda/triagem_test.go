package demanda_test

import (
	"sync"
	"testing"
	"time"

	"demandflow/authority"
	"demandflow/bizerror"
	"demandflow/demanda"
	"demandflow/domain"
	"demandflow/event"
	"demandflow/historico"
	"demandflow/misc"
	"demandflow/session"
	"demandflow/testinfra"

	. "github.com/onsi/gomega"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

func historicoOf(testDatabase *testinfra.TestDatabase, d *domain.DemandaDetail) []historico.HistoricoRecord {
	records := []historico.HistoricoRecord{}
	Expect(testDatabase.DS.GormDB(nil).Model(&historico.HistoricoRecord{}).
		Where("demanda_id = ?", d.ID).Order("create_time ASC").Find(&records).Error).To(BeNil())
	return records
}

func TestApproveStage(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("gestor of the setor should approve triagem", func(t *testing.T) {
		defer teardown(t, testDatabase)
		persistedEvents, handedEvents := setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		gestor := testinfra.BuildSession(50, authority.RoleAssignment{Role: authority.RoleGestor, SetorID: 1})

		updated, err := demanda.ApproveStage(created.ID, "alinhada com o planejamento", gestor)
		Expect(err).To(BeNil())
		Expect(updated.Status).To(Equal(domain.StatusTriagemTecnica))
		Expect(updated.StatusTriagem).To(Equal(domain.OutcomeAprovado))
		Expect(updated.ObservacoesTriagem).To(Equal("alinhada com o planejamento"))
		Expect(updated.TriadoPorID).To(Equal(gestor.Identity.ID))
		Expect(updated.TriadoPorNome).To(Equal(gestor.Identity.DisplayName()))
		Expect(updated.TriadoEm).ToNot(BeZero())
		Expect(updated.StatusTriagemTecnica).To(Equal(domain.OutcomePendente))

		records := historicoOf(testDatabase, created)
		Expect(len(records)).To(Equal(2))
		Expect(records[1].Acao).To(Equal(historico.AcaoTriagemAprovada))
		Expect(records[1].StatusAnterior).To(Equal(string(domain.StatusTriagem)))
		Expect(records[1].StatusNovo).To(Equal(string(domain.StatusTriagemTecnica)))
		Expect(records[1].Observacoes).To(Equal("alinhada com o planejamento"))
		Expect(records[1].UsuarioID).To(Equal(gestor.Identity.ID))

		last := (*persistedEvents)[len(*persistedEvents)-1]
		Expect(last.EventCategory).To(Equal(event.EventCategoryPropertyUpdated))
		Expect(last.UpdatedProperties[0].PropertyName).To(Equal("status"))
		Expect(last.UpdatedProperties[0].NewValue).To(Equal(string(domain.StatusTriagemTecnica)))
		Expect(len(*handedEvents)).To(Equal(2))
	})

	t.Run("equipe should never approve, and nothing is recorded", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		equipe := testinfra.BuildSession(10, authority.RoleAssignment{Role: authority.RoleEquipe, SetorID: 1})

		_, err := demanda.ApproveStage(created.ID, "tentativa", equipe)
		Expect(err).To(Equal(bizerror.ErrForbidden))

		reloaded := domain.Demanda{}
		Expect(testDatabase.DS.GormDB(nil).Where("id = ?", created.ID).First(&reloaded).Error).To(BeNil())
		Expect(reloaded.Status).To(Equal(domain.StatusTriagem))
		Expect(len(historicoOf(testDatabase, created))).To(Equal(1))
	})

	t.Run("deactivated admin should be denied and nothing is recorded", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		admin := testinfra.BuildSession(1, authority.RoleAssignment{Role: authority.RoleAdmin})
		admin.Active = false

		_, err := demanda.ApproveStage(created.ID, "tentativa", admin)
		Expect(err).To(Equal(bizerror.ErrForbidden))

		reloaded := domain.Demanda{}
		Expect(testDatabase.DS.GormDB(nil).Where("id = ?", created.ID).First(&reloaded).Error).To(BeNil())
		Expect(reloaded.Status).To(Equal(domain.StatusTriagem))
		Expect(len(historicoOf(testDatabase, created))).To(Equal(1))
	})

	t.Run("gestor of another setor should be denied", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		gestor := testinfra.BuildSession(50, authority.RoleAssignment{Role: authority.RoleGestor, SetorID: 2})
		_, err := demanda.ApproveStage(created.ID, "fora do meu setor", gestor)
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("terminal demanda should yield invalid transition even for admin", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		Expect(testDatabase.DS.GormDB(nil).Model(&domain.Demanda{}).Where("id = ?", created.ID).
			Update("status", domain.StatusConcluido).Error).To(BeNil())

		admin := testinfra.BuildSession(1, authority.RoleAssignment{Role: authority.RoleAdmin})
		_, err := demanda.ApproveStage(created.ID, "reabrir", admin)
		Expect(err).To(Equal(bizerror.ErrInvalidTransition))
	})

	t.Run("empty justification should fail before touching the store", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		admin := testinfra.BuildSession(1, authority.RoleAssignment{Role: authority.RoleAdmin})

		_, err := demanda.ApproveStage(created.ID, "   ", admin)
		Expect(err).ToNot(BeNil())
		_, isBadParam := err.(*misc.ErrBadParam)
		Expect(isBadParam).To(BeTrue())
		Expect(len(historicoOf(testDatabase, created))).To(Equal(1))
	})

	t.Run("unknown demanda should yield not found", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		admin := testinfra.BuildSession(1, authority.RoleAssignment{Role: authority.RoleAdmin})
		_, err := demanda.ApproveStage(404404, "ok", admin)
		Expect(err).To(Equal(bizerror.ErrNotFound))
	})

	t.Run("raced second approval should fail once status moved", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		gestor := testinfra.BuildSession(50, authority.RoleAssignment{Role: authority.RoleGestor, SetorID: 1})

		_, err := demanda.ApproveStage(created.ID, "primeira", gestor)
		Expect(err).To(BeNil())

		// the state machine already moved on, the repeated triagem action
		// has no transition anymore
		_, err = demanda.RejectStage(created.ID, "segunda", gestor)
		Expect(err).To(Equal(bizerror.ErrInvalidTransition))
		Expect(len(historicoOf(testDatabase, created))).To(Equal(2))
	})
}

func TestRejectStage(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("rejection should be terminal and stamped", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		gestor := testinfra.BuildSession(50, authority.RoleAssignment{Role: authority.RoleGestor, SetorID: 1})

		updated, err := demanda.RejectStage(created.ID, "sem aderencia ao negocio", gestor)
		Expect(err).To(BeNil())
		Expect(updated.Status).To(Equal(domain.StatusReprovado))
		Expect(updated.StatusTriagem).To(Equal(domain.OutcomeReprovado))
		Expect(updated.ObservacoesTriagem).To(Equal("sem aderencia ao negocio"))

		records := historicoOf(testDatabase, created)
		Expect(records[len(records)-1].Acao).To(Equal(historico.AcaoTriagemReprovada))

		// terminal: nothing may leave reprovado
		_, err = demanda.ApproveStage(created.ID, "reconsiderar", gestor)
		Expect(err).To(Equal(bizerror.ErrInvalidTransition))
	})

	t.Run("homologacao rejection should stamp the homologacao verdict", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		Expect(testDatabase.DS.GormDB(nil).Model(&domain.Demanda{}).Where("id = ?", created.ID).
			Update("status", domain.StatusHomologacao).Error).To(BeNil())

		gestor := testinfra.BuildSession(50, authority.RoleAssignment{Role: authority.RoleGestor, SetorID: 1})
		updated, err := demanda.RejectStage(created.ID, "falhou na validacao", gestor)
		Expect(err).To(BeNil())
		Expect(updated.Status).To(Equal(domain.StatusReprovado))
		Expect(updated.StatusHomologacao).To(Equal(domain.OutcomeReprovado))
		Expect(updated.HomologadoPorID).To(Equal(gestor.Identity.ID))

		records := historicoOf(testDatabase, created)
		Expect(records[len(records)-1].Acao).To(Equal(historico.AcaoHomologacaoReprovada))
	})

	t.Run("concurrent rejections: the compare-and-swap loser gets a conflict", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		event.EventPersistCreateFunc = func(record *event.EventRecord, db *gorm.DB) error { return nil }
		event.InvokeHandlersFunc = func(record *event.EventRecord) []event.EventHandleResult { return nil }

		// park the first transaction after its status update so the second
		// one reads the old status before the winner commits
		statusUpdated := make(chan struct{})
		release := make(chan struct{})
		var winnerGate sync.Once
		historico.RecordFunc = func(tx *gorm.DB, demandaID types.ID, usuario *session.Identity,
			acao historico.Acao, statusAnterior, statusNovo domain.StatusDemanda,
			observacoes string) (*historico.HistoricoRecord, error) {
			winnerGate.Do(func() {
				close(statusUpdated)
				<-release
			})
			return historico.Record(tx, demandaID, usuario, acao, statusAnterior, statusNovo, observacoes)
		}
		defer func() { historico.RecordFunc = historico.Record }()

		gestor := testinfra.BuildSession(50, authority.RoleAssignment{Role: authority.RoleGestor, SetorID: 1})
		results := make(chan error, 2)
		reject := func() {
			_, err := demanda.RejectStage(created.ID, "duplicada de outra demanda", gestor)
			results <- err
		}

		go reject()
		<-statusUpdated
		go reject()
		time.Sleep(200 * time.Millisecond)
		close(release)

		outcomes := []error{<-results, <-results}
		Expect(outcomes).To(ConsistOf(BeNil(), Equal(bizerror.ErrConflict)))

		reloaded := domain.Demanda{}
		Expect(testDatabase.DS.GormDB(nil).Where("id = ?", created.ID).First(&reloaded).Error).To(BeNil())
		Expect(reloaded.Status).To(Equal(domain.StatusReprovado))
		Expect(len(historicoOf(testDatabase, created))).To(Equal(2))
	})
}

func TestMarkComplete(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("golive demanda should be closed as concluido", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		Expect(testDatabase.DS.GormDB(nil).Model(&domain.Demanda{}).Where("id = ?", created.ID).
			Update("status", domain.StatusGolive).Error).To(BeNil())

		gestor := testinfra.BuildSession(50, authority.RoleAssignment{Role: authority.RoleGestor, SetorID: 1})
		updated, err := demanda.MarkComplete(created.ID, "entregue em producao", gestor)
		Expect(err).To(BeNil())
		Expect(updated.Status).To(Equal(domain.StatusConcluido))

		records := historicoOf(testDatabase, created)
		Expect(records[len(records)-1].Acao).To(Equal(historico.AcaoStatusAlterado))
		Expect(records[len(records)-1].StatusNovo).To(Equal(string(domain.StatusConcluido)))
	})

	t.Run("demanda not yet live should not be closed", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		admin := testinfra.BuildSession(1, authority.RoleAssignment{Role: authority.RoleAdmin})
		_, err := demanda.MarkComplete(created.ID, "apressar", admin)
		Expect(err).To(Equal(bizerror.ErrInvalidTransition))
	})
}

func TestAssignTechnical(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("gestor should assign a technical owner", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		gestor := testinfra.BuildSession(50, authority.RoleAssignment{Role: authority.RoleGestor, SetorID: 1})

		updated, err := demanda.AssignTechnical(created.ID, 77, "tecnico.silva", gestor)
		Expect(err).To(BeNil())
		Expect(updated.ResponsavelTecnicoID).To(Equal(types.ID(77)))
		Expect(updated.ResponsavelTecnicoNome).To(Equal("tecnico.silva"))

		records := historicoOf(testDatabase, created)
		Expect(records[len(records)-1].Acao).To(Equal(historico.AcaoResponsavelAtribuido))
		Expect(records[len(records)-1].Observacoes).To(Equal("tecnico.silva"))
	})

	t.Run("equipe should not assign", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		equipe := testinfra.BuildSession(10, authority.RoleAssignment{Role: authority.RoleEquipe, SetorID: 1})
		_, err := demanda.AssignTechnical(created.ID, 77, "tecnico.silva", equipe)
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("terminal demanda should not receive an assignee", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		created := buildDemanda("d1", 1, 10)
		Expect(testDatabase.DS.GormDB(nil).Model(&domain.Demanda{}).Where("id = ?", created.ID).
			Update("status", domain.StatusReprovado).Error).To(BeNil())

		admin := testinfra.BuildSession(1, authority.RoleAssignment{Role: authority.RoleAdmin})
		_, err := demanda.AssignTechnical(created.ID, 77, "tecnico.silva", admin)
		Expect(err).To(Equal(bizerror.ErrInvalidTransition))
	})
}
