package evidencia

import (
	"io"
	"io/ioutil"

	"demandflow/authority"
	"demandflow/bizerror"
	"demandflow/client/s3"
	"demandflow/demanda"
	"demandflow/domain"
	"demandflow/persistence"
	"demandflow/session"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
)

var (
	DetailEvidenceFunc = DetailEvidence
	CreateEvidenceFunc = CreateEvidence
)

func objectKey(id types.ID) string {
	return "evidencias/" + id.String() + ".webm"
}

// DetailEvidence streams the homologation recording of a demanda.
func DetailEvidence(id types.ID, s *session.Session) ([]byte, error) {
	if _, err := demanda.DetailDemandaFunc(id, s); err != nil {
		return nil, err
	}

	r, err := s3.GetObjectFunc(objectKey(id), s)
	if err != nil {
		if serErr, ok := err.(oss.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return ioutil.ReadAll(r)
}

// CreateEvidence stores the homologation recording and points the demanda
// at it through link_gravacao.
func CreateEvidence(id types.ID, r io.Reader, s *session.Session) error {
	detail, err := demanda.DetailDemandaFunc(id, s)
	if err != nil {
		return err
	}
	if !mayAttach(&detail.Demanda, s) {
		return bizerror.ErrForbidden
	}

	if err := s3.PutObjectFunc(objectKey(id), r, s); err != nil {
		return err
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Model(&domain.Demanda{}).Where("id = ?", id).Update(map[string]interface{}{
		"link_gravacao": "/v1/demanda-evidences/" + id.String(),
		"update_time":   types.CurrentTimestamp(),
	}).Error
}

func mayAttach(d *domain.Demanda, s *session.Session) bool {
	if s == nil || !s.Active {
		return false
	}
	if d.ResponsavelTecnicoID == s.Identity.ID {
		return true
	}
	return s.Roles.GrantsInSetor(authority.CapApproveHomologacao, d.SetorID)
}
