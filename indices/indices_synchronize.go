package indices

import (
	"context"
	"fmt"
	"sync"
	"time"

	"demandflow/authority"
	"demandflow/bizerror"
	"demandflow/demanda"
	"demandflow/session"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun

	// keeps a full re-sync from hammering the search cluster
	syncLimiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 1)
)

func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if s == nil || !s.Active || !s.Roles.HasRole(authority.RoleAdmin) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

var (
	SyncBatchSize = 500
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	for {
		if err := syncLimiter.Wait(context.Background()); err != nil {
			return err
		}

		demandas, err := demanda.LoadDemandasFunc(page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("indices fully sync: error on retrieve demandas(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			page++
			continue
		}

		if len(demandas) == 0 {
			logrus.Infof("indices fully sync: there are no more demandas to index")
			return nil // loop exit
		}

		if err := IndexDemandas(demandas); err != nil {
			logrus.Warnf("indices fully sync: error on index demandas(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}
