package demanda

import (
	"time"

	"demandflow/domain"
	"demandflow/event"

	"github.com/fundwit/go-commons/types"
	"github.com/patrickmn/go-cache"
)

// read model of demanda details, refreshed lazily and evicted on any event
// touching the demanda so readers observe transitions promptly
var detailCache = cache.New(10*time.Minute, 1*time.Minute)

const DemandaCacheEvictHandlerName = "demandaCacheEvict"

func cachedDetail(id types.ID) (*domain.DemandaDetail, bool) {
	value, found := detailCache.Get(id.String())
	if !found {
		return nil, false
	}
	detail, ok := value.(*domain.DemandaDetail)
	if !ok {
		return nil, false
	}
	return detail, true
}

func cacheDetail(detail *domain.DemandaDetail) {
	detailCache.Set(detail.ID.String(), detail, cache.DefaultExpiration)
}

func CacheEvictEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeDemanda {
		return nil
	}
	detailCache.Delete(e.Event.SourceId.String())
	return &event.EventHandleResult{Success: true, HandlerIdentifier: DemandaCacheEvictHandlerName}
}
