package device

import (
	"github.com/robotalks/sensorhub.go/pkg/hub/comm"
	"github.com/robotalks/sensorhub.go/pkg/hub/queue"
	"github.com/robotalks/sensorhub.go/pkg/hub/records"
)

// queueSet is the set of queues of the active mode. Absent queues are nil.
type queueSet struct {
	raw    *queue.Queue[records.Raw]
	report *queue.Queue[records.Algo]
	ext    *queue.Queue[records.AlgoExtended]
	scd    *queue.Queue[records.Scd]
}

func (h *Hub) newQueues(kinds ...records.Kind) (*queueSet, error) {
	s := &queueSet{}
	for _, k := range kinds {
		var err error
		switch k {
		case records.KindRaw:
			s.raw, err = queue.New[records.Raw](h.cfg.RawQueueLen, records.RawCodec)
		case records.KindReport:
			s.report, err = queue.New[records.Algo](h.cfg.ReportQueueLen, records.AlgoCodec)
		case records.KindExtendedReport:
			s.ext, err = queue.New[records.AlgoExtended](h.cfg.ReportQueueLen, records.AlgoExtendedCodec)
		case records.KindScd:
			s.scd, err = queue.New[records.Scd](h.cfg.ScdQueueLen, records.ScdCodec)
		}
		if err != nil {
			return nil, &comm.ResourceError{What: k.String() + " queue", Err: err}
		}
	}
	return s, nil
}

func (s *queueSet) kinds() (kinds []records.Kind) {
	if s == nil {
		return
	}
	if s.raw != nil {
		kinds = append(kinds, records.KindRaw)
	}
	if s.report != nil {
		kinds = append(kinds, records.KindReport)
	}
	if s.ext != nil {
		kinds = append(kinds, records.KindExtendedReport)
	}
	if s.scd != nil {
		kinds = append(kinds, records.KindScd)
	}
	return
}

func (s *queueSet) purge() {
	if s.raw != nil {
		s.raw.Purge()
	}
	if s.report != nil {
		s.report.Purge()
	}
	if s.ext != nil {
		s.ext.Purge()
	}
	if s.scd != nil {
		s.scd.Purge()
	}
}

// installQueues replaces the live queue set. It must only be called with
// the poller paused.
func (h *Hub) installQueues(p *Paused, s *queueSet) {
	if !p.Held() {
		panic("device: queue set replaced while the poller is running")
	}
	h.qlock.Lock()
	old := h.queues
	h.queues = s
	h.qlock.Unlock()
	if old != nil {
		old.purge()
	}
}

func (h *Hub) liveQueues() *queueSet {
	h.qlock.RLock()
	defer h.qlock.RUnlock()
	return h.queues
}

// LiveQueues returns the record kinds with a live queue.
func (h *Hub) LiveQueues() []records.Kind {
	return h.liveQueues().kinds()
}

// FetchRaw returns the oldest queued raw record.
func (h *Hub) FetchRaw() (r records.Raw, ok bool) {
	if s := h.liveQueues(); s != nil && s.raw != nil {
		return s.raw.Get()
	}
	return
}

// FetchReport returns the oldest queued algorithm report.
func (h *Hub) FetchReport() (r records.Algo, ok bool) {
	if s := h.liveQueues(); s != nil && s.report != nil {
		return s.report.Get()
	}
	return
}

// FetchExtendedReport returns the oldest queued extended report.
func (h *Hub) FetchExtendedReport() (r records.AlgoExtended, ok bool) {
	if s := h.liveQueues(); s != nil && s.ext != nil {
		return s.ext.Get()
	}
	return
}

// FetchScd returns the oldest queued skin contact record.
func (h *Hub) FetchScd() (r records.Scd, ok bool) {
	if s := h.liveQueues(); s != nil && s.scd != nil {
		return s.scd.Get()
	}
	return
}

// Fetch returns the oldest queued record of kind k.
func (h *Hub) Fetch(k records.Kind) (records.Record, bool) {
	var (
		rec records.Record
		ok  bool
	)
	switch k {
	case records.KindRaw:
		rec, ok = h.FetchRaw()
	case records.KindReport:
		rec, ok = h.FetchReport()
	case records.KindExtendedReport:
		rec, ok = h.FetchExtendedReport()
	case records.KindScd:
		rec, ok = h.FetchScd()
	}
	if !ok {
		return nil, false
	}
	return rec, true
}
