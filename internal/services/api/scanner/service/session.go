package service

import (
	"sync"
	"time"

	"caisse/internal/adapters/decoder/push"
	"caisse/internal/core/scan"
	"caisse/internal/services/api/scanner/domain"
)

// session is the active scanning surface and what it has produced so far
type session struct {
	id       string
	openedAt time.Time
	dec      *push.Decoder
	sess     *scan.Session
	history  int

	mu        sync.Mutex
	lastFrame *scan.ProcessedFrame
	scans     []domain.ConfirmedScan
	nextSeq   uint64
}

func (ss *session) setFrame(f scan.ProcessedFrame) {
	ss.mu.Lock()
	ss.lastFrame = &f
	ss.mu.Unlock()
}

func (ss *session) record(ev scan.ConfirmedEvent, res domain.ConsumerResult) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.nextSeq++
	ss.scans = append(ss.scans, domain.ConfirmedScan{Seq: ss.nextSeq, Event: ev, Result: res})
	if len(ss.scans) > ss.history {
		ss.scans = append([]domain.ConfirmedScan(nil), ss.scans[len(ss.scans)-ss.history:]...)
	}
}

func (ss *session) seq() uint64 {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.nextSeq
}

func (ss *session) last() *domain.ConfirmedScan {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if len(ss.scans) == 0 {
		return nil
	}
	c := ss.scans[len(ss.scans)-1]
	return &c
}

func (ss *session) confirmed() []domain.ConfirmedScan {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return append([]domain.ConfirmedScan{}, ss.scans...)
}

func (ss *session) view() domain.Session {
	v := domain.Session{
		ID:       ss.id,
		OpenedAt: ss.openedAt,
		Phase:    ss.dec.Phase(),
		Stream:   ss.dec.Stream(),
		State:    ss.sess.Snapshot(),
		Decoder:  ss.dec.Counters(),
		LastScan: ss.last(),
	}
	ss.mu.Lock()
	if ss.lastFrame != nil {
		f := *ss.lastFrame
		v.LastFrame = &f
	}
	ss.mu.Unlock()
	return v
}
