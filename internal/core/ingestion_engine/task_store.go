package ingestion_engine

import (
	"slices"
	"sync"
	"time"

	"github.com/markdave123-py/Lumen/internal/models"
)

// taskRecord owns one FileTask. Its mutex is the only lock a stage update takes
// on the task itself.
type taskRecord struct {
	mu   sync.Mutex
	task models.FileTask
}

// taskStore maps task id -> record. The store lock guards membership only;
// record contents are guarded by the record's own mutex.
type taskStore struct {
	mu      sync.RWMutex
	records map[string]*taskRecord
	order   []string
	now     func() time.Time
}

func newTaskStore(now func() time.Time) *taskStore {
	return &taskStore{records: make(map[string]*taskRecord), now: now}
}

func (s *taskStore) add(t models.FileTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[t.ID] = &taskRecord{task: t}
	s.order = append(s.order, t.ID)
}

func (s *taskStore) record(id string) *taskRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id]
}

// update applies fn to the live task under the record lock. fn must only touch
// the fields of its stage. found is false when the id is unknown or discarded;
// a failed fn leaves the task unchanged.
func (s *taskStore) update(id string, fn func(*models.FileTask) error) (found bool, err error) {
	rec := s.record(id)
	if rec == nil {
		return false, nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	next := rec.task
	if err := fn(&next); err != nil {
		return true, err
	}
	next.UpdatedAt = s.now()
	rec.task = next
	return true, nil
}

func (s *taskStore) get(id string) (models.FileTask, bool) {
	rec := s.record(id)
	if rec == nil {
		return models.FileTask{}, false
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return cloneTask(rec.task), true
}

// list returns snapshots in submission order.
func (s *taskStore) list() []models.FileTask {
	s.mu.RLock()
	recs := make([]*taskRecord, 0, len(s.order))
	for _, id := range s.order {
		recs = append(recs, s.records[id])
	}
	s.mu.RUnlock()

	out := make([]models.FileTask, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		out = append(out, cloneTask(rec.task))
		rec.mu.Unlock()
	}
	return out
}

func (s *taskStore) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return false
	}
	delete(s.records, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return true
}

func cloneTask(t models.FileTask) models.FileTask {
	t.Preview = slices.Clone(t.Preview)
	if t.Analysis.Report != nil {
		r := *t.Analysis.Report
		t.Analysis.Report = &r
	}
	return t
}
