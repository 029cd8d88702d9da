package monitoring

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeTokens struct {
	pruned atomic.Int32
	err    error
}

func (f *fakeTokens) Revoke(string, string, time.Time) error { return nil }
func (f *fakeTokens) IsRevoked(string) (bool, error)          { return false, nil }
func (f *fakeTokens) PruneExpired(time.Time) (int64, error) {
	f.pruned.Add(1)
	return 3, f.err
}

func TestAddRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler()
	if err := s.Add("broken", "every tuesday-ish", func() error { return nil }); err == nil {
		t.Error("expected invalid schedule error")
	}
	if err := s.Add("prune", "@hourly", func() error { return nil }); err != nil {
		t.Errorf("valid schedule err = %v", err)
	}
}

func TestSchedulerRunsJobs(t *testing.T) {
	tokens := &fakeTokens{}
	s := NewScheduler()
	if err := s.Add("prune", "@every 1s", PruneRevokedTokens(tokens)); err != nil {
		t.Fatal(err)
	}
	s.Run()
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for tokens.pruned.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("job never ran")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestPruneRevokedTokensPropagatesError(t *testing.T) {
	job := PruneRevokedTokens(&fakeTokens{err: errors.New("db locked")})
	if err := job(); err == nil {
		t.Error("expected error")
	}
}
