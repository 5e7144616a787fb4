package preset

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"galaxy-server/internal/galaxy"
	apperrors "galaxy-server/internal/shared/errors"
)

type memoryStore struct {
	mu      sync.Mutex
	nextID  int
	presets map[int]Preset
}

func newMemoryStore() *memoryStore {
	return &memoryStore{nextID: 1, presets: make(map[int]Preset)}
}

func (m *memoryStore) Create(ctx context.Context, p *Preset) (*Preset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.presets {
		if existing.Name == p.Name {
			return nil, apperrors.Conflictf("preset %q already exists", p.Name)
		}
	}
	created := *p
	created.ID = m.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	m.nextID++
	m.presets[created.ID] = created
	return &created, nil
}

func (m *memoryStore) GetByID(ctx context.Context, id int) (*Preset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.presets[id]
	if !ok {
		return nil, apperrors.NotFoundf("preset %d not found", id)
	}
	return &p, nil
}

func (m *memoryStore) List(ctx context.Context) ([]Preset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Preset
	for _, p := range m.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memoryStore) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.presets[id]; !ok {
		return apperrors.NotFoundf("preset %d not found", id)
	}
	delete(m.presets, id)
	return nil
}

type fakeGalaxy struct {
	current *galaxy.Summary
	applied []galaxy.Parameters
	seeds   []uint64
}

func (f *fakeGalaxy) Current() (galaxy.Summary, bool) {
	if f.current == nil {
		return galaxy.Summary{}, false
	}
	return *f.current, true
}

func (f *fakeGalaxy) Apply(ctx context.Context, params galaxy.Parameters, seed *uint64) (*galaxy.Summary, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	f.applied = append(f.applied, params)
	f.seeds = append(f.seeds, *seed)
	f.current = &galaxy.Summary{Parameters: params, Seed: *seed, Generation: uint64(len(f.applied))}
	return f.current, nil
}

func newTestService() (*Service, *fakeGalaxy) {
	g := &fakeGalaxy{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(newMemoryStore(), g, g, logger), g
}

func TestSaveCurrentNeedsAGalaxy(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.SaveCurrent(context.Background(), "spiral", "octocat")
	if apperrors.GetType(err) != apperrors.ErrorTypeConflict {
		t.Errorf("error = %v", err)
	}
}

func TestSaveAndApply(t *testing.T) {
	svc, g := newTestService()
	params := galaxy.DefaultParameters()
	params.Branches = 4
	g.current = &galaxy.Summary{Parameters: params, Seed: 18446744073709551615}

	saved, err := svc.SaveCurrent(context.Background(), "  four arms ", "octocat")
	if err != nil {
		t.Fatal(err)
	}
	if saved.Name != "four arms" || saved.CreatedBy != "octocat" || saved.Seed != 18446744073709551615 {
		t.Errorf("saved = %+v", saved)
	}

	g.current = &galaxy.Summary{Parameters: galaxy.DefaultParameters(), Seed: 1}

	summary, err := svc.Apply(context.Background(), saved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Parameters.Branches != 4 || g.seeds[0] != 18446744073709551615 {
		t.Errorf("applied %+v with seed %d", summary.Parameters, g.seeds[0])
	}
}

func TestSaveCurrentValidatesName(t *testing.T) {
	svc, g := newTestService()
	g.current = &galaxy.Summary{Parameters: galaxy.DefaultParameters()}

	for _, name := range []string{"", "   ", string(make([]byte, 101))} {
		if _, err := svc.SaveCurrent(context.Background(), name, ""); apperrors.GetType(err) != apperrors.ErrorTypeValidation {
			t.Errorf("name %q: error = %v", name, err)
		}
	}
}

func TestDuplicateName(t *testing.T) {
	svc, g := newTestService()
	g.current = &galaxy.Summary{Parameters: galaxy.DefaultParameters()}

	if _, err := svc.SaveCurrent(context.Background(), "twin", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SaveCurrent(context.Background(), "twin", ""); apperrors.GetType(err) != apperrors.ErrorTypeConflict {
		t.Errorf("error = %v", err)
	}
}

func TestApplyMissingPreset(t *testing.T) {
	svc, g := newTestService()
	if _, err := svc.Apply(context.Background(), 99); apperrors.GetType(err) != apperrors.ErrorTypeNotFound {
		t.Errorf("error = %v", err)
	}
	if len(g.applied) != 0 {
		t.Error("missing preset applied something")
	}
}
