package provider

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"
)

type fakeEngine struct {
	name      string
	available bool
	probes    int
}

func (p *fakeEngine) Name() string { return p.name }

func (p *fakeEngine) IsAvailable(context.Context) bool {
	p.probes++
	return p.available
}

type degradedEngine struct{ fakeEngine }

func (p *degradedEngine) Health(context.Context) HealthStatus {
	return HealthStatus{Status: StatusDegraded, Message: "circuit half-open"}
}

func newManager(engines ...*fakeEngine) *Manager[*fakeEngine] {
	m := NewManager[*fakeEngine](NewRegistry[*fakeEngine](), nil, nil)
	for _, e := range engines {
		m.Add(e.name, e)
	}
	return m
}

func TestRegistry(t *testing.T) {
	r := NewRegistry[*fakeEngine]()
	for _, name := range []string{"whisper-ur", "whisper-en", "backup"} {
		if err := r.Add(name, &fakeEngine{name: name}); err != nil {
			t.Fatalf("Add(%s): %v", name, err)
		}
	}
	if err := r.Add("backup", &fakeEngine{}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate add: %v", err)
	}
	if got := r.Names(); !slices.Equal(got, []string{"whisper-ur", "whisper-en", "backup"}) {
		t.Errorf("Names = %v, want insertion order", got)
	}
	if p, ok := r.Get("whisper-en"); !ok || p.Name() != "whisper-en" {
		t.Errorf("Get = %v %v", p, ok)
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}
	if all := r.All(); len(all) != 3 || all[0].Name() != "whisper-ur" {
		t.Errorf("All = %v", all)
	}
}

func TestManager_Get(t *testing.T) {
	tests := []struct {
		name    string
		engines []*fakeEngine
		def     string
		want    string
		wantErr error
	}{
		{
			name:    "default wins without probing",
			engines: []*fakeEngine{{name: "a", available: true}, {name: "b", available: false}},
			def:     "b",
			want:    "b",
		},
		{
			name:    "selector takes the first available in order",
			engines: []*fakeEngine{{name: "z", available: false}, {name: "a", available: true}, {name: "m", available: true}},
			want:    "a",
		},
		{
			name:    "none available",
			engines: []*fakeEngine{{name: "a"}},
			wantErr: ErrNoneAvailable,
		},
		{
			name:    "empty",
			wantErr: ErrNoneAvailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager(tt.engines...)
			if tt.def != "" {
				if err := m.SetDefault(tt.def); err != nil {
					t.Fatal(err)
				}
			}
			p, err := m.Get(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || p.Name() != tt.want {
				t.Fatalf("Get = %v, %v; want %s", p, err, tt.want)
			}
			if tt.def != "" {
				for _, e := range tt.engines {
					if e.probes != 0 {
						t.Errorf("%s probed %d times", e.name, e.probes)
					}
				}
			}
		})
	}
}

func TestManager_ByName(t *testing.T) {
	m := newManager(&fakeEngine{name: "svc"})
	if p, err := m.GetByName("svc"); err != nil || p.Name() != "svc" {
		t.Fatalf("GetByName = %v, %v", p, err)
	}
	if _, err := m.GetByName("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := m.SetDefault("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetDefault(missing) = %v", err)
	}
	if err := m.Add("svc", &fakeEngine{name: "svc"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Add duplicate = %v", err)
	}
	if got := newManager(&fakeEngine{name: "y"}, &fakeEngine{name: "x"}).Available(); !slices.Equal(got, []string{"y", "x"}) {
		t.Errorf("Available = %v", got)
	}
}

func TestManager_Health(t *testing.T) {
	m := NewManager[Provider](NewRegistry[Provider](), nil, nil)
	m.Add("up", &fakeEngine{name: "up", available: true})
	m.Add("down", &fakeEngine{name: "down", available: false})
	m.Add("flaky", &degradedEngine{fakeEngine{name: "flaky", available: true}})

	health := m.Health(context.Background())
	want := map[string]Status{"up": StatusHealthy, "down": StatusUnavailable, "flaky": StatusDegraded}
	for name, status := range want {
		if health[name].Status != status {
			t.Errorf("%s: status = %s, want %s", name, health[name].Status, status)
		}
	}
}

func TestHealthStatusJSON(t *testing.T) {
	b, err := json.Marshal(HealthStatus{Status: StatusDegraded})
	if err != nil || string(b) != `{"status":"degraded"}` {
		t.Fatalf("Marshal = %s, %v", b, err)
	}
}
