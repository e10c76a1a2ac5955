package learning

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/atupatu/pccoe/internal/storage"
)

func selections(sets ...[]string) []storage.UsageEvent {
	events := make([]storage.UsageEvent, 0, len(sets))
	for i, s := range sets {
		events = append(events, storage.UsageEvent{
			ID:               fmt.Sprintf("e%d", i),
			Tab:              "redact-image",
			SelectedEntities: s,
		})
	}
	return events
}

func TestPreferences_NoEvents(t *testing.T) {
	got := Preferences(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil set, got %#v", got)
	}
}

func TestPreferences_NoLabels(t *testing.T) {
	got := Preferences(selections(nil, []string{}))
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil set, got %#v", got)
	}
}

func TestPreferences_Unanimous(t *testing.T) {
	for n := 1; n <= 5; n++ {
		sets := make([][]string, n)
		for i := range sets {
			sets[i] = []string{"face"}
		}
		got := Preferences(selections(sets...))
		if !reflect.DeepEqual(got, []string{"face"}) {
			t.Errorf("n=%d: expected [face], got %v", n, got)
		}
	}
}

func TestPreferences_Majority(t *testing.T) {
	// 4 events, threshold 2.
	events := selections(
		[]string{"plate", "face"},
		[]string{"face"},
		[]string{"plate", "email"},
		[]string{"address"},
	)

	got := Preferences(events)
	want := []string{"plate", "face"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v (first-seen order), got %v", want, got)
	}
}

func TestPreferences_ThresholdIsInclusive(t *testing.T) {
	// 3 events, threshold 1.5: two selections qualify, one does not.
	events := selections([]string{"a"}, []string{"a", "b"}, []string{"c"})

	got := Preferences(events)
	if !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("expected [a], got %v", got)
	}
}

func TestPreferences_SingleEvent(t *testing.T) {
	// threshold 0.5, every selected label qualifies.
	got := Preferences(selections([]string{"x", "y", "z", "w"}))
	want := []string{"x", "y", "z", "w"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPreferences_FallbackTopThree(t *testing.T) {
	// 4 events, each label once: threshold 2, nothing qualifies.
	events := selections([]string{"a"}, []string{"b"}, []string{"c"}, []string{"d"})

	got := Preferences(events)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPreferences_FallbackOrdersByCount(t *testing.T) {
	// 10 events, threshold 5. Counts: a=1 b=3 c=2 d=3 e=1.
	events := selections(
		[]string{"a"},
		[]string{"b"}, []string{"b"}, []string{"b"},
		[]string{"c"}, []string{"c"},
		[]string{"d"}, []string{"d"}, []string{"d"},
		[]string{"e"},
	)

	got := Preferences(events)
	want := []string{"b", "d", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPreferences_FallbackFewerThanThree(t *testing.T) {
	// 5 events, threshold 2.5.
	events := selections([]string{"a"}, nil, []string{"b", "a"}, nil, nil)

	got := Preferences(events)
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPreferences_IgnoresDetected(t *testing.T) {
	events := []storage.UsageEvent{
		{DetectedEntities: []string{"face", "plate"}, SelectedEntities: []string{"plate"}},
		{DetectedEntities: []string{"face"}, SelectedEntities: []string{"plate"}},
	}

	got := Preferences(events)
	if !reflect.DeepEqual(got, []string{"plate"}) {
		t.Errorf("expected [plate], got %v", got)
	}
}

func TestPreferences_Deterministic(t *testing.T) {
	events := selections([]string{"q"}, []string{"r"}, []string{"s"}, []string{"t"}, []string{"u"})

	first := Preferences(events)
	for i := 0; i < 20; i++ {
		if got := Preferences(events); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: expected %v, got %v", i, first, got)
		}
	}
}

func TestCountSelections(t *testing.T) {
	events := selections([]string{"b", "a"}, []string{"a"}, []string{"c", "b", "a"})

	got := CountSelections(events)
	want := []EntityCount{{"b", 2}, {"a", 3}, {"c", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// stubSource serves a fixed history and records the filter it was asked for.
type stubSource struct {
	events []storage.UsageEvent
	err    error
	filter storage.Filter
}

func (s *stubSource) Logs(ctx context.Context, filter storage.Filter) ([]storage.UsageEvent, error) {
	s.filter = filter
	if s.err != nil {
		return nil, s.err
	}
	var out []storage.UsageEvent
	for _, e := range s.events {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestEngine_PreferredEntities(t *testing.T) {
	src := &stubSource{events: []storage.UsageEvent{
		{Tab: "redact-image", SelectedEntities: []string{"face"}},
		{Tab: "censor-audio", SelectedEntities: []string{"profanity"}},
		{Tab: "redact-image", SelectedEntities: []string{"face", "plate"}},
	}}
	engine := NewEngine(src)

	got, err := engine.PreferredEntities(context.Background(), "redact-image")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.filter != (storage.Filter{Tab: "redact-image"}) {
		t.Errorf("expected tab-only filter, got %+v", src.filter)
	}
	if !reflect.DeepEqual(got, []string{"face", "plate"}) {
		t.Errorf("expected [face plate], got %v", got)
	}
}

func TestEngine_EmptyTab(t *testing.T) {
	engine := NewEngine(&stubSource{})

	got, err := engine.PreferredEntities(context.Background(), "analyze-pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil set, got %#v", got)
	}
}

func TestEngine_SourceError(t *testing.T) {
	boom := errors.New("store down")
	engine := NewEngine(&stubSource{err: boom})

	_, err := engine.PreferredEntities(context.Background(), "redact-image")
	if !errors.Is(err, boom) {
		t.Errorf("expected source error, got %v", err)
	}
}

func TestEngine_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	src := &stubSource{events: selections([]string{"face"})}
	if _, err := NewEngine(src).PreferredEntities(context.Background(), "redact-image"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	if !reflect.DeepEqual(names, []string{"learning.PreferredEntities"}) {
		t.Errorf("expected one learning.PreferredEntities span, got %v", names)
	}
}
