package usage

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/atupatu/pccoe/internal/sink"
	"github.com/atupatu/pccoe/internal/storage"
	"github.com/atupatu/pccoe/internal/telemetry"
)

const (
	defaultTab      = "unknown"
	defaultFilename = "unnamed_file"
	emptyLabels     = "[]"
)

var tracer = telemetry.Tracer("github.com/atupatu/pccoe/internal/usage")

// Upload is the file half of a usage report.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Report is a raw usage report as received from a client. Entity fields
// hold JSON-encoded string arrays.
type Report struct {
	File             *Upload
	Tab              string
	Entities         string
	SelectedEntities string
}

// Receipt describes an accepted report.
type Receipt struct {
	ID        string `json:"id"`
	Tab       string `json:"tab"`
	Filename  string `json:"filename"`
	Timestamp string `json:"timestamp"`
}

// Ingestor validates reports, appends them to the store, and hands the raw
// file to the sink.
type Ingestor struct {
	store  storage.Storage
	sink   sink.Sink
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewIngestor creates an Ingestor. A nil sink discards uploads and a nil
// logger is replaced with a no-op one.
func NewIngestor(store storage.Storage, s sink.Sink, logger *zap.SugaredLogger) *Ingestor {
	if s == nil {
		s = sink.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Ingestor{
		store:  store,
		sink:   s,
		logger: logger,
		now:    time.Now,
	}
}

// Log records one report. The event is appended before the file is
// persisted; a sink failure is logged and does not fail the call, so a
// returned receipt always names a stored event.
func (i *Ingestor) Log(ctx context.Context, r Report) (Receipt, error) {
	ctx, span := tracer.Start(ctx, "usage.Log")
	defer span.End()

	if r.File == nil {
		span.SetStatus(codes.Error, ErrNoFile.Error())
		return Receipt{}, ErrNoFile
	}

	tab := r.Tab
	if tab == "" {
		tab = defaultTab
	}
	filename := r.File.Filename
	if filename == "" {
		filename = defaultFilename
	}
	span.SetAttributes(attribute.String("usage.tab", tab), attribute.String("usage.filename", filename))

	detected, err := decodeLabels(r.Entities, "entities")
	if err != nil {
		return Receipt{}, fail(span, err)
	}
	selected, err := decodeLabels(r.SelectedEntities, "selected_entities")
	if err != nil {
		return Receipt{}, fail(span, err)
	}

	now := i.now()
	event := storage.UsageEvent{
		Tab:              tab,
		Filename:         filename,
		Timestamp:        now.Format(storage.TimestampLayout),
		DetectedEntities: detected,
		SelectedEntities: selected,
		CreatedAt:        now.UTC(),
	}

	id, err := i.store.RecordUsage(ctx, event)
	if err != nil {
		return Receipt{}, fail(span, storeError(err, "record usage"))
	}
	span.SetAttributes(attribute.String("usage.id", id))

	i.persist(ctx, id, filename, r.File.Body)

	return Receipt{
		ID:        id,
		Tab:       tab,
		Filename:  filename,
		Timestamp: event.Timestamp,
	}, nil
}

func (i *Ingestor) persist(ctx context.Context, id, filename string, body io.Reader) {
	if body == nil {
		body = strings.NewReader("")
	}
	if err := i.sink.Put(ctx, filename, body); err != nil {
		err = sinkError(err)
		trace.SpanFromContext(ctx).RecordError(err)
		i.logger.Warnw("failed to persist upload",
			"id", id,
			"filename", filename,
			"error", err,
		)
	}
}

// decodeLabels parses a JSON array of strings. Empty input and JSON null
// both yield an empty list.
func decodeLabels(raw, field string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		raw = emptyLabels
	}
	var labels []string
	if err := json.Unmarshal([]byte(raw), &labels); err != nil {
		return nil, parseError(err, field)
	}
	if labels == nil {
		labels = []string{}
	}
	return labels, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
