package metrics_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/idelchi/xtsenc/internal/dispatch"
	"github.com/idelchi/xtsenc/internal/encryption"
	"github.com/idelchi/xtsenc/internal/metrics"
)

func newDispatcher(t *testing.T, observer dispatch.Observer) *dispatch.Dispatcher {
	t.Helper()

	d, err := dispatch.New(encryption.NewTransformer, dispatch.Options{UnitSize: 1024, Observer: observer})
	if err != nil {
		t.Fatal(err)
	}

	return d
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(reg, dispatch.Forward)
	d := newDispatcher(t, recorder)

	key := encryption.DeriveKey("metrics")
	buf := make([]byte, 2500)

	if err := d.Run(t.Context(), buf, buf, key, 4, dispatch.Forward); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if err := d.Run(ctx, buf, buf, key, 4, dispatch.Forward); !errors.Is(err, dispatch.ErrCancelled) {
		t.Fatalf("Run() error = %v, want %v", err, dispatch.ErrCancelled)
	}

	tests := []struct {
		name      string
		collector prometheus.Collector
		want      float64
	}{
		{name: "units", collector: recorder.UnitsTotal.WithLabelValues("encrypt"), want: 3},
		{name: "bytes", collector: recorder.BytesTotal.WithLabelValues("encrypt"), want: 2500},
		{name: "ok runs", collector: recorder.RunsTotal.WithLabelValues("encrypt", "ok"), want: 1},
		{name: "cancelled runs", collector: recorder.RunsTotal.WithLabelValues("encrypt", "cancelled"), want: 1},
		{name: "failed runs", collector: recorder.RunsTotal.WithLabelValues("encrypt", "error"), want: 0},
		{name: "workers", collector: recorder.Workers, want: 4},
	}

	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.collector); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	if got := testutil.CollectAndCount(recorder.UnitBytes); got != 1 {
		t.Errorf("unit_bytes series = %d, want 1", got)
	}
}

func TestRecorderFailedRun(t *testing.T) {
	t.Parallel()

	recorder := metrics.NewRecorder(nil, dispatch.Inverse)
	d := newDispatcher(t, recorder)

	// A 16-byte key is rejected by every worker.
	if err := d.Run(t.Context(), make([]byte, 64), make([]byte, 64), make([]byte, 16), 2, dispatch.Inverse); err == nil {
		t.Fatal("Run() returned no error")
	}

	if got := testutil.ToFloat64(recorder.RunsTotal.WithLabelValues("decrypt", "error")); got != 1 {
		t.Errorf("failed runs = %v, want 1", got)
	}
}

func TestNilRecorder(t *testing.T) {
	t.Parallel()

	var recorder *metrics.Recorder

	recorder.UnitDone(0, dispatch.Claim{Length: 16})
	recorder.RunDone(dispatch.Summary{}, nil)
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(reg, dispatch.Forward)
	d := newDispatcher(t, recorder)

	if err := d.Run(t.Context(), make([]byte, 100), make([]byte, 100), encryption.DeriveKey("x"), 1, dispatch.Forward); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "xtsenc.prom")

	if err := metrics.WriteTextfile(path, reg); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`xtsenc_dispatch_units_total{direction="encrypt"} 1`,
		`xtsenc_dispatch_runs_total{direction="encrypt",status="ok"} 1`,
		"xtsenc_dispatch_workers 1",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile is missing %q", want)
		}
	}

	if err := metrics.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"), reg); err == nil {
		t.Error("WriteTextfile() into a missing directory returned no error")
	}
}
