package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jlrickert/ekr/pkg/alias"
	"github.com/jlrickert/ekr/pkg/metrics"
	"github.com/jlrickert/ekr/pkg/vault"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveDocument(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	doc := vault.NewDocument("a.md")

	m.ObserveDocument(alias.OpAdd, doc, 2, nil, time.Millisecond)
	m.ObserveDocument(alias.OpAdd, doc, 0, nil, time.Millisecond)
	m.ObserveDocument(alias.OpAdd, doc, 0, errors.New("boom"), time.Millisecond)
	m.ObserveDocument(alias.OpRemove, doc, 3, nil, time.Millisecond)

	require.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("add", "updated")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("add", "unchanged")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("add", "error")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.AliasesTotal.WithLabelValues("add")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.AliasesTotal.WithLabelValues("remove")))
}

func TestEngineReportsToMetrics(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	store := vault.NewMemoryStore(map[string]string{"한.md": "", "b.md": ""})
	eng := alias.New(store, alias.WithObserver(m))

	res, err := eng.AddVault(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.FilesUpdated)

	require.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("add", "updated")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.AliasesTotal.WithLabelValues("add")))
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.WatchEventsTotal.Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "ekr_watch_events_total 1")
}

func TestServe_StopsOnCancel(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
