package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/uconn-ofc/sv-browser/internal/browser"
	"github.com/uconn-ofc/sv-browser/internal/candidates"
	"github.com/uconn-ofc/sv-browser/internal/family"
	"github.com/uconn-ofc/sv-browser/internal/genome"
	"github.com/uconn-ofc/sv-browser/internal/locus"
	"github.com/uconn-ofc/sv-browser/internal/lookup"
	"github.com/uconn-ofc/sv-browser/internal/metrics"
	"github.com/uconn-ofc/sv-browser/internal/refdata"
	"github.com/uconn-ofc/sv-browser/internal/track"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type fixture struct {
	srv   *Server
	store *refdata.Store
	m     *metrics.Metrics
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := refdata.Open(refdata.DriverSQLite, "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Load(ctx, refdata.DemoDataset()))

	genes := lookup.New(store, 0)
	families := family.NewResolver(store)
	assembler, err := track.NewAssembler(store, families, track.DefaultConfig())
	require.NoError(t, err)
	b := browser.New(store, families, locus.NewResolver(genes), assembler)

	table, err := candidates.Parse(strings.NewReader("Gene,Score\nIRF6,0.9\nMSX1,0.7\n"))
	require.NoError(t, err)

	m := metrics.New()
	srv, err := New(Deps{
		Store:      store,
		Genes:      genes,
		Families:   families,
		Assembler:  assembler,
		Browser:    b,
		Candidates: table,
		Metrics:    m,
		Version:    "test",
	}, opts)
	require.NoError(t, err)
	return &fixture{srv: srv, store: store, m: m}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(Deps{}, Options{})
	assert.Error(t, err)
}

func TestHealthAndReadiness(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"test"`)

	rec = f.do(t, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Status string         `json:"status"`
		Store  refdata.Status `json:"store"`
	}](t, rec)
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, 8, body.Store.GeneCount)
	assert.Equal(t, "refdata-sqlite", body.Store.Name)

	require.NoError(t, f.store.Close())
	rec = f.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGenomes(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/genomes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Build       string                     `json:"build"`
		Chromosomes []browser.ChromosomeOption `json:"chromosomes"`
	}](t, rec)
	assert.Equal(t, "hg38", body.Build)
	require.NotEmpty(t, body.Chromosomes)
	assert.Equal(t, "1", body.Chromosomes[0].Value)
	assert.Equal(t, "Chromosome 1", body.Chromosomes[0].Label)
}

func TestGenes(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/genes?q=irf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Options []lookup.Option `json:"options"`
	}](t, rec)
	require.Len(t, body.Options, 1)
	assert.Equal(t, "IRF6", body.Options[0].Value)

	rec = f.do(t, http.MethodGet, "/api/genes?q=", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"genes":[]`)

	rec = f.do(t, http.MethodGet, "/api/genes/MSX1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"x1":4859000`)

	rec = f.do(t, http.MethodGet, "/api/genes/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenesInLocus(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/genes?locus=1:209,700,000-209,900,000", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[struct {
		Options []lookup.Option `json:"options"`
		Limit   int             `json:"limit"`
	}](t, rec)
	require.Len(t, body.Options, 2)
	assert.Equal(t, "TRAF3IP3", body.Options[0].Value)
	assert.Equal(t, "IRF6", body.Options[1].Value)
	assert.Equal(t, lookup.DefaultLimit, body.Limit)

	rec = f.do(t, http.MethodGet, "/api/genes?locus=4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"MSX1"`)

	for _, bad := range []string{"", ":1-2", "1:200-100"} {
		rec = f.do(t, http.MethodGet, "/api/genes?locus="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestGeneAt(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/genes/at?chrom=chr1&start=209805000&end=209807000", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[struct {
		Locus string       `json:"locus"`
		Gene  *genome.Gene `json:"gene"`
	}](t, rec)
	assert.Equal(t, "chr1:209805000-209807000", body.Locus)
	require.NotNil(t, body.Gene)
	assert.Equal(t, "IRF6", body.Gene.ID)

	rec = f.do(t, http.MethodGet, "/api/genes/at?chrom=4&start=4860000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"MSX1"`)

	rec = f.do(t, http.MethodGet, "/api/genes/at?chrom=1&start=100&end=200", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"gene":null`)

	tests := []string{
		"start=1&end=2",
		"chrom=1&start=x",
		"chrom=1&start=10&end=5",
	}
	for _, q := range tests {
		rec = f.do(t, http.MethodGet, "/api/genes/at?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestFamilies(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/families", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"families":["F001","F002"]}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/families/F002", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Parents  []refdata.Member `json:"parents"`
		Children []refdata.Member `json:"children"`
		Summary  []family.Summary `json:"summary"`
	}](t, rec)
	assert.Len(t, body.Parents, 2)
	assert.Len(t, body.Children, 2)
	require.Len(t, body.Summary, 4)

	rec = f.do(t, http.MethodGet, "/api/families/F999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No data found for family F999", decode[ErrorResponse](t, rec).Message)
}

func TestTracks(t *testing.T) {
	f := newFixture(t, Options{})

	tests := []struct {
		name   string
		query  string
		status int
		tracks int
	}{
		{"population", "chrom=1", http.StatusOK, 5},
		{"family", "chrom=1&scope=family&family=F002", http.StatusOK, 6},
		{"unknown family", "chrom=1&scope=family&family=F999", http.StatusOK, 2},
		{"family without id", "chrom=1&scope=family", http.StatusBadRequest, 0},
		{"bad scope", "chrom=1&scope=cohort", http.StatusBadRequest, 0},
		{"no chromosome", "", http.StatusBadRequest, 0},
		{"unknown build", "chrom=1&build=hg19", http.StatusBadRequest, 0},
		{"locus", "locus=1:209700000-209900000", http.StatusOK, 5},
		{"bad locus", "locus=1:x-y", http.StatusBadRequest, 0},
		{"reference only", "chrom=1&reference=true", http.StatusOK, 2},
		{"reference ignores family", "chrom=1&reference=true&scope=family&family=F002", http.StatusOK, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, "/api/tracks?"+tt.query, nil)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				return
			}
			body := decode[struct {
				Tracks []track.Track `json:"tracks"`
			}](t, rec)
			require.Len(t, body.Tracks, tt.tracks)
			assert.Equal(t, track.KindBackground, body.Tracks[0].Kind)
		})
	}
}

func TestTracksRegion(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/tracks?locus=chr1:209800000-209815000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Chrom  string        `json:"chrom"`
		Region *genome.Locus `json:"region"`
		Tracks []track.Track `json:"tracks"`
	}](t, rec)
	assert.Equal(t, "chr1", body.Chrom)
	require.NotNil(t, body.Region)
	assert.Equal(t, genome.Range("chr1", 209800000, 209815000), *body.Region)
	require.Len(t, body.Tracks, 5)
	require.NotEmpty(t, body.Tracks[1].Features)
	for _, tr := range body.Tracks {
		for _, ft := range tr.Features {
			assert.LessOrEqual(t, ft.Start, int64(209815000), ft.Name)
			assert.GreaterOrEqual(t, ft.End, int64(209800000), ft.Name)
		}
	}

	rec = f.do(t, http.MethodGet, "/api/tracks?chrom=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"region"`)

	rec = f.do(t, http.MethodGet, "/api/tracks?chrom=1&reference=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scope":"reference"`)
}

func TestStats(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/stats/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[refdata.Summary](t, rec)
	assert.Equal(t, map[string]int{"DEL": 5, "DUP": 2, "INV": 1}, sum.Types)
	assert.Equal(t, 2, sum.AffectedChildren)
	assert.Equal(t, 1, sum.UnaffectedChildren)

	rec = f.do(t, http.MethodGet, "/api/stats/sizes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sizes := decode[struct {
		Sizes []refdata.SizePoint `json:"sizes"`
	}](t, rec)
	assert.Len(t, sizes.Sizes, 8)

	rec = f.do(t, http.MethodGet, "/api/stats/chromosomes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chroms := decode[struct {
		Chromosomes []refdata.ChromCount `json:"chromosomes"`
	}](t, rec)
	require.NotEmpty(t, chroms.Chromosomes)
	assert.Equal(t, refdata.CategoryMother, chroms.Chromosomes[0].Category)

	rec = f.do(t, http.MethodGet, "/api/stats/top?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	top := decode[struct {
		Variants []refdata.TopVariant `json:"variants"`
	}](t, rec)
	require.Len(t, top.Variants, 2)
	assert.Equal(t, "DEL_1_209805000", top.Variants[0].ID)
	assert.Equal(t, 2, top.Variants[0].Child)

	rec = f.do(t, http.MethodGet, "/api/stats/top", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[struct {
		Variants []refdata.TopVariant `json:"variants"`
	}](t, rec).Variants, 4)

	for _, bad := range []string{"0", "-1", "many"} {
		rec = f.do(t, http.MethodGet, "/api/stats/top?limit="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestStatsStorageFailure(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.store.Close())

	for _, path := range []string{"/api/stats/summary", "/api/stats/sizes", "/api/stats/chromosomes", "/api/stats/top"} {
		rec := f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.Equal(t, browser.MsgStorage, decode[ErrorResponse](t, rec).Message, path)
	}
}

func TestSampleCountsAndCandidates(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/samples/counts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, refdata.SampleCounts{Mother: 2, Father: 1, Child: 3, Background: 3}, decode[refdata.SampleCounts](t, rec))

	rec = f.do(t, http.MethodGet, "/api/candidates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	table := decode[candidates.Table](t, rec)
	assert.Equal(t, []string{"Gene", "Score"}, table.Columns)
	assert.Equal(t, []string{"IRF6", "MSX1"}, table.Genes())
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[locus.State](t, rec).ID
	require.NotEmpty(t, id)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.m.Sessions))

	base := "/api/sessions/" + id

	rec = f.do(t, http.MethodGet, base+"/view", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	prompt := decode[viewResponse](t, rec)
	assert.Equal(t, browser.MsgSelectChromosome, prompt.Message)
	assert.False(t, prompt.Ready)

	rec = f.do(t, http.MethodPut, base+"/chromosome", chromosomeRequest{Chrom: "4"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPut, base+"/gene", locus.GeneRef{ID: "IRF6"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, base+"/view?scope=family", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, browser.MsgSelectFamily, decode[browser.View](t, rec).Message)

	rec = f.do(t, http.MethodPut, base+"/family", familyRequest{Family: "F001"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, base+"/view?scope=family", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[viewResponse](t, rec)
	assert.True(t, v.Ready)
	assert.Equal(t, "1:209799000-209816000", v.Locus)
	assert.True(t, v.ChromosomeChanged)
	assert.Len(t, v.Tracks, 5)
	require.NotNil(t, v.Family)
	assert.Equal(t, 2, v.Family.Parents)

	rec = f.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[locus.State](t, rec)
	assert.Equal(t, "1", st.Chrom, "gene selection moved the session chromosome")

	rec = f.do(t, http.MethodGet, base+"/view?scope=population", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1:209800000-209815000", decode[browser.View](t, rec).Locus)

	rec = f.do(t, http.MethodGet, base+"/view?scope=other", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, float64(0), testutil.ToFloat64(f.m.Sessions))

	rec = f.do(t, http.MethodGet, base+"/view", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectCandidate(t *testing.T) {
	f := newFixture(t, Options{})
	id := decode[locus.State](t, f.do(t, http.MethodPost, "/api/sessions", nil)).ID
	base := "/api/sessions/" + id

	rec := f.do(t, http.MethodPut, base+"/candidate", map[string]int{"row": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[locus.State](t, rec)
	require.NotNil(t, st.Gene)
	assert.Equal(t, "MSX1", st.Gene.ID)
	assert.False(t, st.Gene.HasCoordinates())

	rec = f.do(t, http.MethodGet, base+"/view", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "4:4859000-4863000", decode[browser.View](t, rec).Locus)

	rec = f.do(t, http.MethodPut, base+"/candidate", map[string]int{"row": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, http.MethodPut, base+"/candidate", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearGene(t *testing.T) {
	f := newFixture(t, Options{})
	id := decode[locus.State](t, f.do(t, http.MethodPost, "/api/sessions", nil)).ID
	base := "/api/sessions/" + id

	f.do(t, http.MethodPut, base+"/gene", locus.GeneRef{ID: "MSX1"})
	rec := f.do(t, http.MethodPut, base+"/gene", locus.GeneRef{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[locus.State](t, rec).Gene)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{refdata.ErrNotFound, http.StatusNotFound},
		{errUnknownSession, http.StatusNotFound},
		{track.ErrNoChromosome, http.StatusBadRequest},
		{lookup.ErrNoChromosome, http.StatusBadRequest},
		{&refdata.StorageError{Op: "genes", Err: errors.New("locked")}, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err), tt.err.Error())
	}
}

func TestStorageFailureMasksMessage(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.store.Close())

	rec := f.do(t, http.MethodGet, "/api/families", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, browser.MsgStorage, decode[ErrorResponse](t, rec).Message)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, Options{})
	f.do(t, http.MethodGet, "/api/genes/IRF6", nil)

	rec := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `svbrowser_http_requests_total{method="GET",route="/api/genes/:id",status="200"} 1`)
}

func TestSessionsSweep(t *testing.T) {
	r := NewSessions(time.Minute, nil)
	s := r.Create()
	r.Create()
	assert.Equal(t, 2, r.Len())

	assert.Zero(t, r.Sweep(time.Now()))
	assert.Equal(t, 2, r.Sweep(time.Now().Add(2*time.Minute)))
	_, ok := r.Get(s.ID())
	assert.False(t, ok)

	keep := NewSessions(0, nil)
	keep.Create()
	assert.Zero(t, keep.Sweep(time.Now().Add(time.Hour)))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	f := newFixture(t, Options{SessionTTL: time.Minute, ShutdownTimeout: time.Second})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Serve(ctx, ln) }()

	tr := &http.Transport{DisableKeepAlives: true}
	client := &http.Client{Transport: tr, Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	tr.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
