package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oil-tonnage/internal/calculation"
	"oil-tonnage/internal/config"
	"oil-tonnage/internal/domain"
	"oil-tonnage/internal/storage"
	"oil-tonnage/internal/vcf"
)

var seededEntries = []domain.VCFEntry{
	{Density: 890.0, Temperature: 30.0, VCF: 0.9801},
	{Density: 890.5, Temperature: 30.0, VCF: 0.9804},
	{Density: 900.0, Temperature: 15.0, VCF: 0.9900},
}

// newTestServer wires the real service over a seeded sqlite database.
func newTestServer(t *testing.T, opts Options) (*Server, *storage.Storage) {
	t.Helper()

	store, err := storage.Open(context.Background(), config.DatabaseConfig{
		Driver:         config.DriverSQLite,
		Path:           filepath.Join(t.TempDir(), "server.db"),
		MaxOpenConns:   4,
		MaxIdleConns:   2,
		QueryTimeout:   5 * time.Second,
		ConnectTimeout: time.Second,
		AutoMigrate:    true,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.ImportVCFEntries(context.Background(), seededEntries, false))

	svc := calculation.NewService(vcf.NewResolver(store), store, 100)
	return New(svc, zap.NewNop(), opts), store
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

type calculateEnvelope struct {
	Success bool                `json:"success"`
	Data    calculationResponse `json:"data"`
}

// failingService answers every call with err, or panics when panicMsg is set.
type failingService struct {
	err      error
	panicMsg string
}

func (f *failingService) Calculate(context.Context, float64, float64, float64) (domain.CalculationRecord, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return domain.CalculationRecord{}, f.err
}

func (f *failingService) List(_ context.Context, q domain.ListQuery) (domain.ListQuery, domain.ListResult, error) {
	return q.Normalize(), domain.ListResult{}, f.err
}

func (f *failingService) Delete(context.Context, int64) error { return f.err }

func (f *failingService) Clear(context.Context) error { return f.err }

func (f *failingService) Export(context.Context, io.Writer, domain.ListQuery) error { return f.err }

func (f *failingService) Health(context.Context) error { return f.err }
