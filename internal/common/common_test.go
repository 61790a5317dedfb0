package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("WORKERS", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 4, cfg.Worker.Workers)
	assert.Equal(t, 500*time.Millisecond, cfg.Worker.WatchDebounce)
	assert.Equal(t, int64(10<<20), cfg.Server.UploadMaxBytes)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("WORKERS", "9")
	t.Setenv("OCR_TIMEOUT", "3s")
	t.Setenv("OCR_DISABLE_WRAPPER", "true")
	t.Setenv("QUEUE_SIZE", "not-a-number")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 9, cfg.Worker.Workers)
	assert.Equal(t, 64, cfg.Worker.QueueSize)
	assert.Equal(t, 3*time.Second, cfg.OCR.Timeout)
	assert.True(t, cfg.OCR.DisableProxy)
}

func TestConfig_Validate(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	bad := *cfg
	bad.Database.Driver = "oracle"
	assert.Equal(t, CodeInvalidArgument, CodeOf(bad.Validate()))

	bad = *cfg
	bad.Worker.Workers = 0
	assert.Error(t, bad.Validate())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code string
		http int
		grpc codes.Code
	}{
		{NotFound("invoice not found"), CodeNotFound, http.StatusNotFound, codes.NotFound},
		{InvalidArgumentf("bad %s", "id"), CodeInvalidArgument, http.StatusBadRequest, codes.InvalidArgument},
		{Unavailable("db down", errors.New("dial")), CodeUnavailable, http.StatusServiceUnavailable, codes.Unavailable},
		{fmt.Errorf("wrapped: %w", ErrNotFound), CodeNotFound, http.StatusNotFound, codes.NotFound},
		{errors.New("boom"), CodeInternal, http.StatusInternalServerError, codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, CodeOf(tt.err), tt.err.Error())
		assert.Equal(t, tt.http, HTTPStatus(tt.err), tt.err.Error())
		assert.Equal(t, tt.grpc, status.Code(ToGRPCStatus(tt.err)), tt.err.Error())
	}
	assert.Equal(t, "invoice not found", MessageOf(NotFound("invoice not found")))
	assert.NoError(t, ToGRPCStatus(nil))
}

func TestValidator(t *testing.T) {
	name := ""
	v := NewValidator().
		Field("name", &name, Required, MaxLength(5)).
		Field("postal_code", "1234", PostalCode).
		Field("id", "not-a-uuid", UUID)
	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)
	assert.Equal(t, CodeInvalidArgument, CodeOf(v.Err()))

	ok := NewValidator().Field("postal_code", "10115", PostalCode).Field("name", "Acme", Required, MaxLength(5))
	assert.NoError(t, ok.Err())
}
