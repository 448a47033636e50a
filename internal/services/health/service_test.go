package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusWithoutChecks(t *testing.T) {
	report := NewService(nil).Status(context.Background())
	assert.True(t, report.OK)
	assert.Empty(t, report.Checks)
}

func TestStatusReportsFailingDependency(t *testing.T) {
	svc := NewService(map[string]Pinger{
		"database": PingFunc(func(ctx context.Context) error { return nil }),
		"redis":    PingFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
		"skipped":  nil,
	})

	report := svc.Status(context.Background())
	assert.False(t, report.OK)
	assert.Equal(t, map[string]string{"database": "ok", "redis": "connection refused"}, report.Checks)
}
