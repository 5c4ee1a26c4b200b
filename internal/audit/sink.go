// Package audit forwards write events to the external audit log.
// The service never stores audit entries itself.
package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/pkg/httputil"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// Sink delivers audit entries
type Sink interface {
	Record(ctx context.Context, entry contracts.AuditEntry) error
}

// LogSink writes entries to the structured log
type LogSink struct {
	logger *logger.Logger
}

// NewLogSink creates a sink backed by the logger
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) Record(_ context.Context, e contracts.AuditEntry) error {
	s.logger.WithFields(map[string]interface{}{
		"audit_action": e.Action,
		"resource":     e.Resource,
		"resource_id":  e.ResourceID,
		"user_email":   e.UserEmail,
		"details":      e.Details,
	}).Info("Audit entry")
	return nil
}

// HTTPSink posts entries as JSON to a webhook
type HTTPSink struct {
	client *httputil.Client
	url    string
}

// NewHTTPSink creates a webhook sink
func NewHTTPSink(client *httputil.Client, url string) *HTTPSink {
	return &HTTPSink{client: client, url: url}
}

func (s *HTTPSink) Record(ctx context.Context, e contracts.AuditEntry) error {
	resp, err := s.client.PostJSON(ctx, s.url, e)
	if err != nil {
		return fmt.Errorf("post audit entry: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("audit webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// MultiSink fans an entry out to every sink
type MultiSink []Sink

func (m MultiSink) Record(ctx context.Context, e contracts.AuditEntry) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
