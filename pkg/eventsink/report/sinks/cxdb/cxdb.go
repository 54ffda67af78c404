// Package cxdb provides a sink that persists failures to cxdb as system
// messages.
//
// A failure with a ContextID is appended to that context. Failures without
// one go to an unlinked context created on first use, one per Source, so
// failures of the same event stay together.
package cxdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"unicode/utf8"

	cxdbclient "github.com/strongdm/ai-cxdb/clients/go"
	cxdtypes "github.com/strongdm/ai-cxdb/clients/go/types"

	"github.com/strongdm/ai-eventsink/pkg/eventsink/report"
)

// CXDBClient is the subset of *cxdbclient.Client used by the sink.
type CXDBClient interface {
	CreateContext(ctx context.Context, baseTurnID uint64) (*cxdbclient.ContextHead, error)
	AppendTurn(ctx context.Context, req *cxdbclient.AppendRequest) (*cxdbclient.AppendResult, error)
}

// CXDBSinkOption configures the cxdb sink.
type CXDBSinkOption func(*cxdbSinkConfig)

type cxdbSinkConfig struct {
	labels    []string
	clientTag string
}

// WithLabels sets the labels of contexts created for unlinked failures.
func WithLabels(labels []string) CXDBSinkOption {
	return func(c *cxdbSinkConfig) {
		c.labels = labels
	}
}

// WithClientTag sets the client tag of contexts created for unlinked failures.
func WithClientTag(tag string) CXDBSinkOption {
	return func(c *cxdbSinkConfig) {
		c.clientTag = tag
	}
}

type cxdbSink struct {
	client    CXDBClient
	labels    []string
	clientTag string

	mu       sync.Mutex
	unlinked map[string]*unlinkedContext // by source
}

// unlinkedContext is the shared context of one source's unlinked failures.
// Its mutex is held until the first turn, which carries the context
// metadata, has been appended.
type unlinkedContext struct {
	mu       sync.Mutex
	id       uint64
	created  bool
	labelled bool
}

// NewCXDBSink creates a sink that writes to cxdb.
func NewCXDBSink(client CXDBClient, opts ...CXDBSinkOption) report.Sink {
	cfg := &cxdbSinkConfig{
		labels:    []string{"eventsink", "failure"},
		clientTag: "eventsink",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &cxdbSink{
		client:    client,
		labels:    cfg.labels,
		clientTag: cfg.clientTag,
		unlinked:  make(map[string]*unlinkedContext),
	}
}

// Write appends the failure as a ConversationItem turn.
func (s *cxdbSink) Write(ctx context.Context, failure report.Failure) error {
	if failure.ContextID != nil {
		return s.append(ctx, *failure.ContextID, failure, false)
	}

	u := s.unlinkedContext(failure.Source)
	u.mu.Lock()
	if u.labelled {
		id := u.id
		u.mu.Unlock()
		return s.append(ctx, id, failure, false)
	}
	defer u.mu.Unlock()

	if !u.created {
		head, err := s.client.CreateContext(ctx, 0)
		if err != nil {
			return fmt.Errorf("create unlinked context: %w", err)
		}
		u.id = head.ContextID
		u.created = true
	}
	// A failed first append is retried with metadata by the next write.
	if err := s.append(ctx, u.id, failure, true); err != nil {
		return err
	}
	u.labelled = true
	return nil
}

func (s *cxdbSink) unlinkedContext(source string) *unlinkedContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.unlinked[source]
	if !ok {
		u = &unlinkedContext{}
		s.unlinked[source] = u
	}
	return u
}

func (s *cxdbSink) append(ctx context.Context, contextID uint64, failure report.Failure, firstTurn bool) error {
	payload, err := cxdbclient.EncodeMsgpack(s.conversationItem(failure, firstTurn))
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	_, err = s.client.AppendTurn(ctx, &cxdbclient.AppendRequest{
		ContextID:      contextID,
		TypeID:         cxdtypes.TypeIDConversationItem,
		TypeVersion:    cxdtypes.TypeVersionConversationItem,
		Payload:        payload,
		IdempotencyKey: failure.ID,
	})
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (s *cxdbSink) conversationItem(failure report.Failure, firstTurn bool) *cxdtypes.ConversationItem {
	item := &cxdtypes.ConversationItem{
		ItemType:  cxdtypes.ItemTypeSystem,
		Status:    cxdtypes.ItemStatusComplete,
		Timestamp: failure.Timestamp.UnixMilli(),
		ID:        failure.ID,
		System: &cxdtypes.SystemMessage{
			Kind:    cxdtypes.SystemKindError,
			Title:   title(failure),
			Content: details(failure),
		},
	}
	// cxdb reads context metadata from the first turn only.
	if firstTurn {
		item.ContextMetadata = &cxdtypes.ContextMetadata{
			Labels:    s.labels,
			ClientTag: s.clientTag,
		}
	}
	return item
}

// title is "<source>: <message>", capped at 100 bytes.
func title(failure report.Failure) string {
	t := failure.Message
	if failure.Source != "" {
		t = failure.Source + ": " + t
	}
	if t == "" {
		t = string(failure.Kind)
	}
	if len(t) > 100 {
		cut := 97
		for cut > 0 && !utf8.RuneStart(t[cut]) {
			cut--
		}
		t = t[:cut] + "..."
	}
	return t
}

// details encodes the failure as JSON for SystemMessage.Content.
func details(failure report.Failure) string {
	d := map[string]any{
		"id":          failure.ID,
		"severity":    string(failure.Severity),
		"kind":        string(failure.Kind),
		"error_type":  failure.ErrorType,
		"message":     failure.Message,
		"fingerprint": failure.Fingerprint,
	}
	if failure.Source != "" {
		d["source"] = failure.Source
	}
	if failure.StackTrace != "" {
		d["stack_trace"] = failure.StackTrace
	}
	if failure.ContextID != nil {
		d["context_id"] = *failure.ContextID
	}
	if len(failure.Metadata) > 0 {
		d["metadata"] = failure.Metadata
	}

	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to encode details: %s"}`, err)
	}
	return string(b)
}

// Flush is a no-op; writes are synchronous.
func (s *cxdbSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op; the client is owned by the caller.
func (s *cxdbSink) Close() error {
	return nil
}
