package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Sink delivers a single event to an external system.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
	Close() error
}

// SheetSink talks to a sheet.best style REST endpoint: rows are appended
// with POST and addressed by finder for PUT and DELETE.
type SheetSink struct {
	BaseURL string
	Client  *http.Client
}

// NewSheetSink returns a SheetSink with a bounded HTTP client.
func NewSheetSink(baseURL string) *SheetSink {
	return &SheetSink{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Deliver implements Sink.
func (s *SheetSink) Deliver(ctx context.Context, ev Event) error {
	var (
		method string
		target string
		body   any
	)
	rowURL := s.BaseURL + "/FINDER/" + url.PathEscape(ev.Key)
	switch ev.Kind {
	case ItemCreated:
		method, target, body = http.MethodPost, s.BaseURL, []Row{ev.Row}
	case ItemUpdated:
		method, target, body = http.MethodPut, rowURL, ev.Row
	case ItemDeleted:
		method, target = http.MethodDelete, rowURL
	default:
		return fmt.Errorf("sheet: unsupported event kind %q", ev.Kind)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("sheet: encoding row: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("sheet: building request: %w", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("sheet: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sheet: %s %s: unexpected status %d", method, target, resp.StatusCode)
	}
	return nil
}

// Close implements Sink.
func (s *SheetSink) Close() error {
	s.Client.CloseIdleConnections()
	return nil
}

// KafkaSink publishes events to a topic keyed by item ID, so every event for
// one item lands on the same partition in publish order.
type KafkaSink struct {
	Writer *kafka.Writer
}

// NewKafkaSink returns a sink writing to topic on brokers.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		Writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Deliver implements Sink.
func (s *KafkaSink) Deliver(ctx context.Context, ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: encoding event: %w", err)
	}
	err = s.Writer.WriteMessages(ctx, messageFor(ev, value))
	if err != nil {
		return fmt.Errorf("kafka: writing %s: %w", ev.Kind, err)
	}
	return nil
}

func messageFor(ev Event, value []byte) kafka.Message {
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.ItemID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(ev.Kind)},
			{Key: "event_id", Value: []byte(ev.ID)},
		},
	}
}

// Close implements Sink.
func (s *KafkaSink) Close() error {
	return s.Writer.Close()
}

// LogSink only logs events. It is used when no external target is configured
// so the outbox still drains.
type LogSink struct {
	Logger *slog.Logger
}

// Deliver implements Sink.
func (s *LogSink) Deliver(_ context.Context, ev Event) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("mirror event", "id", ev.ID, "kind", ev.Kind, "item", ev.ItemID)
	return nil
}

// Close implements Sink.
func (s *LogSink) Close() error { return nil }
