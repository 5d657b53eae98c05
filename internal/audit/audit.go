// Package audit records completed command runs into Elasticsearch so that
// failed outcomes can be searched after the fact.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"cmdkit/internal/common/logger"
	"cmdkit/outcome"
)

// Document is the shape of one audit entry in the index.
type Document struct {
	RunID     string                   `json:"run_id"`
	Command   string                   `json:"command"`
	Success   bool                     `json:"success"`
	ElapsedMS int64                    `json:"elapsed_ms"`
	Errors    map[string][]outcome.Key `json:"errors,omitempty"`
	Sentence  string                   `json:"error_sentence,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
}

// Sink writes one document per completed run. It implements
// command.Observer and never fails the run: indexing errors are logged
// and dropped.
type Sink struct {
	es    *elasticsearch.Client
	index string
	log   logger.Logger
}

func NewSink(es *elasticsearch.Client, index string, log logger.Logger) *Sink {
	return &Sink{es: es, index: index, log: log}
}

func (s *Sink) RunStarted(ctx context.Context, name, runID string) {}

func (s *Sink) RunCompleted(ctx context.Context, name, runID string, oc *outcome.Outcome, elapsed time.Duration) {
	doc := Document{
		RunID:     runID,
		Command:   name,
		Success:   oc.Success(),
		ElapsedMS: elapsed.Milliseconds(),
		Timestamp: time.Now().UTC(),
	}
	if !oc.Success() {
		doc.Errors = oc.SymbolicErrors()
		doc.Sentence = oc.ErrorSentence()
	}

	body, err := json.Marshal(doc)
	if err != nil {
		s.log.Error("failed to marshal audit document", map[string]interface{}{
			"run_id": runID,
			"error":  err.Error(),
		})
		return
	}

	res, err := s.es.Index(
		s.index,
		bytes.NewReader(body),
		s.es.Index.WithDocumentID(runID),
		s.es.Index.WithContext(ctx),
	)
	if err != nil {
		s.log.Error("failed to index audit document", map[string]interface{}{
			"run_id": runID,
			"error":  err.Error(),
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		s.log.Error("audit index request rejected", map[string]interface{}{
			"run_id": runID,
			"status": res.Status(),
		})
	}
}
