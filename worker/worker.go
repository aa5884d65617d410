package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"finsight/api/db"
	"finsight/api/logger"
	"finsight/api/metrics"
	"finsight/api/models"
	"finsight/api/mongodb"
	"finsight/api/sse"
)

// Pool processes analysis outcomes from the result topic. Payloads for the
// same partition stay ordered because each partition maps to one worker
// goroutine with its own channel.
type Pool struct {
	workers    int
	partitions []chan []byte
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	hub        *sse.Hub

	mu        sync.RWMutex
	stopped   bool
	processed uint64
	dropped   uint64
}

func NewPool(workers int, hub *sse.Hub) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	partitions := make([]chan []byte, workers)
	for i := range partitions {
		partitions[i] = make(chan []byte, 100)
	}
	return &Pool{
		workers:    workers,
		partitions: partitions,
		ctx:        ctx,
		cancelFunc: cancel,
		hub:        hub,
	}
}

func (p *Pool) Start() {
	logger.Get().Info("starting analysis worker pool", zap.Int("workers", p.workers))
	for i := range p.partitions {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *Pool) Stop() {
	logger.Get().Info("stopping analysis worker pool")
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	for _, ch := range p.partitions {
		close(ch)
	}
	p.mu.Unlock()

	p.cancelFunc()
	p.wg.Wait()
}

// Submit hands a raw result payload to the worker owning the partition. A
// submit racing or following Stop counts as dropped instead of panicking on
// the closed channel.
func (p *Pool) Submit(payload []byte, partition int32) {
	idx := int(partition) % len(p.partitions)
	if idx < 0 {
		idx = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		p.dropped++
		logger.Get().Warn("analysis result dropped, pool stopped",
			zap.Int("partition", idx))
		return
	}
	select {
	case p.partitions[idx] <- payload:
	default:
		p.dropped++
		logger.Get().Error("analysis result dropped, partition buffer full",
			zap.Int("partition", idx))
	}
}

func (p *Pool) Processed() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.processed
}

func (p *Pool) Dropped() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dropped
}

func (p *Pool) worker(partition int) {
	defer p.wg.Done()
	for {
		select {
		case payload, ok := <-p.partitions[partition]:
			if !ok {
				return
			}
			p.handle(payload)
		case <-p.ctx.Done():
			return
		}
	}
}

// handle applies one outcome: persist the result record, flip the document
// status, and push the status event to any live SSE subscribers.
func (p *Pool) handle(payload []byte) {
	var outcome models.AnalysisOutcome
	if err := json.Unmarshal(payload, &outcome); err != nil {
		logger.Get().Error("failed to unmarshal analysis outcome", zap.Error(err))
		return
	}
	if outcome.DocumentID == "" {
		logger.Get().Error("analysis outcome missing document id")
		return
	}

	ctx, cancel := context.WithTimeout(p.ctx, 15*time.Second)
	defer cancel()

	if err := ApplyOutcome(ctx, &outcome, p.hub); err != nil {
		logger.Get().Error("failed to apply analysis outcome",
			zap.String("document_id", outcome.DocumentID),
			zap.Error(err))
		return
	}

	p.mu.Lock()
	p.processed++
	p.mu.Unlock()
}

// ApplyOutcome is the single write path for analysis results; the Kafka
// consumer and the internal HTTP callback both land here.
func ApplyOutcome(ctx context.Context, outcome *models.AnalysisOutcome, hub *sse.Hub) error {
	status := models.DocumentError
	if outcome.Success {
		status = models.DocumentAnalyzed
		result := &models.AnalysisResult{
			DocumentID:       outcome.DocumentID,
			Summary:          outcome.Summary,
			Insights:         outcome.Insights,
			Confidence:       outcome.Confidence,
			ProcessingTimeMs: outcome.ProcessingTimeMs,
			CompletedAt:      time.Now().Unix(),
		}
		if err := mongodb.UpsertAnalysisResult(ctx, result); err != nil {
			return err
		}
	} else {
		logger.Get().Warn("document analysis failed upstream",
			zap.String("document_id", outcome.DocumentID),
			zap.String("upstream_error", outcome.Error))
	}

	// Only an in-flight document may finish; a late or duplicate outcome for
	// a terminal document is ignored.
	err := db.SetDocumentStatus(ctx, outcome.DocumentID, status,
		models.DocumentPending, models.DocumentProcessing)
	if err != nil {
		return err
	}

	metrics.ObserveAnalysisOutcome(status.Public())

	if hub != nil {
		hub.Publish(sse.StatusEvent{
			DocumentID: outcome.DocumentID,
			Status:     status.Public(),
			Final:      true,
		})
	}
	return nil
}
