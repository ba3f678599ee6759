// Package processor drains the shared inbound queue and hands each message to
// the conversation engine.
package processor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omriShneor/project_casa/internal/source"
	"go.uber.org/zap"
)

const (
	defaultWorkerCount = 4
	defaultTurnTimeout = 2 * time.Minute
)

// Processor handles incoming messages from any source
type Processor struct {
	handler     source.Handler
	msgChan     <-chan source.Inbound
	workerCount int
	turnTimeout time.Duration
	logger      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	processed atomic.Uint64
}

// New creates a processor with workerCount concurrent workers
func New(handler source.Handler, msgChan <-chan source.Inbound, workerCount int, logger *zap.Logger) *Processor {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Processor{
		handler:     handler,
		msgChan:     msgChan,
		workerCount: workerCount,
		turnTimeout: defaultTurnTimeout,
		logger:      logger.Named("processor"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins processing messages from the channel
func (p *Processor) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.processLoop()
	}
	p.logger.Info("message processor started", zap.Int("workers", p.workerCount))
}

// Stop gracefully shuts down the processor, letting running turns finish
func (p *Processor) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("message processor stopped", zap.Uint64("processed", p.processed.Load()))
}

// Processed is the number of handled messages
func (p *Processor) Processed() uint64 {
	return p.processed.Load()
}

func (p *Processor) processLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case msg, ok := <-p.msgChan:
			if !ok {
				p.logger.Info("message channel closed")
				return
			}
			p.process(msg)
		}
	}
}

func (p *Processor) process(in source.Inbound) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic while handling message", zap.Any("panic", r), zap.String("sender", in.SenderID))
		}
	}()

	// turns outlive shutdown so a reply is not cut mid-way
	ctx, cancel := context.WithTimeout(context.WithoutCancel(p.ctx), p.turnTimeout)
	defer cancel()

	p.handler.HandleMessage(ctx, in.Message, in.Reply)
	p.processed.Add(1)
}
