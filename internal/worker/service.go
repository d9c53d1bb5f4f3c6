// Package worker runs the service's background maintenance tasks.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"lift-social/internal/profiles"
	"lift-social/internal/store"
)

// reconcileBatchSize bounds how many profiles one reconciliation pass
// touches.
const reconcileBatchSize = 100

// WorkerService manages background workers for the application
type WorkerService struct {
	reconciler *StatsReconciler
	interval   time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	running    bool
	mu         sync.RWMutex
}

// NewWorkerService creates a worker service running the stats
// reconciler on the given interval.
func NewWorkerService(s store.Store, registry *profiles.Registry, interval time.Duration) *WorkerService {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerService{
		reconciler: NewStatsReconciler(s, registry),
		interval:   interval,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts all background workers
func (ws *WorkerService) Start() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.running {
		return
	}

	log.Println("Starting background workers...")

	ws.wg.Add(1)
	go func() {
		defer ws.wg.Done()
		ws.runReconcileLoop()
	}()

	ws.running = true
	log.Println("Background workers started successfully")
}

// Stop stops all background workers and waits for them to finish
func (ws *WorkerService) Stop() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.running {
		return
	}

	log.Println("Stopping background workers...")

	ws.cancel()
	ws.wg.Wait()

	ws.running = false
	log.Println("Background workers stopped")
}

// IsRunning returns whether the worker service is currently running
func (ws *WorkerService) IsRunning() bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.running
}

// runReconcileLoop runs the stats reconciler on a ticker until stopped
func (ws *WorkerService) runReconcileLoop() {
	ticker := time.NewTicker(ws.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ws.ctx.Done():
			log.Println("Stats reconciler stopped")
			return
		case <-ticker.C:
			if err := ws.reconciler.ReconcileAll(ws.ctx, reconcileBatchSize); err != nil {
				// Reconciliation is best-effort; log and wait for the
				// next tick.
				log.Printf("Stats reconciliation failed: %v", err)
			}
		}
	}
}
