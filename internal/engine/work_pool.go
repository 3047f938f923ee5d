package engine

import (
	"context"
	"sync"

	"volsim/internal/model"

	"go.uber.org/zap"
)

// Job is one simulation run to execute against the shared bar series.
type Job struct {
	Name   string
	Params Params
}

// WorkerPool executes simulation runs concurrently. Runs only read the
// shared, immutable bar series and write to their own state, so they are
// independent of each other.
type WorkerPool struct {
	workerCount int
	sim         *Simulator
	bars        []model.Bar
	logger      *zap.Logger
}

func NewWorkerPool(workerCount int, sim *Simulator, bars []model.Bar, logger *zap.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
		sim:         sim,
		bars:        bars,
		logger:      logger,
	}
}

// Run executes every job and returns reports keyed by job name. The first
// simulation error aborts the result.
func (p *WorkerPool) Run(ctx context.Context, jobs []Job) (map[string]model.RunReport, error) {
	jobQueue := make(chan Job, len(jobs))
	for _, j := range jobs {
		jobQueue <- j
	}
	close(jobQueue)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		results  = make(map[string]model.RunReport, len(jobs))
		firstErr error
	)

	workers := p.workerCount
	if workers > len(jobs) {
		workers = len(jobs)
	}
	p.logger.Info("started simulation pool", zap.Int("workers", workers), zap.Int("jobs", len(jobs)))

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobQueue {
				select {
				case <-ctx.Done():
					return
				default:
				}

				states, err := p.sim.Run(job.Name, p.bars, job.Params)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				results[job.Name] = model.RunReport{
					Name:    job.Name,
					States:  states,
					Metrics: ComputeMetrics(states),
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
