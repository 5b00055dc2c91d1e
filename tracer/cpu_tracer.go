package tracer

import (
	"fmt"
	"sync"
	"time"

	"github.com/achilleasa/raylive/log"
)

// A tracer that runs block kernels on a dedicated go-routine.
type cpuTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The tracer id.
	id string

	// A channel for receiving block requests from the engine.
	blockReqChan chan BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered block.
	stats *Stats

	speed float32
}

// Create a new cpu tracer and start its worker.
func NewCPUTracer(id string, speed float32) Tracer {
	if speed <= 0 {
		speed = 1
	}
	tr := &cpuTracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		blockReqChan: make(chan BlockRequest, 1),
		stats:        &Stats{},
		speed:        speed,
	}
	tr.startWorker()
	return tr
}

// Get tracer id.
func (tr *cpuTracer) Id() string {
	return tr.id
}

// Get the computation speed estimate.
func (tr *cpuTracer) SpeedEstimate() float32 {
	return tr.speed
}

// Retrieve last frame statistics.
func (tr *cpuTracer) Stats() *Stats {
	return tr.stats
}

// Enqueue block request. Requests made after Close are failed immediately.
func (tr *cpuTracer) Enqueue(blockReq BlockRequest) {
	tr.Lock()
	closed := tr.closeChan == nil
	tr.Unlock()
	if closed {
		blockReq.ErrChan <- ErrTracerClosed
		return
	}
	tr.blockReqChan <- blockReq
}

// Shutdown the worker.
func (tr *cpuTracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	if tr.closeChan == nil {
		return
	}

	tr.closeChan <- struct{}{}

	// wait for worker to ack close
	<-tr.closeChan
	close(tr.closeChan)
	tr.closeChan = nil
	tr.wg.Wait()
}

// Spawn a go-routine to process block render requests.
func (tr *cpuTracer) startWorker() {
	tr.closeChan = make(chan struct{})

	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		close(readyChan)
		for {
			select {
			case blockReq := <-tr.blockReqChan:
				startTime := time.Now()
				if err := tr.renderBlock(&blockReq); err != nil {
					blockReq.ErrChan <- err
					continue
				}

				// Update stats
				tr.stats.BlockH = blockReq.BlockH
				tr.stats.BlockTime = time.Since(startTime).Nanoseconds()

				blockReq.DoneChan <- blockReq.BlockH
			case <-tr.closeChan:
				// Ack close
				tr.closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// Render block, converting kernel panics into errors so a single bad block
// cannot take the worker down.
func (tr *cpuTracer) renderBlock(blockReq *BlockRequest) (err error) {
	if blockReq.Kernel == nil {
		return ErrNoKernel
	}
	if blockReq.BlockH == 0 {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			tr.logger.Errorf("kernel panic while tracing rows %d-%d: %v", blockReq.BlockY, blockReq.BlockY+blockReq.BlockH, r)
			err = fmt.Errorf("tracer %s: kernel panic: %v", tr.id, r)
		}
	}()

	return blockReq.Kernel(blockReq)
}
