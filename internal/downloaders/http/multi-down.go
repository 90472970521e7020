package getterhttp

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tanq16/getter/internal/planner"
	"github.com/tanq16/getter/internal/queue"
	"github.com/tanq16/getter/internal/transport"
	"github.com/tanq16/getter/internal/utils"
)

// chunkTask is the unit handed to a worker: which chunk of the plan to fetch.
// The chunk index doubles as the worker's slot in the status slice, so no
// lock is needed around completion bookkeeping.
type chunkTask struct {
	index int
}

// PerformMultiDownload fetches the resource as concurrent ranged GETs and
// assembles the chunks into a single buffer. Tasks flow through a bounded
// queue with rotating capacity equal to the pool size; each worker claims a
// task slot from an atomic counter before blocking on the queue, which is how
// workers learn the task supply is exhausted (the queue itself has no close
// signal). Chunk ranges are disjoint by construction, so workers write into
// the shared destination without synchronization.
func PerformMultiDownload(config utils.DownloadConfig, client *transport.Client, plan planner.Plan, progressCh chan<- int64) ([]byte, error) {
	chunks := plan.Chunks()
	destination := make([]byte, plan.ContentLength)

	taskQueue, err := queue.New[chunkTask](config.Connections)
	if err != nil {
		return nil, fmt.Errorf("error creating task queue: %w", err)
	}

	// Producer: push one task per chunk, blocking as the queue rotates.
	go func() {
		for i := range chunks {
			taskQueue.Put(chunkTask{index: i})
		}
	}()

	total := int64(len(chunks))
	var claimed atomic.Int64
	var wg sync.WaitGroup
	workers := config.Connections
	if int64(workers) > total {
		workers = int(total)
	}
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if claimed.Add(1) > total {
					return
				}
				task := taskQueue.Get()
				chunk := &chunks[task.index]
				if err := fetchChunk(config, client, plan, chunk, destination, progressCh); err != nil {
					chunk.LastError = err
					continue
				}
				chunk.Completed = true
			}
		}()
	}
	wg.Wait()

	var incompleteChunks []int
	for i, chunk := range chunks {
		if !chunk.Completed {
			incompleteChunks = append(incompleteChunks, i)
			if chunk.LastError != nil {
				logger := utils.GetLogger("download")
				logger.Debug().Err(chunk.LastError).Int("chunkId", chunk.ID).Msg("Chunk failed")
			}
		}
	}
	if len(incompleteChunks) > 0 {
		if firstErr := chunks[incompleteChunks[0]].LastError; firstErr != nil {
			return nil, fmt.Errorf("download incomplete: %d chunks failed: %v: %w", len(incompleteChunks), incompleteChunks, firstErr)
		}
		return nil, fmt.Errorf("download incomplete: %d chunks failed: %v", len(incompleteChunks), incompleteChunks)
	}
	return destination, nil
}

// fetchChunk performs one ranged GET and copies the body into the chunk's
// offset. Nothing is written to the destination on failure, so a bad chunk
// never corrupts its neighbors.
func fetchChunk(config utils.DownloadConfig, client *transport.Client, plan planner.Plan, chunk *utils.DownloadChunk, destination []byte, progressCh chan<- int64) error {
	log := utils.GetLogger("chunk").With().Int("chunkId", chunk.ID).Logger()
	expectedSize := chunk.EndByte - chunk.StartByte + 1
	if expectedSize <= 0 {
		chunk.Downloaded = 0
		return nil
	}
	byteRange := ""
	if plan.AcceptsRanges && plan.Tasks > 1 {
		byteRange = fmt.Sprintf("%d-%d", chunk.StartByte, chunk.EndByte)
	}
	log.Debug().Str("range", byteRange).Msg("Sending range request")
	resp, err := client.Exchange(transport.MethodGet, config.Host, config.Page, byteRange)
	if err != nil {
		return err
	}
	if code := resp.StatusCode(); code >= 400 {
		return fmt.Errorf("unexpected status code: %d", code)
	}
	body := resp.Body()
	if int64(len(body)) != expectedSize {
		if byteRange != "" && int64(len(body)) == plan.ContentLength {
			// Server advertised ranges on the probe but served the full body.
			return fmt.Errorf("got full body for ranged request: %w", utils.ErrRangeRequestsNotSupported)
		}
		return fmt.Errorf("size mismatch: expected %d bytes, got %d bytes", expectedSize, len(body))
	}
	copy(destination[chunk.StartByte:chunk.EndByte+1], body)
	chunk.Downloaded = expectedSize
	progressCh <- expectedSize
	return nil
}
