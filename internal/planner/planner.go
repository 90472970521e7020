// Package planner probes a remote resource and decides how to partition it
// into byte-range download tasks.
package planner

import (
	"fmt"

	"github.com/tanq16/getter/internal/transport"
	"github.com/tanq16/getter/internal/utils"
)

// Plan is the sizing decision for one download. It is computed once per
// download and read-only afterwards.
type Plan struct {
	ContentLength int64
	AcceptsRanges bool
	Tasks         int
	ChunkSize     int64
}

// Probe issues a HEAD request for the resource and computes a plan for the
// given worker count. A server that ignores Range headers collapses the plan
// to a single full-body task, since every ranged request would come back
// with the whole resource anyway.
func Probe(client *transport.Client, host, page string, threads int) (Plan, error) {
	log := utils.GetLogger("planner")
	resp, err := client.Exchange(transport.MethodHead, host, page, "")
	if err != nil {
		return Plan{}, fmt.Errorf("error probing %s/%s: %w", host, page, err)
	}
	if code := resp.StatusCode(); code >= 400 {
		return Plan{}, fmt.Errorf("probe of %s/%s failed with status %d", host, page, code)
	}
	contentLength, err := resp.ContentLength()
	if err != nil {
		return Plan{}, err
	}
	plan := Compute(contentLength, resp.AcceptsRanges(), threads)
	log.Debug().Int64("size", plan.ContentLength).Bool("ranges", plan.AcceptsRanges).
		Int("tasks", plan.Tasks).Int64("chunkSize", plan.ChunkSize).Msg("Computed download plan")
	return plan, nil
}

// Compute partitions contentLength across threads. The chunk size is the
// integer quotient; the final chunk absorbs the remainder.
func Compute(contentLength int64, acceptsRanges bool, threads int) Plan {
	if threads <= 0 {
		threads = 1
	}
	plan := Plan{
		ContentLength: contentLength,
		AcceptsRanges: acceptsRanges,
	}
	if !acceptsRanges || contentLength == 0 {
		plan.Tasks = 1
		plan.ChunkSize = contentLength
		return plan
	}
	plan.Tasks = threads
	plan.ChunkSize = contentLength / int64(threads)
	if plan.ChunkSize == 0 {
		// More threads than bytes, one task per byte at most.
		plan.Tasks = int(contentLength)
		plan.ChunkSize = 1
	}
	return plan
}

// Chunks expands the plan into per-task byte ranges. Ranges are disjoint,
// cover [0, ContentLength) with no gaps, and the last range always ends at
// ContentLength-1. An empty resource yields one degenerate zero-length task.
func (p Plan) Chunks() []utils.DownloadChunk {
	if p.ContentLength == 0 {
		return []utils.DownloadChunk{{ID: 0, StartByte: 0, EndByte: -1}}
	}
	chunks := make([]utils.DownloadChunk, 0, p.Tasks)
	var currentPosition int64 = 0
	for i := range p.Tasks {
		startByte := currentPosition
		endByte := startByte + p.ChunkSize - 1
		if i == p.Tasks-1 || endByte >= p.ContentLength {
			endByte = p.ContentLength - 1
		}
		if endByte >= startByte {
			chunks = append(chunks, utils.DownloadChunk{
				ID:        i,
				StartByte: startByte,
				EndByte:   endByte,
			})
		}
		currentPosition = endByte + 1
	}
	return chunks
}
