package scheduler

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	getterhttp "github.com/tanq16/getter/internal/downloaders/http"
	"github.com/tanq16/getter/internal/output"
	"github.com/tanq16/getter/internal/utils"
)

// downloaderRegistry maps job types to their respective downloader implementations
var downloaderRegistry = map[string]utils.Downloader{
	"http": &getterhttp.HTTPDownloader{},
}

// Run executes the given jobs across numWorkers parallel workers and reports
// whether any of them failed.
func Run(jobs []utils.GetterJob, numWorkers int) error {
	log := utils.GetLogger("scheduler")
	jobCh := make(chan utils.GetterJob, len(jobs))
	for _, job := range jobs {
		job.ID = uuid.New().String()
		if job.Metadata == nil {
			job.Metadata = make(map[string]any)
		}
		jobCh <- job
	}
	close(jobCh)

	var wg sync.WaitGroup
	var failed sync.Map
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			processJobs(jobCh, &failed)
		}()
	}
	wg.Wait()

	var failures int
	failed.Range(func(key, value any) bool {
		failures++
		log.Debug().Str("jobId", key.(string)).Err(value.(error)).Msg("Job failed")
		return true
	})
	if failures > 0 {
		return fmt.Errorf("%d of %d downloads failed", failures, len(jobs))
	}
	return nil
}

// processJobs handles job processing for a worker
func processJobs(jobCh <-chan utils.GetterJob, failed *sync.Map) {
	for job := range jobCh {
		downloader, exists := downloaderRegistry[job.JobType]
		if !exists {
			failed.Store(job.ID, fmt.Errorf("unknown job type: %s", job.JobType))
			continue
		}
		if err := runJob(downloader, &job); err != nil {
			output.PrintError(fmt.Sprintf("%s: %v", job.URL, err))
			failed.Store(job.ID, err)
			continue
		}
		output.PrintSuccess(fmt.Sprintf("%s %s", output.StyleSymbols["pass"], job.OutputPath))
		output.PrintDetail(jobSummary(&job))
	}
}

// jobSummary renders the size/speed line printed under a completed job, from
// the statistics the downloader stored on the job metadata.
func jobSummary(job *utils.GetterJob) string {
	downloaded, _ := job.Metadata["totalDownloaded"].(int64)
	elapsed, _ := job.Metadata["totalTime"].(float64)
	return fmt.Sprintf("  %s in %.1fs (%s)",
		output.FormatBytes(uint64(downloaded)), elapsed, output.FormatSpeed(downloaded, elapsed))
}

func runJob(downloader utils.Downloader, job *utils.GetterJob) error {
	if err := downloader.ValidateJob(job); err != nil {
		return fmt.Errorf("error validating job: %w", err)
	}
	if err := downloader.BuildJob(job); err != nil {
		return fmt.Errorf("error building job: %w", err)
	}
	if err := downloader.Download(job); err != nil {
		return fmt.Errorf("error downloading: %w", err)
	}
	return nil
}
