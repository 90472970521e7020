package getterhttp

import (
	"fmt"
	"os"
	"time"

	"github.com/tanq16/getter/internal/output"
	"github.com/tanq16/getter/internal/planner"
	"github.com/tanq16/getter/internal/transport"
	"github.com/tanq16/getter/internal/utils"
)

type HTTPDownloader struct{}

func (d *HTTPDownloader) ValidateJob(job *utils.GetterJob) error {
	host, page, err := utils.SplitURL(job.URL)
	if err != nil {
		return err
	}
	if job.Connections < 1 {
		return fmt.Errorf("invalid connection count: %d", job.Connections)
	}
	if job.Metadata == nil {
		job.Metadata = make(map[string]any)
	}
	job.Metadata["host"] = host
	job.Metadata["page"] = page
	return nil
}

func (d *HTTPDownloader) BuildJob(job *utils.GetterJob) error {
	host := job.Metadata["host"].(string)
	page := job.Metadata["page"].(string)

	client := transport.NewClient(job.ClientConfig)
	plan, err := planner.Probe(client, host, page, job.Connections)
	if err != nil {
		return fmt.Errorf("error getting file info: %w", err)
	}
	if !plan.AcceptsRanges && job.Connections > 1 {
		output.PrintWarning("Server ignores range requests, downloading with a single connection")
	}
	if job.OutputPath == "" {
		job.OutputPath = utils.InferOutputPath(page)
	}
	if existingFile, err := os.Stat(job.OutputPath); err == nil {
		if plan.ContentLength > 0 && existingFile.Size() == plan.ContentLength {
			return fmt.Errorf("file already exists with same size")
		}
		job.OutputPath = utils.RenewOutputPath(job.OutputPath)
	}
	job.Metadata["plan"] = plan
	return nil
}

func (d *HTTPDownloader) Download(job *utils.GetterJob) error {
	client := transport.NewClient(job.ClientConfig)
	plan, _ := job.Metadata["plan"].(planner.Plan)
	config := utils.DownloadConfig{
		Host:         job.Metadata["host"].(string),
		Page:         job.Metadata["page"].(string),
		OutputPath:   job.OutputPath,
		Connections:  job.Connections,
		ClientConfig: job.ClientConfig,
	}

	progressCh := make(chan int64, 100)
	progressDone := make(chan struct{})
	startTime := time.Now()
	go func() {
		defer close(progressDone)
		var totalDownloaded int64
		for bytes := range progressCh {
			totalDownloaded += bytes
			if job.ProgressFunc != nil {
				job.ProgressFunc(totalDownloaded, plan.ContentLength)
			}
		}
		job.Metadata["totalDownloaded"] = totalDownloaded
	}()

	var body []byte
	var err error
	if !plan.AcceptsRanges || plan.Tasks <= 1 || job.Connections == 1 {
		body, err = PerformSimpleDownload(config, client, plan, progressCh)
	} else {
		body, err = PerformMultiDownload(config, client, plan, progressCh)
	}
	close(progressCh)
	<-progressDone
	if err != nil {
		return err
	}

	if err := os.WriteFile(job.OutputPath, body, 0644); err != nil {
		return fmt.Errorf("error writing output file: %v", err)
	}
	job.Metadata["totalTime"] = time.Since(startTime).Seconds()
	return nil
}
