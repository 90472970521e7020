package getterhttp

import (
	"fmt"

	"github.com/tanq16/getter/internal/planner"
	"github.com/tanq16/getter/internal/transport"
	"github.com/tanq16/getter/internal/utils"
)

// PerformSimpleDownload fetches the whole resource with a single GET. Used
// when the server ignores Range headers or the plan degenerates to one task.
func PerformSimpleDownload(config utils.DownloadConfig, client *transport.Client, plan planner.Plan, progressCh chan<- int64) ([]byte, error) {
	log := utils.GetLogger("download")
	resp, err := client.Exchange(transport.MethodGet, config.Host, config.Page, "")
	if err != nil {
		return nil, err
	}
	if code := resp.StatusCode(); code >= 400 {
		return nil, fmt.Errorf("unexpected status code: %d", code)
	}
	body := resp.Body()
	if plan.ContentLength > 0 && int64(len(body)) != plan.ContentLength {
		return nil, fmt.Errorf("size mismatch: expected %d bytes, got %d bytes", plan.ContentLength, len(body))
	}
	if len(body) > 0 {
		progressCh <- int64(len(body))
	}
	log.Debug().Int("bytes", len(body)).Msg("Simple download complete")
	return body, nil
}

// FetchURL performs one plain GET for the url, optionally with a byte range,
// and returns the response body. This is the single-exchange entry point for
// callers that do not want the chunked machinery.
func FetchURL(url, byteRange string, cfg utils.ClientConfig) ([]byte, error) {
	host, page, err := utils.SplitURL(url)
	if err != nil {
		return nil, err
	}
	client := transport.NewClient(cfg)
	resp, err := client.Exchange(transport.MethodGet, host, page, byteRange)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}
