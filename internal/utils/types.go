package utils

import "time"

type Downloader interface {
	Download(job *GetterJob) error
	BuildJob(job *GetterJob) error
	ValidateJob(job *GetterJob) error
}

type GetterJob struct {
	ID           string
	JobType      string
	URL          string
	OutputPath   string
	Connections  int
	ProgressFunc func(downloaded, total int64)
	Metadata     map[string]any
	ClientConfig ClientConfig
}

// ClientConfig carries the transport knobs for one HTTP/1.0 exchange.
type ClientConfig struct {
	Port           int
	UserAgent      string
	DialTimeout    time.Duration
	ReadBufferSize int
}

type DownloadConfig struct {
	Host         string
	Page         string
	OutputPath   string
	Connections  int
	ClientConfig ClientConfig
}

// DownloadChunk is one contiguous byte range of the resource. StartByte is
// also the chunk's write offset into the shared destination buffer.
type DownloadChunk struct {
	ID         int
	StartByte  int64
	EndByte    int64
	Downloaded int64
	Completed  bool
	LastError  error
}

type DownloadEntry struct {
	OutputPath string `yaml:"op"`
	URL        string `yaml:"link"`
}
