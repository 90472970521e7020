package getterhttp_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	getterhttp "github.com/tanq16/getter/internal/downloaders/http"
	"github.com/tanq16/getter/internal/utils"
)

func TestMain(m *testing.M) {
	// Chunk debug lines drown the test output otherwise.
	utils.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func testData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

// newRangeServer serves data with full byte-range support, mirroring what a
// range-capable static file server does.
func newRangeServer(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			w.Header().Set("Accept-Ranges", "bytes")
			return
		}
		rangeHeader := r.Header.Get("Range")
		if rangeHeader == "" {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			w.Write(data)
			return
		}
		rangeHeader = strings.TrimPrefix(rangeHeader, "bytes=")
		parts := strings.Split(rangeHeader, "-")
		start, _ := strconv.ParseInt(parts[0], 10, 64)
		end, _ := strconv.ParseInt(parts[1], 10, 64)
		if end >= int64(len(data)) {
			end = int64(len(data)) - 1
		}
		w.Header().Set("Content-Range", "bytes "+parts[0]+"-"+parts[1]+"/"+strconv.Itoa(len(data)))
		w.Header().Set("Content-Length", strconv.FormatInt(end-start+1, 10))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(data[start : end+1])
	}))
	t.Cleanup(server.Close)
	return server
}

func newJob(server *httptest.Server, outputPath string, connections int) *utils.GetterJob {
	return &utils.GetterJob{
		JobType:     "http",
		URL:         server.Listener.Addr().String() + "/file.bin",
		OutputPath:  outputPath,
		Connections: connections,
		Metadata:    make(map[string]any),
		ClientConfig: utils.ClientConfig{
			DialTimeout: 2 * time.Second,
		},
	}
}

func runJob(t *testing.T, job *utils.GetterJob) error {
	t.Helper()
	d := &getterhttp.HTTPDownloader{}
	if err := d.ValidateJob(job); err != nil {
		return err
	}
	if err := d.BuildJob(job); err != nil {
		return err
	}
	return d.Download(job)
}

func TestChunkedDownloadEndToEnd(t *testing.T) {
	r := require.New(t)

	data := testData(10000)
	server := newRangeServer(t, data)
	outputPath := filepath.Join(t.TempDir(), "file.bin")

	job := newJob(server, outputPath, 5)
	var lastDownloaded, lastTotal int64
	job.ProgressFunc = func(downloaded, total int64) {
		lastDownloaded = downloaded
		lastTotal = total
	}
	r.NoError(runJob(t, job))

	written, err := os.ReadFile(outputPath)
	r.NoError(err)
	r.Equal(data, written)
	r.Equal(int64(10000), lastDownloaded)
	r.Equal(int64(10000), lastTotal)

	// Statistics the scheduler's summary line reads.
	r.Equal(int64(10000), job.Metadata["totalDownloaded"])
	elapsed, ok := job.Metadata["totalTime"].(float64)
	r.True(ok)
	r.GreaterOrEqual(elapsed, 0.0)
}

func TestChunkedMatchesSimpleDownload(t *testing.T) {
	r := require.New(t)

	data := testData(10000)
	server := newRangeServer(t, data)
	dir := t.TempDir()

	chunked := newJob(server, filepath.Join(dir, "chunked.bin"), 5)
	r.NoError(runJob(t, chunked))
	simple := newJob(server, filepath.Join(dir, "simple.bin"), 1)
	r.NoError(runJob(t, simple))

	chunkedBytes, err := os.ReadFile(chunked.OutputPath)
	r.NoError(err)
	simpleBytes, err := os.ReadFile(simple.OutputPath)
	r.NoError(err)
	r.Equal(simpleBytes, chunkedBytes)
}

func TestNonRangeServer(t *testing.T) {
	r := require.New(t)

	data := testData(4000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// Ranges ignored entirely; full body on every GET.
		if req.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			return
		}
		w.Write(data)
	}))
	defer server.Close()
	outputPath := filepath.Join(t.TempDir(), "file.bin")

	job := newJob(server, outputPath, 8)
	r.NoError(runJob(t, job))

	written, err := os.ReadFile(outputPath)
	r.NoError(err)
	r.Equal(data, written)
}

func TestChunkFailureSurfacedPerChunk(t *testing.T) {
	r := require.New(t)

	data := testData(10000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			w.Header().Set("Accept-Ranges", "bytes")
			return
		}
		rangeHeader := strings.TrimPrefix(req.Header.Get("Range"), "bytes=")
		parts := strings.Split(rangeHeader, "-")
		start, _ := strconv.ParseInt(parts[0], 10, 64)
		end, _ := strconv.ParseInt(parts[1], 10, 64)
		if start == 4000 {
			// One chunk fails; the pool must survive and report it.
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusPartialContent)
		w.Write(data[start : end+1])
	}))
	defer server.Close()
	outputPath := filepath.Join(t.TempDir(), "file.bin")

	job := newJob(server, outputPath, 5)
	err := runJob(t, job)
	r.Error(err)
	r.Contains(err.Error(), "chunks failed")

	// Failed download must not leave an output file behind.
	_, err = os.Stat(outputPath)
	r.True(os.IsNotExist(err))
}

func TestRangeIgnoringServerFailsChunks(t *testing.T) {
	r := require.New(t)

	data := testData(5000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodHead {
			// Advertises range support on the probe...
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			w.Header().Set("Accept-Ranges", "bytes")
			return
		}
		// ...but serves the full body to every ranged GET.
		w.Write(data)
	}))
	defer server.Close()
	outputPath := filepath.Join(t.TempDir(), "file.bin")

	job := newJob(server, outputPath, 5)
	err := runJob(t, job)
	r.Error(err)
	r.ErrorIs(err, utils.ErrRangeRequestsNotSupported)

	_, err = os.Stat(outputPath)
	r.True(os.IsNotExist(err))
}

func TestFetchURL(t *testing.T) {
	r := require.New(t)

	data := testData(1000)
	server := newRangeServer(t, data)
	url := server.Listener.Addr().String() + "/file.bin"
	cfg := utils.ClientConfig{DialTimeout: 2 * time.Second}

	full, err := getterhttp.FetchURL(url, "", cfg)
	r.NoError(err)
	r.Equal(data, full)

	partial, err := getterhttp.FetchURL(url, "100-199", cfg)
	r.NoError(err)
	r.Equal(data[100:200], partial)
}

func TestValidateJobNilMetadata(t *testing.T) {
	r := require.New(t)

	d := &getterhttp.HTTPDownloader{}
	job := &utils.GetterJob{URL: "example.com/file.bin", Connections: 4}
	r.NoError(d.ValidateJob(job))
	r.Equal("example.com", job.Metadata["host"])
	r.Equal("file.bin", job.Metadata["page"])
}

func TestFetchURLBadURL(t *testing.T) {
	r := require.New(t)

	_, err := getterhttp.FetchURL("no-slash-anywhere", "", utils.ClientConfig{})
	r.Error(err)
}
