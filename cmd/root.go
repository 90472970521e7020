package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	getterhttp "github.com/tanq16/getter/internal/downloaders/http"
	"github.com/tanq16/getter/internal/output"
	"github.com/tanq16/getter/internal/scheduler"
	"github.com/tanq16/getter/internal/utils"
)

var (
	outputPath  string
	connections int
	port        int
	timeout     time.Duration
	userAgent   string
	byteRange   string
	urlListFile string
	numLinks    int
	debug       bool
)

var GetterVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "getter [URL]",
	Short:   "Getter is a parallel HTTP/1.0 download client",
	Version: GetterVersion,
	Args:    cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug)
		if len(args) == 0 && urlListFile == "" {
			output.PrintError("No URL or URL list provided")
			os.Exit(1)
		}
		if urlListFile != "" && len(args) > 0 {
			output.PrintError("Cannot specify url argument and --urllist together, choose one")
			os.Exit(1)
		}
		clientConfig := utils.ClientConfig{
			Port:        port,
			UserAgent:   userAgent,
			DialTimeout: timeout,
		}
		if len(args) > 0 {
			url := args[0]
			if byteRange != "" {
				// Single ranged fetch, body straight to the output file.
				body, err := getterhttp.FetchURL(url, byteRange, clientConfig)
				if err != nil {
					output.PrintError(fmt.Sprintf("Fetch failed: %v", err))
					os.Exit(1)
				}
				if outputPath == "" {
					outputPath = "download"
				}
				if err := os.WriteFile(outputPath, body, 0644); err != nil {
					output.PrintError(fmt.Sprintf("Error writing output file: %v", err))
					os.Exit(1)
				}
				output.PrintSuccess(fmt.Sprintf("%s %s (%s)", output.StyleSymbols["pass"], outputPath, output.FormatBytes(uint64(len(body)))))
				return
			}
			jobs := []utils.GetterJob{{
				JobType:      "http",
				URL:          url,
				OutputPath:   outputPath,
				Connections:  connections,
				ClientConfig: clientConfig,
			}}
			if err := scheduler.Run(jobs, 1); err != nil {
				output.PrintError("Encountered failed operation(s)")
				os.Exit(1)
			}
			return
		}
		entries, err := utils.ReadDownloadList(urlListFile)
		if err != nil {
			output.PrintError("Failed to read URL list file")
			os.Exit(1)
		}
		jobs := make([]utils.GetterJob, 0, len(entries))
		for _, entry := range entries {
			jobs = append(jobs, utils.GetterJob{
				JobType:      "http",
				URL:          entry.URL,
				OutputPath:   entry.OutputPath,
				Connections:  connections,
				ClientConfig: clientConfig,
			})
		}
		output.PrintInfo(fmt.Sprintf("Queued %d downloads", len(jobs)))
		if err := scheduler.Run(jobs, numLinks); err != nil {
			output.PrintError("Encountered failed operation(s)")
			os.Exit(1)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (inferred from the URL if not provided)")
	rootCmd.Flags().StringVarP(&urlListFile, "urllist", "l", "", "Path to YAML file containing URLs and output paths")
	rootCmd.Flags().IntVarP(&numLinks, "workers", "w", 1, "Number of links to download in parallel")
	rootCmd.Flags().IntVarP(&connections, "connections", "c", 4, "Number of connections (range chunks) per download")
	rootCmd.Flags().IntVarP(&port, "port", "p", utils.DefaultHTTPPort, "Server port")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 30*time.Second, "Connection timeout (eg. 5s, 10m)")
	rootCmd.Flags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent")
	rootCmd.Flags().StringVarP(&byteRange, "range", "r", "", "Fetch a single byte range (eg. 0-499) instead of a chunked download")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
