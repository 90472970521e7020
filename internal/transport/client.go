// Package transport performs single HTTP/1.0 request/response exchanges over
// freshly dialed TCP connections. There is no connection reuse: the server
// closing the connection is the end-of-response signal this client relies on.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tanq16/getter/internal/utils"
)

const (
	MethodGet  = "GET"
	MethodHead = "HEAD"
)

type Client struct {
	config utils.ClientConfig
	log    zerolog.Logger
}

func NewClient(cfg utils.ClientConfig) *Client {
	if cfg.Port == 0 {
		cfg.Port = utils.DefaultHTTPPort
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = utils.ToolUserAgent
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 30 * time.Second
	}
	if cfg.ReadBufferSize == 0 {
		cfg.ReadBufferSize = utils.DefaultBufferSize
	}
	return &Client{
		config: cfg,
		log:    utils.GetLogger("transport"),
	}
}

// Connect dials a TCP connection to host. A port embedded in host (as in
// "127.0.0.1:8080") overrides the configured default.
func (c *Client) Connect(host string) (net.Conn, error) {
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(host, strconv.Itoa(c.config.Port))
	}
	conn, err := net.DialTimeout("tcp", addr, c.config.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("error connecting to %s: %w", addr, err)
	}
	return conn, nil
}

// BuildRequest packs a minimal HTTP/1.0 request: request line, Host, an
// optional byte-range, a fixed User-Agent, and the terminating blank line.
// byteRange is the bare range value ("0-499"); empty means no Range header.
func (c *Client) BuildRequest(method, host, page, byteRange string) []byte {
	var b strings.Builder
	b.WriteString(method)
	b.WriteString(" /")
	b.WriteString(page)
	b.WriteString(" HTTP/1.0\r\n")
	b.WriteString("Host: ")
	b.WriteString(host)
	b.WriteString("\r\n")
	if byteRange != "" {
		b.WriteString("Range: bytes=")
		b.WriteString(byteRange)
		b.WriteString("\r\n")
	}
	b.WriteString("User-Agent: ")
	b.WriteString(c.config.UserAgent)
	b.WriteString("\r\n\r\n")
	return []byte(b.String())
}

// Send writes the full request to the connection.
func (c *Client) Send(conn net.Conn, request []byte) error {
	if _, err := conn.Write(request); err != nil {
		return fmt.Errorf("error sending http request: %w", err)
	}
	return nil
}

// ReceiveAll drains the connection until the peer closes it, growing the
// response buffer as bytes arrive. HTTP/1.0 gives the client no framing to
// trust beyond headers, so a zero-byte read is the only completion signal.
func (c *Client) ReceiveAll(conn net.Conn) ([]byte, error) {
	var response []byte
	buffer := make([]byte, c.config.ReadBufferSize)
	for {
		n, err := conn.Read(buffer)
		if n > 0 {
			response = append(response, buffer[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return response, fmt.Errorf("error reading response: %w", err)
		}
	}
	return response, nil
}

// Exchange runs one complete request/response round trip and returns the
// parsed response. The connection is always closed before returning.
func (c *Client) Exchange(method, host, page, byteRange string) (*Response, error) {
	conn, err := c.Connect(host)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	request := c.BuildRequest(method, host, page, byteRange)
	c.log.Debug().Str("method", method).Str("host", host).Str("range", byteRange).Msg("Sending request")
	if err := c.Send(conn, request); err != nil {
		return nil, err
	}
	raw, err := c.ReceiveAll(conn)
	if err != nil {
		return nil, err
	}
	return &Response{Raw: raw}, nil
}
