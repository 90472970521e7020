package utils

import "errors"

// DefaultBufferSize is the socket read size used while draining a response.
const DefaultBufferSize = 32 * 1024

const ToolUserAgent = "getter/1.0"
const DefaultHTTPPort = 80

var ErrRangeRequestsNotSupported = errors.New("range requests are not supported")
var ErrMissingContentLength = errors.New("response has no Content-Length header")
var ErrBadURL = errors.New("could not split url into host/page")
