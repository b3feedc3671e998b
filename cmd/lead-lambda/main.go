package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/nirvista/leadcapture/internal/app/bootstrap"
	appconfig "github.com/nirvista/leadcapture/internal/config"
	"github.com/nirvista/leadcapture/internal/datastore"
	"github.com/nirvista/leadcapture/pkg/logging"
)

// readinessProbe is the part of the datastore monitor the adapter drives.
// The process is frozen between invocations, so the probe runs on demand
// instead of on a ticker.
type readinessProbe interface {
	Ready() bool
	Check(ctx context.Context) datastore.State
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	store, err := bootstrap.BuildLeadStore(context.Background(), cfg, logger)
	if err != nil {
		panic(err)
	}
	api := bootstrap.BuildAPI(cfg, store, logger)

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, api.Handler, api.Monitor, evt)
	})
}

// handle replays an API Gateway HTTP API event against the router.
func handle(ctx context.Context, handler http.Handler, probe readinessProbe, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}
	if path == "" {
		path = "/"
	}

	body, err := decodeBody(evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid body"}, nil
	}

	target := path
	if qs := strings.TrimSpace(evt.RawQueryString); qs != "" {
		target += "?" + qs
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid request"}, nil
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}
	if ip := strings.TrimSpace(evt.RequestContext.HTTP.SourceIP); ip != "" {
		req.RemoteAddr = ip
	}

	if probe != nil && !probe.Ready() {
		probe.Check(ctx)
	}

	rw := newResponseBuffer()
	handler.ServeHTTP(rw, req)
	return rw.event(), nil
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(evt.Body)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

// responseBuffer collects a handler's response for conversion to an event.
type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: http.Header{}}
}

func (b *responseBuffer) Header() http.Header { return b.header }

func (b *responseBuffer) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *responseBuffer) event() events.APIGatewayV2HTTPResponse {
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	headers := make(map[string]string, len(b.header))
	for k, v := range b.header {
		headers[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	resp := events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       b.body.String(),
	}
	// Compressed bodies are binary; API Gateway only passes them through base64.
	if headers["content-encoding"] != "" {
		resp.Body = base64.StdEncoding.EncodeToString(b.body.Bytes())
		resp.IsBase64Encoded = true
	}
	return resp
}
