package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baditaflorin/l"
	"github.com/valyala/fasthttp"

	"github.com/wakemeup0/match/pkg/addressmatch"
)

// Default configuration
const (
	DefaultPort           = 8080
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB
	DefaultConcurrency    = 0                // 0 means fasthttp's default
	DefaultMaxBatchSize   = 1000
)

var (
	// Address matcher shared by all handlers
	matcher *addressmatch.AddressMatcher

	// Maximum number of pairs accepted per batch request
	maxBatchSize int

	// Logger instance
	logger l.Logger
)

// MatchRequest represents a single address comparison request.
type MatchRequest struct {
	Address1  string   `json:"address1"`
	Address2  string   `json:"address2"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// BatchMatchRequest represents a batch comparison request.
type BatchMatchRequest struct {
	Pairs []MatchRequest `json:"pairs"`
}

// MatchResponse represents a single comparison response.
type MatchResponse struct {
	Similarity         float64 `json:"similarity"`
	IsMatch            bool    `json:"is_match"`
	NormalizedAddress1 string  `json:"normalized_address1"`
	NormalizedAddress2 string  `json:"normalized_address2"`
}

// BatchMatchResponse represents a batch comparison response.
type BatchMatchResponse struct {
	Results           []MatchResponse `json:"results"`
	TotalPairs        int             `json:"total_pairs"`
	AverageSimilarity float64         `json:"average_similarity"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	// Parse command-line flags
	port := flag.Int("port", DefaultPort, "HTTP server port")
	readTimeout := flag.Duration("read-timeout", DefaultReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", DefaultWriteTimeout, "HTTP write timeout")
	maxRequestSize := flag.Int("max-request-size", DefaultMaxRequestSize, "Maximum request size in bytes")
	concurrency := flag.Int("concurrency", DefaultConcurrency, "Maximum number of concurrent connections (0 = fasthttp default)")
	workers := flag.Int("workers", 0, "Batch matching workers (0 = one per CPU)")
	batchLimit := flag.Int("max-batch-size", DefaultMaxBatchSize, "Maximum number of address pairs per batch request")
	threshold := flag.Float64("threshold", 80.0, "Default similarity threshold for a match (0-100)")
	warmUp := flag.Bool("warm-up", true, "Perform system warm-up on startup")
	logFile := flag.String("log-file", "", "Log file path (empty = stdout)")
	flag.Parse()

	// Set up logger
	var err error
	logger, err = createLogger(*logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting address matcher HTTP server",
		"port", *port,
		"read_timeout", *readTimeout,
		"write_timeout", *writeTimeout,
		"max_request_size", *maxRequestSize,
		"max_batch_size", *batchLimit,
		"threshold", *threshold,
	)

	if *threshold < 0 || *threshold > 100 {
		logger.Error("Invalid default threshold", "threshold", *threshold)
		os.Exit(1)
	}
	maxBatchSize = *batchLimit

	// Initialize the address matcher
	initMatcher(*threshold, *workers, *batchLimit, *warmUp)

	// Create HTTP server with fasthttp
	server := &fasthttp.Server{
		Handler:               requestHandler,
		ReadTimeout:           *readTimeout,
		WriteTimeout:          *writeTimeout,
		MaxRequestBodySize:    *maxRequestSize,
		Concurrency:           *concurrency,
		DisableKeepalive:      false,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
		Logger:                nil, // we'll handle logging ourselves
	}

	// Set up graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		logger.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			logger.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	// Start server
	logger.Info("Server listening", "address", fmt.Sprintf(":%d", *port))
	if err := server.ListenAndServe(fmt.Sprintf(":%d", *port)); err != nil {
		logger.Error("Server error", "error", err)
	}

	<-idleConnsClosed
	logger.Info("Server stopped")
}

// initMatcher initializes the shared address matcher
func initMatcher(threshold float64, workers, batchLimit int, warmUp bool) {
	opts := []addressmatch.Option{
		addressmatch.WithLogger(logger),
		addressmatch.WithFastNormalizer(),
		addressmatch.WithThreshold(threshold),
		addressmatch.WithWorkers(workers),
		addressmatch.WithMaxBatchSize(batchLimit),
	}

	if warmUp {
		opts = append(opts, addressmatch.WithWarmUp(true))
	}

	var err error
	matcher, err = addressmatch.New(opts...)
	if err != nil {
		logger.Error("Failed to initialize address matcher", "error", err)
		os.Exit(1)
	}
}

// requestHandler is the main fasthttp request handler
func requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	// Set common headers
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "AddressMatcher")

	// Route based on path
	switch string(ctx.Path()) {
	case "/":
		handleUsage(ctx)
	case "/health":
		handleHealthCheck(ctx)
	case "/match", "/match/":
		handleMatch(ctx)
	case "/match/batch", "/match/batch/":
		handleBatchMatch(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		writeJSONError(ctx, "Not found")
	}

	// Log request
	duration := time.Since(startTime)
	logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", duration,
	)
}

// handleUsage describes the API for discovery
func handleUsage(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	response := map[string]interface{}{
		"message":     "Welcome to the Address Matcher API",
		"description": "This API helps you compare and match similar addresses using string matching",
		"usage": map[string]interface{}{
			"single_match": map[string]interface{}{
				"endpoint": "/match",
				"method":   "POST",
				"example_body": MatchRequest{
					Address1:  "123 Main St, Suite 100, New York, NY 10001",
					Address2:  "123 Main Street, Ste 100, New York, NY 10001",
					Threshold: addressmatch.Threshold(80.0),
				},
			},
			"batch_match": map[string]interface{}{
				"endpoint": "/match/batch",
				"method":   "POST",
				"example_body": BatchMatchRequest{
					Pairs: []MatchRequest{
						{
							Address1:  "123 Main St, Suite 100, New York, NY 10001",
							Address2:  "123 Main Street, Ste 100, New York, NY 10001",
							Threshold: addressmatch.Threshold(80.0),
						},
						{
							Address1: "456 Oak Ave, Chicago, IL 60601",
							Address2: "456 Oak Avenue, Chicago, IL 60601",
						},
					},
				},
			},
		},
		"health": "/health",
	}
	writeJSONResponse(ctx, response)
}

// handleHealthCheck responds to health check requests
func handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	writeJSONResponse(ctx, response)
}

// handleMatch handles single pair comparison requests
func handleMatch(ctx *fasthttp.RequestCtx) {
	// Only accept POST requests
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	// Parse request
	var req MatchRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}

	// Validate request
	if err := validatePair(req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, err.Error())
		return
	}

	// Create context with timeout
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Compute the match
	result := matcher.MatchPair(c, addressmatch.AddressPair{
		Address1:  req.Address1,
		Address2:  req.Address2,
		Threshold: req.Threshold,
	})

	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, MatchResponse{
		Similarity:         result.Similarity,
		IsMatch:            result.IsMatch,
		NormalizedAddress1: result.NormalizedAddress1,
		NormalizedAddress2: result.NormalizedAddress2,
	})
}

// handleBatchMatch handles batch comparison requests
func handleBatchMatch(ctx *fasthttp.RequestCtx) {
	// Only accept POST requests
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	// Parse request
	var req BatchMatchRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}

	// Validate request: batch size bounds and per-pair thresholds are
	// enforced here, before any comparison work starts.
	if len(req.Pairs) == 0 {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "At least one address pair is required")
		return
	}
	if len(req.Pairs) > maxBatchSize {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, fmt.Sprintf("Batch size %d exceeds maximum of %d", len(req.Pairs), maxBatchSize))
		return
	}

	pairs := make([]addressmatch.AddressPair, len(req.Pairs))
	for i, p := range req.Pairs {
		if err := validatePair(p); err != nil {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			writeJSONError(ctx, fmt.Sprintf("Pair %d: %s", i, err.Error()))
			return
		}
		pairs[i] = addressmatch.AddressPair{
			Address1:  p.Address1,
			Address2:  p.Address2,
			Threshold: p.Threshold,
		}
	}

	// Create context with timeout
	c, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Compute the batch
	result, err := matcher.MatchBatch(c, pairs)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, err.Error())
		return
	}

	results := make([]MatchResponse, len(result.Results))
	for i, r := range result.Results {
		results[i] = MatchResponse{
			Similarity:         r.Similarity,
			IsMatch:            r.IsMatch,
			NormalizedAddress1: r.NormalizedAddress1,
			NormalizedAddress2: r.NormalizedAddress2,
		}
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, BatchMatchResponse{
		Results:           results,
		TotalPairs:        result.TotalPairs,
		AverageSimilarity: result.AverageSimilarity,
	})
}

// validatePair checks the caller-supplied threshold range. Addresses may be
// any strings, including empty ones; the comparison is total.
func validatePair(req MatchRequest) error {
	if req.Threshold != nil && (*req.Threshold < 0 || *req.Threshold > 100) {
		return fmt.Errorf("threshold must be between 0 and 100, got %v", *req.Threshold)
	}
	return nil
}

// Helper functions

// writeJSONResponse writes a JSON response to the context
func writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		logger.Error("Error marshaling JSON response", "error", err)
		writeJSONError(ctx, "Internal server error")
		return
	}

	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	errResponse := ErrorResponse{
		Error: message,
	}

	response, err := json.Marshal(errResponse)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		logger.Error("Error marshaling JSON error response", "error", err)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}

// createLogger creates and configures a logger
func createLogger(logFile string) (l.Logger, error) {
	factory := l.NewStandardFactory()

	var output io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	logger, err := factory.CreateLogger(l.Config{
		Output:      output,
		JsonFormat:  true,
		AsyncWrite:  true,
		BufferSize:  1024 * 1024,       // 1MB
		MaxFileSize: 100 * 1024 * 1024, // 100MB
		MaxBackups:  5,
		AddSource:   true,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}
