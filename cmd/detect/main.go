// Package main provides a CLI for offline contract-address detection.
// It scans text from arguments or stdin, reports the detected chain and
// address, and optionally resolves the address through DexScreener.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chainwatch/internal/detect"
	"chainwatch/internal/dexscreener"
)

// DetectOutput is the JSON output for one scanned line.
type DetectOutput struct {
	Text     string `json:"text"`
	Detected bool   `json:"detected"`
	Chain    string `json:"chain,omitempty"`
	Address  string `json:"address,omitempty"`
	Token    string `json:"token,omitempty"`
	Error    string `json:"error,omitempty"`
}

func main() {
	// Parse flags
	lookup := flag.Bool("lookup", false, "Resolve detected addresses through DexScreener")
	baseURL := flag.String("dexscreener-base-url", os.Getenv("DEXSCREENER_BASE_URL"), "DexScreener API base URL (default production)")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	// Setup structured logger
	logger := log.New(os.Stderr, "[detect] ", log.LstdFlags)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	detector := detect.NewDetector()

	var resolver *dexscreener.Client
	if *lookup {
		var opts []dexscreener.ClientOption
		if *baseURL != "" {
			opts = append(opts, dexscreener.WithBaseURL(*baseURL))
		}
		resolver = dexscreener.NewClient(opts...)
	}

	// Arguments form one message; without arguments, scan stdin line by
	// line.
	if flag.NArg() > 0 {
		scanOne(ctx, detector, resolver, strings.Join(flag.Args(), " "), *outputJSON)
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		scanOne(ctx, detector, resolver, scanner.Text(), *outputJSON)
	}
	if err := scanner.Err(); err != nil {
		logger.Fatalf("read stdin: %v", err)
	}
}

// scanOne runs detection (and optional lookup) on one message and prints
// the result.
func scanOne(ctx context.Context, detector *detect.Detector, resolver *dexscreener.Client, text string, outputJSON bool) {
	out := DetectOutput{Text: text}

	detection, ok := detector.Detect(text)
	if ok {
		out.Detected = true
		out.Chain = string(detection.Chain)
		out.Address = detection.Address

		if resolver != nil {
			token, err := resolver.Lookup(ctx, detection.Chain, detection.Address)
			if err != nil {
				out.Error = err.Error()
			} else {
				out.Token = token
			}
		}
	}

	if outputJSON {
		json.NewEncoder(os.Stdout).Encode(out)
		return
	}

	if !out.Detected {
		fmt.Println("no address detected")
		return
	}
	fmt.Printf("%s %s\n", out.Chain, out.Address)
	if out.Token != "" {
		fmt.Printf("token %s\n", out.Token)
	}
	if out.Error != "" {
		fmt.Printf("lookup failed: %s\n", out.Error)
	}
}
