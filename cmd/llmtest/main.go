package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/honeypot-ai/internal/app/bootstrap"
	appconfig "github.com/wolfman30/honeypot-ai/internal/config"
	"github.com/wolfman30/honeypot-ai/internal/detection"
	"github.com/wolfman30/honeypot-ai/internal/llm"
	"github.com/wolfman30/honeypot-ai/internal/responder"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

// llmtest sends one in-character prompt through every provider named in
// PROVIDER_ORDER and prints what each returns.
func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New("warn")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	providers := bootstrap.BuildProviders(ctx, cfg, bootstrap.NewAWSLoader(cfg), logger)
	defer providers.Close()

	if failed := runAll(ctx, os.Stdout, providers.Clients, cfg.ProviderTimeout); failed > 0 {
		os.Exit(1)
	}
}

func smokeRequest() llm.Request {
	return llm.Request{
		System: responder.Directive(responder.PersonaElderly, detection.ScamTypeBankFraud),
		History: []llm.Turn{
			{Role: llm.RoleScammer, Text: "Sir this is SBI head office, your account will be blocked today."},
			{Role: llm.RoleAgent, Text: "oh my, what happened to my account??"},
		},
		Latest:      "Share the OTP you just received to stop the block.",
		MaxTokens:   120,
		Temperature: 0.9,
	}
}

// runAll returns the number of providers that failed.
func runAll(ctx context.Context, out io.Writer, clients []llm.Client, timeout time.Duration) int {
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintln(out, "Provider smoke test")
	fmt.Fprintln(out, strings.Repeat("=", 60))
	if len(clients) == 0 {
		fmt.Fprintln(out, "no providers configured; set PROVIDER_ORDER and credentials")
		return 1
	}

	req := smokeRequest()
	failed := 0
	for i, client := range clients {
		fmt.Fprintf(out, "\n[%d] %s\n", i+1, client.Name())
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		resp, err := client.Complete(callCtx, req)
		cancel()
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			failed++
			fmt.Fprintf(out, "    FAIL (%v): %v\n", elapsed, err)
			continue
		}
		fmt.Fprintf(out, "    ok (%v) tokens in=%d out=%d\n", elapsed, resp.Usage.InputTokens, resp.Usage.OutputTokens)
		fmt.Fprintf(out, "    %s\n", resp.Text)
	}
	fmt.Fprintf(out, "\n%d/%d providers responded\n", len(clients)-failed, len(clients))
	return failed
}
