package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hokaccha/go-prettyjson"

	"github.com/looplj/qwenbroker/chat"
	"github.com/looplj/qwenbroker/conf"
	"github.com/looplj/qwenbroker/internal/build"
	"github.com/looplj/qwenbroker/internal/httpclient"
	"github.com/looplj/qwenbroker/internal/log"
	"github.com/looplj/qwenbroker/internal/pkg/xtime"
	"github.com/looplj/qwenbroker/oauth"
	"github.com/looplj/qwenbroker/qwen"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "creds":
			runCreds()
			return
		case "status":
			runStatus()
			return
		case "refresh":
			runRefresh()
			return
		case "chat":
			runChat(os.Args[2:])
			return
		case "demo":
			runDemo()
			return
		case "config":
			handleConfigCommand()
			return
		case "version", "--version", "-v":
			showVersion()
			return
		case "build-info":
			fmt.Println(build.GetBuildInfo())
			return
		case "help", "--help", "-h":
			showHelp()
			return
		default:
			fmt.Printf("Unknown command: %s\n\n", os.Args[1])
			showHelp()
			os.Exit(1)
		}
	}

	runCreds()
}

func setup() (conf.Config, *qwen.Broker) {
	config, err := conf.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log.Setup(config.Log)

	hc := httpclient.NewHttpClientWithClient(&http.Client{Timeout: config.Timeout})

	return config, qwen.NewBroker(config.BrokerConfig(), hc)
}

func runCreds() {
	_, broker := setup()

	descriptor, err := broker.GetCredentials(context.Background())
	if err != nil {
		exitWithError(err)
	}

	printJSON(descriptor)
}

func runStatus() {
	_, broker := setup()

	creds, err := broker.Status(context.Background())
	if err != nil {
		exitWithError(err)
	}

	now := xtime.UTCNow()

	fmt.Printf("Token Type: %s\n", creds.TokenType)
	fmt.Printf("Has Refresh Token: %v\n", creds.RefreshToken != "")

	if creds.ExpiryDate == 0 {
		fmt.Println("Expiry Date: not available (treated as expired)")
		return
	}

	fmt.Printf("Expiry Date: %s\n", creds.ExpiresAt().Format(time.RFC3339))

	if creds.IsValid(now) {
		fmt.Printf("Status: valid for %s\n", creds.ExpiresAt().Sub(now).Round(time.Second))
	} else {
		fmt.Println("Status: expired (next creds call will refresh)")
	}
}

func runRefresh() {
	_, broker := setup()

	creds, err := broker.Refresh(context.Background())
	if err != nil {
		exitWithError(err)
	}

	fmt.Printf("Refreshed. New expiry: %s\n", creds.ExpiresAt().Format(time.RFC3339))
}

func runChat(args []string) {
	config, broker := setup()

	prompt := strings.Join(args, " ")
	if prompt == "" {
		prompt = "Hello, this is a connectivity test. Please respond with a short greeting."
	}

	ctx := context.Background()

	descriptor, err := broker.GetCredentials(ctx)
	if err != nil {
		exitWithError(err)
	}

	client := chat.NewClient(chat.ClientParams{
		Descriptor: descriptor,
		HTTPClient: httpclient.NewHttpClientWithClient(&http.Client{Timeout: config.Timeout}),
		Headers: http.Header{
			"User-Agent": []string{"qwenbroker/" + build.Version},
		},
	})

	resp, err := client.CreateChatCompletion(ctx, &chat.Request{
		Messages: []chat.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		exitWithError(err)
	}

	fmt.Println(resp.FirstContent())
}

// runDemo exercises the full pipeline against a throwaway credential file so
// the flow can be inspected without real credentials.
func runDemo() {
	config, err := conf.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log.Setup(config.Log)

	dir, err := os.MkdirTemp("", "qwenbroker-demo-*")
	if err != nil {
		fmt.Printf("Failed to create demo directory: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "oauth_creds.json")

	sample := &oauth.Credentials{
		AccessToken:  "sample_access_token_abcdefghijklmnopqrstuvwxyz",
		RefreshToken: "sample_refresh_token_abcdefghijklmnopqrstuvwxyz",
		TokenType:    "Bearer",
		ExpiryDate:   xtime.UnixMilli(xtime.UTCNow().Add(time.Hour)),
		ResourceURL:  "dashscope.aliyuncs.com/compatible-mode/v1",
	}

	if err := oauth.Save(sample, path); err != nil {
		fmt.Printf("Failed to write sample credentials: %v\n", err)
		os.Exit(1)
	}

	raw, err := sample.ToJSON()
	if err != nil {
		fmt.Printf("Failed to encode sample credentials: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sample credentials written to %s\n", path)
	fmt.Printf("Sample record: %s\n", raw)
	fmt.Println("Note: these are fake credentials and will not work for real API calls.")

	brokerConfig := config.BrokerConfig()
	brokerConfig.CredentialsFile = path

	broker := qwen.NewBroker(brokerConfig, nil)

	descriptor, err := broker.GetCredentials(context.Background())
	if err != nil {
		exitWithError(err)
	}

	fmt.Printf("API Key: %s\n", truncateKey(descriptor.APIKey))
	fmt.Printf("Base URL: %s\n", descriptor.BaseURL)
	fmt.Printf("Model: %s\n", descriptor.Model)
}

func handleConfigCommand() {
	if len(os.Args) < 3 || os.Args[2] != "preview" {
		fmt.Println("Usage: qwenbroker config preview")
		os.Exit(1)
	}

	config, err := conf.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	printJSON(config)
}

func printJSON(v any) {
	b, err := prettyjson.Marshal(v)
	if err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(b))
}

func truncateKey(key string) string {
	if len(key) <= 20 {
		return key
	}

	return key[:10] + "..." + key[len(key)-10:]
}

// exitWithError prints a distinct remediation message per failure class.
func exitWithError(err error) {
	var (
		notFound *oauth.NotFoundError
		parse    *oauth.ParseError
		rejected *oauth.RefreshRejectedError
		endpoint *oauth.EndpointError
		network  *oauth.NetworkError
	)

	switch {
	case errors.As(err, &notFound):
		fmt.Printf("Error: credential file not found at %s.\n", notFound.Path)
		fmt.Println("Run the Qwen login flow first to create it.")
	case errors.As(err, &parse):
		fmt.Printf("Error: could not parse credential file: %v\n", parse)
	case errors.Is(err, oauth.ErrMissingRefreshToken):
		fmt.Println("Error: no refresh token available in credentials; re-run the login flow.")
	case errors.As(err, &rejected):
		fmt.Printf("Error: the provider rejected the refresh token: %v\n", rejected)
		fmt.Println("The stored refresh token may have been invalidated; re-run the login flow.")
	case errors.As(err, &endpoint):
		fmt.Printf("Error: token endpoint failure: %v\n", endpoint)
	case errors.As(err, &network):
		fmt.Printf("Error: network failure reaching the token endpoint: %v\n", network)
	default:
		fmt.Printf("Error: %v\n", err)
	}

	os.Exit(1)
}

func showVersion() {
	fmt.Printf("qwenbroker %s\n", build.Version)
}

func showHelp() {
	fmt.Println(`qwenbroker - Qwen OAuth credential broker

Usage:
  qwenbroker [command]

Commands:
  creds            Print normalized {api_key, base_url, model} credentials (default)
  status           Show the stored token's expiry without refreshing
  refresh          Force a token refresh
  chat [prompt]    Run a chat-completions round trip with the brokered credentials
  demo             Run the pipeline against a throwaway sample credential file
  config preview   Print the effective configuration
  version          Print version
  build-info       Print detailed build information
  help             Show this help

Configuration is read from qwenbroker.yml (cwd or ~/.qwen) and QWENBROKER_*
environment variables.`)
}
