// Command invoke runs a single routed request event through the product
// handler. It reads the event as JSON from stdin and writes the response
// as JSON to stdout:
//
//	echo '{"httpMethod":"GET","resource":"/products/search","queryStringParameters":{"tags":"red"}}' | invoke
package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"products/internal/app"
	"products/internal/config"
	"products/internal/gateway"
	"products/internal/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(os.Stderr, cfg.LogLevel, cfg.LogPretty)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer application.Close()

	if err := invoke(context.Background(), application, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("invocation failed")
		application.Close()
		os.Exit(1)
	}
}

func invoke(ctx context.Context, application *app.App, in io.Reader, out io.Writer) error {
	var req gateway.Request
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return err
	}
	resp := application.Handler.Handle(ctx, req)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
