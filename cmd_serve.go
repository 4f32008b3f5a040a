package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"k8s.io/klog/v2"

	"github.com/htsget-io/htsget-server/htsget"
	"github.com/htsget-io/htsget-server/httpapi"
)

func newCmdServe() *cli.Command {
	var configPath string
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the htsget ticket HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to the server's JSON or YAML config file",
				EnvVars:     []string{"HTSGET_CONFIG"},
				Required:    true,
				Destination: &configPath,
			},
		},
		Action: func(c *cli.Context) error {
			return runServe(c, configPath)
		},
	}
}

func runServe(c *cli.Context, configPath string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	backend, err := buildBackend(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("building storage backend: %w", err)
	}

	resolver, err := buildResolver(cfg)
	if err != nil {
		return fmt.Errorf("building id resolver: %w", err)
	}

	dispatcher := htsget.NewDispatcher(backend, referenceNameResolverFactory)
	server := httpapi.NewServer(dispatcher, resolver, promMetricsRecorder{})

	mux := func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) == "/metrics" {
			fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())(ctx)
			return
		}
		server.Handler()(ctx)
	}

	klog.Infof("htsget-server listening on %s", cfg.HTTP.ListenAddr)
	return fasthttp.ListenAndServe(cfg.HTTP.ListenAddr, mux)
}
