package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/htsget-io/htsget-server/htsget"
)

func newCmdTicket() *cli.Command {
	var configPath, id, format, class, referenceName string
	var start, end uint

	return &cli.Command{
		Name:  "ticket",
		Usage: "Resolve a single htsget query from the command line and print its ticket JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", EnvVars: []string{"HTSGET_CONFIG"}, Required: true, Destination: &configPath},
			&cli.StringFlag{Name: "id", Required: true, Destination: &id},
			&cli.StringFlag{Name: "format", Value: "BAM", Destination: &format},
			&cli.StringFlag{Name: "class", Value: "body", Destination: &class},
			&cli.StringFlag{Name: "reference-name", Destination: &referenceName},
			&cli.UintFlag{Name: "start", Destination: &start},
			&cli.UintFlag{Name: "end", Destination: &end},
		},
		Action: func(c *cli.Context) error {
			return runTicket(c.Context, configPath, id, format, class, referenceName, uint32(start), uint32(end), c.IsSet("start"), c.IsSet("end"), c.IsSet("reference-name"))
		},
	}
}

func runTicket(ctx context.Context, configPath, id, format, class, referenceName string, start, end uint32, hasStart, hasEnd, hasReferenceName bool) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	backend, err := buildBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building storage backend: %w", err)
	}
	resolver, err := buildResolver(cfg)
	if err != nil {
		return fmt.Errorf("building id resolver: %w", err)
	}

	f, err := parseFormatArg(format)
	if err != nil {
		return err
	}
	cl, err := parseClassArg(class)
	if err != nil {
		return err
	}

	query := htsget.Query{ID: id, Format: f, Class: cl}
	if hasReferenceName {
		query.ReferenceName = &referenceName
	}
	if hasStart {
		query.Interval.Start = &start
	}
	if hasEnd {
		query.Interval.End = &end
	}

	key, ok := resolver.Resolve(query.ID)
	if !ok {
		return fmt.Errorf("no resolver rule matches id %q", query.ID)
	}

	dispatcher := htsget.NewDispatcher(backend, referenceNameResolverFactory)
	resp, err := dispatcher.Resolve(ctx, key, query)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]*htsget.Response{"htsget": resp})
}

func parseFormatArg(v string) (htsget.Format, error) {
	switch v {
	case "BAM":
		return htsget.FormatBAM, nil
	case "CRAM":
		return htsget.FormatCRAM, nil
	case "VCF":
		return htsget.FormatVCF, nil
	case "BCF":
		return htsget.FormatBCF, nil
	default:
		return 0, fmt.Errorf("unsupported format %q", v)
	}
}

func parseClassArg(v string) (htsget.Class, error) {
	switch v {
	case "header":
		return htsget.ClassHeader, nil
	case "body":
		return htsget.ClassBody, nil
	default:
		return 0, fmt.Errorf("unsupported class %q", v)
	}
}
