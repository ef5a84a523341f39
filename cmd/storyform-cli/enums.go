package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-storyform/pkg/catalog"
	"github.com/goliatone/go-storyform/pkg/graphql"
)

var enumsCmd = &cobra.Command{
	Use:   "enums",
	Short: "Print the category and priority values the backend accepts",
	Args:  cobra.NoArgs,
	RunE:  runEnums,
}

func runEnums(cmd *cobra.Command, args []string) error {
	client, err := graphql.New(settings.Endpoint(),
		graphql.WithHTTPClient(&http.Client{Timeout: settings.Timeout}),
		graphql.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	fetcher := catalog.NewFetcher(client)

	names := []string{settings.Enums.Category, settings.Enums.Priority}
	results := make([]catalog.Enumeration, len(names))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			enum, err := fetcher.FetchEnum(gctx, name)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", name, err)
			}
			results[i] = enum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Categories (%s): %s\n", results[0].Name, strings.Join(results[0].Values, ", "))
	fmt.Fprintf(out, "Priorities (%s): %s\n", results[1].Name, strings.Join(results[1].Values, ", "))
	return nil
}
