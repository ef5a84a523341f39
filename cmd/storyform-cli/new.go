package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	gotemplate "github.com/goliatone/go-template"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	storyform "github.com/goliatone/go-storyform"
	"github.com/goliatone/go-storyform/pkg/renderers/tui"
	"github.com/goliatone/go-storyform/pkg/submit"
	"github.com/goliatone/go-storyform/pkg/view"
)

var (
	reportPath   string
	similarMax   int
	templatesDir string
	promptDrv    tui.PromptDriver
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Fill in and submit a new user story",
	Args:  cobra.NoArgs,
	RunE:  runNew,
}

func init() {
	newCmd.Flags().StringVar(&reportPath, "report", "", "test report file to read before filling the form")
	newCmd.Flags().StringVar(&templatesDir, "templates", "", "directory with .tpl files overriding the built-in screens")
	newCmd.Flags().IntVar(&similarMax, "similar", 5, "how many similar stories to list after the title (0 hides them)")
}

func runNew(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	wf, err := storyform.New(settings.Endpoint(),
		storyform.WithHTTPClient(&http.Client{Timeout: settings.Timeout}),
		storyform.WithToken(settings.Session.Token),
		storyform.WithLogger(logger),
		storyform.WithEnumTypes(settings.Enums.Category, settings.Enums.Priority),
		storyform.WithDefaultStatus(settings.DefaultStatus),
		storyform.WithHomeRoute(settings.HomeRoute),
		storyform.WithNavigator(submit.NavigatorFunc(func(route string) error {
			_, err := fmt.Fprintf(out, "Story created, returning to %s\n", route)
			return err
		})),
	)
	if err != nil {
		return err
	}
	defer wf.Close()

	var viewOpts []view.Option
	if templatesDir != "" {
		viewOpts = append(viewOpts, gotemplate.WithBaseDir(templatesDir))
	}
	composer, err := storyform.NewComposer(viewOpts...)
	if err != nil {
		return err
	}

	updates, cancel := wf.Tracker().Subscribe()
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for busy := range updates {
			if busy {
				_, _ = composer.Loading(wf, out)
			}
		}
	}()

	err = wf.Mount(ctx)
	cancel()
	<-done
	if err != nil {
		return err
	}
	for name, fetchErr := range wf.FetchErrors() {
		logger.Warn("reference data unavailable", zap.String("dataset", name), zap.Error(fetchErr))
	}

	if reportPath != "" {
		report, err := wf.ReadReport(reportPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Read test report %s (%d bytes)\n", reportPath, len(report))
	}

	driver := promptDrv
	if driver == nil {
		driver = tui.NewSurveyDriver(out)
	}
	filler := tui.New(
		tui.WithPromptDriver(driver),
		tui.WithSimilarLimit(similarMax),
		tui.WithTheme(tui.Theme{ErrorPrefix: "! "}),
		tui.WithLogger(logger),
	)

	result, err := filler.Run(ctx, wf)
	if err != nil {
		if errors.Is(err, tui.ErrAborted) || errors.Is(err, tui.ErrCancelled) {
			fmt.Fprintln(out, "No story created.")
			return nil
		}
		return err
	}
	logger.Info("story created", zap.String("title", result.Input.Title), zap.String("created_at", result.CreatedAt))

	_, err = composer.Render(wf, out)
	return err
}
