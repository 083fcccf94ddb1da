// cmd/browse/showcase.go
package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ammerola/cultureconnect-be/internal/core/carousel"
	"github.com/ammerola/cultureconnect-be/internal/core/domain"
)

type showcaseSource interface {
	Showcase(ctx context.Context) ([]domain.ShowcaseSlide, error)
}

type showcaseOptions struct {
	runFor      time.Duration
	interval    time.Duration
	animation   time.Duration
	detailAfter time.Duration
	detailFor   time.Duration
}

var showcaseOpts showcaseOptions

var showcaseCmd = &cobra.Command{
	Use:   "showcase",
	Short: "Rotate the featured slides",
	Long: `showcase fetches the featured slides and rotates them on a timer,
printing the slide in front after every change.

With --detail-after the detail view is opened at that point, which
suspends rotation until it is closed again --detail-for later.`,
	Example: `  browse showcase --for 30s
  browse showcase --for 30s --detail-after 8s --detail-for 10s`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return runShowcase(cmd.Context(), client, showcaseOpts, cmd.OutOrStdout())
	},
}

func init() {
	f := showcaseCmd.Flags()
	f.DurationVar(&showcaseOpts.runFor, "for", 30*time.Second, "How long to run the carousel")
	f.DurationVar(&showcaseOpts.interval, "interval", carousel.DefaultInterval, "Time between automatic advances")
	f.DurationVar(&showcaseOpts.animation, "animation", carousel.DefaultAnimationWindow, "Length of a slide transition")
	f.DurationVar(&showcaseOpts.detailAfter, "detail-after", 0, "Open the detail view after this long, 0 disables")
	f.DurationVar(&showcaseOpts.detailFor, "detail-for", 10*time.Second, "How long the detail view stays open")
}

// lockedWriter serializes writes from carousel timer callbacks.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, args...)
}

func runShowcase(ctx context.Context, src showcaseSource, o showcaseOptions, w io.Writer) error {
	slides, err := src.Showcase(ctx)
	if err != nil {
		return err
	}
	out := &lockedWriter{w: w}
	if len(slides) == 0 {
		out.printf("No featured slides right now.\n")
		return nil
	}

	start := time.Now()
	c := carousel.New(slides,
		carousel.WithConfig[domain.ShowcaseSlide](carousel.Config{
			Interval:        o.interval,
			AnimationWindow: o.animation,
		}),
		carousel.WithObserver(func(s carousel.Snapshot[domain.ShowcaseSlide]) {
			elapsed := time.Since(start).Round(100 * time.Millisecond)
			if len(s.Order) == 0 {
				return
			}
			out.printf("[%6s] %-9s %-8s %s\n", elapsed, s.State, s.Trigger, describeSlide(s.Order[0]))
		}),
	)
	defer c.Close()

	if first, ok := c.Current(); ok {
		out.printf("[%6s] %-9s %-8s %s\n", time.Duration(0), c.State(), "start", describeSlide(first))
	}
	c.Start()

	ctx, cancel := context.WithTimeout(ctx, o.runFor)
	defer cancel()

	var detailOpen, detailClose <-chan time.Time
	if o.detailAfter > 0 {
		t := time.NewTimer(o.detailAfter)
		defer t.Stop()
		detailOpen = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-detailOpen:
			detailOpen = nil
			c.EnterDetail()
			t := time.NewTimer(o.detailFor)
			defer t.Stop()
			detailClose = t.C
		case <-detailClose:
			detailClose = nil
			c.ExitDetail()
		}
	}
}

func describeSlide(s domain.ShowcaseSlide) string {
	if s.Subtitle == "" {
		return s.Title
	}
	return s.Title + " - " + s.Subtitle
}
