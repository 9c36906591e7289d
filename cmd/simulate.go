package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"batchplant/internal/adapters/out/events"
	"batchplant/internal/adapters/out/memory"
	"batchplant/internal/adapters/out/seed"
	"batchplant/internal/core/application/production"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/ports"

	"github.com/spf13/cobra"
)

type simulateOptions struct {
	volume    float64
	discharge time.Duration
	tolerance float64
	policy    string
	quiet     bool
}

func newSimulateCmd() *cobra.Command {
	opts := simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Produce one order end to end on an in-memory plant",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg, logger, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer func() { err = joinCleanup(err, cleanup) }()

			ctx, stop := signalContext()
			defer stop()

			if cmd.Flags().Changed("discharge") {
				cfg.Production.DischargeDuration = opts.discharge
			}
			if cmd.Flags().Changed("tolerance") {
				cfg.TolerancePct = opts.tolerance
			}
			if cmd.Flags().Changed("policy") {
				cfg.Production.InterruptPolicy = opts.policy
			}

			store, err := memory.NewSeededStore()
			if err != nil {
				return err
			}
			app := NewMemoryCompositionRoot(cfg, store, logger)
			return simulate(ctx, app, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().Float64Var(&opts.volume, "volume", 32, "order volume in m³")
	cmd.Flags().DurationVar(&opts.discharge, "discharge", 50*time.Millisecond, "discharge duration per row")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 2.5, "material tolerance in percent")
	cmd.Flags().StringVar(&opts.policy, "policy", "drain", "interrupt policy: drain, cancel or requeue")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only print the summary")
	return cmd
}

func simulate(ctx context.Context, app CompositionRoot, opts simulateOptions, out io.Writer) error {
	bus := events.NewBus(64)
	defer bus.Close()
	publisher, closePublisher := app.CreateEventPublisher(bus)
	defer func() { _ = closePublisher() }()

	ctl, err := app.CreateProductionController(publisher, nil)
	if err != nil {
		return err
	}
	defer func() { _ = ctl.Shutdown(context.Background()) }()

	stopPrinting := func() {}
	if !opts.quiet {
		sub := bus.Subscribe()
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range sub {
				printEvent(out, e)
			}
		}()
		stopPrinting = sync.OnceFunc(func() {
			bus.Unsubscribe(sub)
			wg.Wait()
		})
	}
	defer stopPrinting()

	volume, err := kernel.VolumeFromCubicMetres(opts.volume)
	if err != nil {
		return err
	}
	o, err := ctl.PlaceOrder(ctx, seed.ClientID, seed.RecipeID, volume)
	if err != nil {
		return err
	}
	if _, err = ctl.Resume(ctx, o.ID()); err != nil {
		return err
	}

	res, err := ctl.AutoRun(ctx, o.ID(), 0)
	if err != nil {
		return fmt.Errorf("auto-run stopped after %d rows: %w", len(res.Completed), err)
	}
	stopPrinting()
	return printReport(ctx, ctl, o.ID(), res, out)
}

func printEvent(out io.Writer, e ports.ProductionEvent) {
	switch e.Type {
	case ports.EventRowStarted, ports.EventRowCompleted, ports.EventRowRequeued:
		_, _ = fmt.Fprintf(out, "%s  %-15s row %d\n", e.At.Format(time.TimeOnly), e.Type, e.RowSeq)
	case ports.EventRunLogged:
		_, _ = fmt.Fprintf(out, "%s  %-15s %s\n", e.At.Format(time.TimeOnly), e.Type, e.RunID)
	default:
		_, _ = fmt.Fprintf(out, "%s  %-15s %s\n", e.At.Format(time.TimeOnly), e.Type, e.Status)
	}
}

func printReport(ctx context.Context, ctl *production.Controller, orderID kernel.UUID, res production.LoopResult, out io.Writer) error {
	p, err := ctl.Progress(ctx, orderID)
	if err != nil {
		return err
	}
	runs, err := ctl.RunsForOrder(ctx, orderID)
	if err != nil {
		return err
	}
	sum, err := ctl.Summary(ctx, orderID)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "\norder %s: %s, %d/%d rows (%s)\n", orderID, p.Status, p.DoneCount, p.TotalCount, res.Reason)
	for _, r := range runs {
		_, _ = fmt.Fprintf(out, "  run %d  rows %d..%d  %s  %s\n", r.Seq(), r.StartSeq(), r.EndSeq(), r.Volume(), r.Note())
	}
	_, _ = fmt.Fprintf(out, "produced %s, remaining %s\n", sum.ProducedVolume, sum.RemainingVolume)
	for _, m := range kernel.Materials() {
		_, _ = fmt.Fprintf(out, "  %-6s set %10.3f  actual %10.3f  delta %+9.3f\n",
			m, sum.SetTotals.Get(m), sum.ActualTotals.Get(m), sum.DeltaTotals.Get(m))
	}
	return nil
}
