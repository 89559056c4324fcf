package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/bramble/internal/repositories/customer"
	"github.com/Ramsey-B/bramble/internal/repositories/matchdecision"
	"github.com/Ramsey-B/bramble/internal/repositories/run"
	"github.com/Ramsey-B/bramble/pkg/events"
	"github.com/Ramsey-B/bramble/pkg/graph"
	"github.com/Ramsey-B/bramble/pkg/sink"
	"github.com/Ramsey-B/bramble/pkg/source"
	"github.com/Ramsey-B/bramble/pkg/tracing"
)

const (
	sourceCSV      = "csv"
	sourcePostgres = "postgres"
)

func resolveCmd() *cobra.Command {
	var (
		input      string
		sourceKind string
		output     string
		review     int
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve accounts into customers",
		Long: `Reads account records, links accounts that belong to the same person and assigns
each account a customer ID. Results go to the mapping file and every enabled sink.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sourceKind != sourceCSV && sourceKind != sourcePostgres {
				return fmt.Errorf("unknown source %q (use %q or %q)", sourceKind, sourceCSV, sourcePostgres)
			}
			if sourceKind == sourceCSV && input == "" {
				return fmt.Errorf("--input is required for the csv source")
			}

			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := tracing.Init(ctx, a.cfg.Tracing())
			if err != nil {
				return err
			}
			defer func() { _ = shutdownTracing(context.Background()) }()

			p, _, err := a.newPipeline()
			if err != nil {
				return err
			}

			svc, st, err := a.startServices(ctx, needs{
				database: a.cfg.SinkPostgresEnabled || sourceKind == sourcePostgres,
				graph:    a.cfg.SinkGraphEnabled,
				kafka:    a.cfg.SinkKafkaEnabled,
			})
			if err != nil {
				return err
			}
			defer func() { _ = st.Stop(context.Background()) }()

			var src source.Source
			if sourceKind == sourcePostgres {
				src = source.NewPostgres(svc.db, a.logger, a.cfg.SourceTable)
			} else {
				src = source.NewCSVFile(a.logger, input)
			}

			summaryOut := cmd.OutOrStdout()
			var sinks []sink.Sink
			switch output {
			case "":
			case "-":
				sinks = append(sinks, sink.NewMappingWriter(cmd.OutOrStdout()))
				summaryOut = cmd.ErrOrStderr()
			default:
				sinks = append(sinks, sink.NewMappingFile(output))
			}

			var pg *sink.Postgres
			if a.cfg.SinkPostgresEnabled {
				pg = sink.NewPostgres(
					svc.db,
					a.logger,
					run.NewRepository(svc.db, a.logger),
					customer.NewRepository(svc.db, a.logger),
					matchdecision.NewRepository(svc.db, a.logger),
				)
				sinks = append(sinks, pg)
			}
			if a.cfg.SinkGraphEnabled {
				sinks = append(sinks, sink.NewGraph(graph.NewProjector(svc.graph, a.logger, a.cfg.GraphDBBatchSize)))
			}
			if a.cfg.SinkKafkaEnabled {
				sinks = append(sinks, sink.NewEvents(events.NewEmitter(svc.producer, a.logger)))
			}

			startedAt := time.Now().UTC()
			result, err := p.Run(ctx, src)
			if err != nil {
				if pg != nil {
					if recErr := pg.RecordFailure(context.Background(), uuid.NewString(), string(a.cfg.Zip()), startedAt, err); recErr != nil {
						a.logger.WithError(recErr).Warn("Failed to record failed run")
					}
				}
				return err
			}

			if err := sink.WriteAll(ctx, a.logger, result, sinks...); err != nil {
				return err
			}

			printSummary(summaryOut, result, review)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "CSV file of account records")
	cmd.Flags().StringVar(&sourceKind, "source", sourceCSV, "Record source: csv or postgres")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the account_id,customer_id mapping to this file (- for stdout)")
	cmd.Flags().IntVar(&review, "review", 10, "Number of multi-member clusters to list in the summary")

	return cmd
}

