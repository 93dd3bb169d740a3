package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"BioSentinel/internal/chart"
	"BioSentinel/internal/collector"
	"BioSentinel/internal/config"
	"BioSentinel/internal/model"
	"BioSentinel/internal/notifier"
	"BioSentinel/internal/recorder"
	"BioSentinel/internal/roster"
	"BioSentinel/internal/scheduler"
	"BioSentinel/internal/server"
)

type app struct {
	cfgPath string
	cfg     *config.Config
	roster  *roster.Manager
	col     *collector.Collector
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "biorhythm",
		Short:         "Biorhythm forecasts as charts, tables, an HTTP API and a Telegram bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}

	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", defaultPath, "path to the YAML config file")

	root.AddCommand(a.serveCmd(), a.chartCmd(), a.tableCmd(), a.peopleCmd())
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	presets, err := cfg.Presets()
	if err != nil {
		return err
	}
	rm, err := roster.NewManager(presets, cfg.Roster.StateFile)
	if err != nil {
		return fmt.Errorf("init roster: %w", err)
	}
	a.cfg = cfg
	a.roster = rm
	a.col = collector.NewCollector(rm, collector.Window{
		DaysBefore: cfg.Window.DaysBefore,
		DaysAfter:  cfg.Window.DaysAfter,
		MaxDays:    cfg.Window.MaxDays,
	})
	return nil
}

func (a *app) renderer() (*chart.Renderer, error) {
	cc := chart.DefaultConfig()
	cc.Width = a.cfg.Chart.Width
	cc.Height = a.cfg.Chart.Height
	return chart.NewRenderer(cc)
}

func (a *app) recorder() recorder.Recorder {
	if a.cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

func addRequestFlags(cmd *cobra.Command, req *collector.Request) {
	cmd.Flags().StringVarP(&req.Person, "person", "p", "", "person from the roster, or Custom")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name for Custom")
	cmd.Flags().StringVar(&req.Birthdate, "birthdate", "", "birthdate for Custom (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Start, "start", "", "first day (YYYY-MM-DD), default today minus window.days_before")
	cmd.Flags().StringVar(&req.End, "end", "", "last day (YYYY-MM-DD), default today plus window.days_after")
	cmd.MarkFlagRequired("person")
}

func (a *app) chartCmd() *cobra.Command {
	var req collector.Request
	var out string
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render a biorhythm chart to a PNG file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.col.Forecast(req)
			if err != nil {
				return err
			}
			rd, err := a.renderer()
			if err != nil {
				return err
			}
			png, err := rd.Render(f)
			if err != nil {
				return fmt.Errorf("render chart: %w", err)
			}
			if err := os.WriteFile(out, png, 0644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			a.record(f, "cli")
			fmt.Fprintf(cmd.OutOrStdout(), "%s written (%d days)\n", out, len(f.Series))
			return nil
		},
	}
	addRequestFlags(cmd, &req)
	cmd.Flags().StringVarP(&out, "out", "o", "biorhythm.png", "output file")
	return cmd
}

func (a *app) tableCmd() *cobra.Command {
	var req collector.Request
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the daily readings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.col.Forecast(req)
			if err != nil {
				return err
			}
			a.record(f, "cli")
			fmt.Fprintln(cmd.OutOrStdout(), chart.Title(f.Input.Person.DisplayName))
			fmt.Fprint(cmd.OutOrStdout(), notifier.FormatSeriesTable(f))
			return nil
		},
	}
	addRequestFlags(cmd, &req)
	return cmd
}

func (a *app) peopleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "people",
		Short: "List configured and custom people",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, p := range a.roster.List() {
				kind := "preset"
				if !p.Preset {
					kind = "custom"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s  %s\n", p.Name, p.Birthdate, kind)
			}
			return nil
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the daily scheduler and the Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return a.serve(ctx, runOnStart || os.Getenv("RUN_ON_START") == "true")
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "send the daily forecast immediately")
	return cmd
}

func (a *app) serve(ctx context.Context, runOnStart bool) error {
	log.Info().Msg("BioSentinel starting...")

	rd, err := a.renderer()
	if err != nil {
		return err
	}
	rec := a.recorder()
	defer rec.Close()

	if a.cfg.TelegramEnabled() {
		tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy)
		sched := scheduler.NewScheduler(ctx, a.col, a.roster, rd, tn, rec)
		if err := sched.RegisterAll(a.cfg.Schedule.DailyCron); err != nil {
			return fmt.Errorf("register cron tasks: %w", err)
		}
		sched.Start()
		defer sched.Stop()

		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")

		if runOnStart {
			log.Info().Msg("run-on-start enabled, executing daily task now")
			go sched.RunDailyNow()
		}
	} else {
		log.Info().Msg("telegram not configured, scheduler disabled")
	}

	api := server.NewWebAPI(log.Logger, server.Config{
		Addr: a.cfg.Server.Addr,
		Dependencies: server.Dependencies{
			People:     a.roster,
			Forecaster: a.col,
			Renderer:   rd,
			Recorder:   rec,
		},
	})
	if err := api.Run(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	log.Info().Msg("BioSentinel stopped")
	return nil
}

func (a *app) record(f *model.Forecast, source string) {
	rec := a.recorder()
	defer rec.Close()
	if err := rec.RecordForecast(recorder.NewForecastEvent(f, source)); err != nil {
		log.Warn().Err(err).Msg("record forecast")
	}
}
