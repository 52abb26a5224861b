package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/eventlake/amplitude-connector/internal/pkg/application/extractor"
	"github.com/eventlake/amplitude-connector/internal/pkg/infrastructure/storage"
	"github.com/eventlake/amplitude-connector/pkg/amplitude"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appName string = "amplitude-extract"

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	configPath := env.GetVariableOrDefault(ctx, "EXTRACTOR_CONFIG", "config.yaml")
	statePath := env.GetVariableOrDefault(ctx, "STATE_FILE", "state.json")

	configFile, err := os.Open(configPath)
	if err != nil {
		log.Error("failed to open configuration file", "path", configPath, "err", err.Error())
		os.Exit(1)
	}

	cfg, err := extractor.LoadConfiguration(configFile)
	configFile.Close()
	if err != nil {
		log.Error("failed to parse configuration file", "path", configPath, "err", err.Error())
		os.Exit(1)
	}

	if cfg.Export == nil && cfg.Import == nil {
		log.Warn("configuration contains neither an export nor an import section")
	}

	state, err := extractor.LoadState(statePath)
	if err != nil {
		log.Error("failed to load extractor state", "path", statePath, "err", err.Error())
		os.Exit(1)
	}

	client, err := amplitude.NewClientFromEnv(ctx)
	if err != nil {
		log.Error("failed to create amplitude client", "err", err.Error())
		os.Exit(1)
	}
	defer client.Close()

	var pool *pgxpool.Pool

	pgConfig := storage.LoadConfiguration(ctx)
	if pgConfig.Enabled() {
		pool, err = storage.Connect(ctx, pgConfig)
		if err != nil {
			log.Error("failed to connect to database", "err", err.Error())
			os.Exit(1)
		}
		defer pool.Close()
	}

	runner := extractor.New(client)

	if cfg.Export != nil {
		export := *cfg.Export

		if export.Start == "" && state.LastExportedEnd != "" {
			export.Start = state.LastExportedEnd
			log.Info("resuming export where the previous run ended", "start", export.Start)
		}

		if export.End == "" {
			export.End = time.Now().UTC().Format("20060102T15")
		}

		var sink storage.Writer
		if pool != nil {
			sink = storage.NewPostgresWriter(pool)
		} else {
			outputDir := env.GetVariableOrDefault(ctx, "OUTPUT_DIR", "out/tables")
			sink = storage.NewCSVWriter(outputDir, export.Destination)
		}

		summary, err := runner.Export(ctx, export, sink)
		if err != nil {
			log.Error("export failed", "err", err.Error())
			os.Exit(1)
		}

		log.Info("export finished", "events", summary.EventCount, "skipped", summary.SkippedLines)

		state.LastExportedEnd = export.End
		state.EventCount = summary.EventCount
	}

	importFailed := false

	if cfg.Import != nil {
		var source storage.Reader
		if pool != nil {
			source = storage.NewPostgresReader(pool, cfg.Import.Table)
		} else {
			inputDir := env.GetVariableOrDefault(ctx, "INPUT_DIR", "in/tables")
			source = storage.NewCSVReader(filepath.Join(inputDir, cfg.Import.Table+".csv"))
		}

		summary, err := runner.Import(ctx, *cfg.Import, source)
		if err != nil {
			log.Error("import failed", "err", err.Error())
			os.Exit(1)
		}

		importFailed = summary.ChunkCount > 0 && summary.FailedChunks == summary.ChunkCount
		if importFailed {
			log.Error("none of the chunks were uploaded", "chunks", summary.ChunkCount)
		} else if summary.FailedChunks > 0 {
			log.Warn("some chunks were not uploaded", "failed", summary.FailedChunks, "chunks", summary.ChunkCount)
		}

		log.Info("import finished",
			"rows", summary.RowCount, "skipped", summary.SkippedRows, "chunks", summary.ChunkCount)
	}

	err = state.Save(statePath)
	if err != nil {
		log.Error("failed to save extractor state", "path", statePath, "err", err.Error())
		os.Exit(1)
	}

	if importFailed {
		os.Exit(1)
	}

	log.Info("done")
}
