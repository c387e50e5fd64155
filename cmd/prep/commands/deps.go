package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/internal/featureconfig"
	"github.com/milestoneml/equityprep/pkg/config"
	"github.com/milestoneml/equityprep/pkg/logger"
)

// initDeps wires the shared dependencies every command needs.
// The explicit --env-file is loaded before config.Load so its values win
// over ambient .env discovery (godotenv never overrides set variables).
func initDeps() (*config.Config, *featureconfig.Config, *logger.Logger, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, nil, nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	featcfg, err := loadFeatures(log)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, featcfg, log, nil
}

// loadFeatures returns the built-in feature definitions unless --config
// points at a YAML file.
func loadFeatures(log *logger.Logger) (*featureconfig.Config, error) {
	if featuresFile == "" {
		return featureconfig.Default(), nil
	}

	featcfg, _, err := featureconfig.Load(featuresFile)
	if err != nil {
		return nil, fmt.Errorf("load feature config %s: %w", featuresFile, err)
	}
	for _, w := range featureconfig.Warn(featcfg) {
		log.WithField("code", w.Code).Warn(w.Message)
	}
	return featcfg, nil
}

// logRunSnapshot records which feature definitions a stage ran with.
func logRunSnapshot(log *logger.Logger, featcfg *featureconfig.Config, stage string) {
	snap, err := featureconfig.NewRunSnapshot(featcfg, stage)
	if err != nil {
		log.WithError(err).Warn("Could not hash feature config")
		return
	}
	log.WithFields(map[string]interface{}{
		"config_hash": snap.ConfigHash[:12],
		"dataset":     snap.Dataset,
		"version":     snap.Version,
		"stage":       snap.Stage,
	}).Info("Feature configuration")
}

// loadCheckpoint reads a checkpoint CSV, pointing at the producing command
// when the file does not exist yet.
func loadCheckpoint(cfg *config.Config, cp contracts.Checkpoint) (*dataset.Frame, error) {
	path := cp.Path(cfg.DataDir)
	frame, err := dataset.ReadCSV(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("checkpoint %s not found: run `prep %s` first", path, cp.Producer())
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	return frame, nil
}

// saveCheckpoint writes a checkpoint CSV and echoes where it went.
func saveCheckpoint(cfg *config.Config, cp contracts.Checkpoint, frame *dataset.Frame) error {
	path := cp.Path(cfg.DataDir)
	if err := dataset.WriteCSV(path, frame); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	fmt.Printf("  💾 %s (%d rows, %d cols)\n", path, frame.NumRows(), frame.NumCols())
	return nil
}
