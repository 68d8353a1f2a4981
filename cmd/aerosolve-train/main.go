// Command aerosolve-train trains an additive model from a JSON parameter
// file and a JSONL file of feature vectors, writing a model checkpoint
// after every iteration.
//
// Usage:
//
//	aerosolve-train -config params.json -data examples.jsonl [-plot loss.png]
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/jaydenwhyte/aerosolve/core/feature"
	"github.com/jaydenwhyte/aerosolve/metrics"
	"github.com/jaydenwhyte/aerosolve/pkg/log"
	"github.com/jaydenwhyte/aerosolve/trainer"
)

func main() {
	configPath := flag.String("config", "", "path to JSON training parameters")
	dataPath := flag.String("data", "", "path to JSONL training examples")
	plotPath := flag.String("plot", "", "optional path for a loss-curve image")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	log.SetLevel(*logLevel)
	logger := log.GetLoggerWithName("aerosolve-train")

	if *configPath == "" || *dataPath == "" {
		logger.Error("both -config and -data are required")
		os.Exit(2)
	}

	params, err := trainer.LoadParams(*configPath)
	if err != nil {
		logger.Error("failed to load parameters", "error", err)
		os.Exit(1)
	}

	examples, err := readExamples(*dataPath)
	if err != nil {
		logger.Error("failed to read examples", "error", err)
		os.Exit(1)
	}
	logger.Info("loaded training data", "examples", len(examples))

	t, err := trainer.New(params)
	if err != nil {
		logger.Error("failed to create trainer", "error", err)
		os.Exit(1)
	}

	m, err := t.Train(context.Background(), examples)
	if err != nil {
		logger.Error("training failed", "error", err)
		os.Exit(1)
	}
	logger.Info("training complete", "features", m.Len(), "model", params.ModelOutput)

	switch params.Loss {
	case trainer.LossRegression:
		mae, err := metrics.EvaluateRegressor(m, examples, params.RankKey)
		if err != nil {
			logger.Warn("evaluation skipped", "error", err)
		} else {
			logger.Info("training-set evaluation", "mae", mae)
		}
	default:
		acc, logLoss, err := metrics.EvaluateClassifier(m, examples, params.RankKey, params.RankThreshold)
		if err != nil {
			logger.Warn("evaluation skipped", "error", err)
		} else {
			logger.Info("training-set evaluation", "accuracy", acc, "log_loss", logLoss)
		}
	}

	if *plotPath != "" {
		if err := trainer.WriteLossCurve(*plotPath, t.LossHistory()); err != nil {
			logger.Warn("failed to write loss curve", "error", err)
		}
	}
}

// readExamples parses one feature vector per line.
func readExamples(path string) ([]*feature.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var examples []*feature.Vector
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<24)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		v := &feature.Vector{}
		if err := json.Unmarshal(line, v); err != nil {
			return nil, err
		}
		examples = append(examples, v)
	}
	return examples, scanner.Err()
}
