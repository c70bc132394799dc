// Command hashlearn-train trains a streaming text classifier from a TSV file
// of "label<TAB>text" lines and saves the fitted model.
//
// The file is read once to discover the class set and carve out the
// held-out validation split, then fed to the out-of-core trainer in
// mini-batches. The model itself stays bounded by the fixed hash space.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	arg "github.com/alexflint/go-arg"
	"github.com/olekukonko/tablewriter"

	"github.com/YuminosukeSato/hashlearn/core/model"
	"github.com/YuminosukeSato/hashlearn/outofcore"
	"github.com/YuminosukeSato/hashlearn/pkg/log"
	"github.com/YuminosukeSato/hashlearn/sklearn/drift"
	"github.com/YuminosukeSato/hashlearn/sklearn/feature_extraction"
	"github.com/YuminosukeSato/hashlearn/sklearn/linear_model"
)

func main() {
	args := struct {
		Input     string  `arg:"positional,required" help:"TSV file of label<TAB>text lines"`
		Model     string  `arg:"-o,--model" help:"output path for the fitted model"`
		NFeatures int     `arg:"--n-features" help:"hash space size"`
		C         float64 `arg:"-c" help:"passive-aggressive aggressiveness bound"`
		BatchSize int     `arg:"--batch-size" help:"samples per update"`
		EvalEvery int     `arg:"--eval-every" help:"validation cadence in batches"`
		ValEvery  int     `arg:"--val-every" help:"hold out every Nth sample for validation"`
		LogLevel  string  `arg:"--log-level" help:"debug, info, warn or error"`
	}{
		Model:     "model.gob",
		NFeatures: 1 << 20,
		C:         1.0,
		BatchSize: 1000,
		EvalEvery: 10,
		ValEvery:  10,
		LogLevel:  "info",
	}
	arg.MustParse(&args)

	log.SetupLogger(args.LogLevel)
	logger := log.GetLoggerWithName("hashlearn-train")

	texts, labels, err := readTSV(args.Input)
	if err != nil {
		logger.Error("failed to read input", err)
		os.Exit(1)
	}
	if len(texts) == 0 {
		logger.Error("no samples in input", fmt.Errorf("empty file: %s", args.Input))
		os.Exit(1)
	}

	trainTexts, trainLabels, valTexts, valLabels := holdout(texts, labels, args.ValEvery)
	classes := classSet(labels)

	logger.Info("loaded dataset",
		log.SamplesKey, len(texts),
		"train_samples", len(trainTexts),
		"validation_samples", len(valTexts),
		"classes", len(classes),
	)

	hv, err := feature_extraction.NewHashingVectorizer(args.NFeatures)
	if err != nil {
		logger.Error("invalid configuration", err)
		os.Exit(1)
	}
	clf := linear_model.NewPassiveAggressiveClassifier(
		linear_model.WithPAC(args.C),
		linear_model.WithPAClasses(classes),
	)

	trainer, err := outofcore.NewTrainer(hv, clf,
		outofcore.WithValidationSet(valTexts, valLabels),
		outofcore.WithEvalEvery(args.EvalEvery),
		outofcore.WithDriftDetector(drift.NewDDM()),
	)
	if err != nil {
		logger.Error("failed to build trainer", err)
		os.Exit(1)
	}

	batches, err := outofcore.SliceBatches(trainTexts, trainLabels, args.BatchSize)
	if err != nil {
		logger.Error("failed to slice batches", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ch := make(chan *model.TextBatch)
	go func() {
		defer close(ch)
		for _, b := range batches {
			select {
			case <-ctx.Done():
				return
			case ch <- b:
			}
		}
	}()

	if err := trainer.Run(ctx, ch); err != nil && err != context.Canceled {
		logger.Error("training failed", err)
		os.Exit(1)
	}

	printHistory(trainer.History())
	if len(valTexts) > 0 {
		printPredictionCounts(hv, clf, valTexts, valLabels)
	}

	if err := clf.Save(args.Model); err != nil {
		logger.Error("failed to save model", err)
		os.Exit(1)
	}
	logger.Info("model saved", "path", args.Model, log.SamplesSeenKey, trainer.SamplesSeen())
}

// readTSV parses "label<TAB>text" lines. Blank lines are skipped; a line
// without a tab or with a non-integer label is an error.
func readTSV(path string) ([]string, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var texts []string
	var labels []int

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		label, text, found := strings.Cut(line, "\t")
		if !found {
			return nil, nil, fmt.Errorf("line %d: missing tab separator", lineNo)
		}
		y, err := strconv.Atoi(strings.TrimSpace(label))
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: bad label %q: %w", lineNo, label, err)
		}
		texts = append(texts, text)
		labels = append(labels, y)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return texts, labels, nil
}

// holdout keeps every nth sample for validation and the rest for training.
func holdout(texts []string, labels []int, nth int) (trainT []string, trainY []int, valT []string, valY []int) {
	if nth <= 1 {
		return texts, labels, nil, nil
	}
	for i := range texts {
		if i%nth == nth-1 {
			valT = append(valT, texts[i])
			valY = append(valY, labels[i])
		} else {
			trainT = append(trainT, texts[i])
			trainY = append(trainY, labels[i])
		}
	}
	return trainT, trainY, valT, valY
}

// classSet returns the distinct labels in ascending order.
func classSet(labels []int) []int {
	seen := make(map[int]bool)
	var classes []int
	for _, y := range labels {
		if !seen[y] {
			seen[y] = true
			classes = append(classes, y)
		}
	}
	sort.Ints(classes)
	return classes
}

func printHistory(history []outofcore.ProgressRecord) {
	if len(history) == 0 {
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Batches", "Samples", "Accuracy", "Elapsed", "Drift"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, rec := range history {
		driftState := ""
		if rec.DriftDetected {
			driftState = "drift"
		} else if rec.DriftWarning {
			driftState = "warning"
		}
		table.Append([]string{
			strconv.Itoa(rec.BatchesSeen),
			strconv.Itoa(rec.SamplesSeen),
			fmt.Sprintf("%.4f", rec.Accuracy),
			rec.Elapsed.Truncate(time.Millisecond).String(),
			driftState,
		})
	}
	table.Render()
}

func printPredictionCounts(hv model.TextVectorizer, clf model.OnlineClassifier, texts []string, labels []int) {
	actual := make(map[int]int)
	predicted := make(map[int]int)
	for i, v := range hv.Transform(texts) {
		pred, err := clf.PredictSparse(v)
		if err != nil {
			return
		}
		predicted[pred]++
		actual[labels[i]]++
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Class", "Predicted", "Actual"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, class := range clf.Classes() {
		table.Append([]string{
			strconv.Itoa(class),
			strconv.Itoa(predicted[class]),
			strconv.Itoa(actual[class]),
		})
	}
	table.Render()
}
