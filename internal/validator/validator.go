package validator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/dataset-validator/pkg/models"
	"golang.org/x/sync/errgroup"
)

// DefaultEncodingLabel is used when the caller does not know the source encoding
const DefaultEncodingLabel = "unknown"

// DataValidator runs every quality analysis over one record set.
// An instance is single-use: the first completed run is cached and returned again.
type DataValidator struct {
	Records      models.RecordSet
	Fields       []models.FieldDescriptor
	EncodingUsed string
	Options      Options
	Logger       *logrus.Logger

	once   sync.Once
	report *models.ValidationReport
	err    error
}

// NewDataValidator creates a new data validator
func NewDataValidator(
	records models.RecordSet,
	fields []models.FieldDescriptor,
	encodingUsed string,
	opts Options,
	logger *logrus.Logger,
) *DataValidator {
	if encodingUsed == "" {
		encodingUsed = DefaultEncodingLabel
	}
	if logger == nil {
		logger = logrus.New()
	}
	schema := make([]models.FieldDescriptor, len(fields))
	copy(schema, fields)

	return &DataValidator{
		Records:      records,
		Fields:       schema,
		EncodingUsed: encodingUsed,
		Options:      opts.withDefaults(),
		Logger:       logger,
	}
}

// RunFullValidation runs all analysis stages and assembles the report.
// The only error it returns is the context's.
func (dv *DataValidator) RunFullValidation(ctx context.Context) (*models.ValidationReport, error) {
	dv.once.Do(func() {
		dv.report, dv.err = dv.run(ctx)
	})
	return dv.report, dv.err
}

func (dv *DataValidator) run(ctx context.Context) (*models.ValidationReport, error) {
	start := time.Now()
	dv.Logger.Infof("Starting validation of %d records with %d fields (encoding: %s)",
		dv.Records.Len(), len(dv.Fields), dv.EncodingUsed)

	results, err := dv.runStages(ctx)
	if err != nil {
		dv.Logger.Errorf("Validation aborted: %v", err)
		return nil, err
	}

	// Aggregation depends on every other stage
	dv.Logger.Info("Calculating overall quality score...")
	score := CalculateQualityScore(results, dv.Fields)
	summary := BuildSummary(results, score, dv.Records.Len(), len(dv.Fields))

	report := &models.ValidationReport{
		ReportID:           uuid.NewString(),
		GeneratedAt:        time.Now().UTC(),
		Duplicates:         results.Duplicates,
		FieldAnalysis:      results.Profiles,
		DataTypes:          results.TypeIssues,
		MissingData:        results.Missing,
		EncodingConfidence: results.Encoding,
		QualityScore:       score,
		Summary:            summary,
	}

	dv.Logger.Infof("Validation complete in %v: %s (%.1f)",
		time.Since(start).Round(time.Millisecond), score.Grade, score.OverallScore)
	return report, nil
}

// runStages runs the independent stages. Each stage writes only its own slot.
func (dv *DataValidator) runStages(ctx context.Context) (StageResults, error) {
	var results StageResults

	g, gctx := errgroup.WithContext(ctx)
	if dv.Options.Sequential {
		g.SetLimit(1)
	}

	g.Go(func() error {
		dv.Logger.Info("Checking for duplicate records...")
		report, err := DetectDuplicates(gctx, dv.Records, dv.Options.MaxDuplicateGroups)
		if err != nil {
			return err
		}
		results.Duplicates = report
		dv.Logger.Debugf("Found %d duplicate groups", report.TotalDuplicates)
		return nil
	})

	g.Go(func() error {
		dv.Logger.Info("Analyzing field statistics...")
		profiles, err := ProfileFields(gctx, dv.Records, dv.Fields, dv.Logger)
		if err != nil {
			return err
		}
		results.Profiles = profiles
		return nil
	})

	g.Go(func() error {
		dv.Logger.Info("Validating data types...")
		issues, err := CheckTypes(gctx, dv.Records, dv.Fields, dv.Options.MaxTypeExamples)
		if err != nil {
			return err
		}
		results.TypeIssues = issues
		dv.Logger.Debugf("Found type issues in %d fields", len(issues))
		return nil
	})

	g.Go(func() error {
		dv.Logger.Info("Analyzing missing data...")
		missing, err := AnalyzeMissing(gctx, dv.Records, dv.Fields)
		if err != nil {
			return err
		}
		results.Missing = missing
		return nil
	})

	g.Go(func() error {
		dv.Logger.Info("Calculating encoding confidence...")
		confidence, err := EstimateEncoding(gctx, dv.Records, dv.Fields, dv.EncodingUsed, dv.Options)
		if err != nil {
			return err
		}
		results.Encoding = confidence
		return nil
	})

	if err := g.Wait(); err != nil {
		return StageResults{}, err
	}
	return results, nil
}
