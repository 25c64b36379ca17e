package validator

const (
	defaultMaxDuplicateGroups    = 10
	defaultMaxTypeExamples       = 10
	defaultEncodingSampleSize    = 50
	defaultEncodingSampleRecords = 100

	sampleValueCap         = 20
	sampleValueWidth       = 50
	distributionValueLimit = 100
	exampleValueWidth      = 50
	minSampleTextLength    = 5

	// cancelCheckInterval is how many records a scan processes between context checks
	cancelCheckInterval = 1024
)

// Options tunes the bounded parts of a validation run
type Options struct {
	// MaxDuplicateGroups caps the duplicate groups kept for display
	MaxDuplicateGroups int
	// MaxTypeExamples caps the counter-examples kept per field
	MaxTypeExamples int
	// EncodingSampleSize caps the strings sampled for encoding scoring
	EncodingSampleSize int
	// EncodingSampleRecords caps the records the encoding sample is drawn from
	EncodingSampleRecords int
	// Sequential runs the analysis stages one after another instead of concurrently
	Sequential bool
}

// DefaultOptions returns the standard limits
func DefaultOptions() Options {
	return Options{
		MaxDuplicateGroups:    defaultMaxDuplicateGroups,
		MaxTypeExamples:       defaultMaxTypeExamples,
		EncodingSampleSize:    defaultEncodingSampleSize,
		EncodingSampleRecords: defaultEncodingSampleRecords,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxDuplicateGroups <= 0 {
		o.MaxDuplicateGroups = defaultMaxDuplicateGroups
	}
	if o.MaxTypeExamples <= 0 {
		o.MaxTypeExamples = defaultMaxTypeExamples
	}
	if o.EncodingSampleSize <= 0 {
		o.EncodingSampleSize = defaultEncodingSampleSize
	}
	if o.EncodingSampleRecords <= 0 {
		o.EncodingSampleRecords = defaultEncodingSampleRecords
	}
	return o
}
