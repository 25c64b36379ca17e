package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jaswdr/faker"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/dataset-validator/pkg/models"
)

// Options controls the size of a generated dataset and the defects injected into it
type Options struct {
	Records int
	// Seed makes the output reproducible; 0 picks a time based seed
	Seed int64
	// DuplicateRate is the share of records copied from an earlier record
	DuplicateRate float64
	// NullRate is the share of values left null
	NullRate float64
	// InvalidRate is the share of typed values replaced by a malformed one
	InvalidRate float64
}

// germanSurnames exercise the encoding estimator with umlauts and sharp s
var germanSurnames = []string{
	"Müller", "Schäfer", "Köhler", "Größ", "Weiß", "Bäcker", "Jäger", "Krüger", "Hoß", "Möller",
}

var germanCities = []string{
	"München", "Köln", "Düsseldorf", "Nürnberg", "Lübeck", "Göttingen", "Würzburg", "Saarbrücken",
}

var invalidNumbers = []string{"n/a", "12a", "1.2.3", "--", "?"}
var invalidDates = []string{"2024-01-31", "31.01.2024", "2024013", "unknown"}
var invalidLogicals = []string{"Maybe", "X", "1", "ja"}

// DataGenerator generates fake records for a schema
type DataGenerator struct {
	Faker   faker.Faker
	Options Options
	Logger  *logrus.Logger
	rng     *rand.Rand
}

// NewDataGenerator creates a new data generator
func NewDataGenerator(opts Options, logger *logrus.Logger) *DataGenerator {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return &DataGenerator{
		Faker:   faker.NewWithSeed(rand.NewSource(opts.Seed)),
		Options: opts,
		Logger:  logger,
		rng:     rand.New(rand.NewSource(opts.Seed + 1)),
	}
}

// DefaultSchema is a customer table as found in legacy dBase applications
func DefaultSchema() []models.FieldDescriptor {
	return []models.FieldDescriptor{
		{Name: "KDNR", Type: models.Numeric, Length: 6},
		{Name: "NAME", Type: models.Character, Length: 40},
		{Name: "STRASSE", Type: models.Character, Length: 40},
		{Name: "PLZ", Type: models.Character, Length: 5},
		{Name: "ORT", Type: models.Character, Length: 30},
		{Name: "TELEFON", Type: models.Character, Length: 20},
		{Name: "EMAIL", Type: models.Character, Length: 50},
		{Name: "GEBDAT", Type: models.Date, Length: 8},
		{Name: "AKTIV", Type: models.Logical, Length: 1},
		{Name: "UMSATZ", Type: models.Numeric, Length: 10},
	}
}

// GenerateRecords produces Options.Records records for the given schema
func (dg *DataGenerator) GenerateRecords(fields []models.FieldDescriptor) []models.Record {
	records := make([]models.Record, 0, dg.Options.Records)
	var duplicates, nulls, invalid int

	for i := 0; i < dg.Options.Records; i++ {
		// Copy an earlier record to create an exact duplicate
		if len(records) > 0 && dg.chance(dg.Options.DuplicateRate) {
			records = append(records, records[dg.rng.Intn(len(records))].Clone())
			duplicates++
			continue
		}

		record := make(models.Record, len(fields))
		for _, field := range fields {
			switch {
			case dg.chance(dg.Options.NullRate):
				record[field.Name] = nil
				nulls++
			case field.Type != models.Character && dg.chance(dg.Options.InvalidRate):
				record[field.Name] = dg.invalidValue(field)
				invalid++
			default:
				record[field.Name] = dg.GenerateValue(field)
			}
		}
		records = append(records, record)
	}

	dg.Logger.Infof("Generated %d records (%d duplicates, %d nulls, %d invalid values)",
		len(records), duplicates, nulls, invalid)
	return records
}

// GenerateValue generates a valid value for a field based on its type and name
func (dg *DataGenerator) GenerateValue(field models.FieldDescriptor) interface{} {
	switch field.Type {
	case models.Numeric:
		return dg.generateNumber(field)
	case models.Date:
		return dg.generateDate()
	case models.Logical:
		if dg.Faker.Bool() {
			return "T"
		}
		return "F"
	default:
		return fit(dg.generateString(field), field.Length)
	}
}

// generateString picks a faker generator from the field name
func (dg *DataGenerator) generateString(field models.FieldDescriptor) string {
	name := strings.ToLower(field.Name)

	switch {
	case strings.Contains(name, "email") || strings.Contains(name, "mail"):
		return dg.Faker.Internet().Email()
	case strings.Contains(name, "phone") || strings.Contains(name, "tel"):
		return dg.Faker.Phone().Number()
	case strings.Contains(name, "zip") || strings.Contains(name, "postal") || name == "plz":
		return fmt.Sprintf("%05d", dg.Faker.IntBetween(1000, 99999))
	case strings.Contains(name, "city") || name == "ort":
		if dg.chance(0.5) {
			return dg.Faker.RandomStringElement(germanCities)
		}
		return dg.Faker.Address().City()
	case strings.Contains(name, "street") || strings.Contains(name, "strasse") || strings.Contains(name, "address"):
		return dg.Faker.Address().StreetAddress()
	case strings.Contains(name, "company") || strings.Contains(name, "firma"):
		return dg.Faker.Company().Name()
	case strings.Contains(name, "name"):
		if dg.chance(0.3) {
			return dg.Faker.Person().FirstName() + " " + dg.Faker.RandomStringElement(germanSurnames)
		}
		return dg.Faker.Person().Name()
	default:
		return dg.Faker.Lorem().Sentence(3)
	}
}

func (dg *DataGenerator) generateNumber(field models.FieldDescriptor) interface{} {
	digits := field.Length
	if digits <= 0 || digits > 9 {
		digits = 9
	}
	max := 1
	for i := 0; i < digits; i++ {
		max *= 10
	}
	return int64(dg.Faker.IntBetween(0, max-1))
}

func (dg *DataGenerator) generateDate() string {
	year := dg.Faker.IntBetween(1940, 2024)
	month := dg.Faker.IntBetween(1, 12)
	day := dg.Faker.IntBetween(1, 28)
	return fmt.Sprintf("%04d%02d%02d", year, month, day)
}

// invalidValue returns a value that fails the type check of the field
func (dg *DataGenerator) invalidValue(field models.FieldDescriptor) interface{} {
	switch field.Type {
	case models.Numeric:
		return dg.Faker.RandomStringElement(invalidNumbers)
	case models.Date:
		return dg.Faker.RandomStringElement(invalidDates)
	case models.Logical:
		return dg.Faker.RandomStringElement(invalidLogicals)
	default:
		return dg.GenerateValue(field)
	}
}

func (dg *DataGenerator) chance(rate float64) bool {
	return rate > 0 && dg.rng.Float64() < rate
}

// fit cuts s to the declared width in runes
func fit(s string, length int) string {
	if length <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return strings.TrimSpace(string(runes[:length]))
}
