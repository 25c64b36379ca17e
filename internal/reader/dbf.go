package reader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/dataset-validator/internal/charset"
	"github.com/vitebski/dataset-validator/pkg/models"
)

const (
	dbfHeaderSize      = 32
	dbfFieldSize       = 32
	dbfFieldTerminator = 0x0D
	dbfEOF             = 0x1A
	dbfDeletedFlag     = '*'
)

// ErrNoEncoding is returned when no candidate encoding can decode a file
var ErrNoEncoding = errors.New("could not decode file with any supported encoding")

// Dataset is a fully materialized table with its schema
type Dataset struct {
	Source   string
	Encoding string
	Fields   []models.FieldDescriptor
	Records  models.RecordSet
}

// dbfField is one field descriptor from a DBF header
type dbfField struct {
	Name     string
	Type     byte
	Length   int
	Decimals int
	offset   int
}

// dbfTable holds the undecoded contents of a DBF file
type dbfTable struct {
	Version byte
	Fields  []dbfField
	Rows    [][]byte
	Deleted int
}

// ReadDBF loads a dBase file. With an empty encoding the fallback chain is tried
// in order and the first encoding that decodes every text value wins.
func ReadDBF(path string, encoding string, logger *logrus.Logger) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	table, err := parseDBF(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	logger.Debugf("Parsed DBF header of %s: version 0x%02x, %d fields, %d records (%d deleted)",
		path, table.Version, len(table.Fields), len(table.Rows), table.Deleted)

	chain := charset.FallbackChain
	if encoding != "" {
		chain = []string{encoding}
	}

	for _, name := range chain {
		candidate, ok := charset.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unsupported encoding: %s", name)
		}

		dataset, err := table.decode(candidate)
		if err != nil {
			logger.Warningf("Failed to read %s with encoding %s: %v", path, candidate.Name, err)
			continue
		}

		dataset.Source = path
		logger.Infof("Read %d records from %s using encoding %s", dataset.Records.Len(), path, candidate.Name)
		return dataset, nil
	}

	return nil, fmt.Errorf("%s: %w", path, ErrNoEncoding)
}

// parseDBF splits a dBase III style file into field descriptors and raw rows
func parseDBF(data []byte) (*dbfTable, error) {
	if len(data) < dbfHeaderSize+1 {
		return nil, fmt.Errorf("file too short for a DBF header (%d bytes)", len(data))
	}

	numRecords := int(binary.LittleEndian.Uint32(data[4:8]))
	headerLen := int(binary.LittleEndian.Uint16(data[8:10]))
	recordLen := int(binary.LittleEndian.Uint16(data[10:12]))
	if headerLen <= dbfHeaderSize || headerLen > len(data) {
		return nil, fmt.Errorf("invalid header length %d", headerLen)
	}
	if recordLen < 1 {
		return nil, fmt.Errorf("invalid record length %d", recordLen)
	}

	table := &dbfTable{Version: data[0]}

	// Field descriptors follow the header until the terminator byte
	offset := 1
	for pos := dbfHeaderSize; pos < headerLen && data[pos] != dbfFieldTerminator; pos += dbfFieldSize {
		if pos+dbfFieldSize > len(data) {
			return nil, fmt.Errorf("truncated field descriptor at offset %d", pos)
		}
		desc := data[pos : pos+dbfFieldSize]

		name := desc[:11]
		if i := strings.IndexByte(string(name), 0); i >= 0 {
			name = name[:i]
		}
		field := dbfField{
			Name:     strings.TrimSpace(string(name)),
			Type:     desc[11],
			Length:   int(desc[16]),
			Decimals: int(desc[17]),
			offset:   offset,
		}
		offset += field.Length
		table.Fields = append(table.Fields, field)
	}
	if len(table.Fields) == 0 {
		return nil, fmt.Errorf("no field descriptors found")
	}
	if offset > recordLen {
		return nil, fmt.Errorf("fields need %d bytes but records are %d bytes", offset, recordLen)
	}

	for i := 0; i < numRecords; i++ {
		start := headerLen + i*recordLen
		if start >= len(data) || data[start] == dbfEOF {
			break
		}
		if start+recordLen > len(data) {
			return nil, fmt.Errorf("truncated record %d", i)
		}
		row := data[start : start+recordLen]
		if row[0] == dbfDeletedFlag {
			table.Deleted++
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// decode converts the raw rows into records using one encoding
func (t *dbfTable) decode(candidate charset.Candidate) (*Dataset, error) {
	fields := make([]models.FieldDescriptor, len(t.Fields))
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		name, err := candidate.Decode([]byte(f.Name))
		if err != nil {
			return nil, fmt.Errorf("field name %d: %w", i, err)
		}
		names[i] = name
		fields[i] = models.FieldDescriptor{
			Name:   name,
			Type:   models.ParseFieldType(string(f.Type)),
			Length: f.Length,
		}
	}

	records := make([]models.Record, 0, len(t.Rows))
	for rowIndex, row := range t.Rows {
		record := make(models.Record, len(t.Fields))
		for i, f := range t.Fields {
			value, err := f.parse(row[f.offset:f.offset+f.Length], candidate)
			if err != nil {
				return nil, fmt.Errorf("record %d field %s: %w", rowIndex, names[i], err)
			}
			record[names[i]] = value
		}
		records = append(records, record)
	}

	return &Dataset{
		Encoding: candidate.Name,
		Fields:   fields,
		Records:  models.NewRecordSet(records),
	}, nil
}

// parse converts one raw field value
func (f dbfField) parse(raw []byte, candidate charset.Candidate) (interface{}, error) {
	switch f.Type {
	case 'C':
		text, err := candidate.Decode(raw)
		if err != nil {
			return nil, err
		}
		return strings.TrimRight(text, "\x00 "), nil

	case 'N', 'F':
		text := strings.TrimSpace(strings.Trim(string(raw), "\x00"))
		if text == "" {
			return nil, nil
		}
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			return v, nil
		}
		// Kept as text so the type checker can report it
		return text, nil

	case 'D':
		text := strings.TrimSpace(strings.Trim(string(raw), "\x00"))
		if text == "" || strings.Trim(text, "0") == "" {
			return nil, nil
		}
		return text, nil

	case 'L':
		text := strings.TrimSpace(string(raw))
		if text == "" || text == "?" {
			return nil, nil
		}
		return strings.ToUpper(text), nil

	case 'I':
		if len(raw) != 4 {
			return nil, fmt.Errorf("integer field has length %d", len(raw))
		}
		return int64(int32(binary.LittleEndian.Uint32(raw))), nil

	case 'M', 'B', 'G', 'P':
		// Memo contents live in a separate file that is not read
		return nil, nil

	default:
		text, err := candidate.Decode(raw)
		if err != nil {
			return nil, err
		}
		return strings.TrimSpace(strings.Trim(text, "\x00")), nil
	}
}
