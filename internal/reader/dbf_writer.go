package reader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/spf13/cast"
	"github.com/vitebski/dataset-validator/internal/charset"
	"github.com/vitebski/dataset-validator/pkg/models"
)

const (
	dbfVersion         = 0x03
	maxFieldNameLength = 10
	maxCharacterLength = 254
	defaultNumericLen  = 10
)

// WriteDBF writes records as a dBase III file encoded with the given encoding.
// Values wider than their field are cut to fit.
func WriteDBF(path string, fields []models.FieldDescriptor, records []models.Record, encoding string) error {
	data, err := EncodeDBF(fields, records, encoding, time.Now())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// EncodeDBF renders a dBase III file in memory
func EncodeDBF(fields []models.FieldDescriptor, records []models.Record, encoding string, modified time.Time) ([]byte, error) {
	candidate, ok := charset.Lookup(encoding)
	if !ok {
		return nil, fmt.Errorf("unsupported encoding: %s", encoding)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to write")
	}

	layout := make([]dbfField, len(fields))
	recordLen := 1
	for i, f := range fields {
		if len(f.Name) == 0 || len(f.Name) > maxFieldNameLength {
			return nil, fmt.Errorf("field name %q must be 1 to %d bytes", f.Name, maxFieldNameLength)
		}
		layout[i] = dbfLayout(f)
		recordLen += layout[i].Length
	}
	headerLen := dbfHeaderSize + dbfFieldSize*len(layout) + 1

	var buf bytes.Buffer
	header := make([]byte, dbfHeaderSize)
	header[0] = dbfVersion
	header[1] = byte(modified.Year() % 100)
	header[2] = byte(modified.Month())
	header[3] = byte(modified.Day())
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(records)))
	binary.LittleEndian.PutUint16(header[8:10], uint16(headerLen))
	binary.LittleEndian.PutUint16(header[10:12], uint16(recordLen))
	buf.Write(header)

	for _, f := range layout {
		desc := make([]byte, dbfFieldSize)
		copy(desc[:11], f.Name)
		desc[11] = f.Type
		desc[16] = byte(f.Length)
		desc[17] = byte(f.Decimals)
		buf.Write(desc)
	}
	buf.WriteByte(dbfFieldTerminator)

	for i, record := range records {
		buf.WriteByte(' ')
		for _, f := range layout {
			cell, err := f.format(record[f.Name], candidate)
			if err != nil {
				return nil, fmt.Errorf("record %d field %s: %w", i, f.Name, err)
			}
			buf.Write(cell)
		}
	}
	buf.WriteByte(dbfEOF)

	return buf.Bytes(), nil
}

// dbfLayout picks the on-disk type and width for a field
func dbfLayout(f models.FieldDescriptor) dbfField {
	field := dbfField{Name: f.Name, Length: f.Length}
	switch f.Type {
	case models.Numeric:
		field.Type = 'N'
		if field.Length <= 0 {
			field.Length = defaultNumericLen
		}
	case models.Date:
		field.Type = 'D'
		field.Length = 8
	case models.Logical:
		field.Type = 'L'
		field.Length = 1
	default:
		field.Type = 'C'
		if field.Length <= 0 {
			field.Length = maxCharacterLength
		}
	}
	if field.Length > maxCharacterLength {
		field.Length = maxCharacterLength
	}
	return field
}

// format renders one value padded to the field width
func (f dbfField) format(value interface{}, candidate charset.Candidate) ([]byte, error) {
	cell := bytes.Repeat([]byte{' '}, f.Length)
	if value == nil {
		if f.Type == 'L' {
			cell[0] = '?'
		}
		return cell, nil
	}

	if b, ok := value.(bool); ok && f.Type == 'L' {
		value = "F"
		if b {
			value = "T"
		}
	}

	text, err := cast.ToStringE(value)
	if err != nil {
		return nil, err
	}
	encoded, err := candidate.Encode(text)
	if err != nil {
		return nil, err
	}
	if len(encoded) > f.Length {
		encoded = encoded[:f.Length]
		for candidate.Name == "utf-8" && !utf8.Valid(encoded) {
			encoded = encoded[:len(encoded)-1]
		}
	}

	if f.Type == 'N' {
		// Numbers are right aligned
		copy(cell[f.Length-len(encoded):], encoded)
		return cell, nil
	}
	copy(cell, encoded)
	return cell, nil
}
