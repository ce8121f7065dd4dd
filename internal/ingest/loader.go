package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"healthreport/internal/model"
)

// Columns is the fixed input layout. Fields are matched by position only;
// the header line is skipped, never interpreted.
var Columns = []string{
	"patient_id",
	"timestamp",
	"heart_rate",
	"blood_pressure_systolic",
	"blood_pressure_diastolic",
	"temperature",
	"glucose_level",
	"sensor_id",
}

const (
	patientIDWidth = 10
	timestampWidth = 20
	sensorIDWidth  = 10
)

var ErrWrongFieldCount = errors.New("wrong number of fields")

type LoadError struct {
	Path   string
	Line   int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("load")
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, ": line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %s", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func LoadFile(path string) (model.ReadingTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	table, err := Load(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	return table, nil
}

// Load parses the whole input or nothing: the first malformed row aborts.
func Load(r io.Reader) (model.ReadingTable, error) {
	scanner := bufio.NewScanner(r)
	table := model.ReadingTable{}
	lineNo := 0
	header := true
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if header {
			header = false
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		reading, err := ParseRecord(strings.Split(line, ","))
		if err != nil {
			var le *LoadError
			if errors.As(err, &le) {
				le.Line = lineNo
				return nil, le
			}
			return nil, &LoadError{Line: lineNo, Err: err}
		}
		table = append(table, reading)
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Line: lineNo, Err: err}
	}
	return table, nil
}

func ParseRecord(record []string) (model.Reading, error) {
	if len(record) != len(Columns) {
		return model.Reading{}, &LoadError{
			Err: fmt.Errorf("%w: got %d, want %d", ErrWrongFieldCount, len(record), len(Columns)),
		}
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}
	var r model.Reading
	var err error
	r.PatientID = truncate(record[0], patientIDWidth)
	r.Timestamp = truncate(record[1], timestampWidth)
	if r.HeartRate, err = parseInt(record, 2); err != nil {
		return model.Reading{}, err
	}
	if r.BloodPressureSystolic, err = parseInt(record, 3); err != nil {
		return model.Reading{}, err
	}
	if r.BloodPressureDiastolic, err = parseInt(record, 4); err != nil {
		return model.Reading{}, err
	}
	if r.Temperature, err = parseFloat(record, 5); err != nil {
		return model.Reading{}, err
	}
	if r.GlucoseLevel, err = parseInt(record, 6); err != nil {
		return model.Reading{}, err
	}
	r.SensorID = truncate(record[7], sensorIDWidth)
	return r, nil
}

func parseInt(record []string, idx int) (int, error) {
	v, err := strconv.ParseInt(record[idx], 10, 32)
	if err != nil {
		return 0, &LoadError{Column: Columns[idx], Err: err}
	}
	return int(v), nil
}

func parseFloat(record []string, idx int) (float64, error) {
	v, err := strconv.ParseFloat(record[idx], 64)
	if err != nil {
		return 0, &LoadError{Column: Columns[idx], Err: err}
	}
	return v, nil
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
