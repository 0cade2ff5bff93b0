package results

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CSVSink appends records to a csv file, flushing after every record so an
// interrupted run loses nothing that was written.
type CSVSink struct {
	file      *os.File
	writer    *csv.Writer
	completed int
}

// OpenCSV opens the results file at `path`. When resuming, the rows already in
// the file are kept and counted, otherwise the file is truncated and gets a
// fresh header.
func OpenCSV(path string, resume bool) (*CSVSink, error) {
	if dir := filepath.Dir(path); dir != "" {
		err := os.MkdirAll(dir, 0777)
		if err != nil {
			return nil, err
		}
	}

	completed := 0
	if resume {
		count, err := countRows(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("count rows of %s: %w", path, err)
		}
		completed = count
	}

	sink := &CSVSink{completed: completed}
	if resume && completed > 0 {
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		sink.file = file
		sink.writer = csv.NewWriter(file)
		return sink, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	sink.file = file
	sink.writer = csv.NewWriter(file)
	err = sink.writeRow(Columns)
	if err != nil {
		file.Close()
		return nil, err
	}
	return sink, nil
}

// countRows returns the number of records in a results file, not counting
// the header.
func countRows(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows := 0
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		rows++
	}
	if rows == 0 {
		return 0, nil
	}
	return rows - 1, nil
}

func (s *CSVSink) writeRow(row []string) error {
	err := s.writer.Write(row)
	if err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVSink) Completed(ctx context.Context) (int, error) {
	return s.completed, nil
}

func (s *CSVSink) Write(ctx context.Context, record Record) error {
	err := s.writeRow(record.Row())
	if err != nil {
		return fmt.Errorf("write case %d: %w", record.CaseNum, err)
	}
	s.completed++
	return nil
}

func (s *CSVSink) Close() error {
	s.writer.Flush()
	err := s.writer.Error()
	closeErr := s.file.Close()
	if err != nil {
		return err
	}
	return closeErr
}

// ReadCSV reads a results file, returning its header and rows.
func ReadCSV(path string) (header []string, rows [][]string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", path)
	}
	return all[0], all[1:], nil
}
