package addressbook

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Header is the first CSV record written by WriteCSV.
var Header = []string{"First Name", "Last Name", "Email", "Phone"}

// Query returns the joined contact rows of the database at path, ordered by
// last name, first name, email and phone with NULLs first.
func Query(path string) ([]Row, error) {
	rows, err := queryPath(path)
	if err != nil {
		return nil, fmt.Errorf("addressbook: %w", err)
	}
	return rows, nil
}

// WriteCSV writes Header followed by one record per row. Records end in CRLF
// and use RFC 4180 quoting; bytes inside a field, including CR and LF, are
// written unchanged.
func WriteCSV(w io.Writer, rows []Row) error {
	if err := writeRecords(w, rows); err != nil {
		return fmt.Errorf("addressbook: %w", err)
	}
	return nil
}

// writeRecords encodes each record on its own so only the record terminator
// becomes CRLF. csv.Writer.UseCRLF would also rewrite line breaks inside
// quoted fields.
func writeRecords(w io.Writer, rows []Row) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	write := func(record []string) error {
		buf.Reset()
		if err := writer.Write(record); err != nil {
			return err
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return err
		}
		line := buf.Bytes()
		line = append(line[:len(line)-1], '\r', '\n')
		_, err := w.Write(line)
		return err
	}

	if err := write(Header); err != nil {
		return fmt.Errorf("writing csv header failed: %w", err)
	}
	for _, row := range rows {
		if err := write(row.Record()); err != nil {
			return fmt.Errorf("writing csv row failed: %w", err)
		}
	}
	return nil
}

// Export writes the contacts of the database at dbPath to outPath as CSV and
// returns the number of data rows written. outPath is created or truncated;
// a failure mid-write leaves it incomplete.
func Export(dbPath string, outPath string) (int, error) {
	rows, err := queryPath(dbPath)
	if err != nil {
		return 0, &Error{Code: ErrorCodeExtraction, Err: err}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, &Error{Code: ErrorCodeExtraction, Message: "creating output", Err: err}
	}
	bw := bufio.NewWriter(f)
	if err := writeRecords(bw, rows); err != nil {
		f.Close()
		return 0, &Error{Code: ErrorCodeExtraction, Err: err}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return 0, &Error{Code: ErrorCodeExtraction, Message: "writing output", Err: err}
	}
	if err := f.Close(); err != nil {
		return 0, &Error{Code: ErrorCodeExtraction, Message: "closing output", Err: err}
	}
	return len(rows), nil
}
