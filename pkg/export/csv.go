// Package export writes a result set to a delimited text file.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/Sternrassler/restaurant-export/pkg/search"
)

// Header is the first row of every export.
var Header = []string{"Name", "Address"}

// Write encodes the header row followed by one row per record.
// Rows end in CRLF; fields containing commas, quotes or newlines are quoted.
func Write(w io.Writer, records search.ResultSet) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		if err := cw.Write([]string{rec.Name, rec.Address}); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteCSV creates (or truncates) the file at path and writes records to it.
// A partially written file is left in place on error.
func WriteCSV(path string, records search.ResultSet) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if err := Write(f, records); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
