package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/datascope/datascope/internal/domain"
)

// loadDataset reads a JSON array of flat objects and shapes it into the
// Dataset contract. "-" reads stdin.
func loadDataset(path string) (domain.Dataset, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return domain.FromRows(rows), nil
}

// printJSON writes the result to stdout, indented for humans.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
