package main

import (
	"encoding/json"
	"fmt"
	"io"
)

// outputJSON writes v as indented JSON
func outputJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
