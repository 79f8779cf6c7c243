package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

var stdout io.Writer = os.Stdout

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(stdout, string(data))
	return err
}
