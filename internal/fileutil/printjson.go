package fileutil

import (
	"encoding/json"
	"os"
)

// PrintJSON writes value to stdout as indented JSON.
func PrintJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
