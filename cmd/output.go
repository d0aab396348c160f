package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
)

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %v", err)
	}
	fmt.Println(string(data))
	return nil
}

func formatProbability(p float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, p)
}

// probabilityBar draws p as a bar of at most width cells.
func probabilityBar(p float64, width int) string {
	n := int(p*float64(width) + 0.5)
	if n < 0 {
		n = 0
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func printHeader(title string) {
	fmt.Printf("%s\n", title)
	fmt.Printf("═══════════════════════════════════════\n")
}
