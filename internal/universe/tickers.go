// Package universe loads the selectable ticker list. The file format
// is one entry per line, "Company Name (TICKER)"; bare tickers without
// parentheses are accepted too.
package universe

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Ticker is one selectable symbol with its display name
type Ticker struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// ParseLine parses one "Company Name (TICKER)" line. ok is false for
// blank lines.
func ParseLine(line string) (Ticker, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Ticker{}, false
	}

	lparen := strings.LastIndex(line, "(")
	rparen := strings.LastIndex(line, ")")
	if lparen >= 0 && rparen > lparen {
		symbol := strings.TrimSpace(line[lparen+1 : rparen])
		name := strings.TrimSpace(line[:lparen])
		if symbol != "" {
			return Ticker{Symbol: strings.ToUpper(symbol), Name: name}, true
		}
	}
	return Ticker{Symbol: strings.ToUpper(line), Name: line}, true
}

// Load reads a ticker list file
func Load(path string) ([]Ticker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticker list: %w", err)
	}
	defer f.Close()

	var tickers []Ticker
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if t, ok := ParseLine(scanner.Text()); ok {
			tickers = append(tickers, t)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ticker list: %w", err)
	}
	return tickers, nil
}
