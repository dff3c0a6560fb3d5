package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/chumyin/zeroclaw/internal/sandbox"
)

// ctxBackground is the context blocking rebuilds and OAuth exchanges run
// under; the dispatcher has no longer-lived request context to thread
// through a one-shot CLI invocation.
func ctxBackground() context.Context {
	return context.Background()
}

// emitJSON writes report as a single indented JSON document to stdout,
// matching the "--json mode sends all diagnostic text to stderr; stdout
// carries a single JSON document" contract.
func emitJSON(report interface{}) error {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	fmt.Println(string(payload))
	return nil
}

// emitHuman prints human-readable lines to stdout, one per slice entry.
func emitHuman(lines []string) {
	for _, line := range lines {
		fmt.Println(line)
	}
}

// requireDryRunForJSON enforces "--json requires --dry-run for mutating
// commands": every mutating command in this CLI accepts --json only when
// --dry-run is also set.
func requireDryRunForJSON(command string, jsonMode, dryRun bool) error {
	if jsonMode && !dryRun {
		return fmt.Errorf("%s --json requires --dry-run", command)
	}
	return nil
}

// writeJSONFile marshals v and writes it to path via the atomic-write
// contract, announcing the auxiliary write on stderr as the machine-JSON
// mode requires for any write beyond the primary report.
func writeJSONFile(path string, v interface{}) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	payload = append(payload, '\n')
	if err := sandbox.AtomicWriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	return nil
}

// readLine prompts on stderr (stdout is reserved for JSON reports) and
// reads a single line from stdin, trimming the trailing newline. An empty
// line is a valid answer (the caller treats it as "use the default").
func readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
