package engine

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"dotvest/internal/model"
)

// ReadGenesis parses a genesis document from a JSON file.
func ReadGenesis(path string) (model.Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Genesis{}, fmt.Errorf("read genesis: %w", err)
	}
	var g model.Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return model.Genesis{}, fmt.Errorf("parse genesis: %w", err)
	}
	return g, nil
}

// ReadInstructions parses a JSONL instruction stream. Blank lines are
// skipped; a malformed line fails the whole read with its line number,
// since silently dropping settlement requests is worse than stopping.
func ReadInstructions(path string) ([]model.Instruction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open instructions: %w", err)
	}
	defer file.Close()

	var out []model.Instruction
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var instr model.Instruction
		if err := json.Unmarshal(line, &instr); err != nil {
			return nil, fmt.Errorf("parse instruction at line %d: %w", lineNo, err)
		}
		out = append(out, instr)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan instructions: %w", err)
	}
	return out, nil
}
