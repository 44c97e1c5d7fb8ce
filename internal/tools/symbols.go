package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/morozRed/cortexact/internal/parser"
	"github.com/morozRed/cortexact/internal/search"
)

// ListSymbolsInput defines the input schema for the list_symbols tool.
type ListSymbolsInput struct {
	File  string `json:"file" jsonschema:"Path of the source file to inspect"`
	Query string `json:"query,omitempty" jsonschema:"Optional name fragment; ranks and filters symbols by relevance"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results when query is set (default 10)"`
}

// SymbolEntry describes one editable symbol.
type SymbolEntry struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Target    string `json:"target"`
	StartByte int    `json:"start_byte"`
	EndByte   int    `json:"end_byte"`
}

// NewListSymbolsHandler creates the list_symbols tool handler.
func NewListSymbolsHandler(deps *Dependencies) mcp.ToolHandlerFor[ListSymbolsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListSymbolsInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.File == "" {
			return ErrorResult("file is required", "Provide the path of the file to inspect"), nil, nil
		}

		file, err := deps.Registry.ExtractFile(input.File)
		if err != nil {
			return FromError(err), nil, nil
		}

		symbols := file.Symbols
		if input.Query != "" {
			symbols = rank(symbols, input.Query, input.Limit)
		}

		entries := make([]SymbolEntry, 0, len(symbols))
		for _, sym := range symbols {
			entries = append(entries, SymbolEntry{
				Name:      sym.Name,
				Kind:      sym.Kind.String(),
				Target:    sym.Key(),
				StartByte: sym.StartByte,
				EndByte:   sym.EndByte,
			})
		}
		return JSONResult(entries), nil, nil
	}
}

// rank orders symbols by relevance to query, dropping non-matches.
func rank(symbols []parser.Symbol, query string, limit int) []parser.Symbol {
	byKey := make(map[string]parser.Symbol, len(symbols))
	for _, sym := range symbols {
		if _, ok := byKey[sym.Key()]; !ok {
			byKey[sym.Key()] = sym
		}
	}
	var ranked []parser.Symbol
	for _, key := range search.Suggest(symbols, query, limit) {
		ranked = append(ranked, byKey[key])
	}
	return ranked
}
