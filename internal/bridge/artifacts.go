package bridge

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"codebridge/internal/decode"
)

// readComponentsDir walks outputBase and concatenates the component lists of
// every JSON artifact the engine wrote under it. WalkDir visits entries in
// lexical order, so the concatenation is deterministic regardless of nesting
// depth.
func readComponentsDir(op, outputBase string) ([]decode.Component, error) {
	var out []decode.Component

	err := filepath.WalkDir(outputBase, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		comps, err := decode.Components(string(data))
		if err != nil {
			return &Error{Kind: KindDecodeFailure, Op: op, Path: path, Output: decode.Excerpt(string(data)), Err: err}
		}
		out = append(out, comps...)
		return nil
	})
	if err != nil {
		if be, ok := err.(*Error); ok {
			return nil, be
		}
		return nil, &Error{Kind: KindUnknown, Op: op, Path: outputBase, Err: err}
	}
	return out, nil
}
