package segmenter

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrFrontMatter reports an unterminated or unparsable front-matter block.
var ErrFrontMatter = errors.New("malformed front-matter")

const fence = "---"

// splitFrontMatter separates the YAML header from the body. Documents without
// a header return empty metadata and the whole content as body. Scalar values
// are kept as strings under lower-cased keys.
func splitFrontMatter(content string) (map[string]string, string, error) {
	s := strings.TrimPrefix(content, "\ufeff")
	first, rest, _ := strings.Cut(s, "\n")
	if strings.TrimSpace(first) != fence {
		return map[string]string{}, s, nil
	}

	var header []string
	for {
		line, tail, found := strings.Cut(rest, "\n")
		if strings.TrimSpace(line) == fence {
			rest = tail
			break
		}
		if !found {
			return nil, "", fmt.Errorf("%w: missing closing %q", ErrFrontMatter, fence)
		}
		header = append(header, line)
		rest = tail
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(header, "\n")), &raw); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch sv := v.(type) {
		case string:
			out[strings.ToLower(k)] = sv
		case int, int64, float64, bool:
			out[strings.ToLower(k)] = fmt.Sprint(sv)
		}
	}
	return out, rest, nil
}
