package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.trai.ch/cmdrule/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// parsedFile is a decoded rule file together with the source line of each
// rule and subdirectory entry. Lines are 0 for formats that do not report them.
type parsedFile struct {
	rulefile    Rulefile
	ruleLines   []int
	subdirLines []int
}

func (p *parsedFile) ruleLine(i int) int {
	if i < len(p.ruleLines) {
		return p.ruleLines[i]
	}
	return 0
}

func (p *parsedFile) subdirLine(i int) int {
	if i < len(p.subdirLines) {
		return p.subdirLines[i]
	}
	return 0
}

// readRulefile reads and decodes a rule file, choosing the decoder by extension.
func readRulefile(path string) (*parsedFile, error) {
	// #nosec G304 -- path is discovered by the loader
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "file", path)
	}

	var parsed *parsedFile
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		parsed, err = decodeYAML(data)
	case ".toml":
		parsed, err = decodeTOML(data)
	default:
		return nil, zerr.With(domain.ErrUnsupportedFormat, "file", path)
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "file", path)
	}
	return parsed, nil
}

func decodeYAML(data []byte) (*parsedFile, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	parsed := &parsedFile{}
	if len(doc.Content) == 0 {
		return parsed, nil
	}

	root := doc.Content[0]
	if err := root.Decode(&parsed.rulefile); err != nil {
		return nil, err
	}

	if root.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, value := root.Content[i], root.Content[i+1]
			if value.Kind != yaml.SequenceNode {
				continue
			}
			switch key.Value {
			case "rules":
				parsed.ruleLines = itemLines(value)
			case "subdirectories":
				parsed.subdirLines = itemLines(value)
			}
		}
	}
	return parsed, nil
}

func itemLines(seq *yaml.Node) []int {
	lines := make([]int, len(seq.Content))
	for i, item := range seq.Content {
		lines[i] = item.Line
	}
	return lines
}

func decodeTOML(data []byte) (*parsedFile, error) {
	parsed := &parsedFile{}
	if _, err := toml.Decode(string(data), &parsed.rulefile); err != nil {
		return nil, err
	}
	return parsed, nil
}
