package ingestion

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poiesic/attestor/core"
	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// frontMatter is the optional YAML header of a policy file.
type frontMatter struct {
	PolicyNumber string `yaml:"policy_number"`
	PolicyName   string `yaml:"policy_name"`
	Category     string `yaml:"category"`
}

// ParsePolicyFile builds a PolicyDocument from a policy file's name and bytes.
//
// The file may open with a YAML block delimited by "---" lines carrying
// policy_number, policy_name and category. Whatever follows the block is the
// document content. Category names are normalized with core.ParseCategory.
// A missing number or name falls back to the file name without its
// extension; a missing category falls back to defaultCategory.
// The returned document has no ID and has not been validated.
func ParsePolicyFile(name string, data []byte, defaultCategory core.Category) (*core.PolicyDocument, error) {
	meta, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	doc := &core.PolicyDocument{
		PolicyNumber: strings.TrimSpace(meta.PolicyNumber),
		PolicyName:   strings.TrimSpace(meta.PolicyName),
		Content:      body,
	}
	if strings.TrimSpace(meta.Category) != "" {
		doc.Category, err = core.ParseCategory(meta.Category)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if doc.PolicyNumber == "" {
		doc.PolicyNumber = stem
	}
	if doc.PolicyName == "" {
		doc.PolicyName = stem
	}
	if doc.Category == "" {
		doc.Category = defaultCategory
	}
	return doc, nil
}

func splitFrontMatter(data []byte) (frontMatter, string, error) {
	var meta frontMatter

	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	line, rest := nextLine(data)
	if !isDelimiter(line) {
		return meta, string(data), nil
	}

	header := rest
	headerLen := 0
	for {
		if len(rest) == 0 {
			return meta, "", ErrUnterminatedFrontMatter
		}
		line, rest = nextLine(rest)
		if isDelimiter(line) {
			break
		}
		headerLen = len(header) - len(rest)
	}

	if err := yaml.Unmarshal(header[:headerLen], &meta); err != nil {
		return meta, "", fmt.Errorf("front matter: %w", err)
	}
	return meta, strings.TrimLeft(string(rest), "\r\n"), nil
}

// nextLine splits data after the first newline. The returned line keeps no terminator.
func nextLine(data []byte) ([]byte, []byte) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return data, nil
	}
	return data[:i], data[i+1:]
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r")) == frontMatterDelimiter
}
