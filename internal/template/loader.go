package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stemsi/survey-seeder/internal/model"
)

// LoadDir reads every *.json file in dir. A file holds either one template
// object or an array of templates. Files are read in name order.
func LoadDir(dir string) ([]model.SurveyTemplate, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	sort.Strings(paths)

	var out []model.SurveyTemplate
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		templates, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", filepath.Base(p), err)
		}
		out = append(out, templates...)
	}
	return out, nil
}

// Decode parses one template or an array of templates. Unknown fields are rejected.
func Decode(raw []byte) ([]model.SurveyTemplate, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	if strings.HasPrefix(string(trimmed), "[") {
		var many []model.SurveyTemplate
		if err := dec.Decode(&many); err != nil {
			return nil, err
		}
		return many, nil
	}

	var one model.SurveyTemplate
	if err := dec.Decode(&one); err != nil {
		return nil, err
	}
	return []model.SurveyTemplate{one}, nil
}

// LoadStore builds a store from the built-in templates plus any found in dir.
// An empty dir means built-ins only.
func LoadStore(dir string) (*Store, error) {
	templates := Builtin()
	if dir != "" {
		extra, err := LoadDir(dir)
		if err != nil {
			return nil, err
		}
		templates = append(templates, extra...)
	}
	return NewStore(templates...)
}
