package prompt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
)

// LoadFromDirectory loads prompts and schemas from baseDir into the global
// registry. Expected structure:
//
//	baseDir/
//	  prompts/
//	    category1/
//	      prompt1.json
//	  schemas/
//	    schema1.json
func LoadFromDirectory(baseDir string) error {
	return Get().LoadFromFS(os.DirFS(baseDir))
}

// LoadFromFS loads prompts/ and schemas/ from fsys. Later loads override
// earlier entries with the same ID.
func (r *Registry) LoadFromFS(fsys fs.FS) error {
	if err := r.loadPrompts(fsys, "prompts"); err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}
	if err := r.loadSchemas(fsys, "schemas"); err != nil {
		return fmt.Errorf("failed to load schemas: %w", err)
	}
	return nil
}

func (r *Registry) loadPrompts(fsys fs.FS, dir string) error {
	if _, err := fs.Stat(fsys, dir); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("prompts directory not found: %s", dir)
	}

	return fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".json" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		var pt PromptTemplate
		if err := json.Unmarshal(data, &pt); err != nil {
			return fmt.Errorf("failed to parse %s: %w", p, err)
		}

		// Auto-generate ID from path if not specified
		if pt.ID == "" {
			pt.ID = generateIDFromPath(p, dir)
		}
		if pt.Category == "" {
			pt.Category = detectCategory(p, dir)
		}

		return r.Register(&pt)
	})
}

// Schema files hold the JSON Schema itself; the file name is the ID.
func (r *Registry) loadSchemas(fsys fs.FS, dir string) error {
	if _, err := fs.Stat(fsys, dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".json" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read schema %s: %w", p, err)
		}
		if !json.Valid(data) {
			return fmt.Errorf("schema %s is not valid JSON", p)
		}

		id := strings.TrimSuffix(path.Base(p), ".json")
		return r.RegisterSchema(&ResponseSchema{ID: id, Name: id, JSONSchema: string(data)})
	})
}

// generateIDFromPath turns "prompts/valuation/narrative.json" into "valuation.narrative".
func generateIDFromPath(p string, baseDir string) string {
	rel := strings.TrimPrefix(p, baseDir+"/")
	rel = strings.TrimSuffix(rel, ".json")
	return strings.ReplaceAll(rel, "/", ".")
}

func detectCategory(p string, baseDir string) string {
	parts := strings.Split(strings.TrimPrefix(p, baseDir+"/"), "/")
	if len(parts) > 1 {
		return parts[0]
	}
	return "default"
}

var templateFuncs = template.FuncMap{
	"comma": func(v float64) string { return humanize.Commaf(v) },
}

// RenderUserPrompt executes the user prompt template with the given context
func RenderUserPrompt(pt *PromptTemplate, ctx *PromptExecutionContext) (string, error) {
	if pt.UserPromptTmpl == "" {
		return "", nil
	}
	if ctx == nil {
		ctx = NewContext()
	}
	vars := make(map[string]interface{}, len(pt.Variables)+len(ctx.Variables))
	for _, v := range pt.Variables {
		if v.Default != "" {
			vars[v.Name] = v.Default
		}
	}
	for k, v := range ctx.Variables {
		vars[k] = v
	}
	for _, v := range pt.Variables {
		if _, ok := vars[v.Name]; v.Required && !ok {
			return "", fmt.Errorf("missing required variable %s", v.Name)
		}
	}

	tmpl, err := template.New(pt.ID).Funcs(templateFuncs).Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
