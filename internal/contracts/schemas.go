package contracts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"roomfinder/internal/core/domain"
	"roomfinder/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	if err := compileAll(schemas.SchemasFS); err != nil {
		panic(fmt.Sprintf("contracts: %v", err))
	}
}

// compileAll регистрирует все схемы из forms/ и компилирует их.
func compileAll(fsys fs.FS) error {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	var paths []string
	err := fs.WalkDir(fsys, "forms", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		file, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := compiler.AddResource(path, file); err != nil {
			return fmt.Errorf("failed to add schema resource %s: %w", path, err)
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error walking schema resources: %w", err)
	}

	for _, path := range paths {
		schema, err := compiler.Compile(path)
		if err != nil {
			return fmt.Errorf("could not compile schema %s: %w", path, err)
		}
		compiledSchemas[generateKeyFromPath(path)] = schema
	}
	return nil
}

// generateKeyFromPath: "forms/room-form/v1.json" -> "RoomForm/1.0.0".
func generateKeyFromPath(path string) string {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(path, "forms/"), ".json")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 {
		return ""
	}

	caser := cases.Title(language.English)
	var name strings.Builder
	for _, p := range strings.Split(parts[0], "-") {
		name.WriteString(caser.String(p))
	}

	version := strings.Replace(parts[1], "v", "", 1) + ".0.0"
	return name.String() + "/" + version
}

// validateForm проверяет значение по схеме формы и возвращает ошибки по полям.
// messages подменяет сообщения библиотеки для известных полей.
func validateForm(key string, form any, messages map[string]string) map[string]string {
	schema, ok := compiledSchemas[key]
	if !ok {
		return map[string]string{"form": fmt.Sprintf("schema %s not found", key)}
	}

	raw, err := json.Marshal(form)
	if err != nil {
		return map[string]string{"form": err.Error()}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return map[string]string{"form": err.Error()}
	}

	err = schema.Validate(v)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return map[string]string{"form": err.Error()}
	}

	fields := make(map[string]string)
	collectLeaves(ve, func(leaf *jsonschema.ValidationError) {
		field := fieldFromLocation(leaf.InstanceLocation)
		if _, seen := fields[field]; seen {
			return
		}
		if msg, ok := messages[field]; ok {
			fields[field] = msg
			return
		}
		fields[field] = leaf.Message
	})
	return fields
}

func collectLeaves(ve *jsonschema.ValidationError, fn func(*jsonschema.ValidationError)) {
	if len(ve.Causes) == 0 {
		fn(ve)
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, fn)
	}
}

// fieldFromLocation: "/images/0" -> "images", "" -> "form".
func fieldFromLocation(loc string) string {
	loc = strings.TrimPrefix(loc, "/")
	if loc == "" {
		return "form"
	}
	if i := strings.IndexByte(loc, '/'); i >= 0 {
		loc = loc[:i]
	}
	return loc
}

func fieldErrors(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return domain.NewValidationError(fields)
}

// SchemaKeys - зарегистрированные схемы, отсортированные.
func SchemaKeys() []string {
	keys := make([]string, 0, len(compiledSchemas))
	for k := range compiledSchemas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
