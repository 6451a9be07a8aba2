// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package recipe

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"
)

const (
	recipeSchemaURL = "https://hopkg.dev/schemas/recipe.schema.json"
	testSchemaURL   = "https://hopkg.dev/schemas/test.schema.json"
)

var (
	//go:embed schema/recipe.schema.json
	recipeSchema []byte

	//go:embed schema/test.schema.json
	testSchema []byte

	compileOnce    sync.Once
	compiledRecipe *jsonschema.Schema
	compiledTest   *jsonschema.Schema
	compileErr     error
)

func compileSchemas() error {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		c.AssertFormat = true
		if err := c.AddResource(recipeSchemaURL, bytes.NewReader(recipeSchema)); err != nil {
			compileErr = fmt.Errorf("failed to add recipe schema: %w", err)
			return
		}
		if err := c.AddResource(testSchemaURL, bytes.NewReader(testSchema)); err != nil {
			compileErr = fmt.Errorf("failed to add test schema: %w", err)
			return
		}
		if compiledRecipe, compileErr = c.Compile(recipeSchemaURL); compileErr != nil {
			return
		}
		compiledTest, compileErr = c.Compile(testSchemaURL)
	})
	return compileErr
}

// ValidateRecipeYAML checks a package recipe document against the embedded schema.
func ValidateRecipeYAML(data []byte) error {
	if err := compileSchemas(); err != nil {
		return err
	}
	return validateYAML(compiledRecipe, data)
}

// ValidateTestYAML checks a test-package recipe document against the embedded schema.
func ValidateTestYAML(data []byte) error {
	if err := compileSchemas(); err != nil {
		return err
	}
	return validateYAML(compiledTest, data)
}

func validateYAML(s *jsonschema.Schema, data []byte) error {
	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("document is empty")
	}

	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %s", flattenValidationError(err))
	}
	return nil
}

// flattenValidationError reduces the nested jsonschema error tree to the leaf
// causes, which name the offending field.
func flattenValidationError(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}

	var msgs []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return strings.Join(msgs, "; ")
}
