package cmd

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/corebuild.v1.schema.json
var schemaFS embed.FS

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the corebuild config file",
	Long: `Validates the corebuild config file against its JSON Schema, catching
typos and misplaced keys before they surface as a broken release.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	// The schema speaks JSON; round-trip the yaml document through
	// encoding/json first.
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert %s to JSON: %w", configPath, err)
	}

	schemaBytes, err := schemaFS.ReadFile("schemas/corebuild.v1.schema.json")
	if err != nil {
		return fmt.Errorf("failed to load embedded schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(jsonDoc),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		fmt.Printf("❌ %s is invalid:\n", configPath)
		for _, desc := range result.Errors() {
			fmt.Printf("  - %s\n", desc)
		}
		return fmt.Errorf("config validation failed")
	}

	fmt.Printf("✅ %s is valid\n", configPath)
	return nil
}
