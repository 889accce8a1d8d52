package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		dataPath string
		output   outputOptions
	)

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a template against a JSON or YAML data file",
		Example: `  printtmpl render member.xml --data member.json
  printtmpl render member.xml --data member.yaml --full -o member.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.newEngine(cmd)
			if err != nil {
				return err
			}
			src, err := readTemplate(args[0])
			if err != nil {
				return err
			}

			data := map[string]interface{}{}
			if dataPath != "" {
				if data, err = loadData(dataPath); err != nil {
					return err
				}
			}

			result, err := engine.RenderXML(src, data)
			if err != nil {
				return err
			}
			return output.write(cmd.OutOrStdout(), opts.jsonOutput, result)
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Data file (.json, .yaml or .yml)")
	cmd.Flags().BoolVar(&output.full, "full", false, "Wrap the output in a printable HTML page")
	cmd.Flags().BoolVar(&output.minifyCSS, "minify-css", false, "Minify the template stylesheet")
	cmd.Flags().StringVarP(&output.outPath, "out", "o", "", "Write the output to a file instead of stdout")
	return cmd
}

// loadData reads a data context. JSON numbers are kept as json.Number so
// large integers and decimals survive unchanged.
func loadData(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	data := map[string]interface{}{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&data); err != nil {
			return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported data file %s: expected .json, .yaml or .yml", path)
	}
	return data, nil
}
