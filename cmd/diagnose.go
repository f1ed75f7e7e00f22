package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roso1102/reboard/internal/diagnose"
	"github.com/roso1102/reboard/internal/model"
	"github.com/roso1102/reboard/internal/report"
	"github.com/roso1102/reboard/pkg/diagai"
)

var (
	diagName     string
	diagModel    string
	diagCategory string
	diagData     string
	diagPhoto    string
	diagPrice    int
	diagQuantity int
	diagSeller   string
	diagLocation string
	diagList     bool
	diagReport   string
	diagBatch    string
	diagWorkers  int
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Grade a component from uploaded test data",
	Long:  "Interprets layer test data (or falls back to heuristics), grades the component and adds it to the catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer e.Close()

		if diagBatch != "" {
			return runBatchDiagnose(ctx, e)
		}
		if diagName == "" && diagPhoto == "" {
			return eris.New("--name or --photo is required")
		}

		c, err := diagnoseOne(ctx, e, diagName, diagModel, diagCategory, diagData, diagPhoto)
		if err != nil {
			return err
		}

		if diagReport != "" {
			f, err := os.Create(diagReport)
			if err != nil {
				return eris.Wrap(err, "create report file")
			}
			defer f.Close()
			circuit := circuitFor(ctx, e, c.Name, c.ModelName)
			if err := report.RenderHTML(f, c, &circuit); err != nil {
				return err
			}
			zap.L().Info("report written", zap.String("path", diagReport))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	},
}

// diagnoseOne grades a single component and adds it to the catalog. The
// external adapter is tried first when configured; any failure there
// silently degrades to the local path. A photo prefills name, model and
// category when the caller left them blank.
func diagnoseOne(ctx context.Context, e *env, name, modelName, category, dataPath, photoPath string) (*model.Component, error) {
	testData := ""
	if dataPath != "" {
		raw, err := os.ReadFile(dataPath)
		if err != nil {
			return nil, eris.Wrapf(err, "read test data %s", dataPath)
		}
		testData = string(raw)
	}
	photo, err := encodePhoto(photoPath)
	if err != nil {
		return nil, err
	}

	identifyFromPhoto(ctx, e, photo, &name, &modelName, &category)
	if name == "" {
		return nil, eris.New("component name required: none given and the photo was not identified")
	}
	if category == "" {
		category = e.parts.InferCategory(name)
	}

	var result model.DiagnosticResult
	external := false
	if e.adapter.Available() {
		if r := e.adapter.Diagnose(ctx, diagai.Meta{
			ComponentType: name,
			ModelName:     modelName,
			Category:      category,
		}, preview(testData), photo); r != nil {
			result = *r
			external = true
		}
	}
	if !external {
		result = e.grader.Grade(diagnose.Meta{Name: name, ModelName: modelName, Category: category}, testData)
	}

	return e.market.AddComponent(ctx, model.Component{
		Name:       name,
		ModelName:  modelName,
		Category:   category,
		Price:      diagPrice,
		Quantity:   diagQuantity,
		Seller:     diagSeller,
		Location:   diagLocation,
		Diagnostic: result,
	}, diagList)
}

// runBatchDiagnose grades every JSON file in a directory concurrently.
// File name (without extension) becomes the component name.
func runBatchDiagnose(ctx context.Context, e *env) error {
	entries, err := os.ReadDir(diagBatch)
	if err != nil {
		return eris.Wrapf(err, "read batch dir %s", diagBatch)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(diagWorkers)

	done := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(diagBatch, entry.Name())
		name := strings.TrimSuffix(entry.Name(), ".json")
		done++

		g.Go(func() error {
			c, err := diagnoseOne(ctx, e, name, "", "", path, "")
			if err != nil {
				return eris.Wrapf(err, "diagnose %s", name)
			}
			zap.L().Info("batch component graded",
				zap.String("name", c.Name),
				zap.String("grade", string(c.Diagnostic.Grade)),
				zap.Int("reusability", c.Diagnostic.Reusability),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "graded %d components\n", done)
	return nil
}

// encodePhoto reads an image file into a data URL for the adapter.
func encodePhoto(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "read photo %s", path)
	}
	mediaType := mime.TypeByExtension(filepath.Ext(path))
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// preview trims test data to a size safe to inline in a prompt.
func preview(testData string) string {
	const max = 2000
	if len(testData) > max {
		return testData[:max]
	}
	return testData
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagName, "name", "", "component name (e.g. ESP32-WROOM-32)")
	diagnoseCmd.Flags().StringVar(&diagModel, "model", "", "model identifier")
	diagnoseCmd.Flags().StringVar(&diagCategory, "category", "", "category (inferred from name when empty)")
	diagnoseCmd.Flags().StringVar(&diagData, "data", "", "path to layer test data JSON")
	diagnoseCmd.Flags().StringVar(&diagPhoto, "photo", "", "path to a component photo")
	diagnoseCmd.Flags().IntVar(&diagPrice, "price", 0, "listing price in INR")
	diagnoseCmd.Flags().IntVar(&diagQuantity, "quantity", 1, "units available")
	diagnoseCmd.Flags().StringVar(&diagSeller, "seller", "", "seller name")
	diagnoseCmd.Flags().StringVar(&diagLocation, "location", "", "seller location")
	diagnoseCmd.Flags().BoolVar(&diagList, "list", false, "list on the marketplace immediately")
	diagnoseCmd.Flags().StringVar(&diagReport, "report", "", "write an HTML report to this path")
	diagnoseCmd.Flags().StringVar(&diagBatch, "batch", "", "grade every JSON file in this directory")
	diagnoseCmd.Flags().IntVar(&diagWorkers, "workers", 4, "concurrent workers for --batch")
	rootCmd.AddCommand(diagnoseCmd)
}
