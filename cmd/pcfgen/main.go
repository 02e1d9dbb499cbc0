// Command pcfgen converts a CAD component export into an isometric exchange
// text, enriching each component from the project reference sheets.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/isotools/pcfgen/internal/config"
	"github.com/isotools/pcfgen/internal/csvio"
	"github.com/isotools/pcfgen/internal/linelist"
	"github.com/isotools/pcfgen/internal/material"
	"github.com/isotools/pcfgen/internal/models"
	"github.com/isotools/pcfgen/internal/pipeline"
	"github.com/isotools/pcfgen/internal/store"
	"github.com/isotools/pcfgen/internal/warn"
	"github.com/isotools/pcfgen/internal/weight"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	flagConfig  string
	flagDataDir string
	flagVerbose bool

	flagComponents  string
	flagLinelist    string
	flagClassMaster string
	flagMaterialMap string
	flagWeights     string
	flagOutput      string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "pcfgen",
		Short:   "Convert piping component exports to isometric exchange text",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "conversion config YAML (defaults are built in)")
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "./data", "directory for persisted smart mappings")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")

	convert := &cobra.Command{
		Use:   "convert",
		Short: "Run a conversion",
		RunE:  runConvert,
	}
	convert.Flags().StringVar(&flagComponents, "components", "", "component export CSV (required)")
	convert.Flags().StringVar(&flagLinelist, "linelist", "", "process linelist CSV")
	convert.Flags().StringVar(&flagClassMaster, "class-master", "", "piping class master CSV")
	convert.Flags().StringVar(&flagMaterialMap, "material-map", "", "material code map CSV")
	convert.Flags().StringVar(&flagWeights, "weight-master", "", "weight/rigid master CSV")
	convert.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (default stdout)")
	cobra.CheckErr(convert.MarkFlagRequired("components"))
	root.AddCommand(convert)

	mappings := &cobra.Command{
		Use:   "mappings",
		Short: "Inspect or reset the persisted smart mappings",
	}
	mappings.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the persisted smart mappings",
		RunE:  runMappingsShow,
	})
	mappings.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear the persisted smart mappings",
		RunE:  runMappingsReset,
	})
	root.AddCommand(mappings)
	return root
}

func newLogger() (*zap.Logger, error) {
	if flagVerbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadConfig() (*config.Config, error) {
	if flagConfig == "" {
		return config.Default(), nil
	}
	return config.Load(flagConfig)
}

func runConvert(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sink := warn.NewZapSink(log)
	mappingStore := store.NewFileMappingStore(flagDataDir)

	ll := linelist.NewService(cfg, sink, mappingStore)
	if err := ll.LoadPersistedMappings(); err != nil {
		return fmt.Errorf("load persisted mappings: %w", err)
	}
	if flagLinelist != "" {
		cells, err := readSheetFile(flagLinelist)
		if err != nil {
			return err
		}
		ll.LoadSheet(cells)
		log.Info("linelist loaded",
			zap.Int("headerRow", ll.HeaderRow()),
			zap.Int("rows", len(ll.Rows())))
	}

	classMaster, err := readRefTableFile(flagClassMaster)
	if err != nil {
		return err
	}
	materialMap, err := readRefTableFile(flagMaterialMap)
	if err != nil {
		return err
	}
	weightMaster, err := readRefTableFile(flagWeights)
	if err != nil {
		return err
	}

	mat := material.NewService(cfg, sink, classMaster, materialMap)
	wt := weight.NewService(cfg, weightMaster)

	records, issues, err := readComponentsFile(flagComponents)
	if err != nil {
		return err
	}
	for _, issue := range issues {
		log.Warn("component row skipped",
			zap.Int("line", issue.Line),
			zap.String("reason", issue.Reason))
	}

	converter := pipeline.NewConverter(cfg, ll, mat, wt, sink)
	result := converter.Run(records)

	out := os.Stdout
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := pipeline.WriteBlocks(out, result); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	log.Info("conversion complete",
		zap.String("run", result.RunID),
		zap.Int("components", len(result.Blocks)),
		zap.Int("orphans", len(result.Orphans)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Duration("elapsed", result.Elapsed))
	return nil
}

func runMappingsShow(cmd *cobra.Command, args []string) error {
	mappingStore := store.NewFileMappingStore(flagDataDir)
	mappings, err := mappingStore.Load()
	if err != nil {
		return err
	}
	if len(mappings) == 0 {
		fmt.Println("no persisted smart mappings")
		return nil
	}
	attrs := make([]string, 0, len(mappings))
	for attr := range mappings {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	for _, attr := range attrs {
		fmt.Printf("%-16s -> %s\n", attr, mappings[attr])
	}
	return nil
}

func runMappingsReset(cmd *cobra.Command, args []string) error {
	mappingStore := store.NewFileMappingStore(flagDataDir)
	if err := mappingStore.Reset(); err != nil {
		return err
	}
	fmt.Println("persisted smart mappings cleared")
	return nil
}

func readComponentsFile(path string) ([]*models.ComponentRecord, []csvio.RowIssue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open components: %w", err)
	}
	defer f.Close()
	return csvio.ReadComponents(f)
}

func readSheetFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer f.Close()
	return csvio.ReadSheet(f)
}

// readRefTableFile loads a reference table, tolerating an unset path: the
// corresponding service then simply resolves nothing.
func readRefTableFile(path string) (*models.RefTable, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference table: %w", err)
	}
	defer f.Close()
	return csvio.ReadRefTable(f)
}
