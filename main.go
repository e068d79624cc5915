package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/yumyai/intfinder/internal/util"
	"github.com/yumyai/intfinder/logger"
	"github.com/yumyai/intfinder/pkg/config"
	"github.com/yumyai/intfinder/pkg/db"
	"github.com/yumyai/intfinder/pkg/finder"
	"github.com/yumyai/intfinder/pkg/infernal"
	"github.com/yumyai/intfinder/pkg/replicon"
	"github.com/yumyai/intfinder/pkg/results"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "modernc.org/sqlite"
)

const VERSION = "0.1.0"

func main() {

	var cfg config.Config
	var configFile string

	flag.StringVar(&configFile, "config", "", "path to a YAML config file")
	flag.StringVar(&cfg.Cmsearch, "cmsearch", "", "path to cmsearch if not in PATH")
	flag.StringVar(&cfg.ModelAttc, "attc-model", "", "path to the attC covariance model")
	flag.StringVar(&cfg.OutDir, "outdir", "", "output directory (default: current)")
	flag.IntVar(&cfg.DistanceThreshold, "distance-thresh", 0, "aggregation distance in bp (default 4000)")
	flag.Float64Var(&cfg.EvalueAttc, "evalue-attc", 0, "evalue threshold to filter out hits above it (default 1)")
	flag.IntVar(&cfg.MaxAttcSize, "max-attc-size", 0, "maximum attC size in bp (default 200)")
	flag.IntVar(&cfg.MinAttcSize, "min-attc-size", 0, "minimum attC size in bp (default 40)")
	flag.BoolVar(&cfg.KeepPalindromes, "keep-palindromes", false, "keep the palindromic version of a hit instead of dropping the worse one")
	flag.BoolVar(&cfg.LocalMax, "local-max", false, "thorough local detection (slower but more sensitive)")
	flag.IntVar(&cfg.CalinThreshold, "calin-threshold", 0, "drop CALIN integrons with fewer attC sites (default 2)")
	flag.BoolVar(&cfg.Circular, "circ", false, "default replicon topology: circular")
	flag.BoolVar(&cfg.Linear, "linear", false, "default replicon topology: linear")
	flag.StringVar(&cfg.TopologyFile, "topology-file", "", "per-replicon topology file")
	flag.IntVar(&cfg.CPU, "cpu", 0, "number of CPUs used by cmsearch (default 1)")
	flag.BoolVar(&cfg.SplitResults, "split-results", false, "keep per-replicon result files instead of merging")
	flag.BoolVar(&cfg.KeepTmp, "keep-tmp", false, "keep intermediate results in other_<replicon id>/")
	flag.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: intfinder [options] <replicon.fst>")
		flag.Usage()
		os.Exit(2)
	}
	repliconPath := flag.Arg(0)

	if configFile != "" {
		flagCfg := cfg // flags win over the file
		if err := cfg.LoadFile(configFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		mergeFlagOverrides(&cfg, &flagCfg)
	}
	cfg.Defaults()

	// Env overrides must land before anything derives a path from OutDir,
	// so INTFINDER_OUTDIR redirects the log and the result files alike.
	envErr := godotenv.Load()
	if err := finalizeConfig(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Establish logger
	logLevel := zapcore.InfoLevel
	if cfg.Verbose {
		logLevel = zapcore.DebugLevel
	}
	logFile := filepath.Join(cfg.OutDir, "integron_finder.out")
	if err := logger.InitLogger(logLevel, logFile); err != nil {
		panic(err)
	}
	defer logger.Sync() // Make sure that the buffered is flushed.

	if envErr != nil {
		logger.Warn("No .env found, using local environment")
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	if cfg.Cmsearch == "" {
		path, err := exec.LookPath("cmsearch")
		if err != nil {
			logger.Fatal("cannot find 'cmsearch' in PATH; install infernal or use --cmsearch")
		}
		cfg.Cmsearch = path
	}

	logger.Info("Start:", zap.String("Version", VERSION))
	logger.Info("Analysing replicon file", zap.String("path", repliconPath))

	seqs, err := replicon.ReadFasta(repliconPath)
	if err != nil {
		logger.Fatal("Cannot read replicon file", zap.Error(err))
	}
	if len(seqs) == 0 {
		logger.Fatal("No usable sequence in replicon file", zap.String("path", repliconPath))
	}

	// A lone sequence is assumed circular, a multi-fasta linear, unless
	// overridden on the command line or in the topology file.
	defaultTopo := replicon.TopoLinear
	if len(seqs) == 1 {
		defaultTopo = replicon.TopoCircular
	}
	if cfg.Linear {
		defaultTopo = replicon.TopoLinear
	} else if cfg.Circular {
		defaultTopo = replicon.TopoCircular
	}
	topo, err := replicon.NewTopology(defaultTopo, cfg.TopologyFile)
	if err != nil {
		logger.Fatal("Cannot read topology file", zap.Error(err))
	}
	replicon.Apply(seqs, topo, cfg.DistanceThreshold)

	f := &finder.Finder{Cfg: &cfg}
	if cfg.LocalMax {
		f.Searcher = &infernal.Cmsearch{
			Binary:       cfg.Cmsearch,
			OutDir:       cfg.OutDir,
			EvalueCutoff: cfg.EvalueAttc,
			MinAttcSize:  cfg.MinAttcSize,
			MaxAttcSize:  cfg.MaxAttcSize,
			KeepTmp:      cfg.KeepTmp,
		}
		cache, err := db.Open(filepath.Join(cfg.OutDir, "attc_max.db"))
		if err != nil {
			logger.Fatal("Cannot open max-search cache", zap.Error(err))
		}
		defer cache.Close()
		f.Cache = cache
	}

	var allIntegrons, allSummaries []string
	for no, rep := range seqs {
		logger.Info("############ Processing replicon ############",
			zap.String("replicon", rep.ID), zap.Int("n", no+1), zap.Int("of", len(seqs)))
		integronFile, summaryFile, err := f.ProcessReplicon(rep)
		if err != nil {
			// a failed external call aborts this replicon only
			logger.Error("Replicon analysis failed",
				zap.String("replicon", rep.ID), zap.Error(err))
			continue
		}
		allIntegrons = append(allIntegrons, integronFile)
		if summaryFile != "" {
			allSummaries = append(allSummaries, summaryFile)
		}
	}

	if !cfg.SplitResults {
		if err := mergeAll(&cfg, repliconPath, allIntegrons, allSummaries); err != nil {
			logger.Fatal("Merging results failed", zap.Error(err))
		}
	}
}

// finalizeConfig applies the environment overrides and makes sure the output
// directory exists before anything opens a file inside it.
func finalizeConfig(cfg *config.Config) error {
	cfg.ApplyEnv()
	if !util.DirExists(cfg.OutDir) {
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", cfg.OutDir, err)
		}
	}
	return nil
}

// mergeFlagOverrides re-applies the flag values on top of the config file.
func mergeFlagOverrides(cfg, flags *config.Config) {
	if flags.Cmsearch != "" {
		cfg.Cmsearch = flags.Cmsearch
	}
	if flags.ModelAttc != "" {
		cfg.ModelAttc = flags.ModelAttc
	}
	if flags.OutDir != "" {
		cfg.OutDir = flags.OutDir
	}
	if flags.DistanceThreshold != 0 {
		cfg.DistanceThreshold = flags.DistanceThreshold
	}
	if flags.EvalueAttc != 0 {
		cfg.EvalueAttc = flags.EvalueAttc
	}
	if flags.MaxAttcSize != 0 {
		cfg.MaxAttcSize = flags.MaxAttcSize
	}
	if flags.MinAttcSize != 0 {
		cfg.MinAttcSize = flags.MinAttcSize
	}
	if flags.CalinThreshold != 0 {
		cfg.CalinThreshold = flags.CalinThreshold
	}
	if flags.CPU != 0 {
		cfg.CPU = flags.CPU
	}
	if flags.TopologyFile != "" {
		cfg.TopologyFile = flags.TopologyFile
	}
	cfg.KeepPalindromes = cfg.KeepPalindromes || flags.KeepPalindromes
	cfg.LocalMax = cfg.LocalMax || flags.LocalMax
	cfg.Circular = cfg.Circular || flags.Circular
	cfg.Linear = cfg.Linear || flags.Linear
	cfg.SplitResults = cfg.SplitResults || flags.SplitResults
	cfg.KeepTmp = cfg.KeepTmp || flags.KeepTmp
	cfg.Verbose = cfg.Verbose || flags.Verbose
}

// mergeAll aggregates the per-replicon files into <input name>.integrons
// and <input name>.summary, then drops the per-replicon files.
func mergeAll(cfg *config.Config, repliconPath string, integronFiles, summaryFiles []string) error {
	logger.Info("Merging integrons results")
	base := filepath.Join(cfg.OutDir, util.NameFromPath(repliconPath))

	report, err := results.MergeReports(integronFiles...)
	if err != nil {
		return err
	}
	mergedIntegron := base + ".integrons"
	if err := results.WriteReportFile(mergedIntegron, report); err != nil {
		return err
	}

	mergedSummary := base + ".summary"
	if len(report) > 0 {
		rows, err := results.MergeSummaries(summaryFiles...)
		if err != nil {
			return err
		}
		if err := results.WriteSummaryFile(mergedSummary, rows); err != nil {
			return err
		}
	}

	for _, f := range append(append([]string{}, integronFiles...), summaryFiles...) {
		if f != mergedIntegron && f != mergedSummary {
			os.Remove(f)
		}
	}
	return nil
}
