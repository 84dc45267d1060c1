package main

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"insndecode/internal/config"
	"insndecode/internal/decoder/builder"
	"insndecode/internal/decoder/spec"
	"insndecode/internal/decoder/tristate"
	"insndecode/internal/emitter"
	"insndecode/internal/langparse"
	"insndecode/internal/logging"
	"insndecode/internal/reachability"
)

func newGenerateCmd() *cobra.Command {
	var (
		specPath   string
		configPath string
		outPath    string
		fixedFlags []string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Parse a specification and emit a decoder",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(specPath, configPath, outPath, fixedFlags, verbose)
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "path to the .rules specification file (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a JSON config file (defaults used if empty)")
	cmd.Flags().StringVar(&outPath, "out", "", "output path for generated source (stdout if empty)")
	cmd.Flags().StringSliceVar(&fixedFlags, "fixed-flags", nil, "names of flags to fix true before building the tree")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	cmd.MarkFlagRequired("spec")

	return cmd
}

func runGenerate(specPath, configPath, outPath string, fixedFlagNames []string, verbose bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return errors.Wrap(err, "generate")
		}
		cfg = loaded
	}
	cfg.Verbose = cfg.Verbose || verbose

	log := logging.New(&cfg)

	f, err := os.Open(specPath)
	if err != nil {
		return errors.Wrap(err, "generate: opening spec")
	}
	defer f.Close()

	doneParse := log.Stage("parse")
	s, err := langparse.Parse(f)
	doneParse()
	if err != nil {
		return errors.Wrap(err, "generate: parsing spec")
	}
	*s.Config = cfg

	fixed, err := resolveFixedFlags(s, fixedFlagNames)
	if err != nil {
		return errors.Wrap(err, "generate")
	}

	doneBuild := log.Stage("build")
	tree := builder.BuildTree(s, fixed)
	doneBuild()

	var wg sync.WaitGroup
	var warnings []reachability.Warning
	wg.Add(1)
	go func() {
		defer wg.Done()
		warnings = reachability.Check(s, tree)
	}()

	out := os.Stdout
	if outPath != "" {
		file, err := os.Create(outPath)
		if err != nil {
			return errors.Wrap(err, "generate: creating output")
		}
		defer file.Close()
		out = file
	}

	doneEmit := log.Stage("emit")
	err = emitter.Emit(out, s, tree, "word", "flags")
	doneEmit()
	if err != nil {
		return errors.Wrap(err, "generate: emitting")
	}

	wg.Wait()
	for _, w := range warnings {
		log.Warn(w.String())
	}

	return nil
}

func resolveFixedFlags(s *spec.Specification, names []string) (*tristate.Array, error) {
	flags := tristate.New(s.FlagWidth())
	for _, name := range names {
		f, ok := s.GetFlagByName(name)
		if !ok {
			return nil, errors.Errorf("unknown flag %q in --fixed-flags", name)
		}
		flags.SetBit(f.Index(), true)
	}
	return flags, nil
}
