package searchcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quill-ml/quill/beam"
	"github.com/quill-ml/quill/internal/bigram"
	"github.com/quill-ml/quill/internal/logging"
	"github.com/quill-ml/quill/sample"
)

const searchLongDesc string = `Search for the most probable continuations of a prompt.

Beam search expands the most likely bigram successors of each hypothesis
and keeps the highest-scoring ones. With --diverse, groups run one after
another and later groups are penalized for repeating earlier choices, so
the results spread out instead of clustering around one continuation.

Examples:
  quill search --corpus corpus.txt --prompt "The quick"
  quill search -f corpus.txt -p "Once upon" --beam-width 5 --all
  quill search -f corpus.txt --diverse --groups 3 --group-size 2 --penalty 0.8`

const searchShortDesc string = "Beam search for likely continuations"

type searchCommander struct {
	corpusPath string
	configPath string
	encoding   string
	prompt     string
	maxTokens  int
	beamWidth  int
	branching  int
	diverse    bool
	groups     int
	groupSize  int
	penalty    float64
	all        bool
	debug      bool
}

// phraseState is one partial continuation: the token path so far and the
// target length.
type phraseState struct {
	path []int
	goal int
}

func (s phraseState) Done() bool {
	return len(s.path) >= s.goal
}

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.corpusPath, "corpus", "f", "", "Path to the corpus text file")
	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to a YAML sampling config")
	cmd.Flags().StringVar(&cmder.encoding, "encoding", "cl100k_base", "tiktoken encoding name")
	cmd.Flags().StringVarP(&cmder.prompt, "prompt", "p", "The", "Prompt to continue")
	cmd.Flags().IntVarP(&cmder.maxTokens, "max-tokens", "n", 10, "Number of tokens to search for")
	cmd.Flags().IntVarP(&cmder.beamWidth, "beam-width", "w", 0, "Beam width")
	cmd.Flags().IntVar(&cmder.branching, "branching", 8, "Successors expanded per hypothesis")
	cmd.Flags().BoolVar(&cmder.diverse, "diverse", false, "Run diverse beam search")
	cmd.Flags().IntVar(&cmder.groups, "groups", 0, "Number of diverse groups")
	cmd.Flags().IntVar(&cmder.groupSize, "group-size", 0, "Beam width per diverse group")
	cmd.Flags().Float64Var(&cmder.penalty, "penalty", -1, "Diversity penalty per token collision")
	cmd.Flags().BoolVar(&cmder.all, "all", false, "Print the whole final beam")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")
	_ = cmd.MarkFlagRequired("corpus")

	return cmd
}

func (c *searchCommander) run(ctx context.Context, cmd *cobra.Command) error {
	logger := logging.New(c.debug)
	defer logger.Sync() //nolint:errcheck // Best-effort flush on exit

	model, err := bigram.FromFile(c.corpusPath, c.encoding)
	if err != nil {
		return err
	}
	logger.Debug("corpus loaded",
		zap.Int("tokens", model.Tokens()),
		zap.Int("vocab", model.VocabSize()),
	)

	config, err := c.resolveConfig(cmd)
	if err != nil {
		return err
	}

	prefix := model.Encode(c.prompt)
	start := phraseState{path: prefix, goal: len(prefix) + c.maxTokens}

	expand := func(s phraseState) (beam.Expansion[phraseState], error) {
		last := -1 // No prompt tokens: Successors falls back to the unigram row.
		if len(s.path) > 0 {
			last = s.path[len(s.path)-1]
		}
		toks, probs := model.Successors(last, c.branching)
		states := make([]phraseState, len(toks))
		for i, tok := range toks {
			states[i] = phraseState{
				path: append(append([]int{}, s.path...), tok),
				goal: s.goal,
			}
		}
		return beam.Expansion[phraseState]{States: states, Probs: probs}, nil
	}

	if c.diverse {
		pool, err := beam.Diverse(ctx, expand, start, config, beam.WithLogger(logger))
		if err != nil {
			return err
		}
		c.print(cmd, model, prefix, pool)
		return nil
	}

	if c.all {
		pool, err := beam.SearchAll(ctx, expand, start, config, beam.WithLogger(logger))
		if err != nil {
			return err
		}
		c.print(cmd, model, prefix, pool)
		return nil
	}

	best, err := beam.Search(ctx, expand, start, config, beam.WithLogger(logger))
	if err != nil {
		return err
	}
	c.print(cmd, model, prefix, []beam.Candidate[phraseState]{best})
	return nil
}

func (c *searchCommander) print(cmd *cobra.Command, model *bigram.Model, prefix []int, pool []beam.Candidate[phraseState]) {
	for i, cand := range pool {
		text := model.Decode(cand.State.path[len(prefix):])
		fmt.Fprintf(cmd.OutOrStdout(), "%2d  %9.4f  %s%s\n", i+1, cand.Score, c.prompt, text)
	}
}

// resolveConfig layers the config file under any explicitly set flags.
func (c *searchCommander) resolveConfig(cmd *cobra.Command) (sample.Config, error) {
	config := sample.DefaultConfig()
	if c.configPath != "" {
		var err error
		config, err = sample.LoadFile(c.configPath)
		if err != nil {
			return sample.Config{}, fmt.Errorf("could not load config %s: %w", c.configPath, err)
		}
	}

	config.MaxLength = c.maxTokens

	flags := cmd.Flags()
	if flags.Changed("beam-width") {
		config.BeamWidth = c.beamWidth
	}
	if flags.Changed("groups") {
		config.NumGroups = c.groups
	}
	if flags.Changed("group-size") {
		config.GroupSize = c.groupSize
	}
	if flags.Changed("penalty") {
		config.DiversityPenalty = c.penalty
	}

	return config, nil
}
