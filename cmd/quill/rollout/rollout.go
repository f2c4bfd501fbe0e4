package rolloutcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quill-ml/quill/internal/bigram"
	"github.com/quill-ml/quill/internal/logging"
	"github.com/quill-ml/quill/sample"
)

const rolloutLongDesc string = `Generate a continuation of a prompt, one token at a time.

A bigram model built from the corpus file provides the next-token
distributions; the configured sampling strategy picks from them. Flags
override values from the config file.

Examples:
  quill rollout --corpus corpus.txt --prompt "The quick"
  quill rollout -f corpus.txt -p "Once upon" -n 50 --method typical --seed 42
  quill rollout -f corpus.txt --config sampling.yaml --stream`

const rolloutShortDesc string = "Generate a continuation of a prompt"

type rolloutCommander struct {
	corpusPath string
	configPath string
	encoding   string
	prompt     string
	method     string
	maxTokens  int
	seed       int64
	stream     bool
	debug      bool
}

func NewRolloutCmd() *cobra.Command {
	cmder := &rolloutCommander{}

	cmd := &cobra.Command{
		Use:   "rollout",
		Short: rolloutShortDesc,
		Long:  rolloutLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.corpusPath, "corpus", "f", "", "Path to the corpus text file")
	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to a YAML sampling config")
	cmd.Flags().StringVar(&cmder.encoding, "encoding", "cl100k_base", "tiktoken encoding name")
	cmd.Flags().StringVarP(&cmder.prompt, "prompt", "p", "The", "Prompt to continue")
	cmd.Flags().StringVarP(&cmder.method, "method", "m", "", "Sampling method (greedy, temperature, top_k, top_p, typical)")
	cmd.Flags().IntVarP(&cmder.maxTokens, "max-tokens", "n", 20, "Number of tokens to generate")
	cmd.Flags().Int64Var(&cmder.seed, "seed", -1, "Random seed (-1 = random)")
	cmd.Flags().BoolVar(&cmder.stream, "stream", false, "Print tokens as they are drawn")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")
	_ = cmd.MarkFlagRequired("corpus")

	return cmd
}

func (c *rolloutCommander) run(ctx context.Context, cmd *cobra.Command) error {
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

	gen, err := sample.NewGenerator(model, config, sample.WithLogger(logger))
	if err != nil {
		return err
	}

	prefix := model.Encode(c.prompt)
	rollout := sample.RolloutConfig{MaxSteps: c.maxTokens}

	if c.stream {
		fmt.Fprint(cmd.OutOrStdout(), c.prompt)
		for res := range gen.Stream(ctx, prefix, rollout) {
			if res.Err != nil {
				fmt.Fprintln(cmd.OutOrStdout())
				return res.Err
			}
			fmt.Fprint(cmd.OutOrStdout(), model.Decode([]int{res.Index}))
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return ctx.Err()
	}

	out, err := gen.Generate(ctx, prefix, rollout)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), c.prompt+model.Decode(out))
	return nil
}

// resolveConfig layers the config file under any explicitly set flags.
func (c *rolloutCommander) resolveConfig(cmd *cobra.Command) (sample.Config, error) {
	config := sample.DefaultConfig()
	if c.configPath != "" {
		var err error
		config, err = sample.LoadFile(c.configPath)
		if err != nil {
			return sample.Config{}, fmt.Errorf("could not load config %s: %w", c.configPath, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("method") {
		config.Method = sample.Method(c.method)
	}
	if flags.Changed("seed") {
		config.Seed = c.seed
	}

	return config, nil
}
