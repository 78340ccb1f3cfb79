package store

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/loghound/level"
	"go.jacobcolvin.com/loghound/tag"
)

// Flags holds CLI flag names for store configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Capacity   string
	MinLevel   string
	LevelsFile string
	HideLevels string
	TagMode    string
	Tags       string
	Search     string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags:    f,
		Capacity: DefaultCapacity,
		MinLevel: "debug",
		TagMode:  string(tag.ModeAny),
	}
}

// Config holds CLI flag values for store configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewStore] to create a [Store].
type Config struct {
	Flags      Flags
	MinLevel   string
	LevelsFile string
	TagMode    string
	Search     string
	HideLevels []string
	Tags       []string
	Capacity   int
}

// NewConfig returns a new [Config] with default flag names and values.
func NewConfig() *Config {
	f := Flags{
		Capacity:   "capacity",
		MinLevel:   "min-level",
		LevelsFile: "levels-file",
		HideLevels: "hide-level",
		TagMode:    "tag-mode",
		Tags:       "tags",
		Search:     "search",
	}

	return f.NewConfig()
}

// RegisterFlags adds store flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.IntVar(&c.Capacity, c.Flags.Capacity, c.Capacity,
		fmt.Sprintf("maximum number of records kept, between %d and %d", MinCapacity, MaxCapacity))
	flags.StringVar(&c.MinLevel, c.Flags.MinLevel, c.MinLevel,
		"minimum level stored")
	flags.StringVar(&c.LevelsFile, c.Flags.LevelsFile, c.LevelsFile,
		"YAML file with additional level definitions")
	flags.StringSliceVar(&c.HideLevels, c.Flags.HideLevels, c.HideLevels,
		"levels whose records are hidden")
	flags.StringVar(&c.TagMode, c.Flags.TagMode, c.TagMode,
		fmt.Sprintf("tag matching mode, one of: %s", tag.GetAllModeStrings()))
	flags.StringSliceVar(&c.Tags, c.Flags.Tags, c.Tags,
		"active tags to filter by")
	flags.StringVar(&c.Search, c.Flags.Search, c.Search,
		"show only records containing this text")
}

// RegisterCompletions registers shell completions for store flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	var names []string
	for _, def := range level.Defaults() {
		names = append(names, def.Name)
	}

	for _, flag := range []string{c.Flags.MinLevel, c.Flags.HideLevels} {
		err := cmd.RegisterFlagCompletionFunc(flag,
			cobra.FixedCompletions(names, cobra.ShellCompDirectiveNoFileComp))
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", flag, err)
		}
	}

	err := cmd.RegisterFlagCompletionFunc(c.Flags.TagMode,
		cobra.FixedCompletions(tag.GetAllModeStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.TagMode, err)
	}

	err = cmd.MarkFlagFilename(c.Flags.LevelsFile, "yaml", "yml")
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.LevelsFile, err)
	}

	noFileComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	for _, flag := range []string{c.Flags.Capacity, c.Flags.Tags, c.Flags.Search} {
		regErr := cmd.RegisterFlagCompletionFunc(flag, noFileComp)
		if regErr != nil {
			return fmt.Errorf("registering %s completion: %w", flag, regErr)
		}
	}

	return nil
}

// NewStore creates a [Store] from the configuration. Options in opts are
// applied before the configured capacity and registry.
func (c *Config) NewStore(opts ...Option) (*Store, error) {
	defs := level.Defaults()

	if c.LevelsFile != "" {
		extra, err := level.LoadDefinitionsFile(c.LevelsFile)
		if err != nil {
			return nil, err
		}

		defs = append(defs, extra...)
	}

	reg, err := level.NewRegistry(defs...)
	if err != nil {
		return nil, err
	}

	opts = append(opts, WithRegistry(reg), WithCapacity(c.Capacity))

	s, err := New(opts...)
	if err != nil {
		return nil, err
	}

	err = c.apply(s)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (c *Config) apply(s *Store) error {
	if c.MinLevel != "" {
		err := s.SetMinimumLevel(c.MinLevel)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Flags.MinLevel, err)
		}
	}

	for _, name := range c.HideLevels {
		err := s.SetLevelEnabled(name, false)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Flags.HideLevels, err)
		}
	}

	if c.TagMode != "" {
		mode, err := tag.ParseMode(c.TagMode)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Flags.TagMode, err)
		}

		err = s.SetTagMode(mode)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Flags.TagMode, err)
		}
	}

	if len(c.Tags) > 0 {
		err := s.SetActiveTags(c.Tags)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Flags.Tags, err)
		}
	}

	if c.Search != "" {
		s.SetSearchText(c.Search)
	}

	return nil
}
