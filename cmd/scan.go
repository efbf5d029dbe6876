package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/arch-sim/simhound/internal/cache"
	"github.com/arch-sim/simhound/internal/files"
	"github.com/arch-sim/simhound/models"
	"github.com/arch-sim/simhound/pipeline"
)

var (
	rulesetFlag    string
	jsonOutput     bool
	outputFile     string
	minLinesFlag   int
	noCacheFlag    bool
	ignorePatterns []string
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a directory for structurally similar code regions",
	Long: `scan walks a directory tree, parses every recognized source file, and
reports groups of regions (functions, classes, headings, or plain line
ranges) that are structurally similar to one another.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&rulesetFlag, "ruleset", string(models.RulesetDefault), "normalization ruleset: default, loose, or none")
	scanCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the result as JSON instead of a styled summary")
	scanCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write output to a file instead of stdout")
	scanCmd.Flags().IntVar(&minLinesFlag, "min-lines", 0, "override the minimum region size in lines (0 keeps the config default)")
	scanCmd.Flags().BoolVar(&noCacheFlag, "no-cache", false, "disable the persistent signature cache")
	scanCmd.Flags().StringSliceVar(&ignorePatterns, "ignore", nil, "additional glob patterns to ignore, on top of .simhoundignore")

	rootCmd.AddCommand(scanCmd)
}

func buildConfig() (models.Config, error) {
	cfg := models.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	switch models.Ruleset(rulesetFlag) {
	case models.RulesetDefault, models.RulesetLoose, models.RulesetNone:
		cfg.Ruleset = models.Ruleset(rulesetFlag)
	default:
		return cfg, fmt.Errorf("unknown ruleset %q (want default, loose, or none)", rulesetFlag)
	}
	if minLinesFlag > 0 {
		cfg.MinLines = minLinesFlag
	}
	cfg.IgnorePatterns = append(cfg.IgnorePatterns, ignorePatterns...)
	return cfg, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	} else if workingDir != "" {
		wd, err := GetWorkingDir()
		if err != nil {
			return err
		}
		root = wd
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", root, err)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	paths, err := files.Find(root, cfg.IgnorePatterns)
	if err != nil {
		return fmt.Errorf("walking %s: %w", root, err)
	}

	orch := pipeline.New(cfg)
	orch.Logger = log
	if !noCacheFlag {
		if sc, err := cache.Default(); err == nil {
			orch.Cache = sc
			if ns, _, err := cache.RepoIdentity(root); err == nil {
				orch.Namespace = ns
			}
		} else if log != nil {
			log.Warn("signature cache unavailable, continuing without it", zap.Error(err))
		}
	}

	result, err := orch.Run(paths)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	var out []byte
	if jsonOutput {
		out, err = json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		out = append(out, '\n')
	} else {
		out = []byte(renderSummary(root, result))
	}

	if outputFile == "" {
		if _, err := os.Stdout.Write(out); err != nil {
			return err
		}
	} else if err := os.WriteFile(outputFile, out, 0o644); err != nil {
		return err
	}

	if len(paths) > 0 && len(result.FailedFiles) == len(paths) {
		return fmt.Errorf("scan failed: all %d file(s) failed to parse", len(paths))
	}
	return nil
}

var (
	styleHeading = lipgloss.NewStyle().Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleScore   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

func renderSummary(root string, result *models.SimilarityResult) string {
	var b strings.Builder

	groups := append([]models.SimilarRegionGroup(nil), result.SimilarGroups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Similarity > groups[j].Similarity })

	fmt.Fprintf(&b, "%s %s\n", color.CyanString("simhound"), styleMuted.Render(root))
	if len(groups) == 0 {
		b.WriteString(color.GreenString("no similar regions found\n"))
	}

	for i, g := range groups {
		prefix := "├──"
		if i == len(groups)-1 {
			prefix = "└──"
		}
		fmt.Fprintf(&b, "%s %s %s (%d regions)\n",
			prefix,
			styleScore.Render(fmt.Sprintf("%.0f%%", g.Similarity*100)),
			styleHeading.Render(groupLabel(g)),
			len(g.Regions))

		for j, r := range g.Regions {
			rel, err := filepath.Rel(root, r.Path)
			if err != nil {
				rel = r.Path
			}
			sub := "│   ├──"
			if j == len(g.Regions)-1 {
				sub = "│   └──"
			}
			if i == len(groups)-1 {
				sub = strings.Replace(sub, "│", " ", 1)
			}
			fmt.Fprintf(&b, "%s %s:%d-%d\n", sub, rel, r.Lines.StartLine, r.Lines.EndLine)
		}
	}

	if len(result.FailedFiles) > 0 {
		fmt.Fprintf(&b, "\n%s %d file(s) could not be parsed\n", color.YellowString("!"), len(result.FailedFiles))
	}

	fmt.Fprintf(&b, "\n%s %d region(s) scanned, %d similar group(s) found\n",
		color.CyanString("✓"), len(result.Signatures), len(groups))
	return b.String()
}

func groupLabel(g models.SimilarRegionGroup) string {
	if len(g.Regions) == 0 {
		return "lines"
	}
	return string(g.Regions[0].Kind)
}
