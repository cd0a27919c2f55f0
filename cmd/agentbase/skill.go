package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ipdelete/agent-base/pkg/llm"
	"github.com/ipdelete/agent-base/pkg/presenter"
	"github.com/ipdelete/agent-base/pkg/skills"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Manage installed skills",
	Long: `Manage installed skills: list them, inspect their manifests and
documentation, and toggle their lifecycle state.`,
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed skills",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		listSkillsCmd(ctx)
	},
}

var skillShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a skill's manifest and documentation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		showSkillCmd(ctx, args[0])
	},
}

var skillEnableCmd = &cobra.Command{
	Use:   "enable [name]",
	Short: "Enable a skill",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		setSkillEnabledCmd(ctx, args[0], true)
	},
}

var skillDisableCmd = &cobra.Command{
	Use:   "disable [name]",
	Short: "Disable a skill",
	Long: `Disable a skill. Disabled skills still appear in listings but are
never handed to the injection engine.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		setSkillEnabledCmd(ctx, args[0], false)
	},
}

var skillDocsCmd = &cobra.Command{
	Use:   "docs [name...]",
	Short: "Render skill documentation as Markdown",
	Long: `Render a Markdown reference of installed skills. With no arguments
every skill is included; otherwise only the named ones.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		outputFile, _ := cmd.Flags().GetString("output")
		renderSkillDocsCmd(ctx, args, outputFile)
	},
}

var skillSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the SKILL.md frontmatter JSON schema",
	Run: func(cmd *cobra.Command, args []string) {
		printSkillSchemaCmd()
	},
}

func init() {
	skillDocsCmd.Flags().StringP("output", "o", "", "Write output to file instead of stdout")

	skillCmd.AddCommand(skillListCmd)
	skillCmd.AddCommand(skillShowCmd)
	skillCmd.AddCommand(skillEnableCmd)
	skillCmd.AddCommand(skillDisableCmd)
	skillCmd.AddCommand(skillDocsCmd)
	skillCmd.AddCommand(skillSchemaCmd)
	rootCmd.AddCommand(skillCmd)
}

// loadSkillRegistry builds the registry from the resolved configuration.
func loadSkillRegistry(ctx context.Context) *skills.Registry {
	config, err := llm.GetConfigFromViper()
	if err != nil {
		presenter.Error(err, "Failed to load configuration")
		os.Exit(1)
	}
	return skills.NewRegistryFromConfig(ctx, config.Skills)
}

// findSkill resolves a name or alias against the loaded manifests.
func findSkill(manifests []*skills.SkillManifest, name string) *skills.SkillManifest {
	slug := skills.Slugify(name)
	for _, manifest := range manifests {
		if manifest.Name == slug || slices.Contains(manifest.Aliases, slug) {
			return manifest
		}
	}
	return nil
}

func listSkillsCmd(ctx context.Context) {
	registry := loadSkillRegistry(ctx)
	manifests := registry.All(ctx)

	if len(manifests) == 0 {
		presenter.Info("No skills installed")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tDESCRIPTION")
	fmt.Fprintln(tw, "----\t------\t-----------")

	for _, manifest := range manifests {
		status := "enabled"
		if !manifest.Enabled {
			status = "disabled"
		}

		// Truncate long descriptions
		description := manifest.Summary
		if len(description) > 60 {
			description = description[:57] + "..."
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\n", manifest.Name, status, description)
	}

	tw.Flush()
}

func showSkillCmd(ctx context.Context, name string) {
	registry := loadSkillRegistry(ctx)
	manifest := findSkill(registry.All(ctx), name)
	if manifest == nil {
		presenter.Error(errors.Errorf("skill %q not found", name), "Unknown skill")
		os.Exit(1)
	}

	presenter.Section(manifest.Name)
	presenter.Info(manifest.Summary)
	presenter.Info("")

	status := "enabled"
	if !manifest.Enabled {
		status = "disabled"
	}
	presenter.Info(fmt.Sprintf("Status:    %s", status))
	if len(manifest.Aliases) > 0 {
		presenter.Info(fmt.Sprintf("Aliases:   %s", strings.Join(manifest.Aliases, ", ")))
	}
	if len(manifest.Triggers.Keywords) > 0 {
		presenter.Info(fmt.Sprintf("Keywords:  %s", strings.Join(manifest.Triggers.Keywords, ", ")))
	}
	if len(manifest.Triggers.Verbs) > 0 {
		presenter.Info(fmt.Sprintf("Verbs:     %s", strings.Join(manifest.Triggers.Verbs, ", ")))
	}
	if len(manifest.Triggers.Patterns) > 0 {
		presenter.Info(fmt.Sprintf("Patterns:  %s", strings.Join(manifest.Triggers.Patterns, ", ")))
	}
	presenter.Info(fmt.Sprintf("Directory: %s", manifest.Directory))

	if invalid := manifest.InvalidPatterns(); len(invalid) > 0 {
		presenter.Warning(fmt.Sprintf("Patterns that failed to compile and will never match: %s", strings.Join(invalid, ", ")))
	}

	if body := strings.TrimSpace(manifest.Instructions); body != "" {
		presenter.Info("")
		fmt.Println(body)
	}
}

func setSkillEnabledCmd(ctx context.Context, name string, enable bool) {
	registry := loadSkillRegistry(ctx)
	manifest := findSkill(registry.All(ctx), name)
	if manifest == nil {
		presenter.Error(errors.Errorf("skill %q not found", name), "Unknown skill")
		os.Exit(1)
	}

	statePath, err := skills.DefaultStatePath()
	if err != nil {
		presenter.Error(err, "Failed to resolve skill state path")
		os.Exit(1)
	}

	state, err := skills.LoadState(statePath)
	if err != nil {
		presenter.Error(err, "Failed to load skill state")
		os.Exit(1)
	}

	if enable {
		state.Enable(manifest.Name)
	} else {
		state.Disable(manifest.Name)
	}

	if err := state.Save(statePath); err != nil {
		presenter.Error(err, "Failed to save skill state")
		os.Exit(1)
	}
	registry.MarkDirty()

	if enable {
		presenter.Success(fmt.Sprintf("Skill %s enabled", manifest.Name))
	} else {
		presenter.Success(fmt.Sprintf("Skill %s disabled", manifest.Name))
	}
}

func renderSkillDocsCmd(ctx context.Context, names []string, outputFile string) {
	registry := loadSkillRegistry(ctx)
	manifests := registry.All(ctx)

	if len(names) > 0 {
		selected := make([]*skills.SkillManifest, 0, len(names))
		for _, name := range names {
			manifest := findSkill(manifests, name)
			if manifest == nil {
				presenter.Error(errors.Errorf("skill %q not found", name), "Unknown skill")
				os.Exit(1)
			}
			selected = append(selected, manifest)
		}
		manifests = selected
	}

	docs := skills.RenderDocs(manifests)
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(docs), 0o644); err != nil {
			presenter.Error(err, "Failed to write documentation")
			os.Exit(1)
		}
		presenter.Success(fmt.Sprintf("Documentation written to %s", outputFile))
		return
	}
	fmt.Print(docs)
}

func printSkillSchemaCmd() {
	schema := skills.FrontmatterSchema()
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		presenter.Error(err, "Failed to render schema")
		os.Exit(1)
	}
	fmt.Println(string(out))
}
