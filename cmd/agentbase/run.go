package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ipdelete/agent-base/pkg/conversations"
	"github.com/ipdelete/agent-base/pkg/llm"
	"github.com/ipdelete/agent-base/pkg/presenter"
	"github.com/ipdelete/agent-base/pkg/skills"
	"github.com/ipdelete/agent-base/pkg/skills/injection"
	convtypes "github.com/ipdelete/agent-base/pkg/types/conversations"
	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
)

// RunOptions contains all options for the run command
type RunOptions struct {
	noSave      bool
	noInjection bool
}

var runOptions = &RunOptions{}

var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Execute a one-shot query",
	Long:  `Execute a one-shot query against the configured LLM and return the result.`,
	Args:  cobra.MinimumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		// Create a cancellable context that listens for signals
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Set up signal handling
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			fmt.Println("\n\033[1;33m[agentbase]: Cancellation requested, shutting down...\033[0m")
			cancel()
		}()

		// Check if there's input from stdin (pipe)
		stat, _ := os.Stdin.Stat()
		isPipe := (stat.Mode() & os.ModeCharDevice) == 0

		var query string
		if isPipe {
			// Read from stdin
			stdinBytes, err := io.ReadAll(os.Stdin)
			if err != nil {
				presenter.Error(err, "Failed to read from stdin")
				os.Exit(1)
			}

			stdinContent := string(stdinBytes)

			// If there are command line args, prepend them to the stdin content
			if len(args) > 0 {
				query = strings.Join(args, " ") + "\n" + stdinContent
			} else {
				query = stdinContent
			}
		} else {
			if len(args) == 0 {
				presenter.Error(errors.New("no query provided"), "Usage: agentbase run [query]")
				os.Exit(1)
			}
			query = strings.Join(args, " ")
		}

		config, err := llm.GetConfigFromViper()
		if err != nil {
			presenter.Error(err, "Failed to load configuration")
			os.Exit(1)
		}
		if runOptions.noInjection {
			config.Skills.NoInjection = true
		}

		thread, err := llm.NewThread(config)
		if err != nil {
			presenter.Error(err, "Failed to create LLM thread")
			os.Exit(1)
		}

		opt := llmtypes.MessageOpt{}
		var injections []convtypes.InjectionRecord
		var result injection.InjectionResult
		if !config.Skills.NoInjection {
			registry := skills.NewRegistryFromConfig(ctx, config.Skills)
			injector := newInjectorFromConfig(config.Skills)
			result = injector.Inject(ctx, query, registry.Enabled(ctx))
			opt.InjectedContext = result.InjectedText
			injections = append(injections, convtypes.InjectionRecord{
				Tier:            string(result.Tier),
				Skills:          result.SkillsIncluded,
				EstimatedTokens: result.EstimatedTokens,
			})
		}

		// Print the user query
		fmt.Printf("\033[1;33m[user]: \033[0m%s\n", query)

		handler := &llmtypes.ConsoleMessageHandler{Silent: false}
		_, err = thread.SendMessage(ctx, query, handler, opt)
		if err != nil {
			presenter.Error(err, "Failed to process query")
			os.Exit(1)
		}

		usage := thread.GetUsage()
		stats := presenter.ConvertUsageStats(&usage)
		if !config.Skills.NoInjection {
			stats.InjectionTier = string(result.Tier)
			stats.InjectedSkills = result.SkillsIncluded
			stats.InjectedTokens = result.EstimatedTokens
		}

		if !runOptions.noSave {
			if err := saveConversation(ctx, thread, injections); err != nil {
				presenter.Warning(fmt.Sprintf("Failed to save conversation: %v", err))
			} else {
				stats.ConversationID = thread.GetConversationID()
			}
		}

		presenter.Stats(stats)
		if stats.ConversationID != "" {
			presenter.Info(fmt.Sprintf("To view this conversation: agentbase conversation show %s", thread.GetConversationID()))
			presenter.Info(fmt.Sprintf("To delete this conversation: agentbase conversation delete %s", thread.GetConversationID()))
		}
	},
}

func init() {
	runCmd.Flags().BoolVar(&runOptions.noSave, "no-save", false, "Disable conversation persistence")
	runCmd.Flags().BoolVar(&runOptions.noInjection, "no-injection", false, "Disable skill context injection")
}

// newInjectorFromConfig builds the injector from the skills
// configuration.
func newInjectorFromConfig(cfg llmtypes.SkillsConfig) *injection.Injector {
	opts := []injection.Option{injection.WithMaxSkills(cfg.MaxSkills)}
	// An explicitly configured empty phrase list disables the overview
	// check, so only pass the list through when the key is set.
	if viper.IsSet("skills.overview_phrases") {
		opts = append(opts, injection.WithOverviewPhrases(cfg.OverviewPhrases))
	}
	return injection.NewInjector(opts...)
}

// buildConversationRecord snapshots the thread into a persistable
// record.
func buildConversationRecord(thread llmtypes.Thread, injections []convtypes.InjectionRecord) (convtypes.ConversationRecord, error) {
	rawMessages, err := json.Marshal(thread.GetMessages())
	if err != nil {
		return convtypes.ConversationRecord{}, errors.Wrap(err, "failed to serialize messages")
	}

	record := convtypes.NewConversationRecord(thread.GetConversationID())
	record.Provider = thread.Provider()
	record.Model = thread.GetConfig().Model
	record.RawMessages = rawMessages
	record.Usage = thread.GetUsage()
	record.Injections = injections
	return record, nil
}

func saveConversation(ctx context.Context, thread llmtypes.Thread, injections []convtypes.InjectionRecord) error {
	store, err := conversations.New(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to initialize conversation store")
	}
	defer store.Close()

	record, err := buildConversationRecord(thread, injections)
	if err != nil {
		return err
	}
	return store.Save(ctx, record)
}
