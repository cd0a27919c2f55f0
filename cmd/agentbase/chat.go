package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ipdelete/agent-base/pkg/conversations"
	"github.com/ipdelete/agent-base/pkg/llm"
	"github.com/ipdelete/agent-base/pkg/logger"
	"github.com/ipdelete/agent-base/pkg/presenter"
	"github.com/ipdelete/agent-base/pkg/skills"
	"github.com/ipdelete/agent-base/pkg/skills/injection"
	convtypes "github.com/ipdelete/agent-base/pkg/types/conversations"
	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
)

// ChatConfig holds configuration for the chat command
type ChatConfig struct {
	NoSave      bool
	NoInjection bool
}

// NewChatConfig creates a new ChatConfig with default values
func NewChatConfig() *ChatConfig {
	return &ChatConfig{}
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with the configured LLM.

Skill context is injected per message based on the currently enabled
skills; skill files edited mid-session are picked up automatically.
Type '/skills' to see the skill registry and '/exit' to leave.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		config := getChatConfigFromFlags(cmd)
		chatUI(ctx, config)
	},
}

func init() {
	defaults := NewChatConfig()
	chatCmd.Flags().Bool("no-save", defaults.NoSave, "Disable conversation persistence")
	chatCmd.Flags().Bool("no-injection", defaults.NoInjection, "Disable skill context injection")
}

// getChatConfigFromFlags extracts chat configuration from command flags
func getChatConfigFromFlags(cmd *cobra.Command) *ChatConfig {
	config := NewChatConfig()

	if noSave, err := cmd.Flags().GetBool("no-save"); err == nil {
		config.NoSave = noSave
	}
	if noInjection, err := cmd.Flags().GetBool("no-injection"); err == nil {
		config.NoInjection = noInjection
	}

	return config
}

func chatUI(ctx context.Context, chatConfig *ChatConfig) {
	presenter.Section("Agentbase Chat")
	presenter.Info("Type '/skills' to list available skills, '/exit' to end the session")
	presenter.Separator()

	config, err := llm.GetConfigFromViper()
	if err != nil {
		presenter.Error(err, "Failed to load configuration")
		return
	}
	if chatConfig.NoInjection {
		config.Skills.NoInjection = true
	}

	thread, err := llm.NewThread(config)
	if err != nil {
		presenter.Error(err, "Failed to create LLM thread")
		return
	}

	registry := skills.NewRegistryFromConfig(ctx, config.Skills)

	// Re-run discovery when skill files change mid-session
	if watcher, err := skills.NewWatcher(registry, 0); err == nil {
		go watcher.Start(ctx)
		defer watcher.Close()
	} else {
		logger.G(ctx).WithError(err).Debug("skill watcher unavailable")
	}

	var injector *injection.Injector
	if !config.Skills.NoInjection {
		injector = newInjectorFromConfig(config.Skills)
	}

	var store conversations.ConversationStore
	if !chatConfig.NoSave {
		store, err = conversations.New(ctx)
		if err != nil {
			presenter.Warning(fmt.Sprintf("Conversation persistence unavailable: %v", err))
		} else {
			defer store.Close()
			presenter.Info(fmt.Sprintf("Conversation ID: %s", thread.GetConversationID()))
		}
	}

	handler := &llmtypes.ConsoleMessageHandler{Silent: false}
	var injections []convtypes.InjectionRecord

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("\033[1;33m[user]: \033[0m")
		input, err := reader.ReadString('\n')
		if err != nil {
			// EOF ends the session
			printChatSummary(thread, store != nil)
			return
		}

		input = strings.TrimSpace(input)

		switch input {
		case "":
			continue
		case "/exit", "exit", "quit":
			printChatSummary(thread, store != nil)
			return
		case "/skills":
			showSkillRegistry(ctx, registry)
			continue
		}

		enabled := registry.Enabled(ctx)
		opt := llmtypes.MessageOpt{}
		var result injection.InjectionResult
		if injector != nil {
			result = injector.Inject(ctx, input, enabled)
			opt.InjectedContext = result.InjectedText
		}

		_, err = thread.SendMessage(ctx, input, handler, opt)
		if err != nil {
			presenter.Error(err, "Failed to process message")
			continue
		}

		if injector != nil {
			injections = append(injections, convtypes.InjectionRecord{
				Tier:            string(result.Tier),
				Skills:          result.SkillsIncluded,
				EstimatedTokens: result.EstimatedTokens,
			})
		}

		if store != nil {
			record, err := buildConversationRecord(thread, injections)
			if err == nil {
				err = store.Save(ctx, record)
			}
			if err != nil {
				logger.G(ctx).WithError(err).Warn("failed to save conversation")
			}
		}
	}
}

// showSkillRegistry prints the same registry listing the model sees at
// the registry disclosure tier.
func showSkillRegistry(ctx context.Context, registry *skills.Registry) {
	enabled := registry.Enabled(ctx)
	if len(enabled) == 0 {
		presenter.Info("No skills enabled")
		return
	}

	assembler := injection.NewAssembler()
	listing := assembler.Assemble(injection.InjectionPlan{
		Tier:         injection.TierRegistry,
		TotalEnabled: len(enabled),
	}, enabled)
	fmt.Println(listing.InjectedText)
	fmt.Println()
}

func printChatSummary(thread llmtypes.Thread, persisted bool) {
	usage := thread.GetUsage()
	presenter.Separator()

	stats := presenter.ConvertUsageStats(&usage)
	if persisted {
		stats.ConversationID = thread.GetConversationID()
	}
	presenter.Stats(stats)

	if persisted {
		presenter.Info(fmt.Sprintf("To view this conversation: agentbase conversation show %s", thread.GetConversationID()))
		presenter.Info(fmt.Sprintf("To delete this conversation: agentbase conversation delete %s", thread.GetConversationID()))
	}

	presenter.Success("Exiting chat mode. Goodbye!")
}
