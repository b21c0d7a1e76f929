package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kbrag/internal/adapter/llm"
	"kbrag/internal/adapter/store"
	"kbrag/internal/domain"
	"kbrag/internal/usecase"
)

var (
	askText     string
	askSession  string
	askSources  bool
	chatSession string
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a single question",
	Long: `Ask the chat model a question, adding the most relevant knowledge
base passages to the request.

Examples:
  kbrag ask -q "How long do refunds take?"
  kbrag ask -q "And for international orders?" --session <id>`,
	RunE: runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation. Type /new to start over and
/quit (or Ctrl-D) to leave. Conversations are saved and can be resumed
with --session.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved conversations",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Delete conversations",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSessionsRm,
}

func init() {
	rootCmd.AddCommand(askCmd, chatCmd, sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd, sessionsRmCmd)

	askCmd.Flags().StringVarP(&askText, "query", "q", "", "question (required)")
	askCmd.Flags().StringVar(&askSession, "session", "", "continue a saved conversation")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "print the passages used")
	askCmd.MarkFlagRequired("query")

	chatCmd.Flags().StringVar(&chatSession, "session", "", "resume a saved conversation")
}

func newChatUseCase(st *store.BoltStore) (*usecase.ChatUseCase, error) {
	cfg := GetConfig()

	retrieveUC, err := newRetrieveUseCase(cfg, st)
	if err != nil {
		return nil, err
	}
	prompts, err := usecase.NewPromptBuilder()
	if err != nil {
		return nil, err
	}
	model, err := llm.New(cfg.Chat)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return usecase.NewChatUseCase(retrieveUC, prompts, model, st, cfg.Chat.History), nil
}

func loadSession(chatUC *usecase.ChatUseCase, id string) (*domain.Session, error) {
	if id == "" {
		return chatUC.NewSession(), nil
	}
	return chatUC.Resume(id)
}

func runAsk(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	chatUC, err := newChatUseCase(st)
	if err != nil {
		return err
	}
	session, err := loadSession(chatUC, askSession)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	reply, err := chatUC.Ask(ctx, session, askText)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, reply.Text)
	if askSources {
		printSources(out, reply)
	}
	fmt.Fprintf(out, "\n(session %s)\n", session.ID)
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	chatUC, err := newChatUseCase(st)
	if err != nil {
		return err
	}
	session, err := loadSession(chatUC, chatSession)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintf(out, "Conversation %s. Type /quit to leave.\n", session.ID)
	printGreeting(out, session)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/new":
			session = chatUC.NewSession()
			fmt.Fprintf(out, "Conversation %s.\n", session.ID)
			printGreeting(out, session)
			continue
		}

		reply, err := chatUC.Ask(ctx, session, line)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, reply.Text)
		if reply.KnowledgeUsed {
			sources := make([]string, 0, len(reply.Sources))
			for _, s := range reply.Sources {
				sources = append(sources, s.Source)
			}
			fmt.Fprintf(out, "  [knowledge: %s]\n", strings.Join(sources, ", "))
		}
	}
}

// printGreeting shows the opening assistant message of an unanswered session.
func printGreeting(out io.Writer, session *domain.Session) {
	if len(session.Messages) == 1 && session.Messages[0].Role == domain.RoleAssistant {
		fmt.Fprintln(out, session.Messages[0].Content)
	}
}

func printSources(out io.Writer, reply domain.Reply) {
	if !reply.KnowledgeUsed {
		fmt.Fprintln(out, "\nNo knowledge base passages were used.")
		return
	}
	fmt.Fprintln(out, "\nSources:")
	for i, s := range reply.Sources {
		fmt.Fprintf(out, "  [%d] %s (score: %.2f)\n", i+1, s.Source, s.Score)
	}
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := st.ListSessions()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No conversations.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tMESSAGES\tUPDATED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.ID, s.Title, len(s.Messages), s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runSessionsRm(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, id := range args {
		if err := st.DeleteSession(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	}
	return nil
}
