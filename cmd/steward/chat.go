package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/history"
	"github.com/stewardhq/steward/router"
	"github.com/stewardhq/steward/tui"
)

func newChatCmd(verbose *bool) *cobra.Command {
	var (
		serverURL   string
		sessionPath string

		providerID string
		apiKey     string
		endpoint   string
		model      string

		jiraURL     string
		jiraEmail   string
		jiraToken   string
		jiraProject string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively in the terminal",
		Long: "Chat interactively in the terminal.\n\n" +
			"With --server, requests go to a running steward server. Without it,\n" +
			"the pipeline runs in-process and --provider/--api-key select the model.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			settings := steward.Settings{
				LLM: steward.LLMConfig{
					Provider: providerID,
					APIKey:   apiKey,
					Endpoint: endpoint,
					Model:    model,
				},
				Jira: steward.JiraSettings{
					BaseURL:    jiraURL,
					Email:      jiraEmail,
					APIToken:   jiraToken,
					ProjectKey: jiraProject,
				},
			}

			var send tui.ChatFunc
			if serverURL != "" {
				send = serverChat(serverURL)
			} else {
				if providerID == "" {
					return errors.New("either --server or --provider is required")
				}
				r := router.New(
					router.WithRemote(nil),
					router.WithLogger(newLogger(*verbose)),
				)
				send = r.Handle
			}

			session, path, err := loadOrCreateSession(sessionPath)
			if err != nil {
				return err
			}

			m := tui.New(send, &session, settings, steward.DefaultTheme())
			m.SessionPath = path
			if err := tui.Run(ctx, m); err != nil {
				return fmt.Errorf("TUI: %w", err)
			}

			if len(session.Messages) > 0 {
				session.UpdatedAt = time.Now()
				if err := history.Save(path, session); err != nil {
					return fmt.Errorf("save session: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Session saved to %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "steward server URL (e.g. http://localhost:8080)")
	cmd.Flags().StringVar(&sessionPath, "session", "", "path to session file to resume")
	cmd.Flags().StringVar(&providerID, "provider", "", "LLM provider: openai, anthropic, gemini, groq, openrouter, ollama")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "provider API key")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "provider API endpoint (required for ollama)")
	cmd.Flags().StringVar(&model, "model", "", "model ID (default: provider default)")
	cmd.Flags().StringVar(&jiraURL, "jira-url", "", "Jira base URL")
	cmd.Flags().StringVar(&jiraEmail, "jira-email", "", "Jira account email")
	cmd.Flags().StringVar(&jiraToken, "jira-token", "", "Jira API token")
	cmd.Flags().StringVar(&jiraProject, "jira-project", "", "Jira project key")
	return cmd
}

// loadOrCreateSession resumes the session at path, or creates a fresh one at
// the default location when no path is given.
func loadOrCreateSession(path string) (history.Session, string, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			s, err := history.Load(path)
			if err != nil {
				return history.Session{}, "", fmt.Errorf("load session: %w", err)
			}
			return s, path, nil
		}
	}

	s := history.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
	if path == "" {
		var err error
		path, err = history.DefaultPath(s.ID)
		if err != nil {
			return history.Session{}, "", err
		}
	}
	return s, path, nil
}

// serverChat returns a ChatFunc that posts to a running steward server.
func serverChat(baseURL string) tui.ChatFunc {
	client := &http.Client{Timeout: 60 * time.Second}
	return func(ctx context.Context, req steward.ChatRequest) (*steward.ChatResponse, error) {
		data, err := json.Marshal(req)
		if err != nil {
			return nil, err
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/chat", bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, &steward.HTTPError{
				Provider:   "steward",
				StatusCode: resp.StatusCode,
				Body:       string(body),
			}
		}

		var out steward.ChatResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, err
		}
		return &out, nil
	}
}
