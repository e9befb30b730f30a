package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mufeShot/chronocap-frontend/internal/api"
	"github.com/mufeShot/chronocap-frontend/internal/config"
	"github.com/mufeShot/chronocap-frontend/internal/guard"
	"github.com/mufeShot/chronocap-frontend/internal/model"
	"github.com/mufeShot/chronocap-frontend/internal/session"
	"github.com/mufeShot/chronocap-frontend/internal/store"
	"github.com/mufeShot/chronocap-frontend/internal/ui"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// clientApp bundles the wired core for one CLI invocation.
type clientApp struct {
	cfg     *config.Config
	store   store.Store
	session *session.Manager
	client  *api.Client
	guard   *guard.Guard
	prompt  *ui.PromptState
}

func (a *clientApp) Close() {
	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close session store")
	}
}

// newApp loads config and wires store, session, API client, and guard.
// The startup silent refresh runs here so every command sees a live
// session when one can be minted.
func newApp(ctx context.Context) (*clientApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	setLogLevel(cfg.LogLevel)

	st, err := store.Open(cfg.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sess, err := session.New(ctx, st)
	if err != nil {
		st.Close()
		return nil, err
	}

	client := api.NewClient(cfg, sess)
	sess.SetRefresher(client)
	sess.InitAuth(ctx)

	prompt := ui.NewPromptState()

	return &clientApp{
		cfg:     cfg,
		store:   st,
		session: sess,
		client:  client,
		guard:   guard.New(sess, prompt, guard.DefaultRoutes()),
		prompt:  prompt,
	}, nil
}

var rootCmd = &cobra.Command{
	Use:           "chronocap",
	Short:         "Client for the chronocap time-capsule service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Authenticate and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		password, _ := cmd.Flags().GetString("password")
		user, err := app.client.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s\n", user.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		password, _ := cmd.Flags().GetString("password")
		name, _ := cmd.Flags().GetString("name")
		user, err := app.client.Register(cmd.Context(), args[0], password, name)
		if err != nil {
			return err
		}
		fmt.Printf("Registered %s\n", user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the session (best-effort server invalidation)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		app.client.Logout(cmd.Context())
		fmt.Println("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if !app.session.IsLoggedIn() {
			fmt.Println("Not logged in")
			return nil
		}
		fmt.Println(app.session.UserEmail())
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a capsule",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if target := app.guard.Resolve(cmd.Context(), "/dashboard"); target == guard.HomePath {
			return fmt.Errorf("login required (run: chronocap login <email>)")
		}

		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		unlockAt, _ := cmd.Flags().GetString("unlock-at")
		public, _ := cmd.Flags().GetBool("public")
		paths, _ := cmd.Flags().GetStringSlice("file")

		files, err := readUploadFiles(paths)
		if err != nil {
			return err
		}

		capsule, err := app.client.CreateCapsule(cmd.Context(), model.CreateCapsuleInput{
			Title:       title,
			Description: description,
			DeliveryAt:  unlockAt,
			IsPublic:    public,
			Files:       files,
		}, func(pct int) {
			fmt.Printf("\rUploading... %d%%", pct)
		})
		fmt.Println()
		if err != nil {
			return err
		}

		fmt.Printf("Created capsule %s\n", capsule.ID)
		fmt.Printf("Unlock URL: %s\n", capsule.UnlockURL)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your capsules",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if target := app.guard.Resolve(cmd.Context(), "/dashboard"); target == guard.HomePath {
			return fmt.Errorf("login required (run: chronocap login <email>)")
		}

		capsules, err := app.client.ListMyCapsules(cmd.Context())
		if err != nil {
			return err
		}
		printCapsules(capsules)
		return nil
	},
}

var publicCmd = &cobra.Command{
	Use:   "public",
	Short: "List public capsules",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		capsules, err := app.client.ListPublicCapsules(cmd.Context())
		if err != nil {
			return err
		}
		printCapsules(capsules)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id-or-secret>",
	Short: "Fetch a capsule by numeric id or secret key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		capsule, err := app.client.GetCapsuleBySecret(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if capsule == nil {
			fmt.Println("Capsule not found")
			return nil
		}
		printCapsules([]model.Capsule{*capsule})
		return nil
	},
}

func printCapsules(capsules []model.Capsule) {
	if len(capsules) == 0 {
		fmt.Println("No capsules")
		return
	}
	for _, c := range capsules {
		visibility := "private"
		if c.IsPublic {
			visibility = "public"
		}
		fmt.Printf("%s  %-30s  %s  unlocks %s  (%d files)\n",
			c.ID, c.Title, visibility, c.DeliveryAt.Format("2006-01-02 15:04"), len(c.Files))
	}
}

func readUploadFiles(paths []string) ([]model.UploadFile, error) {
	files := make([]model.UploadFile, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read attachment: %w", err)
		}
		files = append(files, model.UploadFile{
			Name:        filepath.Base(path),
			ContentType: contentTypeFor(path),
			Content:     content,
		})
	}
	return files, nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func init() {
	loginCmd.Flags().String("password", "", "account password")
	_ = loginCmd.MarkFlagRequired("password")
	registerCmd.Flags().String("password", "", "account password")
	_ = registerCmd.MarkFlagRequired("password")
	registerCmd.Flags().String("name", "", "display name")

	createCmd.Flags().String("title", "", "capsule title")
	_ = createCmd.MarkFlagRequired("title")
	createCmd.Flags().String("description", "", "capsule description")
	createCmd.Flags().String("unlock-at", "", "unlock time (RFC 3339)")
	_ = createCmd.MarkFlagRequired("unlock-at")
	createCmd.Flags().Bool("public", false, "make the capsule public")
	createCmd.Flags().StringSlice("file", nil, "attachment path (repeatable)")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, createCmd, listCmd, publicCmd, showCmd)
}
