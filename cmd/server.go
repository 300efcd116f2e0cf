package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docchat/internal/db"
	"github.com/ziadkadry99/docchat/internal/llm"
	"github.com/ziadkadry99/docchat/internal/qa"
	"github.com/ziadkadry99/docchat/internal/server"
	"github.com/ziadkadry99/docchat/internal/vectordb"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the document chat backend",
	Long:  `Starts the backend that accepts uploads, indexes them into a vector store, and answers chat queries over them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sc := cfg.Server
		if cmd.Flags().Changed("port") {
			sc.Port = serverPort
		}

		keys := llm.KeysFromEnv()
		embedder := createEmbedderFromConfig(cfg, keys)
		store, err := vectordb.NewChromemStore(embedder)
		if err != nil {
			return fmt.Errorf("creating vector store: %w", err)
		}

		llmProvider, err := createLLMProviderFromConfig(cfg, keys)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}

		dbPath := filepath.Join(sc.DataDir, "docchat.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		chain := qa.NewChain(store, llmProvider, qa.Options{
			K:            sc.RetrievalK,
			ChunkSize:    sc.ChunkSize,
			ChunkOverlap: sc.ChunkOverlap,
			Model:        sc.Model,
		})

		srv := server.New(server.Config{
			Port:           sc.Port,
			DataDir:        sc.DataDir,
			AllowedTypes:   sc.AllowedTypes,
			MaxUploadBytes: cfg.MaxUploadBytes,
			AllowAll:       sc.AllowAllOrigins,
		}, database, store, chain)

		if err := srv.Restore(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not restore previous uploads: %v\n", err)
		}

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		answering := "document excerpts"
		if llmProvider != nil {
			answering = fmt.Sprintf("%s (%s)", llmProvider.Name(), sc.Model)
		}
		fmt.Fprintf(os.Stderr, "docchat server %s starting on port %d\n", Version, sc.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  Embeddings: %s\n", embedder.Name())
		fmt.Fprintf(os.Stderr, "  Answers: %s\n", answering)
		fmt.Fprintf(os.Stderr, "  Documents loaded: %d\n", srv.Documents().Len())

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 5000, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
