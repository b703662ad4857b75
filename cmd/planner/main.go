package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dukerupert/planner/internal/aggregate"
	"github.com/dukerupert/planner/internal/backup"
	"github.com/dukerupert/planner/internal/config"
	"github.com/dukerupert/planner/internal/database"
	"github.com/dukerupert/planner/internal/lms"
	"github.com/dukerupert/planner/internal/logging"
	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/notify"
	"github.com/dukerupert/planner/internal/push"
	"github.com/dukerupert/planner/internal/server"
	"github.com/dukerupert/planner/internal/state"
	"github.com/dukerupert/planner/internal/store"
	ws "github.com/dukerupert/planner/internal/websocket"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "planner",
		Short:         "Personal academic planner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("PLANNER_CONFIG"), "YAML config file")

	rootCmd.AddCommand(
		&cobra.Command{Use: "serve", Short: "Run the HTTP API", RunE: runServe},
		&cobra.Command{Use: "sync", Short: "Import assignments from the LMS once", RunE: runSync},
		weekCmd(),
		&cobra.Command{Use: "vapid-keys", Short: "Generate a VAPID key pair for web push", RunE: runVAPIDKeys},
		&cobra.Command{Use: "backup", Short: "Upload an encrypted backup now", RunE: runBackup},
		&cobra.Command{Use: "restore <backup-id>", Short: "Restore the planner from a backup", Args: cobra.ExactArgs(1), RunE: runRestore},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds what every command needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *sql.DB
	planner *state.Container
}

func setup() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	planner := state.NewContainer(store.NewSnapshotStore(db), logger)
	planner.SetClock(func() time.Time { return time.Now().In(loc) })
	if err := planner.Load(); err != nil {
		db.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, db: db, planner: planner}, nil
}

func (a *app) syncer(callback lms.StatusCallback) *lms.Syncer {
	return lms.NewSyncer(lms.StubSource{Delay: 2 * time.Second}, a.planner, store.NewSyncRunStore(a.db), a.logger, callback)
}

func (a *app) backupManager(callback backup.StatusCallback) *backup.Manager {
	s3 := a.cfg.S3
	return backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  s3.Endpoint,
			Bucket:    s3.Bucket,
			Region:    s3.Region,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
		},
		Interval:      a.cfg.Backup.Interval,
		RetentionDays: a.cfg.Backup.RetentionDays,
	}, a.planner, store.NewBackupStore(a.db), a.logger, callback)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.db.Close()

	hub := ws.NewHub(a.logger)
	a.planner.Subscribe(hub.Listen)

	var (
		pushSvc *push.Service
		sender  push.Sender
		subs    notify.SubscriptionStore
	)
	if a.cfg.Push.Enabled() {
		pushSvc = push.NewService(a.cfg.Push)
		sender = pushSvc
		subs = store.NewPushStore(a.db)
	} else {
		a.logger.Info("push notifications disabled: VAPID keys not set")
	}

	scheduler := notify.NewScheduler(a.planner, sender, subs, a.logger, a.cfg.Notify.Interval)
	a.planner.Subscribe(func(act state.Action, _ model.Snapshot) {
		if notify.Affects(act) {
			scheduler.Trigger()
		}
	})

	syncer := a.syncer(func(st lms.Status) {
		hub.Broadcast(ws.NewMessage("sync", "status", 0, map[string]any{"in_progress": st.InProgress, "error": st.Error}))
	})
	backupMgr := a.backupManager(func(st backup.Status) {
		hub.Broadcast(ws.NewMessage("backup", "status", 0, map[string]any{"state": st.State, "in_progress": st.InProgress}))
	})

	srv := server.New(a.db, a.planner, hub, syncer, backupMgr, pushSvc, a.logger)
	srv.AllowOrigins(a.cfg.CORSOrigins...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler.Start(ctx)
	if a.cfg.Sync.Auto {
		syncer.Start(ctx, a.cfg.Sync.Interval)
	}
	backupMgr.Start(ctx)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("planner listening", "addr", "http://localhost:"+a.cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	a.logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	cancel()
	scheduler.Stop()
	syncer.Stop()
	backupMgr.Stop()
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.db.Close()

	res, err := a.syncer(nil).Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d new tasks from %d courses\n", len(res.Inserted), len(res.Courses))
	for _, t := range res.Inserted {
		fmt.Printf("  %s  %s (%s)\n", t.DueDate, t.Title, t.Course)
	}
	if len(res.Exams) > 0 || len(res.Classes) > 0 {
		fmt.Printf("Also found %d exams and %d class sessions\n", len(res.Exams), len(res.Classes))
	}
	return nil
}

func weekCmd() *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the weekly activity distribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.db.Close()

			snap := a.planner.Snapshot()
			week := aggregate.ForWeek(snap.Tasks, snap.Classes, snap.Exams, offset, a.planner.Now(), snap.Settings.Language)

			fmt.Println(week.Label)
			for _, d := range week.Days {
				fmt.Printf("  %-4s %2d tasks  %2d exams  %2d classes  %2d/%-2d done\n",
					d.Day, d.Assignments, d.Exams, d.Classes, d.Completed, d.Total)
			}
			fmt.Printf("Completion: %d%%", week.Stats.CompletionRate)
			if week.MostProductiveDay.Total > 0 {
				fmt.Printf("  Busiest: %s", week.MostProductiveDay.Day)
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "Weeks from the current week")
	return cmd
}

func runVAPIDKeys(cmd *cobra.Command, args []string) error {
	pub, priv, err := push.GenerateVAPIDKeys()
	if err != nil {
		return err
	}
	fmt.Printf("VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", pub, priv)
	return nil
}

func runBackup(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.db.Close()

	passphrase, err := readPassphrase()
	if err != nil {
		return err
	}
	id, err := a.backupManager(nil).RunNow(cmd.Context(), passphrase)
	if err != nil {
		return err
	}
	fmt.Printf("Backup %d uploaded\n", id)
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid backup id %q", args[0])
	}

	a, err := setup()
	if err != nil {
		return err
	}
	defer a.db.Close()

	passphrase, err := readPassphrase()
	if err != nil {
		return err
	}
	if err := a.backupManager(nil).Restore(cmd.Context(), id, passphrase); err != nil {
		return err
	}
	fmt.Printf("Restored backup %d\n", id)
	return nil
}

func readPassphrase() (string, error) {
	if p := os.Getenv("BACKUP_PASSPHRASE"); p != "" {
		return p, nil
	}
	fmt.Fprint(os.Stderr, "Passphrase: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return string(b), nil
}
