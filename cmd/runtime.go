package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lessonflow/internal/config"
	"github.com/abhisek/lessonflow/internal/learner"
	"github.com/abhisek/lessonflow/internal/lesson"
	"github.com/abhisek/lessonflow/internal/logger"
	"github.com/abhisek/lessonflow/internal/player"
	"github.com/abhisek/lessonflow/internal/store"
)

const closeTimeout = 10 * time.Second

// runtime is everything a command needs for one learner.
type runtime struct {
	cfg   config.Config
	log   *logger.Logger
	store *store.DocumentStore
	env   *player.Env
}

// loadConfig reads .env and LESSONFLOW_* variables, then applies flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env")
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, err
	}

	overrides := map[string]*string{
		"learner":    &cfg.LearnerID,
		"backend":    &cfg.Backend,
		"dsn":        &cfg.DSN,
		"redis-addr": &cfg.RedisAddr,
		"lessons":    &cfg.LessonsPath,
	}
	for name, field := range overrides {
		if v, _ := cmd.Flags().GetString(name); v != "" {
			*field = v
		}
	}

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadCatalog(cfg config.Config) (*lesson.Catalog, error) {
	if cfg.LessonsPath == "" {
		return lesson.DefaultCatalog()
	}
	return lesson.LoadCatalog(cfg.LessonsPath)
}

// openRuntime resolves the identity, opens its store and starts the
// learner session.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDir(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	log, err := logger.New(cfg.LogMode, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("load lessons: %w", err)
	}

	kv, err := store.NewFileKV(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}
	id, err := learner.ResolveIdentity(cfg, kv)
	if err != nil {
		return nil, fmt.Errorf("resolve learner: %w", err)
	}
	st, err := learner.OpenStore(ctx, cfg, id, kv, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sess := learner.NewSession(id, st, log)
	sess.Log.Info("learner session started", "store", st.Kind(), "lessons", cat.Len())

	return &runtime{
		cfg:   cfg,
		log:   log,
		store: st,
		env:   player.NewEnv(cat, sess, cfg.SlideDuration),
	}, nil
}

// Close drains pending progress writes and releases the store.
func (r *runtime) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	err := r.env.Session.Close(ctx)
	if cerr := r.store.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close store: %w", cerr)
	}
	r.log.Sync()
	return err
}
