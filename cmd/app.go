package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/airecruiter/internal/ai"
	"github.com/spigell/airecruiter/internal/ai/gemini"
	"github.com/spigell/airecruiter/internal/ai/langchain"
	"github.com/spigell/airecruiter/internal/api"
	"github.com/spigell/airecruiter/internal/logger"
	"github.com/spigell/airecruiter/internal/notify"
	"github.com/spigell/airecruiter/internal/orchestrator"
	"github.com/spigell/airecruiter/internal/scraper"
	"github.com/spigell/airecruiter/internal/secrets"
	"github.com/spigell/airecruiter/internal/storage"
	"github.com/spigell/airecruiter/internal/utils"
)

const (
	providerGemini    = "gemini"
	providerLangchain = "langchain"
)

// application is everything a command needs, built once at startup.
type application struct {
	config       *Config
	logger       *zap.Logger
	store        *storage.Gateway
	orchestrator *orchestrator.Orchestrator
	ready        api.Readiness
}

// newApplication connects the store and builds the collaborators. Only the
// store is mandatory; a collaborator that cannot be built is logged and left
// uninitialized so the steps that need it report so.
func newApplication(ctx context.Context, config *Config, log *zap.Logger) (*application, error) {
	store, err := storage.Connect(ctx, config.MongoDB, log.Named("storage"))
	if err != nil {
		return nil, err
	}

	a := &application{
		config: config,
		logger: log,
		store:  store,
	}

	var (
		scr      orchestrator.Scraper
		matcher  orchestrator.Matcher
		notifier orchestrator.Notifier
	)

	if s, err := scraper.NewFromConfig(config.Scraper, log); err != nil {
		log.Error("scraper is not initialized", zap.Error(err))
	} else {
		scr = s
		a.ready.Scraper = true
	}

	if m, err := a.newMatcher(ctx); err != nil {
		log.Error("matcher is not initialized", zap.Error(err))
	} else if m != nil {
		matcher = m
		a.ready.Matcher = true
	}

	if n, err := a.newNotifier(ctx); err != nil {
		log.Error("email service is not initialized", zap.Error(err))
	} else if n != nil {
		notifier = n
		a.ready.Email = true
	}

	a.orchestrator = orchestrator.New(store, scr, matcher, notifier, log.Named("orchestrator"))

	log.Info("application initialized",
		zap.Bool("scraper", a.ready.Scraper),
		zap.Bool("matcher", a.ready.Matcher),
		zap.Bool("email", a.ready.Email),
	)

	return a, nil
}

func (a *application) close(ctx context.Context) {
	if err := a.store.Close(ctx); err != nil {
		a.logger.Error("closing mongodb connection", zap.Error(err))
	}
}

// newMatcher returns nil without error when AI matching is disabled.
func (a *application) newMatcher(ctx context.Context) (*ai.Matcher, error) {
	cfg := a.config.AI
	if !cfg.Enabled {
		a.logger.Info("ai matching is disabled")
		return nil, nil
	}

	gcfg := cfg.Gemini
	if gcfg == nil {
		gcfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  gcfg.APIKeyFile,
		Value: gcfg.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	var generator ai.Generator
	switch provider {
	case "", providerGemini:
		provider = providerGemini
		generator, err = gemini.NewGenerator(ctx, gemini.Config{
			APIKey:     apiKey,
			Model:      gcfg.Model,
			MaxRetries: gcfg.MaxRetries,
		}, logger.ForCollaborator(a.logger, "gemini", provider, gcfg.Model))
	case providerLangchain:
		generator, err = langchain.NewGoogleAI(ctx, apiKey, gcfg.Model)
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	minScore := cfg.MinimumFitScore
	if minScore <= 0 {
		minScore = ai.DefaultMinScore
	}

	return ai.NewMatcher(generator, minScore, gcfg.MaxLogLength,
		logger.ForCollaborator(a.logger, "matcher", provider, generator.Model())), nil
}

// newNotifier returns nil without error when email is disabled.
func (a *application) newNotifier(ctx context.Context) (*notify.Service, error) {
	cfg := a.config.Email
	if !cfg.Enabled {
		a.logger.Info("email notifications are disabled")
		return nil, nil
	}

	if len(cfg.To) == 0 {
		return nil, errors.New("email.to has no recipients")
	}

	var password string
	if strings.ToLower(strings.TrimSpace(cfg.Provider)) != notify.GmailSenderName {
		p, err := secrets.Load(secrets.Source{
			Name:  "smtp password",
			File:  cfg.SMTP.PasswordFile,
			Value: cfg.SMTP.Password,
			Env:   "SMTP_PASSWORD",
		})
		if err != nil {
			return nil, err
		}
		password = p
	}

	sender, err := notify.NewSender(ctx, cfg.Config, password)
	if err != nil {
		return nil, err
	}

	from := utils.FirstNonEmpty(cfg.From, cfg.SMTP.Username)

	return notify.NewService(sender, a.store, from, cfg.To,
		logger.ForCollaborator(a.logger, "email", sender.Name(), "")), nil
}

// bootstrap builds the logger, reads the config and starts the application.
// The caller owns the returned application and must close it.
func bootstrap(ctx context.Context) (*application, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		log.Error("getting a config", zap.Error(err))
		return nil, err
	}

	log.Info("starting the airecruiter", zap.String("version", version))

	a, err := newApplication(ctx, config, log)
	if err != nil {
		log.Error("application startup failed", zap.Error(err))
		return nil, err
	}

	return a, nil
}
