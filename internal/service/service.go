package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/onexay/gitobs/internal/config"
	"github.com/onexay/gitobs/internal/repo"
	"github.com/onexay/gitobs/internal/types"
	"github.com/onexay/gitobs/internal/webhook"
)

// Service holds the repository, its webhooks and the delivery backends.
type Service struct {
	repo       *repo.Repository
	factory    *webhook.Factory
	deliveries webhook.DeliveryLog
	closers    []io.Closer
	logger     *slog.Logger

	mu    sync.RWMutex
	hooks map[string]*webhook.Recorder
	order []string
}

// ValidationError represents invalid input supplied by clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// HookNotFoundError signals an unknown webhook id.
type HookNotFoundError struct {
	ID string
}

func (e *HookNotFoundError) Error() string {
	return "webhook " + e.ID + " not found"
}

// New constructs the service wiring.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	switch cfg.Notify.Backend {
	case "", config.NotifyBackendMemory, config.NotifyBackendRedis:
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("unknown notify backend %q (want memory or redis)", cfg.Notify.Backend)}
	}

	svc := &Service{
		repo:   repo.New(repo.Options{Logger: logger.With("component", "repository")}),
		logger: logger,
		hooks:  make(map[string]*webhook.Recorder),
	}

	var sinks []webhook.Sink
	if cfg.Notify.ArchivePath != "" {
		archive, err := webhook.NewBoltArchive(cfg.Notify.ArchivePath)
		if err != nil {
			return nil, fmt.Errorf("open delivery archive: %w", err)
		}
		sinks = append(sinks, archive)
		svc.closers = append(svc.closers, archive)
		svc.deliveries = archive
	}

	if cfg.Notify.Backend == config.NotifyBackendRedis {
		sink, err := webhook.NewRedisSink(cfg.Notify.Redis)
		if err != nil {
			_ = svc.Close()
			return nil, err
		}
		sinks = append(sinks, sink)
		svc.closers = append(svc.closers, sink)
		if svc.deliveries == nil {
			svc.deliveries = sink
		}
	}

	if svc.deliveries == nil {
		archive := webhook.NewMemoryArchive()
		sinks = append(sinks, archive)
		svc.deliveries = archive
	}

	svc.factory = webhook.NewFactory(webhook.Options{
		Sinks:   sinks,
		Timeout: cfg.Notify.Timeout,
		Logger:  logger.With("component", "webhook"),
	})

	if cfg.HooksFile != "" {
		specs, err := config.LoadHooks(cfg.HooksFile)
		if err != nil {
			_ = svc.Close()
			return nil, err
		}
		for _, spec := range specs {
			if _, err := svc.AddWebHook(spec.Branch, spec.Event); err != nil {
				_ = svc.Close()
				return nil, err
			}
		}
		logger.Info("registered webhooks from file", "path", cfg.HooksFile, "count", len(specs))
	}

	return svc, nil
}

// Close releases delivery backends.
func (s *Service) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Repository exposes the underlying repository.
func (s *Service) Repository() *repo.Repository {
	return s.repo
}

// AddWebHook registers a recorder watching branch for the named event type.
func (s *Service) AddWebHook(branch, event string) (*webhook.Recorder, error) {
	if branch == "" {
		return nil, &ValidationError{Message: "branch is required"}
	}
	typ, err := repo.ParseEventType(event)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	hook := s.factory.New(branch, typ)

	s.mu.Lock()
	s.hooks[hook.ID()] = hook
	s.order = append(s.order, hook.ID())
	s.mu.Unlock()

	s.repo.AddWebHook(hook)
	s.logger.Info("webhook registered", "hook", hook.ID(), "branch", branch, "event", event)
	return hook, nil
}

// WebHooks lists registered webhooks in registration order.
func (s *Service) WebHooks() []types.Hook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]types.Hook, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.hooks[id].Model())
	}
	return result
}

// WebHook returns the recorder registered under id.
func (s *Service) WebHook(id string) (*webhook.Recorder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hook, ok := s.hooks[id]
	if !ok {
		return nil, &HookNotFoundError{ID: id}
	}
	return hook, nil
}

// Deliveries returns the delivery journal of hook id.
func (s *Service) Deliveries(ctx context.Context, id string) ([]types.Delivery, error) {
	if _, err := s.WebHook(id); err != nil {
		return nil, err
	}
	return s.deliveries.Deliveries(ctx, id)
}

// Branches summarises every branch.
func (s *Service) Branches() ([]types.Branch, error) {
	branches := s.repo.Branches()
	result := make([]types.Branch, 0, len(branches))
	for _, b := range branches {
		summary, _, err := s.Branch(b.Name())
		if err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	return result, nil
}

// Branch returns a branch summary and its history.
func (s *Service) Branch(name string) (types.Branch, []types.Commit, error) {
	commits, err := s.repo.Commits(repo.BranchRef(name))
	if err != nil {
		return types.Branch{}, nil, err
	}
	history := make([]types.Commit, 0, len(commits))
	for _, c := range commits {
		history = append(history, c.Model())
	}
	summary := types.Branch{Name: name, Commits: len(commits)}
	if n := len(commits); n > 0 {
		summary.Head = commits[n-1].ID()
	}
	return summary, history, nil
}

// CreateBranch snapshots source into a new branch called name.
func (s *Service) CreateBranch(source, name string) (types.Branch, error) {
	if source == "" || name == "" {
		return types.Branch{}, &ValidationError{Message: "source and name are required"}
	}
	if _, err := s.repo.NewBranch(repo.BranchRef(source), name); err != nil {
		return types.Branch{}, err
	}
	summary, _, err := s.Branch(name)
	return summary, err
}

// Commit records changes by author on branch.
func (s *Service) Commit(branch, author string, changes []string) (types.Commit, error) {
	if branch == "" {
		return types.Commit{}, &ValidationError{Message: "branch is required"}
	}
	if author == "" {
		return types.Commit{}, &ValidationError{Message: "author is required"}
	}
	c, err := s.repo.Commit(repo.BranchRef(branch), author, changes)
	if err != nil {
		return types.Commit{}, err
	}
	return c.Model(), nil
}

// Merge merges source into target and returns the target summary.
func (s *Service) Merge(source, target string) (types.Branch, error) {
	if source == "" || target == "" {
		return types.Branch{}, &ValidationError{Message: "source and target are required"}
	}
	if err := s.repo.Merge(repo.BranchRef(source), repo.BranchRef(target)); err != nil {
		return types.Branch{}, err
	}
	summary, _, err := s.Branch(target)
	return summary, err
}

// Compare renders the unified diff between two branch histories.
func (s *Service) Compare(source, target string) (string, error) {
	if source == "" || target == "" {
		return "", &ValidationError{Message: "source and target query parameters required"}
	}
	return s.repo.Compare(repo.BranchRef(source), repo.BranchRef(target))
}
