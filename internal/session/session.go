// Package session implements the interactive browse loop: paging through
// catalog entries, filtering them, viewing records and managing the
// configured repositories.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/adamancini/neosearch/internal/catalog"
	"github.com/adamancini/neosearch/internal/changes"
	"github.com/adamancini/neosearch/internal/config"
	"github.com/adamancini/neosearch/internal/interactive"
	"github.com/adamancini/neosearch/internal/output"
	"github.com/adamancini/neosearch/internal/pager"
	"github.com/adamancini/neosearch/internal/query"
	"github.com/adamancini/neosearch/internal/search"
	"github.com/adamancini/neosearch/internal/types"
)

// State is the step of the loop the session is in.
type State int

const (
	StateBrowsing State = iota
	StateFiltering
	StateSelectingRecord
	StateManagingRepositories
	StateAddingRepository
	StateDeletingRepository
	StateScopingRepository
	StateQuit
)

func (s State) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateFiltering:
		return "filtering"
	case StateSelectingRecord:
		return "selecting record"
	case StateManagingRepositories:
		return "managing repositories"
	case StateAddingRepository:
		return "adding repository"
	case StateDeletingRepository:
		return "deleting repository"
	case StateScopingRepository:
		return "scoping repository"
	case StateQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Prompts and messages shown to the user.
const (
	promptChoice     = "Enter your choice: "
	promptQuery      = `Enter your search query (e.g., 'algebra', 'description="math"', 'tags="science"', 'category="math"'): `
	promptRecord     = "Enter the record number to view full details: "
	promptRepoAction = "Press 'a' to add a repository, 'd' to delete a repository, or 'q' to return: "
	promptRepoAdd    = "Enter the repository path or URL to add: "
	promptRepoDelete = "Enter the number of the repository to remove: "
	promptRepoScope  = "Enter the number of the repository to filter by (or 0 for global search): "

	msgNoResults     = "No results found!"
	msgInvalidInput  = "Invalid input. Please try again."
	msgInvalidNumber = "Invalid input. Please enter a valid number."
	msgInvalidRecord = "Invalid selection. Please choose a valid number."
	msgInvalidRepo   = "Invalid repository number."
	msgReloaded      = "Repositories changed on disk; results reloaded."
)

// Repositories loads and validates repositories.
type Repositories interface {
	catalog.Loader
	Validate(ctx context.Context, ref string) (bool, string)
}

// FilterState is the active keyword filter. An empty Field means the
// keyword is matched against every field.
type FilterState struct {
	Field string
	Value string
}

// Session is one interactive browse loop. It is not safe for concurrent
// use.
type Session struct {
	configPath string
	cfg        *config.Config
	repos      Repositories

	prompter  *interactive.Prompter
	presenter *output.Presenter
	detector  *changes.Detector
	logger    *slog.Logger
	perPage   int

	store    *catalog.Store
	filter   FilterState
	scope    string
	filtered []catalog.Entry
	cursor   *pager.Cursor
	state    State
}

// Option configures a Session.
type Option func(*Session)

// WithPerPage sets the number of entries per page.
func WithPerPage(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.perPage = n
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithDetector makes the session check for config and repository changes
// before each turn and reload when something changed.
func WithDetector(d *changes.Detector) Option {
	return func(s *Session) {
		s.detector = d
	}
}

// New creates a session over the config loaded from configPath.
func New(configPath string, cfg *config.Config, repos Repositories, prompter *interactive.Prompter, presenter *output.Presenter, opts ...Option) *Session {
	s := &Session{
		configPath: configPath,
		cfg:        cfg,
		repos:      repos,
		prompter:   prompter,
		presenter:  presenter,
		logger:     slog.New(slog.DiscardHandler),
		perPage:    pager.DefaultPerPage,
		store:      catalog.NewStore(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cursor = pager.New(0, s.perPage)
	return s
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Filter returns the active keyword filter.
func (s *Session) Filter() FilterState { return s.filter }

// Scope returns the repository results are restricted to, or "".
func (s *Session) Scope() string { return s.scope }

// Cursor returns the pagination cursor over the filtered entries.
func (s *Session) Cursor() *pager.Cursor { return s.cursor }

// Results returns the entries matching the active filter and scope.
func (s *Session) Results() []catalog.Entry { return s.filtered }

// PageEntries returns the entries on the current page.
func (s *Session) PageEntries() []catalog.Entry {
	start, end := s.cursor.Bounds()
	return s.filtered[start:end]
}

// Statuses validates every configured repository.
func (s *Session) Statuses(ctx context.Context) []output.RepositoryStatus {
	refs := s.cfg.Repositories()
	statuses := make([]output.RepositoryStatus, len(refs))
	for i, ref := range refs {
		ok, detail := s.repos.Validate(ctx, ref)
		statuses[i] = output.RepositoryStatus{Ref: ref, OK: ok, Detail: detail, Checked: true}
	}
	return statuses
}

// Reload rebuilds the entry store from the configured repositories and
// re-applies the active filter and scope.
func (s *Session) Reload(ctx context.Context) {
	s.store = catalog.Build(ctx, s.cfg.Repositories(), s.repos)
	for _, f := range s.store.Failures() {
		s.logger.Debug("repository skipped", "repository", f.Repository, "err", f.Err)
	}
	s.refilter()
}

func (s *Session) refilter() {
	s.filtered = search.Apply(s.store.Entries(), search.Criteria{
		Keyword:    s.filter.Value,
		Field:      s.filter.Field,
		Repository: s.scope,
	})
	s.cursor.Reset(len(s.filtered))
}

// Run validates the repositories, loads them and processes commands until
// the user quits or input ends.
func (s *Session) Run(ctx context.Context) error {
	s.presenter.LoadWarnings(s.Statuses(ctx))
	s.Reload(ctx)

	for s.state != StateQuit {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.checkChanges(ctx)
		s.render()

		line, err := s.prompter.Line(promptChoice)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.state = StateQuit
				break
			}
			return err
		}

		if err := s.Handle(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) render() {
	if len(s.filtered) == 0 {
		s.presenter.Error(msgNoResults)
	} else {
		s.presenter.Page(s.PageEntries(), s.cursor.Page(), s.cursor.TotalPages())
	}
	s.presenter.Menu()
}

// checkChanges reloads the config and entries when the detector reports
// a change made outside the session.
func (s *Session) checkChanges(ctx context.Context) {
	if s.detector == nil {
		return
	}
	configChanged, err := s.detector.ConfigChanged()
	if err != nil {
		s.logger.Warn("config check failed", "path", s.configPath, "err", err)
	}
	if configChanged {
		cfg, err := config.Load(s.configPath)
		if err != nil {
			s.logger.Warn("reload config", "path", s.configPath, "err", err)
		} else {
			s.cfg = cfg
		}
	}
	reposChanged := s.detector.AnyRepositoryChanged(ctx, s.cfg.Repositories())
	if !configChanged && !reposChanged {
		return
	}
	s.Reload(ctx)
	s.presenter.Info(msgReloaded)
}

// Handle executes one command line. Only I/O failures are returned; user
// errors are reported through the presenter.
func (s *Session) Handle(ctx context.Context, line string) error {
	cmd, err := types.ParseCommand(line)
	if err != nil {
		s.presenter.Error(msgInvalidInput)
		return nil
	}

	switch cmd {
	case types.CommandNext:
		s.cursor.Next()
	case types.CommandPrevious:
		s.cursor.Prev()
	case types.CommandFilter:
		return s.runStep(StateFiltering, s.applyQuery)
	case types.CommandClear:
		s.filter = FilterState{}
		s.scope = ""
		s.refilter()
	case types.CommandSelect:
		return s.runStep(StateSelectingRecord, s.selectRecord)
	case types.CommandRepositories:
		return s.runStep(StateManagingRepositories, func() error { return s.manageRepositories(ctx) })
	case types.CommandFilterRepository:
		return s.runStep(StateScopingRepository, s.scopeRepository)
	case types.CommandQuit:
		s.state = StateQuit
	}
	return nil
}

// runStep moves to state, runs fn and returns to browsing unless input
// ended. Running out of input ends the session.
func (s *Session) runStep(state State, fn func() error) error {
	s.state = state
	err := fn()
	if errors.Is(err, io.EOF) {
		s.state = StateQuit
		return nil
	}
	if s.state != StateQuit {
		s.state = StateBrowsing
	}
	return err
}

// applyQuery replaces the keyword filter with the one parsed from the
// user's query. The repository scope is kept.
func (s *Session) applyQuery() error {
	line, err := s.prompter.Line(promptQuery)
	if err != nil {
		return err
	}

	q := query.Parse(line)
	if field, value, ok := q.Primary(); ok {
		s.filter = FilterState{Field: field, Value: value}
	} else if q.Residual != "" {
		s.filter = FilterState{Value: q.Residual}
	} else {
		return nil
	}
	s.refilter()
	return nil
}

// selectRecord shows the full record for a row number on the current page.
func (s *Session) selectRecord() error {
	n, err := s.prompter.Int(promptRecord)
	if errors.Is(err, interactive.ErrNotANumber) {
		s.presenter.Error(msgInvalidNumber)
		return nil
	} else if err != nil {
		return err
	}

	rows := s.PageEntries()
	if n < 1 || n > len(rows) {
		s.presenter.Error(msgInvalidRecord)
		return nil
	}
	s.presenter.Record(rows[n-1])
	return nil
}

func (s *Session) manageRepositories(ctx context.Context) error {
	s.presenter.Repositories(s.Statuses(ctx))

	action, err := s.prompter.Line(promptRepoAction)
	if err != nil {
		return err
	}

	switch action {
	case "a", "A":
		s.state = StateAddingRepository
		return s.addRepository(ctx)
	case "d", "D":
		s.state = StateDeletingRepository
		return s.deleteRepository(ctx)
	case "q", "Q":
		return nil
	default:
		s.presenter.Error(msgInvalidInput)
		return nil
	}
}

func (s *Session) addRepository(ctx context.Context) error {
	ref, err := s.prompter.Line(promptRepoAdd)
	if err != nil {
		return err
	}

	if err := s.updateConfig(ctx, func(c *config.Config) error { return c.Add(ref) }); err != nil {
		s.presenter.Error(catalog.ErrorMessage(err))
		return nil
	}
	s.presenter.Success(fmt.Sprintf("Repository '%s' added.", ref))
	return nil
}

func (s *Session) deleteRepository(ctx context.Context) error {
	n, err := s.prompter.Int(promptRepoDelete)
	if errors.Is(err, interactive.ErrNotANumber) {
		s.presenter.Error(msgInvalidRepo)
		return nil
	} else if err != nil {
		return err
	}

	var removed string
	err = s.updateConfig(ctx, func(c *config.Config) error {
		ref, err := c.RemoveAt(n)
		removed = ref
		return err
	})
	if err != nil {
		s.presenter.Error(catalog.ErrorMessage(err))
		return nil
	}

	if s.scope == removed {
		s.scope = ""
		s.refilter()
	}
	s.presenter.Error(fmt.Sprintf("Repository '%s' removed.", removed))
	return nil
}

// updateConfig persists a config mutation and reloads the entries.
func (s *Session) updateConfig(ctx context.Context, fn func(*config.Config) error) error {
	cfg, err := config.Update(s.configPath, fn)
	if err != nil {
		return err
	}
	s.cfg = cfg
	if s.detector != nil {
		// The session's own write is not an outside change.
		_, _ = s.detector.ConfigChanged()
	}
	s.Reload(ctx)
	return nil
}

// scopeRepository restricts results to one repository, or lifts the
// restriction for 0. The keyword filter is kept.
func (s *Session) scopeRepository() error {
	refs := s.cfg.Repositories()
	statuses := make([]output.RepositoryStatus, len(refs))
	for i, ref := range refs {
		statuses[i] = output.RepositoryStatus{Ref: ref}
	}
	s.presenter.Repositories(statuses)

	n, err := s.prompter.Int(promptRepoScope)
	if errors.Is(err, interactive.ErrNotANumber) {
		s.presenter.Error(msgInvalidNumber)
		return nil
	} else if err != nil {
		return err
	}

	switch {
	case n == 0:
		s.scope = ""
	case n >= 1 && n <= len(refs):
		s.scope = refs[n-1]
	default:
		s.presenter.Error(msgInvalidRepo)
		return nil
	}
	s.refilter()
	return nil
}
