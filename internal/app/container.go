// Package app provides the dependency injection container for the application.
package app

import (
	"github.com/liang/fanqie/internal/domain"
	"github.com/liang/fanqie/internal/infra/config"
	"github.com/liang/fanqie/internal/infra/jsonstore"
	"github.com/liang/fanqie/internal/infra/keyring"
	"github.com/liang/fanqie/internal/infra/llm"
	"github.com/liang/fanqie/internal/infra/logging"
	"github.com/liang/fanqie/internal/usecase"
)

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Tasks            domain.TaskRepository
	StoreInitializer domain.StoreInitializer
	Clock            domain.Clock
	Model            domain.LanguageModel
	Credentials      domain.CredentialStore
	Settings         domain.SettingsStore
	Logger           domain.Logger

	// Tree is the in-memory task cache shared by every use case.
	Tree *domain.TaskTree

	// Warnings found while loading settings.
	Warnings []string

	Paths domain.Paths

	closeLogger func() error
}

// New creates a new Container rooted at the given paths.
func New(paths domain.Paths) (*Container, error) {
	settingsStore := config.NewStore(paths.ConfigPath())
	settings, err := settingsStore.Load()
	if err != nil {
		return nil, err
	}

	clock := domain.RealClock{}
	store := jsonstore.New(paths.StorePath(), clock)
	logger := logging.New(paths.LogPath(), logging.ParseLevel(settings.Log.Level))

	return &Container{
		Tasks:            store,
		StoreInitializer: store,
		Clock:            clock,
		Model:            llm.NewClient(settings.Endpoint),
		Credentials:      keyring.New(),
		Settings:         settingsStore,
		Logger:           logger,
		Tree:             domain.NewTaskTree(),
		Warnings:         settings.Warnings,
		Paths:            paths,
		closeLogger:      logger.Close,
	}, nil
}

// Deps lists the ports for NewWithDeps.
type Deps struct {
	Tasks       domain.TaskRepository
	Clock       domain.Clock
	Model       domain.LanguageModel
	Credentials domain.CredentialStore
	Settings    domain.SettingsStore
	Logger      domain.Logger
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(deps Deps) *Container {
	c := &Container{
		Tasks:       deps.Tasks,
		Clock:       deps.Clock,
		Model:       deps.Model,
		Credentials: deps.Credentials,
		Settings:    deps.Settings,
		Logger:      deps.Logger,
		Tree:        domain.NewTaskTree(),
	}
	if initializer, ok := deps.Tasks.(domain.StoreInitializer); ok {
		c.StoreInitializer = initializer
	}
	if c.Clock == nil {
		c.Clock = domain.RealClock{}
	}
	return c
}

// Close releases resources held by the container.
func (c *Container) Close() error {
	if c.closeLogger == nil {
		return nil
	}
	return c.closeLogger()
}

// UseCase factory methods

// ModelAccess returns the credential resolver for the language model.
func (c *Container) ModelAccess() *usecase.ModelAccess {
	return usecase.NewModelAccess(c.Credentials, c.Settings)
}

// IntentResolver returns a resolver over the local rules and the remote model.
func (c *Container) IntentResolver() *usecase.IntentResolver {
	return usecase.NewIntentResolver(
		domain.NewLocalIntentParser(c.Clock),
		usecase.NewRemoteIntentParser(c.Model, c.ModelAccess(), c.Clock),
		c.Logger,
	)
}

// LoadTasksUseCase returns a new LoadTasks use case.
func (c *Container) LoadTasksUseCase() *usecase.LoadTasks {
	return usecase.NewLoadTasks(c.Tasks, c.Tree)
}

// AddTaskUseCase returns a new AddTask use case.
func (c *Container) AddTaskUseCase() *usecase.AddTask {
	return usecase.NewAddTask(c.Tasks, c.Tree, c.IntentResolver(), c.ModelAccess(), c.Clock, c.Logger)
}

// PreviewIntentUseCase returns a new PreviewIntent use case.
func (c *Container) PreviewIntentUseCase() *usecase.PreviewIntent {
	return usecase.NewPreviewIntent(c.IntentResolver(), c.ModelAccess())
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Tree, c.Clock)
}

// EditTaskUseCase returns a new EditTask use case.
func (c *Container) EditTaskUseCase() *usecase.EditTask {
	return usecase.NewEditTask(c.Tasks, c.Tree, c.Clock, c.Logger)
}

// ToggleTaskUseCase returns a new ToggleTask use case.
func (c *Container) ToggleTaskUseCase() *usecase.ToggleTask {
	return usecase.NewToggleTask(c.Tasks, c.Tree, c.Logger)
}

// SetStatusUseCase returns a new SetStatus use case.
func (c *Container) SetStatusUseCase() *usecase.SetStatus {
	return usecase.NewSetStatus(c.Tasks, c.Tree, c.Logger)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Tasks, c.Tree, c.Logger)
}

// DecomposeTaskUseCase returns a new DecomposeTask use case.
func (c *Container) DecomposeTaskUseCase() *usecase.DecomposeTask {
	return usecase.NewDecomposeTask(c.Tasks, c.Tree, c.Model, c.ModelAccess(), c.Logger)
}

// ImportTasksUseCase returns a new ImportTasks use case.
func (c *Container) ImportTasksUseCase() *usecase.ImportTasks {
	return usecase.NewImportTasks(c.Tasks, c.Tree, c.Clock, c.Logger)
}

// ShowModelStatusUseCase returns a new ShowModelStatus use case.
func (c *Container) ShowModelStatusUseCase() *usecase.ShowModelStatus {
	return usecase.NewShowModelStatus(c.Credentials, c.Settings)
}

// ConfigureModelUseCase returns a new ConfigureModel use case.
func (c *Container) ConfigureModelUseCase() *usecase.ConfigureModel {
	return usecase.NewConfigureModel(c.Credentials, c.Settings, c.Logger)
}

// ClearModelKeyUseCase returns a new ClearModelKey use case.
func (c *Container) ClearModelKeyUseCase() *usecase.ClearModelKey {
	return usecase.NewClearModelKey(c.Credentials, c.Logger)
}

// MigrateLegacyKeyUseCase returns a new MigrateLegacyKey use case.
func (c *Container) MigrateLegacyKeyUseCase() *usecase.MigrateLegacyKey {
	return usecase.NewMigrateLegacyKey(c.Credentials, c.Settings, c.Logger)
}
