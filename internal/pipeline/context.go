package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/xR0am/contribpulse/internal/interval"
	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/pkg/logger"
)

// Context is the immutable-per-run bag threaded through every step.
// Child loggers are derived per step; everything else is shared
// read-only across branches.
type Context struct {
	RepoID    string
	Range     interval.Range
	Logger    *logrus.Entry
	Scoring   *models.ScoringConfig
	Tags      []models.TagConfig
	Overwrite bool
	OutputDir string
	Workers   int
	Intervals []interval.Type
}

// NewContext builds a run context with defaults filled in.
func NewContext(name string) *Context {
	return &Context{
		Logger:    logger.WithComponent(name),
		Scoring:   models.NewScoringConfig(),
		Tags:      models.DefaultTagConfigs(),
		Workers:   4,
		Intervals: []interval.Type{interval.Day, interval.Week, interval.Month},
	}
}

// WithRepo returns a copy of the context scoped to one repository.
// The copy shares config and logger ancestry with its parent.
func (c *Context) WithRepo(repoID string) *Context {
	child := *c
	child.RepoID = repoID
	child.Logger = c.StepLogger("").WithField("repository", repoID)
	return &child
}

// StepLogger derives the child logger for a named step.
func (c *Context) StepLogger(name string) *logrus.Entry {
	entry := c.Logger
	if entry == nil {
		entry = logrus.NewEntry(logger.GetLogger())
	}
	if name == "" {
		return entry
	}
	return entry.WithField("step", name)
}

func (c *Context) workerLimit() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return 1
}
