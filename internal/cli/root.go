package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/missionctl/internal/backup"
	"github.com/julianstephens/missionctl/internal/config"
	"github.com/julianstephens/missionctl/internal/engine"
	"github.com/julianstephens/missionctl/internal/logger"
	"github.com/julianstephens/missionctl/internal/storage"
)

type Context struct {
	Store     storage.Provider
	Engine    *engine.Engine
	Config    config.Config
	ConfigDir string
	Out       io.Writer
	In        io.Reader

	loaded bool
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Printf writes to the command output
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

// Println writes to the command output
func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// Load opens the store and reads the engine state from it. Repeated calls
// are no-ops.
func (c *Context) Load() error {
	if c.loaded {
		return nil
	}
	if err := c.Store.Load(); err != nil {
		return err
	}
	if err := c.Engine.Load(); err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	c.loaded = true
	return nil
}

// Backups returns the backup manager for the configured directory
func (c *Context) Backups() *backup.Manager {
	return backup.NewManager(c.ConfigDir)
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	_, err := c.Backups().CreateBackup(c.Engine)
	if err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Confirm prints prompt and reads a y/N answer
func (c *Context) Confirm(prompt string) (bool, error) {
	c.Printf("%s [y/N]: ", prompt)

	in := c.In
	if in == nil {
		in = os.Stdin
	}
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
