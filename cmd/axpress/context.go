package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"AXpress/internal/app"
	"AXpress/internal/config"
	"AXpress/internal/logging"
)

type commandContext struct {
	configFlag   *string
	backendFlag  *string
	logLevelFlag *string

	configOnce sync.Once
	config     config.Config
	configErr  error

	app *app.Application
}

func newCommandContext(configFlag, backendFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		backendFlag:  backendFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		path := flagValue(c.configFlag)
		var cfg config.Config
		if path != "" {
			cfg = config.LoadFile(path)
		} else {
			cfg = config.Load()
		}

		if backend := flagValue(c.backendFlag); backend != "" {
			parsed, err := url.Parse(backend)
			if err != nil || parsed.Scheme == "" || parsed.Host == "" {
				c.configErr = fmt.Errorf("invalid --backend %q", backend)
				return
			}
			cfg.Backend.BaseURL = backend
		}
		if level := flagValue(c.logLevelFlag); level != "" {
			cfg.Logging.Level = level
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) application(ctx context.Context, logOut io.Writer) (*app.Application, error) {
	if c.app != nil {
		return c.app, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.app = app.New(ctx, cfg, logging.NewWithWriter(logOut, cfg.Logging.Level))
	return c.app, nil
}

func (c *commandContext) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}
