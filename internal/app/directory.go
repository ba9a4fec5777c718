package app

import (
	"go.uber.org/zap"

	"github.com/handii-app/volunteer-directory/internal/config"
	"github.com/handii-app/volunteer-directory/internal/logger"
	"github.com/handii-app/volunteer-directory/pkg/httpclient"
	"github.com/handii-app/volunteer-directory/pkg/volunteers"
)

type sugarer interface {
	Sugar() *zap.SugaredLogger
}

// NewDirectoryClient builds the volunteer directory client from config,
// routing resty's internal logging to zap when log supports it.
func NewDirectoryClient(cfg *config.Config, log logger.Logger) *volunteers.Client {
	if log == nil {
		log = &logger.NopLogger{}
	}

	opts := httpclient.Options{Timeout: cfg.DirectoryTimeout}
	if s, ok := log.(sugarer); ok {
		opts.Logger = s.Sugar()
	}

	return volunteers.NewWithHTTPClient(volunteers.Config{
		BaseURL: cfg.DirectoryBaseURL,
		Timeout: cfg.DirectoryTimeout,
	}, httpclient.NewRestyClientWithOptions(opts), log)
}
