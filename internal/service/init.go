package service

import (
	"encore-ai/config"
	"encore-ai/internal/notify"
)

type Service struct {
	Notifier *notify.Notifier
	Progress *notify.Hub
}

func NewService() *Service {
	return &Service{
		Notifier: notify.NewNotifier(config.Conf.Notify.WebhookURL),
		Progress: notify.DefaultHub,
	}
}
