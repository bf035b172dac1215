package config

import "time"

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewRepositoryForTest(backend, dsn string) *Repository {
	return &Repository{backend: backend, dsn: dsn}
}

func NewSessionForTest(secret string, ttl time.Duration) *Session {
	return &Session{secret: secret, ttl: ttl}
}

func NewTelegramForTest(botToken, webhookSecret string) *Telegram {
	return &Telegram{botToken: botToken, webhookSecret: webhookSecret}
}

func NewAlertForTest(botToken, channelID string) *Alert {
	return &Alert{botToken: botToken, channelID: channelID}
}
