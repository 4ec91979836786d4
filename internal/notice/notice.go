// Package notice models the short user-facing messages returned next to API
// results (the front-end shows them as toasts).
package notice

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func Success(title, msg string) Notice { return Notice{Level: LevelSuccess, Title: title, Message: msg} }
func Info(title, msg string) Notice    { return Notice{Level: LevelInfo, Title: title, Message: msg} }
func Warning(title, msg string) Notice { return Notice{Level: LevelWarning, Title: title, Message: msg} }
func Error(title, msg string) Notice   { return Notice{Level: LevelError, Title: title, Message: msg} }
