// Package version хранит сведения о сборке voicedesk.
package version

import "fmt"

// Заполняются при сборке через -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return version, commit, date }

// String — краткая строка о сборке для логов и health checks.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
