package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Build описывает сборку (отдаётся в /api/version и health).
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns version information populated via -ldflags.
func Info() (v, c, d string) { return version, commit, date }

// Current возвращает информацию о текущей сборке.
func Current() Build {
	return Build{Version: version, Commit: commit, Date: date}
}

func GetVersion() string { return version }

func GetCommit() string { return commit }

func GetDate() string { return date }

func String() string {
	return fmt.Sprintf("backoffice version=%s commit=%s date=%s", version, commit, date)
}
