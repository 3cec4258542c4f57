package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/juho05/log"
)

var values = make(map[string]any)

func Port() (port int) {
	if p, ok := values["PORT"]; ok {
		return p.(int)
	}
	defer func() {
		values["PORT"] = port
	}()
	def := 8080
	portStr := os.Getenv("PORT")
	if portStr == "" {
		return def
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Errorf("Invalid port '%s': not a number. Using default: %d", portStr, def)
		return def
	}
	return port
}

func LogLevel() (sev log.Severity) {
	if l, ok := values["LOG_LEVEL"]; ok {
		return l.(log.Severity)
	}
	defer func() {
		values["LOG_LEVEL"] = sev
	}()
	def := log.INFO
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		return def
	}
	level, err := strconv.Atoi(logLevelStr)
	if err != nil {
		log.Errorf("Invalid log level '%s': not a number. Using default: %d", logLevelStr, def)
		return def
	}
	if level < int(log.NONE) || level > int(log.TRACE) {
		log.Errorf("Invalid log level. Valid values: 0 (none), 1 (fatal), 2 (error), 3 (warning), 4 (info), 5 (trace). Using default: %d", def)
		return def
	}
	return log.Severity(level)
}

func LogFile() (file *os.File) {
	if f, ok := values["LOG_FILE"]; ok {
		return f.(*os.File)
	}
	defer func() {
		values["LOG_FILE"] = file
	}()
	def := os.Stderr
	if os.Getenv("LOG_FILE") == "" {
		return def
	}
	appnd, _ := strconv.ParseBool(os.Getenv("LOG_APPEND"))
	if appnd {
		file, err := os.OpenFile(os.Getenv("LOG_FILE"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Errorf("Failed to open log file: %s. Using default: STDERR", err)
			return def
		}
		return file
	}
	file, err := os.Create(os.Getenv("LOG_FILE"))
	if err != nil {
		log.Errorf("Failed to create log file: %s. Using default: STDERR", err)
		return def
	}
	return file
}

func DBConnection() (con string) {
	if c, ok := values["DB_CONNECTION"]; ok {
		return c.(string)
	}
	defer func() {
		values["DB_CONNECTION"] = con
	}()
	def := "sessions.sqlite"
	con = os.Getenv("DB_CONNECTION")
	if con == "" {
		return def
	}
	return con
}

func AutoMigrate() (auto bool) {
	if a, ok := values["AUTO_MIGRATE"]; ok {
		return a.(bool)
	}
	defer func() {
		values["AUTO_MIGRATE"] = auto
	}()
	auto, _ = strconv.ParseBool(os.Getenv("AUTO_MIGRATE"))
	return auto
}

func BehindProxy() (behind bool) {
	if b, ok := values["BEHIND_PROXY"]; ok {
		return b.(bool)
	}
	defer func() {
		values["BEHIND_PROXY"] = behind
	}()
	behind, _ = strconv.ParseBool(os.Getenv("BEHIND_PROXY"))
	return behind
}

func TLSCert() (path string) {
	if c, ok := values["TLS_CERT"]; ok {
		return c.(string)
	}
	defer func() {
		values["TLS_CERT"] = path
	}()
	return os.Getenv("TLS_CERT")
}

func TLSKey() (path string) {
	if c, ok := values["TLS_KEY"]; ok {
		return c.(string)
	}
	defer func() {
		values["TLS_KEY"] = path
	}()
	return os.Getenv("TLS_KEY")
}

// AdminHost is the dedicated admin sub-domain. Sessions without a manager
// or admin role are rejected outright on this host.
func AdminHost() (host string) {
	if h, ok := values["ADMIN_HOST"]; ok {
		return h.(string)
	}
	defer func() {
		values["ADMIN_HOST"] = host
	}()
	return strings.ToLower(os.Getenv("ADMIN_HOST"))
}

func RecordAPIURL() (u string) {
	if r, ok := values["RECORD_API_URL"]; ok {
		return r.(string)
	}
	defer func() {
		values["RECORD_API_URL"] = u
	}()
	def := "http://localhost:3000/api"
	u = strings.TrimSuffix(os.Getenv("RECORD_API_URL"), "/")
	if u == "" {
		return def
	}
	return u
}

func RecordAPIKey() (key string) {
	if k, ok := values["RECORD_API_KEY"]; ok {
		return k.(string)
	}
	defer func() {
		values["RECORD_API_KEY"] = key
	}()
	return os.Getenv("RECORD_API_KEY")
}

func SessionSecret() (secret string) {
	if s, ok := values["SESSION_SECRET"]; ok {
		return s.(string)
	}
	defer func() {
		values["SESSION_SECRET"] = secret
	}()
	secret = os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Error("SESSION_SECRET is not set. Auth token markers will not survive restarts.")
	}
	return secret
}

// StaticDir points at the built front-end bundle. When empty no static
// files are served and page routes only redirect.
func StaticDir() (dir string) {
	if d, ok := values["STATIC_DIR"]; ok {
		return d.(string)
	}
	defer func() {
		values["STATIC_DIR"] = dir
	}()
	return os.Getenv("STATIC_DIR")
}

func LockPollInterval() (interval time.Duration) {
	if i, ok := values["LOCK_POLL_INTERVAL"]; ok {
		return i.(time.Duration)
	}
	defer func() {
		values["LOCK_POLL_INTERVAL"] = interval
	}()
	def := 15 * time.Second
	intervalStr := os.Getenv("LOCK_POLL_INTERVAL")
	if intervalStr == "" {
		return def
	}
	interval, err := time.ParseDuration(intervalStr)
	if err != nil || interval <= 0 {
		log.Errorf("Invalid lock poll interval '%s'. Using default: %s", intervalStr, def)
		return def
	}
	return interval
}
