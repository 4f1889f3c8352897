package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tally/internal/evaluator"
	"tally/internal/object"
	"tally/internal/parser"
	"tally/internal/repl"
	"tally/internal/util"
)

const (
	DefaultRootPath   = "."
	DefaultConfigFile = "tally.toml"
	ScriptExtension   = ".tly"
)

var (
	// Version is stamped at build time via ldflags.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	rootPath   string
	configFile string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// evaluator config
	flag.StringVar(&rootPath, "root", DefaultRootPath, "Set the root context for the program (used for imports)")
	flag.StringVar(&configFile, "config", "", "Config file path (default: ./tally.toml when present)")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.Log.Level),
	}
	logWriter := configureLogWriter(config.Log.File)
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	opts := parser.DefaultOptions()
	if err := config.ApplyOperators(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	p := parser.New(opts)

	if script := flag.Arg(0); script != "" {
		os.Exit(runScript(script, p, config))
	}

	handle := newStdioHandle(config.RootPath)
	interp := evaluator.New(handle, nil, p, config.RootPath)
	handle.root = interp

	fmt.Printf("tally v%s (type expressions, Ctrl-C to leave)\n", Version)
	repl.Start(interp, os.Stdin, os.Stdout, config)
}

func loadConfiguration() (util.Configuration, error) {
	path := configFile
	required := path != ""
	if path == "" {
		path = DefaultConfigFile
	}
	config, err := util.LoadConfiguration(path, required)
	if err != nil {
		return config, err
	}
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	config.RootPath = rootPath
	// flags win over the config file
	if logLevel != "" {
		config.Log.Level = logLevel
	}
	if logFile != "" {
		config.Log.File = logFile
	}
	return config, nil
}

func runScript(path string, p *parser.Parser, config util.Configuration) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", path, err)
		return 1
	}

	handle := newStdioHandle(filepath.Dir(path))
	interp := evaluator.New(handle, nil, p, filepath.Dir(path))
	handle.root = interp

	if _, err := interp.RunMultilineReturnLast(string(src)); err != nil {
		fmt.Fprintln(os.Stderr, repl.RenderError(err))
		return 1
	}
	return 0
}

// stdioHandle is the production IOHandle: terminal I/O plus filesystem
// module resolution with one child interpreter per module.
type stdioHandle struct {
	reader   *bufio.Reader
	rootPath string
	root     *evaluator.Interpreter
}

func newStdioHandle(rootPath string) *stdioHandle {
	return &stdioHandle{
		reader:   bufio.NewReader(os.Stdin),
		rootPath: rootPath,
	}
}

func (h *stdioHandle) ReadLine() (string, error) {
	line, err := h.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (h *stdioHandle) WriteLine(s string) {
	fmt.Println(s)
}

func (h *stdioHandle) Exit() {
	os.Exit(0)
}

func (h *stdioHandle) ResolveModule(fromLocation, name string) (object.Object, bool, error) {
	base := fromLocation
	if base == "" {
		base = h.rootPath
	}
	path := filepath.Join(base, name+ScriptExtension)
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	slog.Debug("resolving module",
		slog.String("module", name),
		slog.String("path", path))

	child := evaluator.New(h, h.root.TopEnv(), h.root.Parser(), filepath.Dir(path))
	val, err := child.RunMultilineReturnLast(string(src))
	if err != nil {
		return nil, true, fmt.Errorf("module %s: %s", name, repl.RenderError(err))
	}
	return val, true, nil
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("tally version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: tally [options] [filename [args...]]

Options:
  -root <path>       Set the root context for the program (used for imports). Default is '.'
  -config <path>     Load a TOML config file. Default is './tally.toml' when present.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
This is the tally programming language: tables, units and curried functions.

Examples:
  tally                         Start an interactive session
  tally -log-level=debug        Start with debug logging enabled
  tally myfile.tly              Execute the provided tally file

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
