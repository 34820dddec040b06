package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mjwhitta/cli"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mellowCS/SMB-Fuzzer/pkg/config"
	"github.com/mellowCS/SMB-Fuzzer/pkg/console"
	"github.com/mellowCS/SMB-Fuzzer/pkg/fuzz"
	"github.com/mellowCS/SMB-Fuzzer/pkg/smb"
	"github.com/mellowCS/SMB-Fuzzer/pkg/smb/types"
	"github.com/mellowCS/SMB-Fuzzer/pkg/state"
)

// Version info
const Version = "0.1.0"

// selector ties a boolean flag to the token it stands for
type selector struct {
	set   bool
	token string
}

func chosen(group []*selector) (string, error) {
	token := ""
	for _, s := range group {
		if !s.set {
			continue
		}
		if token != "" {
			return "", fmt.Errorf("%s and %s are mutually exclusive", token, s.token)
		}
		token = s.token
	}
	return token, nil
}

// chosenAll returns the selected token of each group, "" where none is set
func chosenAll(groups ...[]*selector) ([]string, error) {
	tokens := make([]string, len(groups))
	for i, g := range groups {
		t, err := chosen(g)
		if err != nil {
			return nil, err
		}
		tokens[i] = t
	}
	return tokens, nil
}

func main() {
	var (
		configFile string
		host       string
		port       int
		socks5     string
		share      string
		file       string
		password   string
		iterations int
		seed       int
		metricsAt  string
		dryRun     bool
		verbose    bool
	)

	negotiate := &selector{token: "-n"}
	sessionNeg := &selector{token: "-sn"}
	sessionAuth := &selector{token: "-sa"}
	tree := &selector{token: "-t"}
	create := &selector{token: "-cr"}
	query := &selector{token: "-q"}
	closeMsg := &selector{token: "-cl"}
	echo := &selector{token: "-e"}

	predefined := &selector{token: "-pre"}
	randomFields := &selector{token: "-rf"}
	completelyRandom := &selector{token: "-cran"}

	initState := &selector{token: "-init_state"}
	negState := &selector{token: "-neg_state"}
	sessionNegState := &selector{token: "-session_setup_neg_state"}
	sessionAuthState := &selector{token: "-session_setup_auth_state"}
	treeState := &selector{token: "-tree_state"}
	createState := &selector{token: "-create_state"}
	closeState := &selector{token: "-close_state"}

	cli.Align = true
	cli.Banner = "smbfuzz <message> <strategy> <state> [OPTIONS]"
	cli.Info("SMB2/NTLM protocol fuzzer. Reaches a handshake state on a fresh connection and sends one fuzzed message per attempt.")
	cli.Authors = []string{"SMB-Fuzzer Team"}

	// Message
	cli.Flag(&negotiate.set, "n", "negotiate", false, "Fuzz NEGOTIATE")
	cli.Flag(&sessionNeg.set, "sn", false, "Fuzz SESSION_SETUP carrying the NTLM negotiate")
	cli.Flag(&sessionNeg.set, "session_setup_neg", false, "Same as -sn")
	cli.Flag(&sessionAuth.set, "sa", false, "Fuzz SESSION_SETUP carrying the NTLM authenticate")
	cli.Flag(&sessionAuth.set, "session_setup_auth", false, "Same as -sa")
	cli.Flag(&tree.set, "t", "tree_connect", false, "Fuzz TREE_CONNECT")
	cli.Flag(&create.set, "cr", false, "Fuzz CREATE")
	cli.Flag(&create.set, "create", false, "Same as -cr")
	cli.Flag(&query.set, "q", "query_info", false, "Fuzz QUERY_INFO")
	cli.Flag(&closeMsg.set, "cl", false, "Fuzz CLOSE")
	cli.Flag(&closeMsg.set, "close", false, "Same as -cl")
	cli.Flag(&echo.set, "e", "echo", false, "Fuzz ECHO (legal in every state)")

	// Strategy
	cli.Flag(&predefined.set, "pre", false, "Sample enumerated fields from their legal values")
	cli.Flag(&predefined.set, "predefined", false, "Same as -pre")
	cli.Flag(&randomFields.set, "rf", false, "Random bytes with each field's wire width")
	cli.Flag(&randomFields.set, "random_fields", false, "Same as -rf")
	cli.Flag(&completelyRandom.set, "cran", false, "Random bytes of random length for every field")
	cli.Flag(&completelyRandom.set, "completely_random", false, "Same as -cran")

	// State
	cli.Flag(&initState.set, "init_state", false, "Fuzz before any request")
	cli.Flag(&negState.set, "neg_state", false, "Fuzz after NEGOTIATE")
	cli.Flag(&sessionNegState.set, "session_setup_neg_state", false, "Fuzz after the first SESSION_SETUP")
	cli.Flag(&sessionAuthState.set, "session_setup_auth_state", false, "Fuzz after the second SESSION_SETUP")
	cli.Flag(&treeState.set, "tree_state", false, "Fuzz after TREE_CONNECT")
	cli.Flag(&createState.set, "create_state", false, "Fuzz after CREATE")
	cli.Flag(&closeState.set, "close_state", false, "Fuzz after CREATE and CLOSE")

	// Settings, overriding the config file and environment
	cli.Flag(&configFile, "c", "config", "", "YAML config file")
	cli.Flag(&host, "host", "", "Target server IP/hostname")
	cli.Flag(&port, "port", 0, "Target port")
	cli.Flag(&socks5, "socks5", "", "SOCKS5 proxy (e.g., 127.0.0.1:1080 or user:pass@host:port)")
	cli.Flag(&share, "share", "", "Share used by TREE_CONNECT")
	cli.Flag(&file, "file", "", "File name used by CREATE")
	cli.Flag(&password, "p", "password", "", "Password for a real NTLMv2 proof")
	cli.Flag(&iterations, "i", "iterations", -1, "Attempts, 0 runs until connecting fails")
	cli.Flag(&seed, "seed", 0, "PRNG seed, 0 is time based")
	cli.Flag(&metricsAt, "metrics", "", "Serve /metrics on this address")
	cli.Flag(&dryRun, "dry-run", false, "Print the fuzzed frame instead of sending it")
	cli.Flag(&verbose, "v", "verbose", false, "Verbose output")

	cli.Parse()

	console.Verbose = verbose

	if cli.NArg() > 0 {
		console.Error("Unexpected argument %q", cli.Arg(0))
		cli.Usage(1)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		console.Error("%v", err)
		os.Exit(1)
	}
	applyOverrides(cfg, host, port, socks5, share, file, password, iterations, seed, metricsAt)
	if err := cfg.Validate(); err != nil {
		console.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	tokens, err := chosenAll(
		[]*selector{negotiate, sessionNeg, sessionAuth, tree, create, query, closeMsg, echo},
		[]*selector{predefined, randomFields, completelyRandom},
		[]*selector{initState, negState, sessionNegState, sessionAuthState, treeState, createState, closeState},
	)
	if err == nil {
		err = run(cfg, tokens[0], tokens[1], tokens[2], dryRun)
	}
	if err != nil {
		console.Error("%v", err)
		if errors.Is(err, fuzz.ErrIncompleteDirective) {
			cli.Usage(1)
		}
		os.Exit(1)
	}
}

func applyOverrides(cfg *config.Configuration, host string, port int, socks5, share, file, password string, iterations, seed int, metricsAt string) {
	if host != "" {
		cfg.Target.Host = host
	}
	if port != 0 {
		cfg.Target.Port = port
	}
	if socks5 != "" {
		cfg.Target.Socks5 = socks5
	}
	if share != "" {
		cfg.Target.Share = share
	}
	if file != "" {
		cfg.Target.File = file
	}
	if password != "" {
		cfg.Auth.Password = password
	}
	if iterations >= 0 {
		cfg.Fuzz.Iterations = iterations
	}
	if seed != 0 {
		cfg.Fuzz.Seed = int64(seed)
	}
	if metricsAt != "" {
		cfg.Metrics.Listen = metricsAt
	}
}

func run(cfg *config.Configuration, msgToken, stratToken, stateToken string, dryRun bool) error {
	d, err := fuzz.NewDirective(msgToken, stratToken, stateToken, cfg.Fuzz.Iterations)
	if err != nil {
		return err
	}

	engine := &fuzz.Engine{
		Src:        fuzz.NewSource(cfg.Fuzz.Seed),
		RandomCap:  cfg.Fuzz.RandomCap,
		MaxSamples: cfg.Fuzz.MaxSamples,
		Host:       cfg.Target.Host,
		Share:      cfg.Target.Share,
		File:       cfg.Target.File,
		Password:   cfg.Auth.Password,
	}

	if dryRun {
		return printFrame(engine, d)
	}

	if cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				console.Warn("Metrics endpoint stopped: %v", err)
			}
		}()
		console.Info("Serving metrics on %s/metrics", cfg.Metrics.Listen)
	}

	tcfg := smb.TransportConfig{
		Host:        cfg.Target.Host,
		Port:        cfg.Target.Port,
		Socks5URL:   normalizeSocks5(cfg.Target.Socks5),
		DialTimeout: smb.DefaultDialTimeout,
		ReadTimeout: cfg.Connection.ReadTimeout,
		ReadBuffer:  cfg.Connection.ReadBuffer,
	}
	if tcfg.Socks5URL != "" {
		console.Info("Using SOCKS5 proxy: %s", tcfg.Socks5URL)
	}

	runner := &fuzz.Runner{
		Engine:     engine,
		RetryDelay: cfg.Connection.RetryDelay,
		Dial: func(ctx context.Context) (state.Conn, error) {
			conn, err := smb.Dial(ctx, tcfg)
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console.Info("Fuzzing %s with %s in state %s against %s:%d", d.Message, d.Strategy, d.State, cfg.Target.Host, cfg.Target.Port)

	stats, err := runner.Run(ctx, d)
	console.Info("Attempts: %d, fuzzed frames sent: %d, answered: %d", stats.Attempts, stats.Sent, stats.Answered)

	switch {
	case err == nil:
		console.Success("Done")
		return nil
	case errors.Is(err, context.Canceled):
		console.Warn("Interrupted")
		return nil
	default:
		return err
	}
}

// printFrame builds one fuzzed frame with empty carried identifiers
func printFrame(engine *fuzz.Engine, d fuzz.Directive) error {
	var c state.Carried
	body, err := engine.Build(d.Message, d.Strategy, c)
	if err != nil {
		return fmt.Errorf("building %s: %w", d.Message, err)
	}
	frame := types.EncodeFrame(d.Message.Header(c), body)

	console.Info("%s (%s), %d bytes", d.Message, d.Strategy, len(frame))
	fmt.Print(hex.Dump(frame))
	return nil
}

func normalizeSocks5(s string) string {
	if s == "" || len(s) > 9 && s[:9] == "socks5://" {
		return s
	}
	return "socks5://" + s
}
