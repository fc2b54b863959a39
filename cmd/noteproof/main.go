// main.go - noteproof: build, verify and inspect confidential note proofs.
//
// Usage:
//
//	noteproof note new --value 100 --owner 0x... > note.json
//	noteproof prove request.json -o proof.json
//	noteproof verify proof.json
//	noteproof recover note.json
//
// Configuration comes from a JSON file (--config), then a .env file
// (--env), then NOTEPROOF_* environment variables.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/consensys/gnark/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"notecrypto/internal/note"
	"notecrypto/internal/proof"
)

// errRejected makes a failed verification exit nonzero.
var errRejected = errors.New("proof rejected")

// app holds what every command needs once configuration is loaded.
type app struct {
	configPath string
	envFile    string

	root    *cobra.Command
	cfg     *Config
	log     *Logger
	metrics *MetricsCollector
}

func main() {
	if err := newCLI().execute(); err != nil {
		os.Exit(1)
	}
}

func newCLI() *app {
	a := &app{metrics: NewMetricsCollector()}

	root := &cobra.Command{
		Use:           "noteproof",
		Short:         "Build and verify zero-knowledge proofs over confidential notes",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "noteproof.json", "configuration file")
	root.PersistentFlags().StringVar(&a.envFile, "env", ".env", "dotenv file with NOTEPROOF_* overrides")

	root.AddCommand(a.noteCmd(), a.proveCmd(), a.verifyCmd(), a.recoverCmd(), a.configCmd())
	a.root = root
	return a
}

// execute runs the command line, then tears down whatever setup opened,
// failed commands included.
func (a *app) execute() error {
	err := a.root.Execute()
	if a.log == nil {
		return err
	}
	if terr := a.teardown(); err == nil {
		err = terr
	}
	return err
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(a.envFile); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	auditPath := ""
	if cfg.EnableAudit {
		auditPath = cfg.AuditLogPath
	}
	lg, err := NewLogger(cfg.LogLevel, cfg.LogFile, auditPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	// Route the proof engine's events through the same sinks.
	logger.Set(lg.Zerolog())

	a.cfg, a.log = cfg, lg
	return nil
}

func (a *app) teardown() error {
	if a.cfg.EnableMetrics {
		summary, err := json.MarshalIndent(a.metrics.GetMetricsSummary(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(a.root.ErrOrStderr(), string(summary))
	}
	return a.log.Close()
}

// fail records err against the command and returns it.
func (a *app) fail(command string, err error) error {
	a.metrics.RecordError(command)
	if a.log != nil {
		a.log.Error("%s: %v", command, err)
	}
	return err
}

func (a *app) noteCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "note", Short: "Manage notes"}

	var (
		value uint64
		owner string
	)
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Create a note with fresh secrets and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !common.IsHexAddress(owner) {
				return a.fail("note", fmt.Errorf("owner %q is not an address", owner))
			}
			n, err := note.New(value, common.HexToAddress(owner), nil)
			if err != nil {
				return a.fail("note", err)
			}
			a.log.Debug("created note %s", n.Hash)
			return writeJSON(cmd, "", n)
		},
	}
	newCmd.Flags().Uint64Var(&value, "value", 0, "note value")
	newCmd.Flags().StringVar(&owner, "owner", "", "owner address")
	_ = newCmd.MarkFlagRequired("owner")

	cmd.AddCommand(newCmd)
	return cmd
}

func (a *app) proveCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "prove <request.json>",
		Short: "Build a proof from a request file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req ProveRequest
			if err := readJSON(args[0], &req); err != nil {
				return a.fail("prove", err)
			}
			start := time.Now()
			p, err := req.Build(a.cfg.ValidatorAddress(), nil)
			if err != nil {
				return a.fail("prove", err)
			}
			a.metrics.RecordProof(p, time.Since(start))
			a.log.Info("built %s proof over %d notes, challenge %s", p.Type, len(p.Data), p.ChallengeHex())
			a.log.Audit("proof_constructed", map[string]interface{}{
				"type":      p.Type.String(),
				"rows":      len(p.Data),
				"challenge": p.ChallengeHex(),
			})
			return writeJSON(cmd, out, p)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the proof here instead of stdout")
	return cmd
}

// verifyReport is what `noteproof verify` prints.
type verifyReport struct {
	Valid      bool          `json:"valid"`
	Errors     []string      `json:"errors"`
	Challenge  string        `json:"challenge"`
	Signatures string        `json:"signatures,omitempty"`
	Outputs    []common.Hash `json:"outputs,omitempty"`
}

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <proof.json>",
		Short: "Verify a proof and report every failure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p proof.Proof
			if err := readJSON(args[0], &p); err != nil {
				return a.fail("verify", err)
			}
			start := time.Now()
			res := proof.Verify(&p)
			a.metrics.RecordVerification(&p, res, time.Since(start))

			report := verifyReport{Valid: res.Valid(), Errors: []string{}, Challenge: p.ChallengeHex()}
			for _, k := range res.Errors {
				report.Errors = append(report.Errors, k.String())
			}
			if len(p.Signatures) > 0 {
				report.Signatures = "ok"
				if err := proof.CheckSignatures(&p, a.cfg.ValidatorAddress()); err != nil {
					report.Valid = false
					report.Signatures = err.Error()
				}
			}
			outputs, err := p.Outputs(proof.WordEncoder{})
			if err != nil {
				return a.fail("verify", err)
			}
			for _, o := range outputs {
				report.Outputs = append(report.Outputs, o.Hash)
			}

			if err := writeJSON(cmd, "", report); err != nil {
				return err
			}
			if !report.Valid {
				a.log.Warn("%s proof %s rejected: %v", p.Type, p.ChallengeHex(), report.Errors)
				return errRejected
			}
			a.log.Info("%s proof %s verified", p.Type, p.ChallengeHex())
			return nil
		},
	}
}

func (a *app) recoverCmd() *cobra.Command {
	var ceiling uint64
	cmd := &cobra.Command{
		Use:   "recover <note.json>",
		Short: "Recover a note's value from its commitment and viewing key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var n note.Note
			if err := readJSON(args[0], &n); err != nil {
				return a.fail("recover", err)
			}
			if ceiling == 0 {
				ceiling = a.cfg.RecoverCeiling
			}
			start := time.Now()
			v, err := n.DecryptValue(ceiling)
			a.metrics.RecordRecovery(time.Since(start))
			if err != nil {
				return a.fail("recover", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&ceiling, "ceiling", 0, "search bound (default from config)")
	return cmd
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Inspect or create the configuration file"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Write the default configuration to --config",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := SaveConfig(DefaultConfig(), a.configPath); err != nil {
					return a.fail("config", err)
				}
				a.log.Info("wrote %s", a.configPath)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return writeJSON(cmd, "", a.cfg)
			},
		},
	)
	return cmd
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// writeJSON prints v to stdout, or to path when it is set.
func writeJSON(cmd *cobra.Command, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if path != "" {
		return os.WriteFile(path, append(data, '\n'), 0644)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
