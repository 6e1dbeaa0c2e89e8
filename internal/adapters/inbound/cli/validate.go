package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	configAdapter "github.com/rulegate/rulegate/internal/adapters/outbound/config"
	"github.com/rulegate/rulegate/internal/adapters/outbound/gitinfo"
	metricsAdapter "github.com/rulegate/rulegate/internal/adapters/outbound/metrics"
	"github.com/rulegate/rulegate/internal/adapters/outbound/tui"
	"github.com/rulegate/rulegate/internal/application"
	"github.com/rulegate/rulegate/internal/domain"
)

func newValidateCmd() *cobra.Command {
	var (
		formatFlag string
		jsonOut    bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "validate --format <format> <file1> [file2] ...",
		Short: "Validate detection rule files",
		Long:  "Validate one or more detection rule files against their format's checks. Each file gets its own result; one bad file never blocks the rest.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := domain.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			cfg, err := configAdapter.New().Load(".")
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if timeout > 0 {
				cfg.Timeout = timeout
			}

			svc := application.NewDefaultValidationService(cfg, metricsAdapter.New(prometheus.NewRegistry()))

			dets := make([]*domain.Detection, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				det, err := domain.NewDetection(string(data), format)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				dets = append(dets, det)
			}

			outcomes := svc.ValidateBatch(cmd.Context(), dets)
			stampCommitHashes(args, outcomes)

			results := make([]*domain.ValidationResult, 0, len(outcomes))
			failed := false
			for i, out := range outcomes {
				if out.Err != nil {
					failed = true
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", args[i], out.Err)
					continue
				}
				if out.Result.Status == domain.StatusError {
					failed = true
				}
				results = append(results, out.Result)
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				renderResults(cmd, args, outcomes)
			}

			if failed {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Detection rule format (splunk, qradar, sigma, kql, paloalto, crowdstrike, yara, yaral)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit results as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-file validation timeout (overrides config)")
	_ = cmd.MarkFlagRequired("format")

	return cmd
}

func renderResults(cmd *cobra.Command, paths []string, outcomes []application.BatchOutcome) {
	out := cmd.OutOrStdout()
	for i, o := range outcomes {
		if o.Err != nil {
			continue
		}
		fmt.Fprintln(out, tui.RenderResult(filepath.Base(paths[i]), o.Result))
	}
}

// stampCommitHashes records the HEAD commit of each file's repository, when
// the file lives in one.
func stampCommitHashes(paths []string, outcomes []application.BatchOutcome) {
	git := gitinfo.New()
	for i, o := range outcomes {
		if o.Result == nil {
			continue
		}
		dir := filepath.Dir(paths[i])
		if !git.IsGitRepo(dir) {
			continue
		}
		if hash, err := git.CommitHash(dir); err == nil {
			o.Result.Metadata.CommitHash = hash
		}
	}
}
