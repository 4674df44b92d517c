package cli

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/newdrug-response/internal/application/prediction"
	"github.com/turtacn/newdrug-response/internal/config"
	"github.com/turtacn/newdrug-response/internal/domain/molecule"
	"github.com/turtacn/newdrug-response/internal/domain/response"
	"github.com/turtacn/newdrug-response/internal/infrastructure/database/redis"
	"github.com/turtacn/newdrug-response/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/newdrug-response/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/newdrug-response/internal/infrastructure/storage/minio"
	"github.com/turtacn/newdrug-response/internal/infrastructure/tabular"
	"github.com/turtacn/newdrug-response/internal/intelligence/common"
	"github.com/turtacn/newdrug-response/internal/intelligence/svr"
	"github.com/turtacn/newdrug-response/pkg/errors"
)

const metricsNamespace = "newdrug"

// PredictOptions holds the flags of the predict command.
type PredictOptions struct {
	Input         string
	InputSMILES   string
	Output        string
	Model         string
	InvalidSMILES string
	Concurrency   int
}

// NewPredictCmd creates the predict command.
func NewPredictCmd() *cobra.Command {
	return newPredictCmd(&PredictOptions{})
}

func newPredictCmd(opts *PredictOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the response of new molecules for every cell cluster",
		Long: "Fit one regression per cell cluster of the input prediction table on the\n" +
			"reference drugs of the selected panel and predict the new molecules.\n" +
			"Writes a wide table (molecule x cluster) and a long per-cluster ranking.",
		Example: "  newdrug predict -i prediction.csv -s smiles.txt -o ./out -m GDSC",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Input, "input", "i", "", "path to the per-cluster drug response CSV")
	f.StringVarP(&opts.InputSMILES, "input-smiles", "s", "", "path to the newline-separated SMILES file")
	f.StringVarP(&opts.Output, "output", "o", config.DefaultOutputDir, "output directory")
	f.StringVarP(&opts.Model, "model", "m", config.DefaultPanel, "reference panel (PRISM or GDSC)")
	f.StringVar(&opts.InvalidSMILES, "invalid-smiles", config.DefaultInvalidPolicy, "unparsable SMILES policy (abort or skip)")
	f.IntVar(&opts.Concurrency, "concurrency", 0, "number of cluster models fitted in parallel (default: number of CPUs)")

	return cmd
}

// applyFlags overrides configuration values with the flags set on the command
// line.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *PredictOptions) error {
	f := cmd.Flags()
	if f.Changed("input") {
		cfg.Input.ResponsePath = opts.Input
	}
	if f.Changed("input-smiles") {
		cfg.Input.SMILESPath = opts.InputSMILES
	}
	if f.Changed("output") {
		cfg.Output.Dir = opts.Output
	}
	if f.Changed("model") {
		cfg.Panel = opts.Model
	}
	if f.Changed("invalid-smiles") {
		cfg.Molecule.InvalidPolicy = opts.InvalidSMILES
	}
	if f.Changed("concurrency") {
		cfg.Regression.Concurrency = opts.Concurrency
		if opts.Concurrency == 0 {
			cfg.Regression.Concurrency = runtime.NumCPU()
		}
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, errors.CodeInvalidParam, "invalid arguments")
	}
	return nil
}

func runPredict(cmd *cobra.Command, opts *PredictOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg, log := cliCtx.Config, cliCtx.Logger
	defer func() { _ = log.Sync() }()

	if err := applyFlags(cmd, cfg, opts); err != nil {
		return err
	}

	ctx := cmd.Context()
	svc, closeFn, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := svc.Run(ctx, &prediction.Request{
		ResponsePath: cfg.Input.ResponsePath,
		SMILESPath:   cfg.Input.SMILESPath,
		OutputDir:    cfg.Output.Dir,
		Panel:        cfg.Panel,
	})
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), FormatTable([]string{"FIELD", "VALUE"}, summaryRows(res)))
	return nil
}

// buildService wires the prediction pipeline from configuration.  The
// returned function releases external connections.
func buildService(ctx context.Context, cfg *config.Config, log logging.Logger) (prediction.Service, func(), error) {
	loader := response.NewLoader(response.LoaderConfig{
		PRISMMapPath: cfg.Reference.PRISMMapPath,
		GDSCMapPath:  cfg.Reference.GDSCMapPath,
		SMILESColumn: cfg.Reference.SMILESColumn,
	}, tabular.NewLibraryReader(), log.Named("loader"))

	topo, err := molecule.NewTopologicalEncoder(molecule.FingerprintOptions{
		Size:        cfg.Fingerprint.Size,
		MinPath:     cfg.Fingerprint.MinPath,
		MaxPath:     cfg.Fingerprint.MaxPath,
		BitsPerHash: cfg.Fingerprint.BitsPerHash,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeConfigInvalid, "invalid fingerprint settings")
	}
	var encoder molecule.Encoder = topo
	closeFn := func() {}

	if rc := cfg.Cache.Redis; rc.Enabled {
		client, err := redis.NewClient(ctx, rc, log.Named("redis"))
		if err != nil {
			log.Warn("fingerprint cache disabled", logging.Err(err))
		} else {
			cache := redis.NewFingerprintCache(client, log.Named("redis"),
				redis.WithPrefix(rc.Prefix), redis.WithDefaultTTL(rc.TTL))
			encoder = molecule.NewCachingEncoder(topo, cache, log.Named("encoder"))
			closeFn = func() { _ = client.Close() }
		}
	}

	collector, err := prom.NewMetricsCollector(prom.CollectorConfig{Namespace: metricsNamespace}, log)
	if err != nil {
		closeFn()
		return nil, nil, errors.Wrap(err, errors.CodeConfigInvalid, "metrics initialization failed")
	}
	modelMetrics, err := common.NewPrometheusModelMetrics(collector.Registerer())
	if err != nil {
		closeFn()
		return nil, nil, errors.Wrap(err, errors.CodeConfigInvalid, "metrics initialization failed")
	}

	engine, err := prediction.NewEngine(svr.Params{
		C:         cfg.Regression.C,
		Epsilon:   cfg.Regression.Epsilon,
		Gamma:     cfg.Regression.Gamma,
		Tolerance: cfg.Regression.Tolerance,
		MaxIter:   cfg.Regression.MaxIter,
	},
		prediction.WithConcurrency(cfg.Regression.Concurrency),
		prediction.WithModelMetrics(modelMetrics),
		prediction.WithEngineLogger(log.Named("engine")),
	)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	var pusher prom.Pusher
	if cfg.Metrics.Enabled {
		pusher, err = prom.NewPusher(prom.PushConfig{
			URL:     cfg.Metrics.PushGatewayURL,
			Job:     cfg.Metrics.JobName,
			Timeout: cfg.Metrics.PushTimeout,
		}, collector.Gatherer(), log.Named("metrics"))
		if err != nil {
			closeFn()
			return nil, nil, errors.Wrap(err, errors.CodeConfigInvalid, "metrics push initialization failed")
		}
	}

	svcOpts := []prediction.ServiceOption{
		prediction.WithRunRecorder(prom.NewPipelineMetrics(collector, pusher)),
		prediction.WithServiceLogger(log),
	}

	if cfg.Storage.MinIO.Enabled {
		client, err := minio.NewMinIOClient(ctx, cfg.Storage.MinIO, log.Named("minio"))
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		svcOpts = append(svcOpts, prediction.WithUploader(minio.NewArtifactRepository(client, log.Named("minio"))))
	}

	svc := prediction.NewService(prediction.ServiceConfig{
		HeaderRows:    cfg.Input.HeaderRows,
		WideFile:      cfg.Output.WideFile,
		LongFile:      cfg.Output.LongFile,
		InvalidPolicy: cfg.Molecule.InvalidPolicy,
	}, loader, encoder, engine, svcOpts...)
	return svc, closeFn, nil
}

func summaryRows(res *prediction.Result) [][]string {
	molecules, clusters := res.Wide.Dims()
	rows := [][]string{
		{"run_id", res.RunID},
		{"panel", res.Panel.String()},
		{"molecules", strconv.Itoa(molecules)},
		{"clusters", strconv.Itoa(clusters)},
		{"wide_table", res.WidePath},
		{"long_table", res.LongPath},
	}
	if len(res.SkippedMolecules) > 0 {
		rows = append(rows, []string{"skipped_molecules", strconv.Itoa(len(res.SkippedMolecules))})
	}
	if len(res.DroppedDrugs) > 0 {
		rows = append(rows, []string{"dropped_drugs", strings.Join(res.DroppedDrugs, ",")})
	}
	for _, loc := range res.Uploaded {
		rows = append(rows, []string{"uploaded", loc})
	}
	rows = append(rows, []string{"duration", res.Duration.String()})
	return rows
}

//Personal.AI order the ending
