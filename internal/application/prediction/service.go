package prediction

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/turtacn/newdrug-response/internal/domain/molecule"
	"github.com/turtacn/newdrug-response/internal/domain/response"
	"github.com/turtacn/newdrug-response/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/newdrug-response/internal/infrastructure/tabular"
	"github.com/turtacn/newdrug-response/pkg/errors"
	"github.com/turtacn/newdrug-response/pkg/types/panel"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Invalid-structure policies.
const (
	PolicyAbort = "abort"
	PolicySkip  = "skip"
)

// Pipeline stage names used in logs and metrics.
const (
	StageLoad      = "load"
	StageAlign     = "align"
	StageEncode    = "encode"
	StageFit       = "fit"
	StageWriteWide = "write_wide"
	StageTransform = "transform"
	StageWriteLong = "write_long"
	StageUpload    = "upload"
)

// Request describes one prediction run.
type Request struct {
	ResponsePath string `json:"response_path"`
	SMILESPath   string `json:"smiles_path"`
	OutputDir    string `json:"output_dir"`
	Panel        string `json:"panel"`
}

// Result summarises a completed run.
type Result struct {
	RunID             string             `json:"run_id"`
	Panel             panel.Type         `json:"panel"`
	WidePath          string             `json:"wide_path"`
	LongPath          string             `json:"long_path"`
	Wide              *WideTable         `json:"-"`
	Long              *LongTable         `json:"-"`
	SkippedMolecules  []molecule.Failure `json:"-"`
	SkippedReferences []string           `json:"skipped_references,omitempty"`
	DroppedDrugs      []string           `json:"dropped_drugs,omitempty"`
	Uploaded          []string           `json:"uploaded,omitempty"`
	Duration          time.Duration      `json:"duration"`
}

// ServiceConfig holds the file-layout and policy settings of the service.
type ServiceConfig struct {
	HeaderRows    int
	WideFile      string
	LongFile      string
	InvalidPolicy string
}

// ArtifactUploader publishes output files of a run.
type ArtifactUploader interface {
	UploadArtifacts(ctx context.Context, runID string, paths ...string) ([]string, error)
}

// RunRecorder receives pipeline telemetry.
type RunRecorder interface {
	ObserveStage(stage string, d time.Duration)
	RecordRun(panel, status string, molecules, clusters, skipped int)
	Push(ctx context.Context) error
}

// Service runs the end-to-end prediction pipeline.
type Service interface {
	Run(ctx context.Context, req *Request) (*Result, error)
}

// ServiceOption configures the service.
type ServiceOption func(*serviceImpl)

// WithUploader enables artifact upload after the tables are written.
func WithUploader(u ArtifactUploader) ServiceOption {
	return func(s *serviceImpl) { s.uploader = u }
}

// WithRunRecorder sets the telemetry sink.
func WithRunRecorder(r RunRecorder) ServiceOption {
	return func(s *serviceImpl) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l logging.Logger) ServiceOption {
	return func(s *serviceImpl) {
		if l != nil {
			s.log = l
		}
	}
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type serviceImpl struct {
	cfg      ServiceConfig
	loader   *response.Loader
	encoder  molecule.Encoder
	engine   *Engine
	uploader ArtifactUploader
	recorder RunRecorder
	log      logging.Logger
}

// NewService wires the pipeline.  Zero-valued settings in cfg take the
// defaults of the command line tool.
func NewService(cfg ServiceConfig, loader *response.Loader, encoder molecule.Encoder, engine *Engine, opts ...ServiceOption) Service {
	if cfg.HeaderRows <= 0 {
		cfg.HeaderRows = 2
	}
	if cfg.WideFile == "" {
		cfg.WideFile = "new_drug_prediction.csv"
	}
	if cfg.LongFile == "" {
		cfg.LongFile = "drug_level_prediction.csv"
	}
	if cfg.InvalidPolicy == "" {
		cfg.InvalidPolicy = PolicyAbort
	}
	s := &serviceImpl{
		cfg:      cfg,
		loader:   loader,
		encoder:  encoder,
		engine:   engine,
		recorder: noopRecorder{},
		log:      logging.NewNopLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *serviceImpl) Run(ctx context.Context, req *Request) (res *Result, err error) {
	start := time.Now()
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	p, ok := panel.Parse(req.Panel)
	if !ok {
		return nil, errors.UnsupportedPanel(req.Panel)
	}

	res = &Result{
		RunID:    uuid.NewString(),
		Panel:    p,
		WidePath: filepath.Join(req.OutputDir, s.cfg.WideFile),
		LongPath: filepath.Join(req.OutputDir, s.cfg.LongFile),
	}
	log := s.log.With(logging.String("run_id", res.RunID), logging.String("panel", p.String()))
	log.Info("prediction run started",
		logging.String("input", req.ResponsePath),
		logging.String("smiles", req.SMILESPath),
		logging.String("output", req.OutputDir),
	)

	defer func() {
		res.Duration = time.Since(start)
		status := "success"
		if err != nil {
			status = "failure"
		}
		molecules, clusters := 0, 0
		if res.Wide != nil {
			molecules, clusters = res.Wide.Dims()
		}
		s.recorder.RecordRun(p.String(), status, molecules, clusters, len(res.SkippedMolecules))
		if perr := s.recorder.Push(ctx); perr != nil {
			log.Warn("metrics push failed", logging.Err(perr))
		}
		if err != nil {
			res = nil
		}
	}()

	var (
		table     *response.Table
		molecules []string
	)
	if err = s.stage(StageLoad, func() error {
		var lerr error
		if table, lerr = tabular.ReadResponseCSV(req.ResponsePath, s.cfg.HeaderRows); lerr != nil {
			return lerr
		}
		molecules, lerr = tabular.ReadSMILES(req.SMILESPath)
		return lerr
	}); err != nil {
		return res, err
	}
	if len(molecules) == 0 {
		log.Warn("no new molecules in input")
	}

	var aligned *response.Aligned
	if err = s.stage(StageAlign, func() error {
		var aerr error
		aligned, aerr = s.loader.Load(ctx, p, table)
		return aerr
	}); err != nil {
		return res, err
	}
	res.DroppedDrugs = aligned.Dropped

	var refFP, newFP *molecule.FingerprintMatrix
	if err = s.stage(StageEncode, func() error {
		var eerr error
		if aligned, refFP, eerr = s.encodeReferences(ctx, log, aligned, res); eerr != nil {
			return eerr
		}
		molecules, newFP, eerr = s.encodeMolecules(ctx, log, molecules, res)
		return eerr
	}); err != nil {
		return res, err
	}
	s.logNearest(log, aligned, refFP, newFP, molecules)

	if err = s.stage(StageFit, func() error {
		var ferr error
		res.Wide, ferr = s.engine.Predict(ctx, p, aligned.Matrix, refFP, newFP, molecules)
		return ferr
	}); err != nil {
		return res, err
	}

	log.Info("saving drug response prediction of new drug.", logging.String("path", res.WidePath))
	if err = s.stage(StageWriteWide, func() error {
		return tabular.WriteWideCSV(res.WidePath, res.Wide.Molecules, res.Wide.Clusters, res.Wide)
	}); err != nil {
		return res, err
	}

	if err = s.stage(StageTransform, func() error {
		var terr error
		res.Long, terr = Transform(res.Wide, p)
		return terr
	}); err != nil {
		return res, err
	}

	log.Info("saving drug level prediction", logging.String("path", res.LongPath))
	if err = s.stage(StageWriteLong, func() error {
		return tabular.WriteRecordsCSV(res.LongPath, res.Long.Header(), res.Long.Records())
	}); err != nil {
		return res, err
	}

	if s.uploader != nil {
		if err = s.stage(StageUpload, func() error {
			var uerr error
			res.Uploaded, uerr = s.uploader.UploadArtifacts(ctx, res.RunID, res.WidePath, res.LongPath)
			return uerr
		}); err != nil {
			return res, err
		}
		log.Info("prediction tables uploaded", logging.Strings("objects", res.Uploaded))
	}

	log.Info("prediction run finished",
		logging.Int("molecules", len(res.Wide.Molecules)),
		logging.Int("clusters", len(res.Wide.Clusters)),
		logging.Int("reference_drugs", refFP.Len()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (s *serviceImpl) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.recorder.ObserveStage(name, time.Since(start))
	return err
}

// encodeReferences fingerprints the aligned reference structures.  Under the
// skip policy unparseable structures drop their response column.
func (s *serviceImpl) encodeReferences(ctx context.Context, log logging.Logger, aligned *response.Aligned,
	res *Result) (*response.Aligned, *molecule.FingerprintMatrix, error) {

	drugs := aligned.Matrix.Drugs()
	if s.cfg.InvalidPolicy != PolicySkip {
		fp, err := s.encoder.Encode(ctx, aligned.SMILES)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.CodeUnknown, "encode reference structures")
		}
		return aligned, fp, nil
	}

	enc, err := s.encoder.EncodeAll(ctx, aligned.SMILES)
	if err != nil {
		return nil, nil, err
	}
	if len(enc.Failures) == 0 {
		return aligned, enc.Matrix, nil
	}
	for _, f := range enc.Failures {
		log.Warn("reference structure skipped",
			logging.String("drug", drugs[f.Index]),
			logging.String("smiles", f.SMILES),
			logging.Err(f.Err),
		)
		res.SkippedReferences = append(res.SkippedReferences, drugs[f.Index])
	}
	if len(enc.Kept) == 0 {
		return nil, nil, errors.New(errors.CodeReferenceEmpty, "no reference structure could be parsed")
	}
	kept, err := aligned.KeepColumns(enc.Kept)
	if err != nil {
		return nil, nil, err
	}
	return kept, enc.Matrix, nil
}

// encodeMolecules fingerprints the new molecules.  Under the skip policy
// unparseable inputs are left out of every output table.
func (s *serviceImpl) encodeMolecules(ctx context.Context, log logging.Logger, smiles []string,
	res *Result) ([]string, *molecule.FingerprintMatrix, error) {

	if s.cfg.InvalidPolicy != PolicySkip {
		fp, err := s.encoder.Encode(ctx, smiles)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.CodeUnknown, "encode new molecules")
		}
		return smiles, fp, nil
	}

	enc, err := s.encoder.EncodeAll(ctx, smiles)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range enc.Failures {
		log.Warn("molecule skipped",
			logging.Int("index", f.Index),
			logging.String("smiles", f.SMILES),
			logging.Err(f.Err),
		)
	}
	res.SkippedMolecules = enc.Failures
	kept := lo.Map(enc.Kept, func(i int, _ int) string { return smiles[i] })
	return kept, enc.Matrix, nil
}

func (s *serviceImpl) logNearest(log logging.Logger, aligned *response.Aligned, refFP, newFP *molecule.FingerprintMatrix, molecules []string) {
	drugs := aligned.Matrix.Drugs()
	for i, smi := range molecules {
		j, score := molecule.Nearest(newFP.Row(i), refFP)
		if j < 0 {
			continue
		}
		log.Debug("nearest reference drug",
			logging.String("molecule", smi),
			logging.String("drug", drugs[j]),
			logging.Float64("tanimoto", score),
			logging.String("similarity", molecule.ClassifySimilarity(score)),
		)
	}
}

// ---------------------------------------------------------------------------
// Input validation
// ---------------------------------------------------------------------------

func validateRequest(req *Request) error {
	if req == nil {
		return errors.InvalidParam("prediction request is nil")
	}
	if !fileExists(req.ResponsePath) {
		return inputError(errors.ErrCodeInputNotFound, req.ResponsePath)
	}
	if !strings.HasSuffix(req.ResponsePath, ".csv") {
		return inputError(errors.ErrCodeInputNotCSV, req.ResponsePath)
	}
	if !fileExists(req.SMILESPath) {
		return inputError(errors.ErrCodeSMILESInputNotFound, req.SMILESPath)
	}
	if !strings.HasSuffix(req.SMILESPath, ".txt") {
		return inputError(errors.ErrCodeSMILESInputNotText, req.SMILESPath)
	}
	if fi, err := os.Stat(req.OutputDir); err != nil || !fi.IsDir() {
		return inputError(errors.ErrCodeOutputDirNotFound, req.OutputDir)
	}
	return nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func inputError(code errors.ErrorCode, path string) error {
	return errors.New(code, errors.DefaultMessageForCode(code)).WithDetail(path)
}

type noopRecorder struct{}

func (noopRecorder) ObserveStage(string, time.Duration)      {}
func (noopRecorder) RecordRun(string, string, int, int, int) {}
func (noopRecorder) Push(context.Context) error              { return nil }

//Personal.AI order the ending
