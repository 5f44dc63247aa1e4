// Package pipeline runs tool requests end to end.
//
// Every request flows through the same stages:
//
//	validate -> cache lookup -> admission -> resolve -> execute -> encode
//	-> cache store -> release -> metrics -> envelope
//
// Executors are pure transforms; caching, admission, timeouts and metrics
// are applied here, uniformly, for every operation. Batch operations send
// each element through the same stages.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/image-edit-mcp/internal/admission"
	"github.com/ironsheep/image-edit-mcp/internal/apperrors"
	"github.com/ironsheep/image-edit-mcp/internal/batch"
	"github.com/ironsheep/image-edit-mcp/internal/cache"
	"github.com/ironsheep/image-edit-mcp/internal/config"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
	"github.com/ironsheep/image-edit-mcp/internal/metrics"
	"github.com/ironsheep/image-edit-mcp/internal/output"
	"github.com/ironsheep/image-edit-mcp/internal/params"
)

// Pipeline owns the shared state of the serving process. It is safe for
// concurrent use.
type Pipeline struct {
	timeout        time.Duration
	paramLimits    params.Limits
	resolverLimits imaging.Limits

	cache     *cache.Cache
	admission *admission.Controller
	batch     *batch.Coordinator
	monitor   *metrics.Monitor
	writer    *output.Writer
	execute   executor
}

// New builds a pipeline and its collaborators from cfg.
func New(cfg config.Config) *Pipeline {
	return &Pipeline{
		timeout: cfg.ProcessingTimeout,
		paramLimits: params.Limits{
			MaxDimension:   cfg.MaxDimension,
			MaxBatchSize:   cfg.MaxBatchSize,
			DefaultFormat:  cfg.DefaultFormat,
			DefaultQuality: cfg.DefaultQuality,
			DefaultMode:    cfg.Output.Mode,
		},
		resolverLimits: imaging.Limits{
			MaxDimension: cfg.MaxDimension,
			MaxBytes:     cfg.MaxUploadBytes(),
		},
		cache:     cache.New(cfg.CacheCapacityBytes(), cfg.Cache.Enabled),
		admission: admission.New(cfg.MaxConcurrentTasks),
		batch:     batch.New(cfg.MaxConcurrentTasks),
		monitor:   metrics.New(),
		writer:    output.New(cfg.Output),
		execute:   execute,
	}
}

// Cache returns the result cache.
func (p *Pipeline) Cache() *cache.Cache { return p.cache }

// Monitor returns the performance monitor.
func (p *Pipeline) Monitor() *metrics.Monitor { return p.monitor }

// Admission returns the admission controller.
func (p *Pipeline) Admission() *admission.Controller { return p.admission }

// Execute runs op with the raw argument map and returns the wire envelope.
func (p *Pipeline) Execute(ctx context.Context, op string, args map[string]any) Envelope {
	return p.Run(ctx, op, args).Envelope()
}

// Run runs op with the raw argument map.
func (p *Pipeline) Run(ctx context.Context, op string, args map[string]any) Outcome {
	req, err := params.Validate(op, args, p.paramLimits)
	if err != nil {
		log.Debug().Str("operation", op).Err(err).Msg("invalid request")
		p.monitor.RecordOperation(op, 0, 0, false, true)
		return failure(err)
	}

	switch r := req.(type) {
	case params.Stats:
		if op == params.OpResetPerformanceStats {
			return p.reset()
		}
		return p.stats()
	case params.BatchResize:
		return p.batchResize(ctx, r)
	}
	return p.single(ctx, req)
}

// single runs one validated request and records it in the monitor.
func (p *Pipeline) single(ctx context.Context, req params.Params) Outcome {
	op := req.Operation()
	start := time.Now()
	heap := metrics.HeapMB()

	out := p.run(ctx, req)

	elapsed := time.Since(start)
	p.monitor.RecordOperation(op, elapsed.Seconds(), metrics.HeapMB()-heap, out.CacheHit, out.Kind != Success)

	switch out.Kind {
	case Success:
		log.Debug().Str("operation", op).Dur("duration", elapsed).Bool("cache_hit", out.CacheHit).Msg("operation finished")
	case ExecutionFailure:
		log.Warn().Str("operation", op).Dur("duration", elapsed).Err(out.Err).Msg("operation failed")
	default:
		log.Debug().Str("operation", op).Err(out.Err).Msg("operation rejected")
	}
	return out
}

func (p *Pipeline) run(ctx context.Context, req params.Params) Outcome {
	op := req.Operation()
	enc := req.Output()
	cacheable := isCacheable(op)
	sourceID := p.sourceIdentity(req.Sources())

	if cacheable {
		if raw, ok := p.cache.Get(sourceID, op, req); ok {
			var prod product
			if err := json.Unmarshal(raw, &prod); err == nil {
				out, err := p.deliver(req, &prod)
				if err != nil {
					return failure(apperrors.Execution(op, err))
				}
				out.CacheHit = true
				return out
			}
			log.Debug().Str("operation", op).Msg("discarding unreadable cache entry")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if !p.admission.TryAcquire() {
		log.Debug().Str("operation", op).Msg("waiting for a processing slot")
		if err := p.admission.Acquire(ctx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = apperrors.ErrTimeout
			}
			return failure(apperrors.Execution(op, err))
		}
	}

	type work struct {
		prod *product
		err  error
	}
	done := make(chan work, 1)
	go func() {
		defer p.admission.Release()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("operation", op).Interface("panic", r).Msg("recovered from executor panic")
				done <- work{err: fmt.Errorf("internal error: %v", r)}
			}
		}()
		prod, err := p.produce(req, enc)
		done <- work{prod: prod, err: err}
	}()

	var w work
	select {
	case w = <-done:
	case <-ctx.Done():
		// The worker keeps its slot until it finishes; its result is dropped.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return failure(apperrors.Execution(op, fmt.Errorf("%w after %s", apperrors.ErrTimeout, p.timeout)))
		}
		return failure(apperrors.Execution(op, ctx.Err()))
	}
	if w.err != nil {
		return failure(apperrors.Execution(op, w.err))
	}

	if cacheable {
		if raw, err := json.Marshal(w.prod); err == nil {
			p.cache.Put(sourceID, op, req, raw, int64(len(raw)))
		}
	}

	out, err := p.deliver(req, w.prod)
	if err != nil {
		return failure(apperrors.Execution(op, err))
	}
	return out
}

// product is an executed and encoded result. It is what the cache stores.
type product struct {
	Image   []byte         `json:"image,omitempty"`
	Format  string         `json:"format,omitempty"`
	Width   int            `json:"width,omitempty"`
	Height  int            `json:"height,omitempty"`
	Mode    string         `json:"mode,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	Message string         `json:"message"`
}

// produce resolves the sources of req, executes it and encodes the result.
func (p *Pipeline) produce(req params.Params, enc params.Encoding) (*product, error) {
	hs, err := p.resolve(req)
	if err != nil {
		return nil, err
	}
	res, err := p.execute(req, hs)
	if err != nil {
		return nil, err
	}

	prod := &product{Data: res.data, Meta: res.meta, Message: res.message}
	switch {
	case res.encoded != nil:
		prod.Image = res.encoded
		prod.Format = res.format
		prod.Width, prod.Height = res.size.X, res.size.Y
		prod.Mode = "P"
	case res.img != nil:
		data, err := imaging.Encode(res.img, enc.Format, enc.Quality)
		if err != nil {
			return nil, err
		}
		b := res.img.Bounds()
		prod.Image = data
		prod.Format = enc.Format
		prod.Width, prod.Height = b.Dx(), b.Dy()
		prod.Mode = encodedMode(res.img, enc.Format)
	}
	return prod, nil
}

// resolve decodes every source of req. A thumbnail grid keeps going past
// sources that fail and leaves their handle nil.
func (p *Pipeline) resolve(req params.Params) ([]*imaging.Handle, error) {
	_, lenient := req.(params.ThumbnailGrid)
	sources := req.Sources()
	hs := make([]*imaging.Handle, len(sources))
	for i, src := range sources {
		h, err := imaging.Resolve(src, p.resolverLimits)
		if err != nil {
			if lenient {
				log.Debug().Int("index", i).Err(err).Msg("thumbnail source unavailable")
				continue
			}
			if len(sources) > 1 {
				return nil, fmt.Errorf("source %d: %w", i, err)
			}
			return nil, err
		}
		hs[i] = h
	}
	return hs, nil
}

// deliver turns a product into a success outcome, writing the image inline
// or to a file as requested.
func (p *Pipeline) deliver(req params.Params, prod *product) (Outcome, error) {
	op := req.Operation()
	enc := req.Output()

	var data map[string]any
	switch {
	case prod.Image == nil:
		data = map[string]any{"metadata": map[string]any{"operation": op}}
	case op == params.OpSaveImage:
		save := req.(params.Save)
		if err := output.WriteFile(save.OutputPath, prod.Image); err != nil {
			return Outcome{}, err
		}
		meta := output.Metadata{
			Operation: op, Width: prod.Width, Height: prod.Height,
			Mode: prod.Mode, Format: prod.Format, SizeBytes: len(prod.Image),
		}
		data = map[string]any{
			"file_path": save.OutputPath,
			"file_size": len(prod.Image),
			"metadata":  meta.Map(),
		}
	default:
		payload, err := p.writer.Write(prod.Image, enc.Mode, prod.Format, output.Metadata{
			Operation: op, Width: prod.Width, Height: prod.Height, Mode: prod.Mode,
		})
		if err != nil {
			return Outcome{}, err
		}
		data = payload
	}

	meta := data["metadata"].(map[string]any)
	for k, v := range prod.Meta {
		meta[k] = v
	}
	for k, v := range prod.Data {
		data[k] = v
	}

	msg := prod.Message
	if msg == "" {
		msg = op + " completed"
	}
	return Outcome{Kind: Success, Message: msg, Data: data}, nil
}

// batchResize resizes every source independently. The outer request holds
// no admission slot; each element is admitted on its own.
func (p *Pipeline) batchResize(ctx context.Context, req params.BatchResize) Outcome {
	report, err := p.batch.Run(ctx, len(req.Images), func(ctx context.Context, i int) (any, error) {
		out := p.single(ctx, req.Item(i))
		if out.Kind != Success {
			return nil, out.Err
		}
		return out.Data, nil
	})
	if err != nil {
		return failure(err)
	}

	return Outcome{
		Kind:    Success,
		Message: fmt.Sprintf("Batch resize completed: %d successful, %d failed", report.Succeeded, report.Failed),
		Results: report.Results,
		Metadata: map[string]any{
			"total_images":          len(req.Images),
			"successful":            report.Succeeded,
			"failed":                report.Failed,
			"target_size":           fmt.Sprintf("%dx%d", req.Width, req.Height),
			"maintain_aspect_ratio": req.MaintainAspectRatio,
			"resample_method":       req.Resample,
			"format":                req.Enc.Format,
		},
	}
}

func (p *Pipeline) stats() Outcome {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	adm := p.admission.Stats()
	return Outcome{
		Kind:    Success,
		Message: "Performance statistics retrieved",
		Data: map[string]any{
			"monitor": p.monitor.Stats(),
			"cache":   p.cache.Stats(),
			"resources": map[string]any{
				"active_tasks":    adm.ActiveCount,
				"max_tasks":       adm.MaxCount,
				"available_slots": adm.AvailableSlots,
				"memory_usage": map[string]any{
					"heap_alloc_mb": float64(ms.HeapAlloc) / (1024 * 1024),
					"sys_mb":        float64(ms.Sys) / (1024 * 1024),
					"gc_cycles":     ms.NumGC,
				},
				"goroutines": runtime.NumGoroutine(),
			},
			"timestamp": float64(time.Now().UnixNano()) / 1e9,
		},
	}
}

// reset restarts the monitor and empties the cache.
func (p *Pipeline) reset() Outcome {
	dropped := p.cache.Len()
	p.monitor.Reset()
	p.cache.Clear()
	runtime.GC()
	log.Info().Int("cache_entries_dropped", dropped).Msg("performance statistics reset")
	return Outcome{
		Kind:    Success,
		Message: "Performance statistics reset",
		Data:    map[string]any{"reset": true, "cache_entries_cleared": dropped},
	}
}

// isCacheable reports whether results of op may be served from the cache.
// Writes to a caller path and the stats operations always run.
func isCacheable(op string) bool {
	switch op {
	case params.OpSaveImage, params.OpBatchResize,
		params.OpGetPerformanceStats, params.OpResetPerformanceStats:
		return false
	}
	return true
}

// sourceIdentity names the inputs of a request for the cache. File sources
// include their size and modification time so an edited file misses.
func (p *Pipeline) sourceIdentity(sources []string) string {
	ids := make([]string, len(sources))
	for i, src := range sources {
		ids[i] = src
		if strings.HasPrefix(src, params.DataURIPrefix) {
			continue
		}
		if fi, err := os.Stat(src); err == nil {
			ids[i] = src + "@" + strconv.FormatInt(fi.Size(), 10) + ":" + strconv.FormatInt(fi.ModTime().UnixNano(), 10)
		}
	}
	return strings.Join(ids, "|")
}

// encodedMode is the mode a decoder will report for img after encoding it
// as format.
func encodedMode(img image.Image, format string) string {
	switch strings.ToUpper(format) {
	case "JPEG", "BMP":
		if _, gray := img.(*image.Gray); gray {
			return "L"
		}
		return "RGB"
	case "GIF":
		return "P"
	}
	return imaging.Mode(img)
}
