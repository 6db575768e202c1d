package detection

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ironsheep/notecolor-mcp/internal/imaging"
)

// Notehead is one detected, pitch-classified notehead.
type Notehead struct {
	Bounds     Bounds     `json:"bounds"`
	System     int        `json:"system"`
	Clef       Clef       `json:"clef"`
	Step       int        `json:"step"`
	StepError  float64    `json:"step_error"`
	Pitch      PitchClass `json:"pitch"`
	Score      float64    `json:"score"`
	ShapeScore float64    `json:"shape_score"`
}

// Rejection records a candidate that was dropped and why.
type Rejection struct {
	Bounds Bounds       `json:"bounds"`
	System int          `json:"system"`
	Reason RejectReason `json:"reason"`
	Score  float64      `json:"score"`
}

// SystemMasks are the stroke masks built for one system. Protect already
// includes Hollow.
type SystemMasks struct {
	System      int
	Stroke      *Mask
	Protect     *Mask
	Hollow      *Mask
	Directional *Mask
}

// Debug carries the intermediate maps of one Detect call. It is only
// filled when the detector was built WithDebug(true).
type Debug struct {
	Ink      *InkMap // binarized page
	Cleaned  *InkMap // after noise removal
	LineFree *InkMap // after staff-line removal
	Erased   *InkMap // after stroke and horizontal-run erasure; blobs come from here
	Masks    []SystemMasks

	// HorizontalAborted lists the systems whose horizontal-run erasure hit
	// the over-erasure guard.
	HorizontalAborted []int
}

// Result is everything detected on one page.
type Result struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Noteheads []Notehead  `json:"noteheads"`
	Barlines  []Barline   `json:"barlines"`
	Staff     *StaffModel `json:"staff,omitempty"`
	Systems   []System    `json:"systems"`
	Rejected  []Rejection `json:"rejected,omitempty"`
	Debug     *Debug      `json:"-"`
}

// Detector runs the notehead pipeline. A Detector is safe for concurrent use.
type Detector struct {
	params  Params
	finder  BlobFinder
	logger  *zap.Logger
	debug   bool
	workers int
}

// Option configures a Detector.
type Option func(*Detector)

// WithParams replaces the default thresholds.
func WithParams(p Params) Option { return func(d *Detector) { d.params = p } }

// WithBlobFinder replaces the in-process ComponentFinder.
func WithBlobFinder(f BlobFinder) Option {
	return func(d *Detector) {
		if f != nil {
			d.finder = f
		}
	}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDebug makes Detect return its intermediate maps in Result.Debug.
func WithDebug(on bool) Option { return func(d *Detector) { d.debug = on } }

// WithWorkers bounds how many pages DetectPages processes at once.
func WithWorkers(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.workers = n
		}
	}
}

// NewDetector builds a Detector with DefaultParams and a ComponentFinder.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		params:  DefaultParams(),
		finder:  ComponentFinder{MinArea: 2},
		logger:  zap.NewNop(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Params returns the thresholds in use.
func (d *Detector) Params() Params { return d.params }

// Detect finds the noteheads and barlines of one page.
//
// Only a nil or malformed raster and context cancellation are errors.
// Everything else degrades: no staves gives one fallback system, a failing
// blob finder gives no noteheads, and a blank page gives an empty result.
func (d *Detector) Detect(ctx context.Context, r *imaging.Raster) (*Result, error) {
	if r == nil {
		return nil, errors.New("detect: nil raster")
	}
	if r.Width < 0 || r.Height < 0 || len(r.Pix) < 4*r.Width*r.Height {
		return nil, fmt.Errorf("detect: raster %dx%d has %d bytes of pixel data", r.Width, r.Height, len(r.Pix))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := &Result{Width: r.Width, Height: r.Height}
	if r.Width == 0 || r.Height == 0 {
		return res, nil
	}
	p := d.params
	log := d.logger.With(zap.Int("width", r.Width), zap.Int("height", r.Height))

	ink := Binarize(r, p.InkCutoff)
	model := DetectStaves(r, p)
	systems := BuildSystems(model, r.Width, r.Height, p)
	res.Staff, res.Systems = model, systems
	if model == nil {
		log.Debug("no staff structure, using fallback system")
	} else {
		log.Debug("staves detected",
			zap.Int("staves", len(model.Staves)),
			zap.Int("systems", len(systems)),
			zap.Float64("spacing", model.Spacing))
	}

	cleaned := CleanNoise(ink, systems[0].Spacing, p)
	lineFree := RemoveStaffLines(cleaned, systems, p)
	masks := buildMasks(lineFree, cleaned, systems, p)

	erased := lineFree
	var aborted []int
	for i, sys := range systems {
		erased = EraseStrokes(erased, masks[i].Stroke, masks[i].Protect)
		var stopped bool
		erased, stopped = EraseHorizontalRuns(erased, sys.Bounds, sys.Lines(), sys.Spacing, masks[i].Protect, p)
		if stopped {
			aborted = append(aborted, i)
			log.Debug("horizontal erasure aborted", zap.Int("system", i))
		}
	}

	published, scored := DetectBarlines(cleaned, systems, p)
	res.Barlines = published
	barsBySystem := make([][]Barline, len(systems))
	for _, b := range scored {
		barsBySystem[b.System] = append(barsBySystem[b.System], b)
	}

	boxes, err := d.findBlobs(ctx, erased)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn("blob finder failed, page has no candidates", zap.Error(err))
		boxes = nil
	}

	var candidates []Candidate
	reject := func(b Bounds, system int, reason RejectReason, score float64) {
		res.Rejected = append(res.Rejected, Rejection{Bounds: b, System: system, Reason: reason, Score: score})
	}
	for _, box := range boxes {
		idx := systemAt(systems, box.CenterY())
		if !candidateSizeOK(box, systems[idx].Spacing, p) {
			reject(box, idx, RejectSize, 0)
			continue
		}
		for _, piece := range SplitCandidate(erased, box, systems[idx].Spacing, p) {
			si := systemAt(systems, piece.CenterY())
			sys := systems[si]
			gate := GateCandidate(sys, piece.CenterY(), p)
			if !gate.OK() {
				reject(piece, si, gate.Reason, 0)
				continue
			}
			shape := MeasureShape(ShapeInputs{
				Ink:         erased,
				Raw:         lineFree,
				Stroke:      masks[si].Stroke,
				Protect:     masks[si].Protect,
				Directional: masks[si].Directional,
				Spacing:     sys.Spacing,
			}, piece, p)
			c := Candidate{
				Bounds:     piece,
				System:     si,
				Spacing:    sys.Spacing,
				Fit:        gate.Fit,
				GateScore:  gate.Score,
				Shape:      shape,
				ShapeScore: ShapeScore(shape, p),
			}
			c.Score = p.GateWeight*c.GateScore + p.ShapeWeight*c.ShapeScore
			rc := rejectContext{system: sys, barlines: barsBySystem[si], ink: erased, params: p}
			if reason := rc.Reject(c); reason != RejectNone {
				reject(piece, si, reason, c.Score)
				continue
			}
			candidates = append(candidates, c)
		}
	}

	kept, dropped := SuppressClusters(candidates, p)
	for _, c := range dropped {
		reject(c.Bounds, c.System, RejectCluster, c.Score)
	}
	kept, dropped = ConsolidateSlots(kept, p)
	for _, c := range dropped {
		reject(c.Bounds, c.System, RejectSlotDuplicate, c.Score)
	}
	kept, dropped = DedupeByRadius(kept, p)
	for _, c := range dropped {
		reject(c.Bounds, c.System, RejectDuplicate, c.Score)
	}

	res.Noteheads = make([]Notehead, 0, len(kept))
	for _, c := range kept {
		res.Noteheads = append(res.Noteheads, Notehead{
			Bounds:     c.Bounds,
			System:     c.System,
			Clef:       c.Fit.Clef,
			Step:       c.Fit.Step,
			StepError:  c.Fit.Error,
			Pitch:      ClassifyPitch(c.Fit),
			Score:      c.Score,
			ShapeScore: c.ShapeScore,
		})
	}
	sort.SliceStable(res.Noteheads, func(i, j int) bool {
		a, b := res.Noteheads[i], res.Noteheads[j]
		if a.System != b.System {
			return a.System < b.System
		}
		if a.Bounds.X1 != b.Bounds.X1 {
			return a.Bounds.X1 < b.Bounds.X1
		}
		return a.Bounds.Y1 < b.Bounds.Y1
	})

	if d.debug {
		res.Debug = &Debug{
			Ink:               ink,
			Cleaned:           cleaned,
			LineFree:          lineFree,
			Erased:            erased,
			Masks:             masks,
			HorizontalAborted: aborted,
		}
	}
	log.Info("page detected",
		zap.Int("noteheads", len(res.Noteheads)),
		zap.Int("barlines", len(res.Barlines)),
		zap.Int("rejected", len(res.Rejected)))
	return res, nil
}

// DetectPages runs Detect on every page, at most WithWorkers pages at a
// time. Results are in input order. The first page error (by index) is
// returned along with whatever results were produced.
func (d *Detector) DetectPages(ctx context.Context, pages []*imaging.Raster) ([]*Result, error) {
	results := make([]*Result, len(pages))
	errs := make([]error, len(pages))
	sem := make(chan struct{}, max(1, d.workers))
	var wg sync.WaitGroup
	for i, page := range pages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-sem }()
			results[i], errs[i] = d.Detect(ctx, page)
		}()
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return results, fmt.Errorf("page %d: %w", i, err)
		}
	}
	return results, nil
}

// buildMasks computes the stroke, protect and directional masks of every
// system concurrently. Systems only read ink. Hollow heads are found on
// cleaned, where staff lines still close rings that touch them.
func buildMasks(ink, cleaned *InkMap, systems []System, p Params) []SystemMasks {
	out := make([]SystemMasks, len(systems))
	var wg sync.WaitGroup
	for i, sys := range systems {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hollow := HollowHeadMask(cleaned, sys.Bounds, sys.Spacing, p)
			protect := BuildProtectMask(ink, sys.Bounds, sys.Spacing, p)
			protect.Union(hollow)
			out[i] = SystemMasks{
				System:      i,
				Stroke:      VerticalStrokeMask(ink, sys.Bounds, sys.Spacing, p),
				Protect:     protect,
				Hollow:      hollow,
				Directional: DirectionalStrokeMask(ink, sys.Bounds, sys.Lines(), sys.Spacing, p),
			}
		}()
	}
	wg.Wait()
	return out
}

// findBlobs drains the finder's rectangles into page pixel boxes.
func (d *Detector) findBlobs(ctx context.Context, ink *InkMap) ([]Bounds, error) {
	set, err := d.finder.FindBlobs(ctx, ink)
	if err != nil {
		return nil, err
	}
	if set.Rects == nil {
		return nil, nil
	}
	var out []Bounds
	for r := range set.Rects {
		if b := ToPixelBounds(r, set.Origin, ink.Width, ink.Height); !b.Empty() {
			out = append(out, b)
		}
		if len(out)%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// candidateSizeOK filters boxes too small, too large or too elongated to
// hold noteheads.
func candidateSizeOK(b Bounds, spacing float64, p Params) bool {
	spacing = max(spacing, p.MinSpacing)
	w, h := float64(b.Width()), float64(b.Height())
	minDim := max(2, p.CandidateMinDim*spacing)
	maxDim := p.CandidateMaxDim * spacing
	if w < minDim || h < minDim || w > maxDim || h > maxDim {
		return false
	}
	return max(w/h, h/w) <= p.CandidateMaxAspect
}
