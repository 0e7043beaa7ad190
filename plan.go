package algofftw

import (
	"fmt"
	"runtime"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-fftw/engine"
)

// Plan is a transform plan bound to an input and an output buffer.
//
// A Plan exclusively owns its engine handle. Close releases it; a plan that
// becomes unreachable without being closed is released by a runtime cleanup.
// The handle never changes after construction, even when Run or Rebind swap
// the bound buffers.
//
// A Plan is not safe for concurrent use. Callers sharing a plan between
// goroutines must serialize access themselves.
type Plan struct {
	id     uuid.UUID
	native *nativePlan
	// cleanup releases native if the plan is collected unclosed.
	cleanup runtime.Cleanup

	sym        *engine.Symbols
	engineName string

	in, out Buffer
	kind    ElementKind
	dir     Direction
	flags   Flags
	n       int

	// rebound is set once a buffer other than the planned ones was bound;
	// from then on execution must pass addresses explicitly.
	rebound bool

	logger *zap.Logger
}

// nativePlan is the engine resource owned by a Plan.
type nativePlan struct {
	handle  engine.Handle
	destroy func(engine.Handle)
}

// release destroys the handle once. Later calls do nothing.
func (np *nativePlan) release() bool {
	if np == nil || np.handle == nil {
		return false
	}

	h := np.handle
	np.handle = nil
	np.destroy(h)

	return true
}

func releaseNative(np *nativePlan) {
	np.release()
}

// PlanOption configures plan construction.
type PlanOption func(*planConfig)

type planConfig struct {
	binding *Binding
	logger  *zap.Logger
}

// WithBinding selects the engine binding. Without it DefaultBinding is used.
func WithBinding(b *Binding) PlanOption {
	return func(c *planConfig) { c.binding = b }
}

// WithLogger sets the logger for plan lifecycle events.
func WithLogger(l *zap.Logger) PlanOption {
	return func(c *planConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewPlan creates a plan transforming in into out.
//
// in and out must have the same shape and element kind and both must be
// contiguous. out may describe the same memory as in for an in-place
// transform. A zero flags value selects DefaultFlags.
//
// The element kind is checked before the engine is loaded, so an
// unsupported kind fails with ErrUnsupportedPrecision without side effects.
// If the engine refuses to plan, ErrPlanningFailed is returned and no engine
// resource is retained. Depending on flags the engine may overwrite the
// contents of in and out while planning.
func NewPlan(in, out Buffer, dir Direction, flags Flags, opts ...PlanOption) (*Plan, error) {
	cfg := planConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if in.IsZero() || out.IsZero() {
		return nil, ErrNilBuffer
	}

	if _, err := precisionOf(in.Kind()); err != nil {
		return nil, err
	}

	if !in.Contiguous() {
		return nil, &IncompatibleBufferError{
			Role:  RoleInput,
			Check: CheckContiguity,
			Want:  "stride 1",
			Got:   fmt.Sprintf("stride %d", in.Stride()),
		}
	}

	if err := checkCompatible(RoleOutput, in, out); err != nil {
		return nil, err
	}

	if !dir.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(dir))
	}

	if err := flags.validate(); err != nil {
		return nil, err
	}

	if flags == 0 {
		flags = DefaultFlags
	}

	binding := cfg.binding
	if binding == nil {
		binding = DefaultBinding()
	}

	table, err := binding.Table()
	if err != nil {
		return nil, err
	}

	sym, err := dispatch(table, in.Kind())
	if err != nil {
		return nil, err
	}

	handle := sym.PlanDFT(in.Rank(), in.Shape(), in.Pointer(), out.Pointer(),
		engineSign(table.Constants, dir), engineFlags(table.Constants, flags))
	if handle == nil {
		return nil, fmt.Errorf("%w: engine %q, %s %s, flags %s",
			ErrPlanningFailed, table.Info.Name, dir, in, flags)
	}

	p := &Plan{
		id:         uuid.New(),
		native:     &nativePlan{handle: handle, destroy: sym.DestroyPlan},
		sym:        sym,
		engineName: table.Info.Name,
		in:         in,
		out:        out,
		kind:       in.Kind(),
		dir:        dir,
		flags:      flags,
		n:          out.Len(),
		logger:     cfg.logger,
	}
	p.cleanup = runtime.AddCleanup(p, releaseNative, p.native)

	p.logger.Debug("plan created",
		zap.String("plan", p.id.String()),
		zap.String("engine", p.engineName),
		zap.Stringer("direction", dir),
		zap.Stringer("flags", flags),
		zap.Stringer("kind", p.kind),
		zap.Ints("shape", in.shape),
	)

	return p, nil
}

// checkCompatible verifies that candidate can replace ref in the given role.
func checkCompatible(role Role, ref, candidate Buffer) error {
	if candidate.IsZero() {
		return ErrNilBuffer
	}

	if !candidate.Contiguous() {
		return &IncompatibleBufferError{
			Role:  role,
			Check: CheckContiguity,
			Want:  "stride 1",
			Got:   fmt.Sprintf("stride %d", candidate.Stride()),
		}
	}

	if !slices.Equal(ref.shape, candidate.shape) {
		return &IncompatibleBufferError{
			Role:  role,
			Check: CheckShape,
			Want:  fmt.Sprint(ref.shape),
			Got:   fmt.Sprint(candidate.shape),
		}
	}

	if ref.kind != candidate.kind {
		return &IncompatibleBufferError{
			Role:  role,
			Check: CheckDtype,
			Want:  ref.kind.String(),
			Got:   candidate.kind.String(),
		}
	}

	return nil
}

// Rebind replaces the bound input and/or output buffer. A nil argument keeps
// the current buffer. Each replacement must be contiguous and match the
// shape and element kind of the buffer it replaces; otherwise an
// *IncompatibleBufferError is returned and neither buffer is replaced.
//
// The engine plan is reused as is; the new addresses are passed explicitly
// on every later execution. Alignment is not checked: FFTW requires new
// arrays to share the alignment of the planned ones, so plans on that engine
// that will be rebound to Go-allocated slices should include FlagUnaligned.
func (p *Plan) Rebind(in, out *Buffer) error {
	if p.Closed() {
		return ErrPlanClosed
	}

	if in != nil {
		if err := checkCompatible(RoleInput, p.in, *in); err != nil {
			return err
		}
	}

	if out != nil {
		if err := checkCompatible(RoleOutput, p.out, *out); err != nil {
			return err
		}
	}

	if in != nil {
		p.in = *in
		p.rebound = true
	}

	if out != nil {
		p.out = *out
		p.rebound = true
	}

	if in != nil || out != nil {
		p.logger.Debug("plan rebound",
			zap.String("plan", p.id.String()),
			zap.Bool("input", in != nil),
			zap.Bool("output", out != nil),
		)
	}

	return nil
}

// RunOption configures a single Run call.
type RunOption func(*runConfig)

type runConfig struct {
	in, out *Buffer
	norm    Normalization
}

// RunInput rebinds the input buffer before executing.
func RunInput(b Buffer) RunOption {
	return func(c *runConfig) { c.in = &b }
}

// RunOutput rebinds the output buffer before executing.
func RunOutput(b Buffer) RunOption {
	return func(c *runConfig) { c.out = &b }
}

// RunNormalization scales the output after executing.
func RunNormalization(n Normalization) RunOption {
	return func(c *runConfig) { c.norm = n }
}

// Run executes the plan and returns the output buffer.
//
// Buffers passed with RunInput or RunOutput are bound first, following the
// rules of Rebind. The transform is always executed against the bound
// addresses. If the engine reports a failure, Run returns an error wrapping
// ErrExecutionFailed and skips normalization; the output may then hold
// partial results. An unknown normalization is rejected before anything is
// bound or executed.
func (p *Plan) Run(opts ...RunOption) (Buffer, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if p.Closed() {
		return Buffer{}, ErrPlanClosed
	}

	if err := validateNormalization(cfg.norm); err != nil {
		return Buffer{}, err
	}

	if err := p.Rebind(cfg.in, cfg.out); err != nil {
		return Buffer{}, err
	}

	if err := p.executeDFT(); err != nil {
		return Buffer{}, err
	}

	if err := p.normalize(cfg.norm); err != nil {
		return Buffer{}, err
	}

	return p.out, nil
}

// Execute runs the plan on the bound buffers without normalization. Until a
// buffer has been rebound this uses the engine's plain execute entry point.
func (p *Plan) Execute() error {
	if p.Closed() {
		return ErrPlanClosed
	}

	if p.rebound {
		return p.executeDFT()
	}

	err := p.sym.Execute(p.native.handle)
	runtime.KeepAlive(p)

	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}

	return nil
}

func (p *Plan) executeDFT() error {
	err := p.sym.ExecuteDFT(p.native.handle, p.in.Pointer(), p.out.Pointer())
	runtime.KeepAlive(p)

	if err != nil {
		p.logger.Error("plan execution failed",
			zap.String("plan", p.id.String()),
			zap.Error(err),
		)

		return fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}

	return nil
}

// ID returns the plan's unique identifier, used in log output.
func (p *Plan) ID() uuid.UUID {
	return p.id
}

// Direction returns the transform direction.
func (p *Plan) Direction() Direction {
	return p.dir
}

// Flags returns the planner flags the plan was created with.
func (p *Plan) Flags() Flags {
	return p.flags
}

// Input returns the currently bound input buffer.
func (p *Plan) Input() Buffer {
	return p.in
}

// Output returns the currently bound output buffer.
func (p *Plan) Output() Buffer {
	return p.out
}

// ElementKind returns the element kind the plan was created for.
func (p *Plan) ElementKind() ElementKind {
	return p.kind
}

// ElementCount returns the number of elements transformed, as captured from
// the output buffer at construction.
func (p *Plan) ElementCount() int {
	return p.n
}

// Engine returns the name of the engine that created the plan.
func (p *Plan) Engine() string {
	return p.engineName
}

// Flops returns the engine's count of additions, multiplications and fused
// multiply-adds for one execution.
func (p *Plan) Flops() (add, mul, fma float64, err error) {
	if p.Closed() {
		return 0, 0, 0, ErrPlanClosed
	}

	if p.sym.Flops == nil {
		return 0, 0, 0, fmt.Errorf("%w: engine %q does not report flops", ErrEngineUnavailable, p.engineName)
	}

	add, mul, fma = p.sym.Flops(p.native.handle)
	runtime.KeepAlive(p)

	return add, mul, fma, nil
}

// Cost returns the engine's measured cost of one execution, in engine units.
func (p *Plan) Cost() (float64, error) {
	return p.costFrom(p.sym.Cost, "cost")
}

// EstimateCost returns the engine's a priori cost estimate.
func (p *Plan) EstimateCost() (float64, error) {
	return p.costFrom(p.sym.EstimateCost, "estimate_cost")
}

func (p *Plan) costFrom(fn func(engine.Handle) float64, name string) (float64, error) {
	if p.Closed() {
		return 0, ErrPlanClosed
	}

	if fn == nil {
		return 0, fmt.Errorf("%w: engine %q does not report %s", ErrEngineUnavailable, p.engineName, name)
	}

	c := fn(p.native.handle)
	runtime.KeepAlive(p)

	return c, nil
}

// String describes the plan, e.g. "forward complex128[64 64] estimate (go)".
func (p *Plan) String() string {
	state := ""
	if p.Closed() {
		state = " closed"
	}

	return fmt.Sprintf("%s %s %s (%s)%s", p.dir, p.in, p.flags, p.engineName, state)
}

// Closed reports whether the plan no longer owns an engine handle.
func (p *Plan) Closed() bool {
	return p == nil || p.native == nil
}

// Close releases the engine handle. It is safe to call more than once; only
// the first call reaches the engine.
func (p *Plan) Close() error {
	if p.Closed() {
		return nil
	}

	p.cleanup.Stop()
	p.native.release()
	p.native = nil

	p.logger.Debug("plan destroyed", zap.String("plan", p.id.String()))

	return nil
}

// Transfer moves ownership of the engine handle to a new Plan and returns
// it. The receiver is left closed: its Close is a no-op and its other
// operations return ErrPlanClosed.
func (p *Plan) Transfer() (*Plan, error) {
	if p.Closed() {
		return nil, ErrPlanClosed
	}

	p.cleanup.Stop()

	q := &Plan{
		id:         p.id,
		native:     p.native,
		sym:        p.sym,
		engineName: p.engineName,
		in:         p.in,
		out:        p.out,
		kind:       p.kind,
		dir:        p.dir,
		flags:      p.flags,
		n:          p.n,
		rebound:    p.rebound,
		logger:     p.logger,
	}
	q.cleanup = runtime.AddCleanup(q, releaseNative, q.native)

	p.native = nil

	return q, nil
}
