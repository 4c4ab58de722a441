package force

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	errs "github.com/matzehuels/forcelayout/pkg/errors"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultStepDecay is the factor applied to the global step after every iteration.
	DefaultStepDecay = 0.9

	// DefaultMinAdjustment is the total per-iteration movement (summed over all
	// bodies, in distance units) below which a run is considered converged.
	DefaultMinAdjustment = 5.0

	// DefaultMaxIterations bounds a run that never reaches DefaultMinAdjustment.
	DefaultMaxIterations = 1000

	// DefaultNonEdgeFactor multiplies the optimal distance to get the rest
	// length between bodies that are not linked.
	DefaultNonEdgeFactor = 2.0

	// DefaultStiffness is the k constant of the inverse-square law.
	DefaultStiffness = 1.0

	// DefaultTimeStep is dt for the semi-implicit integrator.
	DefaultTimeStep = 0.5

	// DefaultDamping is the per-iteration velocity loss of the semi-implicit integrator.
	DefaultDamping = 0.5

	// DefaultEpsilon is the distance and force magnitude treated as zero.
	DefaultEpsilon = 1e-9

	// initialStepRatio derives the initial step from the optimal distance
	// when none is configured.
	initialStepRatio = 0.25
)

// Force law names.
const (
	LawSpring        = "spring"
	LawInverseSquare = "inverse-square"
)

// Integrator names.
const (
	IntegratorGradient     = "gradient"
	IntegratorSemiImplicit = "semi-implicit"
)

// Displacement modes of the gradient integrator.
const (
	// DisplacementUnit moves every body by exactly the current step along its
	// force direction.
	DisplacementUnit = "unit"
	// DisplacementCapped moves a body by min(step, |force|), so bodies close
	// to equilibrium barely move.
	DisplacementCapped = "capped"
)

// =============================================================================
// Config
// =============================================================================

// Config holds the tuning parameters of a layout run.
// Only OptimalDistance is required; every zero field is replaced by its
// default in [Config.WithDefaults]. The engine never mutates a Config.
type Config struct {
	// OptimalDistance is the target separation of linked bodies.
	OptimalDistance float64 `toml:"optimal_distance" json:"optimal_distance" yaml:"optimal_distance" validate:"finite,gt=0"`

	// InitialStep is the global step of the first iteration.
	// Defaults to a quarter of OptimalDistance.
	InitialStep float64 `toml:"initial_step" json:"initial_step,omitempty" yaml:"initial_step,omitempty" validate:"finite,gt=0"`

	// StepDecay multiplies the step after every iteration.
	StepDecay float64 `toml:"step_decay" json:"step_decay,omitempty" yaml:"step_decay,omitempty" validate:"finite,gt=0,lte=1"`

	// MinAdjustment is the convergence threshold on total movement per iteration.
	MinAdjustment float64 `toml:"min_adjustment" json:"min_adjustment,omitempty" yaml:"min_adjustment,omitempty" validate:"finite,gt=0"`

	// MaxIterations caps the run; reaching it yields StateIterationCapReached.
	MaxIterations int `toml:"max_iterations" json:"max_iterations,omitempty" yaml:"max_iterations,omitempty" validate:"gt=0"`

	// NonEdgeFactor scales OptimalDistance into the rest length of unlinked pairs.
	NonEdgeFactor float64 `toml:"non_edge_factor" json:"non_edge_factor,omitempty" yaml:"non_edge_factor,omitempty" validate:"finite,gt=0"`

	// Law selects the pairwise force law: "spring" or "inverse-square".
	Law string `toml:"law" json:"law,omitempty" yaml:"law,omitempty" validate:"oneof=spring inverse-square"`

	// Stiffness is the k constant of the inverse-square law.
	Stiffness float64 `toml:"stiffness" json:"stiffness,omitempty" yaml:"stiffness,omitempty" validate:"finite,gt=0"`

	// Integrator selects the update rule: "gradient" or "semi-implicit".
	Integrator string `toml:"integrator" json:"integrator,omitempty" yaml:"integrator,omitempty" validate:"oneof=gradient semi-implicit"`

	// Displacement selects the gradient step rule: "unit" or "capped".
	Displacement string `toml:"displacement" json:"displacement,omitempty" yaml:"displacement,omitempty" validate:"oneof=unit capped"`

	// TimeStep is dt of the semi-implicit integrator.
	TimeStep float64 `toml:"time_step" json:"time_step,omitempty" yaml:"time_step,omitempty" validate:"finite,gt=0"`

	// Damping is the fraction of velocity lost per semi-implicit iteration.
	Damping float64 `toml:"damping" json:"damping,omitempty" yaml:"damping,omitempty" validate:"finite,gte=0,lt=1"`

	// Epsilon is the length below which distances and forces count as zero.
	Epsilon float64 `toml:"epsilon" json:"epsilon,omitempty" yaml:"epsilon,omitempty" validate:"finite,gt=0"`

	// Workers > 1 accumulates forces in parallel.
	Workers int `toml:"workers" json:"workers,omitempty" yaml:"workers,omitempty" validate:"gte=1"`
}

// DefaultConfig returns a Config with every field at its default for the
// given optimal distance.
func DefaultConfig(optimalDistance float64) Config {
	return Config{OptimalDistance: optimalDistance}.WithDefaults()
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.InitialStep == 0 {
		c.InitialStep = c.OptimalDistance * initialStepRatio
	}
	if c.StepDecay == 0 {
		c.StepDecay = DefaultStepDecay
	}
	if c.MinAdjustment == 0 {
		c.MinAdjustment = DefaultMinAdjustment
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.NonEdgeFactor == 0 {
		c.NonEdgeFactor = DefaultNonEdgeFactor
	}
	if c.Law == "" {
		c.Law = LawSpring
	}
	if c.Stiffness == 0 {
		c.Stiffness = DefaultStiffness
	}
	if c.Integrator == "" {
		c.Integrator = IntegratorGradient
	}
	if c.Displacement == "" {
		c.Displacement = DisplacementUnit
	}
	if c.TimeStep == 0 {
		c.TimeStep = DefaultTimeStep
	}
	if c.Damping == 0 {
		c.Damping = DefaultDamping
	}
	if c.Epsilon == 0 {
		c.Epsilon = DefaultEpsilon
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	return c
}

var validate = newValidator()

// newValidator returns a validator with the "finite" tag registered, which
// rejects NaN and ±Inf. gt/gte alone let +Inf through.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

// Validate checks c as-is; call it on the result of [Config.WithDefaults].
// The returned error carries [errs.ErrCodeInvalidConfig].
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "%s", describeValidation(err))
	}
	return nil
}

// describeValidation reports the first failed field in a readable form.
func describeValidation(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid layout config"
	}
	e := ve[0]
	switch e.Tag() {
	case "finite":
		return fmt.Sprintf("%s must be a finite number, got %v", e.Field(), e.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", e.Field(), e.Param(), e.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s, got %v", e.Field(), e.Param(), e.Value())
	case "lt":
		return fmt.Sprintf("%s must be less than %s, got %v", e.Field(), e.Param(), e.Value())
	case "lte":
		return fmt.Sprintf("%s must not exceed %s, got %v", e.Field(), e.Param(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", e.Field(), e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s: validation failed (%s)", e.Field(), e.Tag())
	}
}
