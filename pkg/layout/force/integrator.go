package force

import (
	errs "github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/vec"
)

// Integrator turns the net force on a body into a position update.
//
// Advance receives the force accumulated from start-of-step positions, the
// body's inverse mass and the current global step, updates pos and vel in
// place and returns the length of the displacement applied. A zero invMass
// must leave pos unchanged.
type Integrator interface {
	Name() string
	Advance(pos, vel *vec.Vec2, force vec.Vec2, invMass, step float64) float64
}

// GradientIntegrator moves every body against its net force.
//
// With Capped unset each body moves exactly step (scaled by its inverse mass)
// along the force direction regardless of the force magnitude. With Capped
// set the move is min(step, |force|), so bodies close to equilibrium settle
// instead of oscillating around it.
type GradientIntegrator struct {
	Capped  bool
	Epsilon float64
}

// Name implements Integrator.
func (GradientIntegrator) Name() string { return IntegratorGradient }

// Advance implements Integrator. vel is set to the displacement applied.
func (g GradientIntegrator) Advance(pos, vel *vec.Vec2, force vec.Vec2, invMass, step float64) float64 {
	f := force.Len()
	if f < g.Epsilon || invMass == 0 {
		*vel = vec.Zero
		return 0
	}
	mag := step
	if g.Capped {
		mag = min(step, f)
	}
	disp := force.Scale(mag / f * invMass)
	pos.SubInPlace(disp)
	*vel = disp.Negate()
	return disp.Len()
}

// SemiImplicitIntegrator treats the force as a physical one: velocity is
// updated first and damped, then the new velocity moves the body. The
// displacement of one iteration never exceeds the current step, so the
// decaying step still bounds the run.
type SemiImplicitIntegrator struct {
	TimeStep float64
	Damping  float64
}

// Name implements Integrator.
func (SemiImplicitIntegrator) Name() string { return IntegratorSemiImplicit }

// Advance implements Integrator.
func (s SemiImplicitIntegrator) Advance(pos, vel *vec.Vec2, force vec.Vec2, invMass, step float64) float64 {
	if invMass == 0 {
		*vel = vec.Zero
		return 0
	}
	vel.SubInPlace(force.Scale(invMass * s.TimeStep)).ScaleInPlace(1 - s.Damping)
	disp := vel.Scale(s.TimeStep)
	if l := disp.Len(); l > step {
		disp.ScaleInPlace(step / l)
	}
	pos.AddInPlace(disp)
	return disp.Len()
}

// NewIntegrator returns the integrator named by cfg.Integrator. cfg must have
// defaults applied.
func NewIntegrator(cfg Config) (Integrator, error) {
	switch cfg.Integrator {
	case IntegratorGradient:
		return GradientIntegrator{
			Capped:  cfg.Displacement == DisplacementCapped,
			Epsilon: cfg.Epsilon,
		}, nil
	case IntegratorSemiImplicit:
		return SemiImplicitIntegrator{TimeStep: cfg.TimeStep, Damping: cfg.Damping}, nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown integrator %q", cfg.Integrator)
	}
}
