package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/diplomatch/portal/internal/core/domain"
	"github.com/diplomatch/portal/internal/core/ports"
	"github.com/diplomatch/portal/internal/pkg/metrics"
)

// Rule names, as reported in Decision.Rule.
const (
	RulePublic            = "public"
	RuleTokenRequired     = "token-required"
	RuleRestore           = "restore"
	RuleSessionRequired   = "session-required"
	RuleProfileCompletion = "profile-completion"
	RuleAllow             = "allow"
)

// PublicPaths are always reachable regardless of session state.
var PublicPaths = []string{domain.PathLogin, domain.PathRegister, domain.PathForgotPassword}

// attempt is the per-navigation state shared by the rules. It is never
// reused across navigations.
type attempt struct {
	nav       domain.Navigation
	persisted string
}

// rule inspects an attempt. It returns terminal=true to end evaluation; an
// empty redirect then means Allowed.
type rule struct {
	name string
	eval func(ctx context.Context, a *attempt) (redirect string, terminal bool)
}

// Guard evaluates route transitions against the session. Rules run in order
// and the first terminal rule decides; when none does the navigation is
// allowed.
type Guard struct {
	session ports.SessionService
	public  map[string]struct{}
	rules   []rule
	log     zerolog.Logger
}

var _ ports.NavigationGuard = (*Guard)(nil)

// GuardOption configures a Guard.
type GuardOption func(*guardOptions)

type guardOptions struct {
	requireProfile bool
}

// WithProfileCompletion enables the redirect to /profile for users whose
// profile is incomplete.
func WithProfileCompletion(enabled bool) GuardOption {
	return func(o *guardOptions) { o.requireProfile = enabled }
}

func NewGuard(session ports.SessionService, log zerolog.Logger, opts ...GuardOption) *Guard {
	var o guardOptions
	for _, opt := range opts {
		opt(&o)
	}

	g := &Guard{
		session: session,
		public:  make(map[string]struct{}, len(PublicPaths)),
		log:     log,
	}
	for _, p := range PublicPaths {
		g.public[p] = struct{}{}
	}

	g.rules = []rule{
		{name: RulePublic, eval: g.publicRoute},
		{name: RuleTokenRequired, eval: g.tokenRequired},
		{name: RuleRestore, eval: g.restoreIfNeeded},
		{name: RuleSessionRequired, eval: g.sessionRequired},
	}
	if o.requireProfile {
		g.rules = append(g.rules, rule{name: RuleProfileCompletion, eval: g.profileCompletion})
	}
	return g
}

// Evaluate runs one navigation attempt to a terminal decision. It may block
// while the session is restored.
func (g *Guard) Evaluate(ctx context.Context, nav domain.Navigation) domain.Decision {
	a := &attempt{nav: nav}
	if _, ok := g.public[nav.Path]; !ok {
		a.persisted = g.session.PersistedToken(ctx)
	}

	decision := domain.Allow(RuleAllow)
	for _, r := range g.rules {
		redirect, terminal := r.eval(ctx, a)
		if !terminal {
			continue
		}
		if redirect == "" {
			decision = domain.Allow(r.name)
		} else {
			decision = domain.RedirectTo(redirect, r.name)
		}
		break
	}

	metrics.GuardDecisionsTotal.WithLabelValues(string(decision.Outcome), decision.Rule).Inc()
	g.log.Debug().
		Str("path", nav.Path).
		Str("outcome", string(decision.Outcome)).
		Str("rule", decision.Rule).
		Str("redirect", decision.Redirect).
		Msg("navigation evaluated")
	return decision
}

func (g *Guard) publicRoute(_ context.Context, a *attempt) (string, bool) {
	_, ok := g.public[a.nav.Path]
	return "", ok
}

func (g *Guard) tokenRequired(_ context.Context, a *attempt) (string, bool) {
	if a.nav.Route.RequiresAuth && a.persisted == "" {
		return domain.PathLogin, true
	}
	return "", false
}

func (g *Guard) restoreIfNeeded(ctx context.Context, a *attempt) (string, bool) {
	if a.persisted != "" && g.session.User() == nil {
		if err := g.session.RestoreUser(ctx); err != nil {
			g.log.Debug().Err(err).Str("path", a.nav.Path).Msg("restore during navigation failed")
		}
	}
	return "", false
}

func (g *Guard) sessionRequired(_ context.Context, a *attempt) (string, bool) {
	if a.nav.Route.RequiresAuth && g.session.Token() == "" {
		return domain.PathLogin, true
	}
	return "", false
}

func (g *Guard) profileCompletion(_ context.Context, a *attempt) (string, bool) {
	u := g.session.User()
	if u != nil && !u.IsProfileCompleted && a.nav.Path != domain.PathProfile {
		return domain.PathProfile, true
	}
	return "", false
}
