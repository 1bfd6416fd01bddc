package domain

// Well-known paths the session and the guard navigate to.
const (
	PathLogin          = "/login"
	PathRegister       = "/register"
	PathForgotPassword = "/forgot-password"
	PathDashboard      = "/dashboard"
	PathProfile        = "/profile"
)

// Route declares a page and its access requirements. Path uses echo's
// ":param" syntax.
type Route struct {
	Path            string
	Name            string
	RequiresAuth    bool
	RequiresProfile bool
}

// Routes is the page table of the portal.
var Routes = []Route{
	{Path: PathDashboard, Name: "Dashboard", RequiresAuth: true},
	{Path: PathLogin, Name: "Login"},
	{Path: PathRegister, Name: "Register"},
	{Path: PathProfile, Name: "Profile", RequiresAuth: true, RequiresProfile: true},
	{Path: PathForgotPassword, Name: "PasswordReset"},
	{Path: "/reset-password/:uid/:token", Name: "PasswordResetConfirm"},
	{Path: "/create-project", Name: "CreateTopic", RequiresAuth: true},
	{Path: "/students/:id", Name: "StudentPublicProfile", RequiresAuth: true},
	{Path: "/orders", Name: "Orders", RequiresAuth: true},
	{Path: "/professors", Name: "Professors"},
	{Path: "/supervisors/:id", Name: "SupervisorProfile"},
	{Path: "/notifications", Name: "Notifications"},
	{Path: "/liked", Name: "Liked"},
}

// Navigation is a single attempted route transition: the concrete path the
// user asked for and the declaration it matched.
type Navigation struct {
	Path  string
	Route Route
}

// Outcome is the terminal state of a navigation attempt.
type Outcome string

const (
	Allowed    Outcome = "allowed"
	Redirected Outcome = "redirected"
)

// Decision is the guard's verdict. Rule names the rule that decided.
type Decision struct {
	Outcome  Outcome
	Redirect string
	Rule     string
}

// Allow builds an Allowed decision.
func Allow(rule string) Decision {
	return Decision{Outcome: Allowed, Rule: rule}
}

// RedirectTo builds a Redirected decision.
func RedirectTo(path, rule string) Decision {
	return Decision{Outcome: Redirected, Redirect: path, Rule: rule}
}
