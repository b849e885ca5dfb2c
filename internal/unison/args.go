package unison

// Options are the operator's behavior switches for a run.
type Options struct {
	// Debug asks unison for its own diagnostics (-debug all).
	Debug bool
	// Manual lets unison prompt before propagating changes and keeps it verbose.
	Manual bool
	// Timer prints the elapsed wall-clock time after a profile run.
	Timer bool
}

// Invocation holds the values an argument rule may draw from.
type Invocation struct {
	Unison  string
	Roots   [2]string
	Profile string
	LogPath string
}

// argRule contributes args to the command line when when(opts) holds.
type argRule struct {
	name string
	when func(Options) bool
	args func(Invocation) []string
}

func always(Options) bool         { return true }
func whenManual(o Options) bool   { return o.Manual }
func unlessManual(o Options) bool { return !o.Manual }
func whenDebug(o Options) bool    { return o.Debug }

func static(args ...string) func(Invocation) []string {
	return func(Invocation) []string { return args }
}

var (
	ruleInteractive = argRule{"interactive", whenManual, static("-batch=false", "-silent=false")}
	ruleUnattended  = argRule{"unattended", unlessManual, static("-batch=true", "-silent=true")}
	ruleDebug       = argRule{"debug", whenDebug, static("-debug", "all")}
	ruleLogFile     = argRule{"logfile", always, func(inv Invocation) []string {
		return []string{"-logfile", inv.LogPath}
	}}
)

// batchRules build `unison A B -auto -contactquietly -logfile LOG ...`.
// -auto accepts default (nonconflicting) actions without asking.
var batchRules = []argRule{
	{"roots", always, func(inv Invocation) []string { return inv.Roots[:] }},
	{"auto", always, static("-auto", "-contactquietly")},
	ruleLogFile,
	ruleInteractive,
	ruleUnattended,
	ruleDebug,
}

// profileRules build `unison [-batch=false -silent=false] [-debug all] -logfile LOG PROFILE`.
// Unattended behavior for profiles is left to the profile file itself.
var profileRules = []argRule{
	ruleInteractive,
	ruleDebug,
	ruleLogFile,
	{"profile", always, func(inv Invocation) []string { return []string{inv.Profile} }},
}

func assemble(rules []argRule, inv Invocation, opts Options) []string {
	argv := []string{inv.Unison}
	for _, r := range rules {
		if r.when(opts) {
			argv = append(argv, r.args(inv)...)
		}
	}
	return argv
}

// BatchArgs returns the argv for syncing one root pair.
func BatchArgs(unison, local, remote, logPath string, opts Options) []string {
	return assemble(batchRules, Invocation{
		Unison:  unison,
		Roots:   [2]string{local, remote},
		LogPath: logPath,
	}, opts)
}

// ProfileArgs returns the argv for running one named profile.
func ProfileArgs(unison, profile, logPath string, opts Options) []string {
	return assemble(profileRules, Invocation{
		Unison:  unison,
		Profile: profile,
		LogPath: logPath,
	}, opts)
}
